// Package storagetest 提供测试用的内存存储提供者
package storagetest

import (
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage"
)

// FakeProvider 把对象保存在内存中，可以按键注入上传或删除失败
type FakeProvider struct {
	mu           sync.Mutex
	Objects      map[string][]byte
	ContentTypes map[string]string
	FailPut      map[string]bool
	FailAllRm    bool
	Deleted      []string
}

func NewFakeProvider() *FakeProvider {
	return &FakeProvider{
		Objects:      make(map[string][]byte),
		ContentTypes: make(map[string]string),
		FailPut:      make(map[string]bool),
	}
}

func (f *FakeProvider) Upload(_ context.Context, key string, file io.Reader, _ int64, contentType string) (*storage.UploadResult, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailPut[key] {
		return nil, fmt.Errorf("模拟上传失败: %s", key)
	}
	f.Objects[key] = data
	f.ContentTypes[key] = contentType
	return &storage.UploadResult{Source: key, URL: f.PublicURL(key), Size: int64(len(data)), MimeType: contentType}, nil
}

func (f *FakeProvider) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.FailAllRm {
		return fmt.Errorf("模拟删除失败: %s", key)
	}
	delete(f.Objects, key)
	f.Deleted = append(f.Deleted, key)
	return nil
}

func (f *FakeProvider) IsExist(_ context.Context, key string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.Objects[key]
	return ok, nil
}

func (f *FakeProvider) PublicURL(key string) string {
	return "https://cdn.test/" + key
}

// ContentType 返回上传对象时使用的 MIME 类型
func (f *FakeProvider) ContentType(key string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ContentTypes[key]
}

// SetFailAllDeletes 切换删除是否全部失败
func (f *FakeProvider) SetFailAllDeletes(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.FailAllRm = fail
}

// Keys 返回当前保存的对象键，已排序
func (f *FakeProvider) Keys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	keys := make([]string, 0, len(f.Objects))
	for k := range f.Objects {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
