/*
 * @Description: 本地文件系统存储提供者
 * @Author: 安知鱼
 * @Date: 2025-06-23 15:31:40
 * @LastEditTime: 2025-10-11 14:05:12
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
)

// LocalProvider 把对象保存在本地目录，由 HTTP 服务以静态文件的方式对外提供
type LocalProvider struct {
	root      string
	urlPrefix string
}

// NewLocalProvider 是 LocalProvider 的构造函数，urlPrefix 为空时使用 /static/photos
func NewLocalProvider(root, urlPrefix string) (*LocalProvider, error) {
	if root == "" {
		root = constant.DefaultLocalStoragePath
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("解析本地存储目录失败: %w", err)
	}
	if err := os.MkdirAll(absRoot, os.ModePerm); err != nil {
		return nil, fmt.Errorf("创建本地存储目录失败: %w", err)
	}
	if urlPrefix == "" {
		urlPrefix = constant.LocalStorageRoute
	}
	zap.S().Infof("[本地存储] 根目录: %s, 访问前缀: %s", absRoot, urlPrefix)
	return &LocalProvider{root: absRoot, urlPrefix: urlPrefix}, nil
}

// Root 返回本地存储的绝对根目录，供路由注册静态文件服务
func (p *LocalProvider) Root() string {
	return p.root
}

// resolve 把对象键转换为根目录下的绝对路径，拒绝越出根目录的键
func (p *LocalProvider) resolve(objectKey string) (string, error) {
	cleaned := filepath.Clean("/" + strings.TrimPrefix(objectKey, "/"))
	full := filepath.Join(p.root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(p.root, full)
	if err != nil || rel == "." || strings.HasPrefix(rel, "..") {
		return "", fmt.Errorf("非法的对象键: %s", objectKey)
	}
	return full, nil
}

func (p *LocalProvider) Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error) {
	fullPath, err := p.resolve(objectKey)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), os.ModePerm); err != nil {
		return nil, fmt.Errorf("创建目录失败: %w", err)
	}

	dst, err := os.Create(fullPath)
	if err != nil {
		return nil, fmt.Errorf("创建文件失败: %w", err)
	}
	written, err := io.Copy(dst, file)
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err != nil {
		os.Remove(fullPath)
		return nil, fmt.Errorf("写入文件失败: %w", err)
	}

	return &UploadResult{
		Source:   objectKey,
		URL:      p.PublicURL(objectKey),
		Size:     written,
		MimeType: contentType,
	}, nil
}

func (p *LocalProvider) Delete(ctx context.Context, objectKey string) error {
	fullPath, err := p.resolve(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(fullPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("删除本地文件失败: %w", err)
	}
	return nil
}

func (p *LocalProvider) IsExist(ctx context.Context, objectKey string) (bool, error) {
	fullPath, err := p.resolve(objectKey)
	if err != nil {
		return false, err
	}
	_, err = os.Stat(fullPath)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (p *LocalProvider) PublicURL(objectKey string) string {
	return joinURL(p.urlPrefix, objectKey)
}
