package storage

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
)

func TestLocalProvider_UploadDelete(t *testing.T) {
	ctx := context.Background()
	root := t.TempDir()
	p, err := NewLocalProvider(root, "")
	require.NoError(t, err)

	data := []byte("fake-jpeg")
	res, err := p.Upload(ctx, "u1/a1/1700000000000-abc.jpg", bytes.NewReader(data), int64(len(data)), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "u1/a1/1700000000000-abc.jpg", res.Source)
	assert.Equal(t, constant.LocalStorageRoute+"/u1/a1/1700000000000-abc.jpg", res.URL)
	assert.EqualValues(t, len(data), res.Size)

	onDisk, err := os.ReadFile(filepath.Join(root, "u1", "a1", "1700000000000-abc.jpg"))
	require.NoError(t, err)
	assert.Equal(t, data, onDisk)

	exists, err := p.IsExist(ctx, res.Source)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, p.Delete(ctx, res.Source))
	exists, err = p.IsExist(ctx, res.Source)
	require.NoError(t, err)
	assert.False(t, exists)

	// 重复删除不报错
	assert.NoError(t, p.Delete(ctx, res.Source))
}

func TestLocalProvider_RejectsTraversal(t *testing.T) {
	p, err := NewLocalProvider(t.TempDir(), "https://cdn.example.com/")
	require.NoError(t, err)

	_, err = p.Upload(context.Background(), "../../etc/passwd", bytes.NewReader(nil), 0, "text/plain")
	// 越界的键被规整到根目录内部
	require.NoError(t, err)
	_, statErr := os.Stat(filepath.Join(p.Root(), "etc", "passwd"))
	assert.NoError(t, statErr)

	assert.Error(t, p.Delete(context.Background(), "/"))
	assert.Equal(t, "https://cdn.example.com/a/b.jpg", p.PublicURL("a/b.jpg"))
}

func TestNewProvider_Validation(t *testing.T) {
	ctx := context.Background()

	_, err := NewProvider(ctx, Policy{Type: "ftp"})
	assert.Error(t, err)

	_, err = NewProvider(ctx, Policy{Type: constant.ProviderTypeS3, AccessKey: "ak", SecretKey: "sk"})
	assert.ErrorContains(t, err, "存储桶")

	p, err := NewProvider(ctx, Policy{Type: constant.ProviderTypeLocal, LocalPath: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &LocalProvider{}, p)
}

func TestAliOSSProvider_PublicURL(t *testing.T) {
	p := &AliOSSProvider{policy: Policy{Bucket: "photos", Endpoint: "https://oss-cn-shanghai.aliyuncs.com"}}
	assert.Equal(t, "https://photos.oss-cn-shanghai.aliyuncs.com/u/a/1.jpg", p.PublicURL("u/a/1.jpg"))

	p.policy.PublicURL = "https://img.example.com"
	assert.Equal(t, "https://img.example.com/u/a/1.jpg", p.PublicURL("u/a/1.jpg"))
}
