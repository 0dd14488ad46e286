package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// MinioProvider 用于自建的 MinIO 服务
type MinioProvider struct {
	client *minio.Client
	policy Policy
}

// NewMinioProvider 是 MinioProvider 的构造函数，Endpoint 为 host:port 形式
func NewMinioProvider(policy Policy) (*MinioProvider, error) {
	if policy.Endpoint == "" {
		return nil, fmt.Errorf("MinIO 存储策略缺少 Endpoint 配置")
	}
	client, err := minio.New(policy.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(policy.AccessKey, policy.SecretKey, ""),
		Secure: policy.UseSSL,
		Region: policy.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("创建 MinIO 客户端失败: %w", err)
	}
	zap.S().Infof("[MinIO] 客户端已创建 - endpoint: %s, bucket: %s", policy.Endpoint, policy.Bucket)
	return &MinioProvider{client: client, policy: policy}, nil
}

func (p *MinioProvider) Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error) {
	info, err := p.client.PutObject(ctx, p.policy.Bucket, objectKey, file, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		zap.S().Errorf("[MinIO] 上传失败: key=%s, err=%v", objectKey, err)
		return nil, fmt.Errorf("上传文件到 MinIO 失败: %w", err)
	}
	return &UploadResult{Source: objectKey, URL: p.PublicURL(objectKey), Size: info.Size, MimeType: contentType}, nil
}

func (p *MinioProvider) Delete(ctx context.Context, objectKey string) error {
	if err := p.client.RemoveObject(ctx, p.policy.Bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("从 MinIO 删除文件失败: %w", err)
	}
	return nil
}

func (p *MinioProvider) IsExist(ctx context.Context, objectKey string) (bool, error) {
	_, err := p.client.StatObject(ctx, p.policy.Bucket, objectKey, minio.StatObjectOptions{})
	if err == nil {
		return true, nil
	}
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return false, nil
	}
	return false, err
}

func (p *MinioProvider) PublicURL(objectKey string) string {
	if p.policy.PublicURL != "" {
		return joinURL(p.policy.PublicURL, objectKey)
	}
	return joinURL(ensureScheme(p.policy.Endpoint, p.policy.UseSSL)+"/"+p.policy.Bucket, objectKey)
}
