/*
 * @Description: 阿里云OSS存储提供者实现
 * @Author: 安知鱼
 * @Date: 2025-09-28 18:00:00
 * @LastEditTime: 2025-10-11 14:11:02
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"go.uber.org/zap"
)

// AliOSSProvider 实现了 IStorageProvider 接口，用于处理与阿里云OSS的交互
type AliOSSProvider struct {
	bucket *oss.Bucket
	policy Policy
}

// NewAliOSSProvider 是 AliOSSProvider 的构造函数。
// Endpoint 格式如: https://oss-cn-shanghai.aliyuncs.com
func NewAliOSSProvider(policy Policy) (*AliOSSProvider, error) {
	if policy.Endpoint == "" {
		return nil, fmt.Errorf("阿里云OSS策略缺少Endpoint配置")
	}
	client, err := oss.New(policy.Endpoint, policy.AccessKey, policy.SecretKey)
	if err != nil {
		zap.S().Errorf("[阿里云OSS] 创建客户端失败: %v", err)
		return nil, fmt.Errorf("创建阿里云OSS客户端失败: %w", err)
	}
	bucket, err := client.Bucket(policy.Bucket)
	if err != nil {
		return nil, fmt.Errorf("获取阿里云OSS存储桶失败: %w", err)
	}
	zap.S().Infof("[阿里云OSS] 成功创建客户端和存储桶: %s", policy.Bucket)
	return &AliOSSProvider{bucket: bucket, policy: policy}, nil
}

func (p *AliOSSProvider) Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error) {
	if err := p.bucket.PutObject(objectKey, file, oss.ContentType(contentType), oss.WithContext(ctx)); err != nil {
		zap.S().Errorf("[阿里云OSS] 上传失败: objectKey=%s, err=%v", objectKey, err)
		return nil, fmt.Errorf("上传文件到阿里云OSS失败: %w", err)
	}
	return &UploadResult{Source: objectKey, URL: p.PublicURL(objectKey), Size: size, MimeType: contentType}, nil
}

// Delete 删除单个对象，OSS 对不存在的对象同样返回成功
func (p *AliOSSProvider) Delete(ctx context.Context, objectKey string) error {
	if err := p.bucket.DeleteObject(objectKey, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("从阿里云OSS删除文件失败: %w", err)
	}
	return nil
}

func (p *AliOSSProvider) IsExist(ctx context.Context, objectKey string) (bool, error) {
	return p.bucket.IsObjectExist(objectKey, oss.WithContext(ctx))
}

// PublicURL 优先使用 CDN 域名，否则拼接 bucket.endpoint
func (p *AliOSSProvider) PublicURL(objectKey string) string {
	if p.policy.PublicURL != "" {
		return joinURL(p.policy.PublicURL, objectKey)
	}
	u, err := url.Parse(ensureScheme(p.policy.Endpoint, true))
	if err != nil {
		return objectKey
	}
	host := strings.TrimPrefix(u.Host, p.policy.Bucket+".")
	return joinURL(fmt.Sprintf("%s://%s.%s", u.Scheme, p.policy.Bucket, host), objectKey)
}
