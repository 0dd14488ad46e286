/*
 * @Description: 腾讯云COS存储提供者实现
 * @Author: 安知鱼
 * @Date: 2025-09-28 16:20:00
 * @LastEditTime: 2025-10-11 14:13:26
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tencentyun/cos-go-sdk-v5"
	"go.uber.org/zap"
)

// TencentCOSProvider 实现了 IStorageProvider 接口
type TencentCOSProvider struct {
	client    *cos.Client
	bucketURL string
	policy    Policy
}

// NewTencentCOSProvider 是 TencentCOSProvider 的构造函数。
// Endpoint 为存储桶访问域名，如 https://examplebucket-1250000000.cos.ap-guangzhou.myqcloud.com
func NewTencentCOSProvider(policy Policy) (*TencentCOSProvider, error) {
	if policy.Endpoint == "" {
		return nil, fmt.Errorf("腾讯云COS策略缺少访问域名配置")
	}
	bucketURL := ensureScheme(policy.Endpoint, true)
	u, err := url.Parse(bucketURL)
	if err != nil {
		return nil, fmt.Errorf("解析存储桶URL失败: %w", err)
	}

	client := cos.NewClient(&cos.BaseURL{BucketURL: u}, &http.Client{
		Timeout: 100 * time.Second,
		Transport: &cos.AuthorizationTransport{
			SecretID:  policy.AccessKey,
			SecretKey: policy.SecretKey,
		},
	})
	zap.S().Infof("[腾讯云COS] 客户端已创建: %s", bucketURL)
	return &TencentCOSProvider{client: client, bucketURL: bucketURL, policy: policy}, nil
}

func (p *TencentCOSProvider) Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error) {
	opt := &cos.ObjectPutOptions{
		ObjectPutHeaderOptions: &cos.ObjectPutHeaderOptions{
			ContentType:   contentType,
			ContentLength: size,
		},
	}
	if _, err := p.client.Object.Put(ctx, objectKey, file, opt); err != nil {
		zap.S().Errorf("[腾讯云COS] 上传失败: objectKey=%s, err=%v", objectKey, err)
		return nil, fmt.Errorf("上传文件到腾讯云COS失败: %w", err)
	}
	return &UploadResult{Source: objectKey, URL: p.PublicURL(objectKey), Size: size, MimeType: contentType}, nil
}

func (p *TencentCOSProvider) Delete(ctx context.Context, objectKey string) error {
	if _, err := p.client.Object.Delete(ctx, objectKey); err != nil {
		return fmt.Errorf("从腾讯云COS删除文件失败: %w", err)
	}
	return nil
}

func (p *TencentCOSProvider) IsExist(ctx context.Context, objectKey string) (bool, error) {
	return p.client.Object.IsExist(ctx, objectKey)
}

func (p *TencentCOSProvider) PublicURL(objectKey string) string {
	if p.policy.PublicURL != "" {
		return joinURL(p.policy.PublicURL, objectKey)
	}
	return joinURL(p.bucketURL, objectKey)
}
