package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/qiniu/go-sdk/v7/auth"
	qiniustorage "github.com/qiniu/go-sdk/v7/storage"
	"go.uber.org/zap"
)

// QiniuProvider 对接七牛云 Kodo，公开访问必须配置绑定的域名
type QiniuProvider struct {
	mac     *auth.Credentials
	cfg     *qiniustorage.Config
	manager *qiniustorage.BucketManager
	policy  Policy
}

// NewQiniuProvider 是 QiniuProvider 的构造函数
func NewQiniuProvider(policy Policy) (*QiniuProvider, error) {
	if policy.PublicURL == "" {
		return nil, fmt.Errorf("七牛云存储策略缺少访问域名 (PublicURL) 配置")
	}
	mac := auth.New(policy.AccessKey, policy.SecretKey)
	cfg := &qiniustorage.Config{UseHTTPS: policy.UseSSL}
	if policy.Region != "" {
		if region, ok := qiniustorage.GetRegionByID(qiniustorage.RegionID(policy.Region)); ok {
			cfg.Region = &region
		}
	}
	zap.S().Infof("[七牛云] 客户端已创建 - bucket: %s", policy.Bucket)
	return &QiniuProvider{
		mac:     mac,
		cfg:     cfg,
		manager: qiniustorage.NewBucketManager(mac, cfg),
		policy:  policy,
	}, nil
}

func (p *QiniuProvider) Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error) {
	putPolicy := qiniustorage.PutPolicy{Scope: p.policy.Bucket + ":" + objectKey}
	upToken := putPolicy.UploadToken(p.mac)

	uploader := qiniustorage.NewFormUploader(p.cfg)
	ret := qiniustorage.PutRet{}
	if err := uploader.Put(ctx, &ret, upToken, objectKey, file, size, &qiniustorage.PutExtra{MimeType: contentType}); err != nil {
		zap.S().Errorf("[七牛云] 上传失败: key=%s, err=%v", objectKey, err)
		return nil, fmt.Errorf("上传文件到七牛云失败: %w", err)
	}
	return &UploadResult{Source: ret.Key, URL: p.PublicURL(ret.Key), Size: size, MimeType: contentType}, nil
}

func (p *QiniuProvider) Delete(ctx context.Context, objectKey string) error {
	err := p.manager.Delete(p.policy.Bucket, objectKey)
	if err != nil && !isQiniuNotFound(err) {
		return fmt.Errorf("从七牛云删除文件失败: %w", err)
	}
	return nil
}

func (p *QiniuProvider) IsExist(ctx context.Context, objectKey string) (bool, error) {
	_, err := p.manager.Stat(p.policy.Bucket, objectKey)
	if err == nil {
		return true, nil
	}
	if isQiniuNotFound(err) {
		return false, nil
	}
	return false, err
}

func (p *QiniuProvider) PublicURL(objectKey string) string {
	return qiniustorage.MakePublicURLv2(strings.TrimSuffix(ensureScheme(p.policy.PublicURL, p.policy.UseSSL), "/"), objectKey)
}

// 七牛对不存在的资源返回 612
func isQiniuNotFound(err error) bool {
	return strings.Contains(err.Error(), "no such file or directory")
}
