/*
 * @Description: 对象存储提供者接口与工厂
 * @Author: 安知鱼
 * @Date: 2025-06-23 15:10:56
 * @LastEditTime: 2025-10-11 14:20:37
 * @LastEditors: 安知鱼
 */
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/config"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
)

// UploadResult 是上传成功后返回的对象信息
type UploadResult struct {
	Source   string // 对象键，删除时使用
	URL      string // 公开访问地址
	Size     int64
	MimeType string
}

// IStorageProvider 定义了照片对象存储需要的最小能力。
// 对象键由调用方生成，形如 userID/albumID/<毫秒时间戳>-<随机串>.<扩展名>。
type IStorageProvider interface {
	Upload(ctx context.Context, objectKey string, file io.Reader, size int64, contentType string) (*UploadResult, error)
	// Delete 删除对象，对象不存在时不返回错误
	Delete(ctx context.Context, objectKey string) error
	IsExist(ctx context.Context, objectKey string) (bool, error)
	// PublicURL 返回对象的公开访问地址
	PublicURL(objectKey string) string
}

// Policy 是从配置中读取的存储策略
type Policy struct {
	Type      constant.StorageProviderType
	Endpoint  string
	Region    string
	Bucket    string
	AccessKey string
	SecretKey string
	PublicURL string // 自定义访问域名 (CDN)，为空时使用各提供者的默认地址
	LocalPath string
	UseSSL    bool
}

// PolicyFromConfig 读取 [Storage] 段，未配置时使用本地存储
func PolicyFromConfig(cfg *config.Config) Policy {
	return Policy{
		Type:      constant.StorageProviderType(cfg.GetStringDefault(config.KeyStorageProvider, string(constant.ProviderTypeLocal))),
		Endpoint:  cfg.GetString(config.KeyStorageEndpoint),
		Region:    cfg.GetString(config.KeyStorageRegion),
		Bucket:    cfg.GetString(config.KeyStorageBucket),
		AccessKey: cfg.GetString(config.KeyStorageAccessKey),
		SecretKey: cfg.GetString(config.KeyStorageSecretKey),
		PublicURL: cfg.GetString(config.KeyStoragePublicURL),
		LocalPath: cfg.GetStringDefault(config.KeyStorageLocalPath, constant.DefaultLocalStoragePath),
		UseSSL:    cfg.GetBool(config.KeyStorageUseSSL),
	}
}

// NewProvider 根据策略类型创建对应的存储提供者
func NewProvider(ctx context.Context, policy Policy) (IStorageProvider, error) {
	if !policy.Type.IsValid() {
		return nil, fmt.Errorf("不支持的存储类型: %s", policy.Type)
	}
	if policy.Type != constant.ProviderTypeLocal {
		if policy.Bucket == "" {
			return nil, fmt.Errorf("%s 存储策略缺少存储桶名称", policy.Type)
		}
		if policy.AccessKey == "" || policy.SecretKey == "" {
			return nil, fmt.Errorf("%s 存储策略缺少 AccessKey 或 SecretKey", policy.Type)
		}
	}

	switch policy.Type {
	case constant.ProviderTypeS3:
		return NewS3Provider(ctx, policy)
	case constant.ProviderTypeMinio:
		return NewMinioProvider(policy)
	case constant.ProviderTypeAliOSS:
		return NewAliOSSProvider(policy)
	case constant.ProviderTypeTencentCOS:
		return NewTencentCOSProvider(policy)
	case constant.ProviderTypeQiniu:
		return NewQiniuProvider(policy)
	default:
		return NewLocalProvider(policy.LocalPath, policy.PublicURL)
	}
}

// joinURL 拼接访问前缀与对象键
func joinURL(prefix, objectKey string) string {
	return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(objectKey, "/")
}

// ensureScheme 为缺少协议的地址补上 http(s)://
func ensureScheme(endpoint string, useSSL bool) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	if useSSL {
		return "https://" + endpoint
	}
	return "http://" + endpoint
}
