/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-23 15:10:56
 * @LastEditTime: 2025-10-04 17:31:09
 * @LastEditors: 安知鱼
 */
package constant

// StorageProviderType 定义了对象存储提供者的类型
type StorageProviderType string

const (
	ProviderTypeLocal      StorageProviderType = "local"
	ProviderTypeS3         StorageProviderType = "s3"
	ProviderTypeMinio      StorageProviderType = "minio"
	ProviderTypeAliOSS     StorageProviderType = "aliyun_oss"
	ProviderTypeTencentCOS StorageProviderType = "tencent_cos"
	ProviderTypeQiniu      StorageProviderType = "qiniu"
)

const (
	// DefaultLocalStoragePath 是本地存储的默认根目录，相对于应用根目录
	DefaultLocalStoragePath = "data/storage/photos"
	// LocalStorageRoute 是本地存储文件的公开访问前缀
	LocalStorageRoute = "/static/photos"
	// ThumbnailSuffix 追加在原始对象键之后，用于存放缩略图
	ThumbnailSuffix = "_thumb.jpg"
	// ThumbnailMaxSize 是缩略图最长边的像素
	ThumbnailMaxSize = 480
)

// IsValid 检查给定的类型是否是受支持的存储提供者
func (t StorageProviderType) IsValid() bool {
	switch t {
	case ProviderTypeLocal, ProviderTypeS3, ProviderTypeMinio, ProviderTypeAliOSS, ProviderTypeTencentCOS, ProviderTypeQiniu:
		return true
	default:
		return false
	}
}
