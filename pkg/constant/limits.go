package constant

// 列表与搜索的默认分页参数
const (
	DefaultPublicAlbumLimit = 20
	DefaultLikeListLimit    = 20
	DefaultCommentLimit     = 50
	DefaultFollowListLimit  = 50
	DefaultSearchLimit      = 20
	SearchAllCategoryLimit  = 5
	MaxPageLimit            = 100

	DefaultPhotoTitle = "Untitled Photo"
	DefaultUserName   = "User"

	// MaxUploadMemory 是 multipart 表单在内存中解析的上限
	MaxUploadMemory = 32 << 20
	// MaxUploadSize 是单次上传请求体的上限
	MaxUploadSize = 32 << 20
)

// 搜索类型
const (
	SearchTypeAll    = "all"
	SearchTypeUsers  = "users"
	SearchTypeAlbums = "albums"
	SearchTypePhotos = "photos"
)
