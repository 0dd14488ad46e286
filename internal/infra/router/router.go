/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-06-15 11:30:55
 * @LastEditTime: 2025-10-12 15:02:37
 * @LastEditors: 安知鱼
 */
package router

import (
	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/internal/app/middleware"
	album_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/album"
	photo_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/photo"
	search_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/search"
	user_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/user"
	version_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/version"
	webhook_handler "github.com/anzhiyu-c/anheyu-photos/pkg/handler/webhook"
)

// Router 封装了应用的所有路由和其依赖的处理器。
type Router struct {
	albumHandler   *album_handler.AlbumHandler
	photoHandler   *photo_handler.PhotoHandler
	userHandler    *user_handler.UserHandler
	searchHandler  *search_handler.SearchHandler
	webhookHandler *webhook_handler.WebhookHandler
	versionHandler *version_handler.Handler
	mw             *middleware.Middleware
}

// NewRouter 是 Router 的构造函数，通过依赖注入接收所有处理器。
func NewRouter(
	albumHandler *album_handler.AlbumHandler,
	photoHandler *photo_handler.PhotoHandler,
	userHandler *user_handler.UserHandler,
	searchHandler *search_handler.SearchHandler,
	webhookHandler *webhook_handler.WebhookHandler,
	versionHandler *version_handler.Handler,
	mw *middleware.Middleware,
) *Router {
	return &Router{
		albumHandler:   albumHandler,
		photoHandler:   photoHandler,
		userHandler:    userHandler,
		searchHandler:  searchHandler,
		webhookHandler: webhookHandler,
		versionHandler: versionHandler,
		mw:             mw,
	}
}

// Setup 将所有路由注册到 Gin 引擎。
func (r *Router) Setup(engine *gin.Engine) {
	apiGroup := engine.Group("/api")

	apiGroup.GET("/health", r.versionHandler.Health)
	apiGroup.GET("/version", r.versionHandler.GetVersion)

	r.registerUserRoutes(apiGroup)
	r.registerAlbumRoutes(apiGroup)
	r.registerPhotoRoutes(apiGroup)
	r.registerSearchRoutes(apiGroup)
	r.registerWebhookRoutes(apiGroup)
}

func (r *Router) registerUserRoutes(api *gin.RouterGroup) {
	users := api.Group("/users")
	{
		// 以下两个路由在本地用户缺失时按会话创建
		users.POST("", r.mw.JWTClaims(), r.userHandler.Sync)
		users.GET("/current", r.mw.JWTAuthSync(), r.userHandler.Current)
	}

	usersAuth := api.Group("/users", r.mw.JWTAuth())
	{
		usersAuth.GET("", r.userHandler.List)
		usersAuth.GET("/follow", r.userHandler.FollowStatus)
		usersAuth.POST("/follow", r.userHandler.Follow)
		usersAuth.DELETE("/follow", r.userHandler.Unfollow)
		usersAuth.GET("/:id", r.userHandler.Profile)
		usersAuth.GET("/:id/followers", r.userHandler.Followers)
		usersAuth.GET("/:id/following", r.userHandler.Following)
	}
}

func (r *Router) registerAlbumRoutes(api *gin.RouterGroup) {
	albumsPublic := api.Group("/albums", r.mw.JWTAuthOptional())
	{
		albumsPublic.GET("", r.albumHandler.ListPublic)
		albumsPublic.GET("/:id", r.albumHandler.Get)
	}

	albums := api.Group("/albums", r.mw.JWTAuth())
	{
		albums.POST("", r.albumHandler.Create)
		albums.GET("/my", r.albumHandler.ListMine)
		albums.GET("/bookmark", r.albumHandler.BookmarkStatus)
		albums.GET("/bookmarks", r.albumHandler.ListBookmarks)
		albums.POST("/bookmark", r.albumHandler.Bookmark)
		albums.DELETE("/bookmark", r.albumHandler.Unbookmark)
		albums.PATCH("/:id", r.albumHandler.Update)
		albums.DELETE("/:id", r.albumHandler.Delete)
	}
}

func (r *Router) registerPhotoRoutes(api *gin.RouterGroup) {
	api.GET("/photos/:id", r.mw.JWTAuthOptional(), r.photoHandler.Get)

	photos := api.Group("/photos", r.mw.JWTAuth())
	{
		photos.PATCH("/:id", r.photoHandler.Update)
		photos.DELETE("/:id", r.photoHandler.Delete)

		photos.POST("/upload", r.photoHandler.Upload)
		photos.POST("/upload/batch-upload", r.photoHandler.BatchUpload)

		photos.GET("/like", r.photoHandler.LikeStatus)
		photos.POST("/like", r.photoHandler.Like)
		photos.DELETE("/like", r.photoHandler.Unlike)

		photos.GET("/bookmark", r.photoHandler.BookmarkStatus)
		photos.POST("/bookmark", r.photoHandler.Bookmark)
		photos.DELETE("/bookmark", r.photoHandler.Unbookmark)

		photos.GET("/comments", r.photoHandler.ListComments)
		photos.POST("/comments", r.photoHandler.AddComment)
		photos.DELETE("/comments", r.photoHandler.DeleteComment)
	}
}

func (r *Router) registerSearchRoutes(api *gin.RouterGroup) {
	api.GET("/search", r.mw.JWTAuthOptional(), r.searchHandler.Search)
}

func (r *Router) registerWebhookRoutes(api *gin.RouterGroup) {
	// Webhook 通过签名而不是会话认证
	api.POST("/webhooks/clerk", r.webhookHandler.Clerk)
}
