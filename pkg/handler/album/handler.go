package album_handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-photos/pkg/handler/binding"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/album"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/engagement"
)

// AlbumHandler 封装了相册相关的控制器方法
type AlbumHandler struct {
	albumSvc      album.AlbumService
	engagementSvc *engagement.Service
}

// NewAlbumHandler 是 AlbumHandler 的构造函数
func NewAlbumHandler(albumSvc album.AlbumService, engagementSvc *engagement.Service) *AlbumHandler {
	return &AlbumHandler{
		albumSvc:      albumSvc,
		engagementSvc: engagementSvc,
	}
}

// ListPublic 处理获取公开相册列表的请求
// @Summary      公开相册列表
// @Tags         相册
// @Produce      json
// @Param        limit   query  int  false  "每页数量，默认 20"
// @Param        offset  query  int  false  "偏移量"
// @Router       /albums [get]
func (h *AlbumHandler) ListPublic(c *gin.Context) {
	limit, offset := binding.OffsetParams(c)

	albums, err := h.albumSvc.ListPublic(c.Request.Context(), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, albums, "获取相册列表成功")
}

// ListMine 返回当前用户的全部相册
func (h *AlbumHandler) ListMine(c *gin.Context) {
	albums, err := h.albumSvc.ListByOwner(c.Request.Context(), middleware.RequesterID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, albums, "获取相册列表成功")
}

// Create 处理新建相册的请求
func (h *AlbumHandler) Create(c *gin.Context) {
	var req struct {
		Title       string  `json:"title" binding:"required"`
		Description *string `json:"description"`
		IsPrivate   *bool   `json:"is_private"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	created, err := h.albumSvc.Create(c.Request.Context(), middleware.RequesterID(c), album.CreateAlbumParams{
		Title:       req.Title,
		Description: req.Description,
		IsPrivate:   req.IsPrivate,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, created, "创建相册成功")
}

// Get 返回相册及其照片，私有相册对其他人返回 404
func (h *AlbumHandler) Get(c *gin.Context) {
	res, err := h.albumSvc.GetWithPhotos(c.Request.Context(), c.Param("id"), middleware.RequesterID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res, "获取相册成功")
}

// Update 处理相册的部分更新
func (h *AlbumHandler) Update(c *gin.Context) {
	var req struct {
		Title        *string `json:"title"`
		Description  *string `json:"description"`
		IsPrivate    *bool   `json:"is_private"`
		CoverPhotoID *string `json:"cover_photo_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
		return
	}

	updated, err := h.albumSvc.Update(c.Request.Context(), c.Param("id"), middleware.RequesterID(c), album.UpdateAlbumParams{
		Title:        req.Title,
		Description:  req.Description,
		IsPrivate:    req.IsPrivate,
		CoverPhotoID: req.CoverPhotoID,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated, "更新相册成功")
}

func (h *AlbumHandler) Delete(c *gin.Context) {
	if err := h.albumSvc.Delete(c.Request.Context(), c.Param("id"), middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "删除相册成功")
}

// ListBookmarks 返回当前用户收藏的相册，最新收藏在前
func (h *AlbumHandler) ListBookmarks(c *gin.Context) {
	albums, err := h.engagementSvc.ListBookmarkedAlbums(c.Request.Context(), middleware.RequesterID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"albums": albums}, "获取收藏相册成功")
}

// BookmarkStatus 带 albumId 时返回收藏状态，否则返回收藏的相册列表
func (h *AlbumHandler) BookmarkStatus(c *gin.Context) {
	userID := middleware.RequesterID(c)
	albumID := c.Query("albumId")
	if albumID == "" {
		h.ListBookmarks(c)
		return
	}

	ok, err := h.engagementSvc.IsAlbumBookmarked(c.Request.Context(), albumID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isBookmarked": ok}, "获取收藏状态成功")
}

func (h *AlbumHandler) Bookmark(c *gin.Context) {
	albumID, err := binding.TargetID(c, "albumId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.BookmarkAlbum(c.Request.Context(), albumID, middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isBookmarked": true}, "收藏成功")
}

func (h *AlbumHandler) Unbookmark(c *gin.Context) {
	albumID, err := binding.TargetID(c, "albumId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.UnbookmarkAlbum(c.Request.Context(), albumID, middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isBookmarked": false}, "已取消收藏")
}
