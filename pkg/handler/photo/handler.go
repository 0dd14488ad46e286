package photo_handler

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/handler/binding"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/engagement"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/photo"
)

// PhotoHandler 封装了照片及其互动相关的控制器方法
type PhotoHandler struct {
	photoSvc      photo.PhotoService
	engagementSvc *engagement.Service
}

// NewPhotoHandler 是 PhotoHandler 的构造函数
func NewPhotoHandler(photoSvc photo.PhotoService, engagementSvc *engagement.Service) *PhotoHandler {
	return &PhotoHandler{photoSvc: photoSvc, engagementSvc: engagementSvc}
}

// Get 返回照片详情与互动计数，登录时附带点赞与收藏状态
func (h *PhotoHandler) Get(c *gin.Context) {
	detail, err := h.photoSvc.GetDetail(c.Request.Context(), c.Param("id"), middleware.RequesterID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, detail, "获取照片成功")
}

func (h *PhotoHandler) Update(c *gin.Context) {
	var req struct {
		Title       *string `json:"title"`
		Description *string `json:"description"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		binding.BadRequest(c, err)
		return
	}
	updated, err := h.photoSvc.Update(c.Request.Context(), c.Param("id"), middleware.RequesterID(c), photo.UpdatePhotoParams{
		Title:       req.Title,
		Description: req.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, updated, "更新照片成功")
}

func (h *PhotoHandler) Delete(c *gin.Context) {
	if err := h.photoSvc.Delete(c.Request.Context(), c.Param("id"), middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "删除照片成功")
}

// parseUpload 限制请求体大小并解析 multipart 表单，失败时已写入响应
func parseUpload(c *gin.Context) bool {
	if c.Request.ContentLength > constant.MaxUploadSize {
		response.Fail(c, http.StatusRequestEntityTooLarge, "上传内容超过 32MB 限制")
		return false
	}
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, constant.MaxUploadSize)
	if err := c.Request.ParseMultipartForm(constant.MaxUploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.Fail(c, http.StatusRequestEntityTooLarge, "上传内容超过 32MB 限制")
			return false
		}
		binding.BadRequest(c, err)
		return false
	}
	return true
}

// readFile 读取 multipart 中的单个文件
func readFile(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("打开上传文件失败: %w", err)
	}
	defer f.Close()
	return io.ReadAll(f)
}

// Upload 处理单张照片上传
// @Summary      上传照片
// @Tags         照片
// @Accept       multipart/form-data
// @Param        albumId      formData  string  true   "相册ID"
// @Param        title        formData  string  true   "标题"
// @Param        description  formData  string  false  "描述"
// @Param        file         formData  file    true   "图片文件"
// @Router       /photos/upload [post]
func (h *PhotoHandler) Upload(c *gin.Context) {
	if !parseUpload(c) {
		return
	}
	fh, err := c.FormFile("file")
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "缺少上传文件")
		return
	}
	data, err := readFile(fh)
	if err != nil {
		binding.BadRequest(c, err)
		return
	}

	params := photo.UploadParams{
		AlbumID:     c.PostForm("albumId"),
		Title:       c.PostForm("title"),
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Data:        data,
	}
	if desc, ok := c.GetPostForm("description"); ok && desc != "" {
		params.Description = &desc
	}

	created, err := h.photoSvc.Upload(c.Request.Context(), middleware.RequesterID(c), params)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, created, "上传照片成功")
}

// BatchUpload 依次上传多张照片，单张失败不影响其他照片
func (h *PhotoHandler) BatchUpload(c *gin.Context) {
	if !parseUpload(c) {
		return
	}
	headers := c.Request.MultipartForm.File["files"]
	files := make([]photo.UploadFile, 0, len(headers))
	for _, fh := range headers {
		// 读取失败的文件按空文件交给服务层计入失败数
		data, _ := readFile(fh)
		files = append(files, photo.UploadFile{
			Filename:    fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Data:        data,
		})
	}

	res, err := h.photoSvc.BatchUpload(c.Request.Context(), middleware.RequesterID(c), c.PostForm("albumId"), c.PostForm("defaultTitle"), files)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res, fmt.Sprintf("上传完成: 成功 %d 张, 失败 %d 张", res.Uploaded, res.Failed))
}

// --- 点赞 ---

// LikeStatus 返回点赞状态，getLikes=true 时返回最近的点赞列表
func (h *PhotoHandler) LikeStatus(c *gin.Context) {
	photoID := c.Query("photoId")
	if photoID == "" {
		response.Fail(c, http.StatusBadRequest, "缺少参数 photoId")
		return
	}
	userID := middleware.RequesterID(c)

	if getLikes, _ := strconv.ParseBool(c.Query("getLikes")); getLikes {
		likes, err := h.engagementSvc.ListLikes(c.Request.Context(), photoID, userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, gin.H{"likes": likes}, "获取点赞列表成功")
		return
	}

	liked, err := h.engagementSvc.IsLiked(c.Request.Context(), photoID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isLiked": liked}, "获取点赞状态成功")
}

func (h *PhotoHandler) Like(c *gin.Context) {
	photoID, err := binding.TargetID(c, "photoId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	userID := middleware.RequesterID(c)
	if err := h.engagementSvc.Like(c.Request.Context(), photoID, userID); err != nil {
		response.Error(c, err)
		return
	}
	count, err := h.engagementSvc.CountLikes(c.Request.Context(), photoID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isLiked": true, "likesCount": count}, "点赞成功")
}

func (h *PhotoHandler) Unlike(c *gin.Context) {
	photoID, err := binding.TargetID(c, "photoId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	userID := middleware.RequesterID(c)
	if err := h.engagementSvc.Unlike(c.Request.Context(), photoID, userID); err != nil {
		response.Error(c, err)
		return
	}
	count, err := h.engagementSvc.CountLikes(c.Request.Context(), photoID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isLiked": false, "likesCount": count}, "已取消点赞")
}

// --- 收藏 ---

func (h *PhotoHandler) BookmarkStatus(c *gin.Context) {
	userID := middleware.RequesterID(c)
	photoID := c.Query("photoId")
	if photoID == "" {
		photos, err := h.engagementSvc.ListBookmarkedPhotos(c.Request.Context(), userID)
		if err != nil {
			response.Error(c, err)
			return
		}
		response.Success(c, gin.H{"photos": photos}, "获取收藏照片成功")
		return
	}
	ok, err := h.engagementSvc.IsPhotoBookmarked(c.Request.Context(), photoID, userID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isBookmarked": ok}, "获取收藏状态成功")
}

func (h *PhotoHandler) Bookmark(c *gin.Context) {
	photoID, err := binding.TargetID(c, "photoId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.BookmarkPhoto(c.Request.Context(), photoID, middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isBookmarked": true}, "收藏成功")
}

func (h *PhotoHandler) Unbookmark(c *gin.Context) {
	photoID, err := binding.TargetID(c, "photoId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.UnbookmarkPhoto(c.Request.Context(), photoID, middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isBookmarked": false}, "已取消收藏")
}

// --- 评论 ---

func (h *PhotoHandler) ListComments(c *gin.Context) {
	photoID := c.Query("photoId")
	if photoID == "" {
		response.Fail(c, http.StatusBadRequest, "缺少参数 photoId")
		return
	}
	comments, err := h.engagementSvc.ListComments(c.Request.Context(), photoID, middleware.RequesterID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"comments": comments}, "获取评论成功")
}

func (h *PhotoHandler) AddComment(c *gin.Context) {
	var req struct {
		PhotoID string `json:"photoId" binding:"required"`
		Content string `json:"content" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		binding.BadRequest(c, err)
		return
	}
	comment, err := h.engagementSvc.AddComment(c.Request.Context(), req.PhotoID, middleware.RequesterID(c), req.Content)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, comment, "评论成功")
}

// DeleteComment 只有评论作者可以删除
func (h *PhotoHandler) DeleteComment(c *gin.Context) {
	id, err := binding.TargetID(c, "id")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.DeleteComment(c.Request.Context(), id, middleware.RequesterID(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil, "删除评论成功")
}
