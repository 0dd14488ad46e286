/*
 * @Description: 照片上传、查询、更新与删除
 * @Author: 安知鱼
 * @Date: 2025-10-05 14:36:08
 * @LastEditTime: 2025-10-11 17:02:55
 * @LastEditors: 安知鱼
 */
package photo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/internal/infra/storage"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/cleanup"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/utility"
)

const maxTitleLength = 255

// UploadParams 是单张照片上传的参数
type UploadParams struct {
	AlbumID     string
	Title       string
	Description *string
	Filename    string
	ContentType string
	Data        []byte
}

// UploadFile 是批量上传中的一个文件
type UploadFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UpdatePhotoParams 是照片的部分更新参数，Description 指向空字符串时清空描述
type UpdatePhotoParams struct {
	Title       *string
	Description *string
}

// BatchUploadResult 汇总批量上传的结果，Uploaded+Failed 等于文件数
type BatchUploadResult struct {
	Success  bool           `json:"success"`
	Uploaded int            `json:"uploaded"`
	Failed   int            `json:"failed"`
	Errors   []string       `json:"errors"`
	Photos   []*model.Photo `json:"photos"`
}

// PhotoDetail 是照片详情，IsLiked/IsBookmarked 仅在请求者登录时有意义
type PhotoDetail struct {
	*model.Photo
	Stats        model.PhotoStats `json:"stats"`
	IsLiked      bool             `json:"isLiked"`
	IsBookmarked bool             `json:"isBookmarked"`
}

// PhotoService 定义了照片相关的业务逻辑接口
type PhotoService interface {
	GetByID(ctx context.Context, id, requesterID string) (*model.Photo, error)
	GetDetail(ctx context.Context, id, requesterID string) (*PhotoDetail, error)
	ListByAlbum(ctx context.Context, albumID, requesterID string) ([]*model.Photo, error)
	Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Photo, error)
	Upload(ctx context.Context, ownerID string, params UploadParams) (*model.Photo, error)
	BatchUpload(ctx context.Context, ownerID, albumID, defaultTitle string, files []UploadFile) (*BatchUploadResult, error)
	Update(ctx context.Context, id, ownerID string, params UpdatePhotoParams) (*model.Photo, error)
	Delete(ctx context.Context, id, ownerID string) error
}

type photoService struct {
	albumRepo    repository.AlbumRepository
	photoRepo    repository.PhotoRepository
	likeRepo     repository.LikeRepository
	bookmarkRepo repository.BookmarkRepository
	provider     storage.IStorageProvider
	imageSvc     *utility.ImageService
	cleanupSvc   cleanup.Service
	now          func() time.Time
}

// NewPhotoService 是 photoService 的构造函数
func NewPhotoService(
	albumRepo repository.AlbumRepository,
	photoRepo repository.PhotoRepository,
	likeRepo repository.LikeRepository,
	bookmarkRepo repository.BookmarkRepository,
	provider storage.IStorageProvider,
	imageSvc *utility.ImageService,
	cleanupSvc cleanup.Service,
) PhotoService {
	return &photoService{
		albumRepo:    albumRepo,
		photoRepo:    photoRepo,
		likeRepo:     likeRepo,
		bookmarkRepo: bookmarkRepo,
		provider:     provider,
		imageSvc:     imageSvc,
		cleanupSvc:   cleanupSvc,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

// GetByID 返回对请求者可见的照片，可见性由所属相册决定
func (s *photoService) GetByID(ctx context.Context, id, requesterID string) (*model.Photo, error) {
	if !idgen.IsValidID(id) {
		return nil, fmt.Errorf("%w: 照片ID格式错误", constant.ErrInvalidInput)
	}
	photo, err := s.photoRepo.FindByID(ctx, id)
	if err != nil {
		return nil, constant.WrapUpstream("查询照片失败", err)
	}
	if photo == nil || !photo.VisibleTo(requesterID) {
		return nil, constant.ErrNotFound
	}
	return photo, nil
}

func (s *photoService) GetDetail(ctx context.Context, id, requesterID string) (*PhotoDetail, error) {
	photo, err := s.GetByID(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	stats, err := s.photoRepo.Stats(ctx, id)
	if err != nil {
		return nil, constant.WrapUpstream("统计照片互动失败", err)
	}
	detail := &PhotoDetail{Photo: photo, Stats: *stats}
	if requesterID == "" {
		return detail, nil
	}
	if detail.IsLiked, err = s.likeRepo.Exists(ctx, requesterID, id); err != nil {
		return nil, constant.WrapUpstream("查询点赞状态失败", err)
	}
	if detail.IsBookmarked, err = s.bookmarkRepo.IsPhotoBookmarked(ctx, requesterID, id); err != nil {
		return nil, constant.WrapUpstream("查询收藏状态失败", err)
	}
	return detail, nil
}

func (s *photoService) ListByAlbum(ctx context.Context, albumID, requesterID string) ([]*model.Photo, error) {
	if !idgen.IsValidID(albumID) {
		return nil, fmt.Errorf("%w: 相册ID格式错误", constant.ErrInvalidInput)
	}
	album, err := s.albumRepo.FindByID(ctx, albumID)
	if err != nil {
		return nil, constant.WrapUpstream("查询相册失败", err)
	}
	if album == nil || !album.VisibleTo(requesterID) {
		return nil, constant.ErrNotFound
	}
	photos, err := s.photoRepo.ListByAlbum(ctx, albumID)
	if err != nil {
		return nil, constant.WrapUpstream("查询相册照片失败", err)
	}
	return photos, nil
}

func (s *photoService) Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Photo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: 搜索关键字不能为空", constant.ErrInvalidInput)
	}
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(constant.DefaultSearchLimit, constant.MaxPageLimit)
	photos, err := s.photoRepo.Search(ctx, query, requesterID, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("搜索照片失败", err)
	}
	return photos, nil
}

// ownedAlbum 返回 ownerID 拥有的相册，其他情况一律 ErrNotFound
func (s *photoService) ownedAlbum(ctx context.Context, albumID, ownerID string) (*model.Album, error) {
	if !idgen.IsValidID(albumID) {
		return nil, fmt.Errorf("%w: 相册ID格式错误", constant.ErrInvalidInput)
	}
	album, err := s.albumRepo.FindByID(ctx, albumID)
	if err != nil {
		return nil, constant.WrapUpstream("查询相册失败", err)
	}
	if album == nil || album.UserID != ownerID {
		return nil, constant.ErrNotFound
	}
	return album, nil
}

// Upload 先写入对象存储，再提取元数据并写入记录。记录写入失败时回滚已上传的对象。
func (s *photoService) Upload(ctx context.Context, ownerID string, params UploadParams) (*model.Photo, error) {
	title, err := validateTitle(params.Title)
	if err != nil {
		return nil, err
	}
	if len(params.Data) == 0 {
		return nil, fmt.Errorf("%w: 上传文件不能为空", constant.ErrInvalidInput)
	}
	album, err := s.ownedAlbum(ctx, params.AlbumID, ownerID)
	if err != nil {
		return nil, err
	}
	return s.store(ctx, album, title, params.Description, UploadFile{
		Filename:    params.Filename,
		ContentType: params.ContentType,
		Data:        params.Data,
	})
}

func (s *photoService) store(ctx context.Context, album *model.Album, title string, description *string, file UploadFile) (*model.Photo, error) {
	now := s.now()
	key, err := idgen.ObjectKey(album.UserID, album.ID, file.Filename, now)
	if err != nil {
		return nil, fmt.Errorf("生成存储路径失败: %w", err)
	}

	contentType := file.ContentType
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = s.sniffContentType(file.Data)
	}
	uploaded, err := s.provider.Upload(ctx, key, bytes.NewReader(file.Data), int64(len(file.Data)), contentType)
	if err != nil {
		return nil, constant.WrapUpstream("上传照片到存储失败", err)
	}

	info := s.imageSvc.Analyze(file.Data)
	thumbnailURL := uploaded.URL
	if len(info.Thumbnail) > 0 {
		thumbKey := cleanup.ThumbnailKey(key)
		thumb, err := s.provider.Upload(ctx, thumbKey, bytes.NewReader(info.Thumbnail), int64(len(info.Thumbnail)), "image/jpeg")
		if err != nil {
			zap.S().Warnf("[照片服务] 上传缩略图失败，使用原图地址: key=%s, err=%v", thumbKey, err)
		} else {
			thumbnailURL = thumb.URL
		}
	}

	if description != nil && strings.TrimSpace(*description) == "" {
		description = nil
	}
	photo := &model.Photo{
		ID:            idgen.NewID(),
		UserID:        album.UserID,
		AlbumID:       album.ID,
		Title:         title,
		Description:   description,
		URL:           uploaded.URL,
		StoragePath:   key,
		ThumbnailURL:  thumbnailURL,
		AspectRatio:   info.AspectRatio,
		DominantColor: info.DominantColor,
		TakenAt:       info.TakenAt,
		CreatedAt:     now,
		UpdatedAt:     now,
		AlbumPrivate:  album.IsPrivate,
	}
	if err := s.photoRepo.Create(ctx, photo); err != nil {
		zap.S().Errorf("[照片服务] 写入照片记录失败，回滚已上传对象: key=%s, err=%v", key, err)
		s.cleanupSvc.RemovePhotoObjects(ctx, key)
		return nil, constant.WrapUpstream("保存照片记录失败", err)
	}
	return photo, nil
}

// sniffContentType 优先按图片头部识别的格式给出 MIME 类型
func (s *photoService) sniffContentType(data []byte) string {
	if format, _, _, err := s.imageSvc.Inspect(data); err == nil {
		if ct := utility.ContentTypeForFormat(format); ct != "application/octet-stream" {
			return ct
		}
	}
	return http.DetectContentType(data)
}

// BatchUpload 逐个上传文件，单个文件失败不影响其他文件
func (s *photoService) BatchUpload(ctx context.Context, ownerID, albumID, defaultTitle string, files []UploadFile) (*BatchUploadResult, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("%w: 没有需要上传的文件", constant.ErrInvalidInput)
	}
	album, err := s.ownedAlbum(ctx, albumID, ownerID)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(defaultTitle)
	if title == "" {
		title = constant.DefaultPhotoTitle
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return nil, fmt.Errorf("%w: 照片标题不能超过 %d 个字符", constant.ErrInvalidInput, maxTitleLength)
	}

	result := &BatchUploadResult{Errors: []string{}, Photos: make([]*model.Photo, 0, len(files))}
	for i, f := range files {
		if len(f.Data) == 0 {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: 文件为空", fileLabel(f, i)))
			continue
		}
		photo, err := s.store(ctx, album, title, nil, f)
		if err != nil {
			zap.S().Warnf("[照片服务] 批量上传第 %d 个文件失败: %v", i+1, err)
			result.Failed++
			result.Errors = append(result.Errors, fmt.Sprintf("%s: 上传失败", fileLabel(f, i)))
			continue
		}
		result.Uploaded++
		result.Photos = append(result.Photos, photo)
	}
	result.Success = result.Failed == 0
	return result, nil
}

func fileLabel(f UploadFile, i int) string {
	if f.Filename != "" {
		return f.Filename
	}
	return fmt.Sprintf("第 %d 个文件", i+1)
}

// Update 只允许所有者修改标题与描述
func (s *photoService) Update(ctx context.Context, id, ownerID string, params UpdatePhotoParams) (*model.Photo, error) {
	if !idgen.IsValidID(id) {
		return nil, fmt.Errorf("%w: 照片ID格式错误", constant.ErrInvalidInput)
	}
	fields := repository.UpdatePhotoFields{UpdatedAt: s.now()}
	if params.Title != nil {
		title, err := validateTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		fields.Title = &title
	}
	if params.Description != nil {
		if strings.TrimSpace(*params.Description) == "" {
			fields.ClearDescription = true
		} else {
			fields.Description = params.Description
		}
	}

	photo, err := s.photoRepo.Update(ctx, id, ownerID, fields)
	if err != nil {
		return nil, constant.WrapUpstream("更新照片失败", err)
	}
	if photo == nil {
		return nil, constant.ErrNotFound
	}
	return photo, nil
}

// Delete 先删除记录，再尽力删除存储对象
func (s *photoService) Delete(ctx context.Context, id, ownerID string) error {
	if !idgen.IsValidID(id) {
		return fmt.Errorf("%w: 照片ID格式错误", constant.ErrInvalidInput)
	}
	photo, err := s.photoRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return constant.WrapUpstream("删除照片失败", err)
	}
	if photo == nil {
		return constant.ErrNotFound
	}
	s.cleanupSvc.RemovePhotoObjects(ctx, photo.StoragePath)
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: 照片标题不能为空", constant.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", fmt.Errorf("%w: 照片标题不能超过 %d 个字符", constant.ErrInvalidInput, maxTitleLength)
	}
	return title, nil
}
