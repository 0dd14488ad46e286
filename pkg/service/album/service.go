/*
 * @Description: 相册业务逻辑
 * @Author: 安知鱼
 * @Date: 2025-10-05 10:12:44
 * @LastEditTime: 2025-10-11 16:40:21
 * @LastEditors: 安知鱼
 */
package album

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/cleanup"
)

const maxTitleLength = 255

// CreateAlbumParams 定义了创建相册时需要的参数
type CreateAlbumParams struct {
	Title       string
	Description *string
	IsPrivate   *bool
}

// UpdateAlbumParams 定义了更新相册时需要的参数，nil 字段保持不变。
// Description 指向空字符串时清空描述，CoverPhotoID 指向空字符串时清空封面。
type UpdateAlbumParams struct {
	Title        *string
	Description  *string
	IsPrivate    *bool
	CoverPhotoID *string
}

// AlbumWithPhotos 是相册详情，附带按上传时间倒序排列的照片
type AlbumWithPhotos struct {
	*model.Album
	Photos []*model.Photo `json:"photos"`
}

// AlbumService 定义了相册相关的业务逻辑接口
type AlbumService interface {
	GetByID(ctx context.Context, id, requesterID string) (*model.Album, error)
	GetWithPhotos(ctx context.Context, id, requesterID string) (*AlbumWithPhotos, error)
	ListByOwner(ctx context.Context, ownerID string) ([]*model.Album, error)
	ListPublic(ctx context.Context, limit, offset int) ([]*model.Album, error)
	Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Album, error)
	Create(ctx context.Context, ownerID string, params CreateAlbumParams) (*model.Album, error)
	Update(ctx context.Context, id, ownerID string, params UpdateAlbumParams) (*model.Album, error)
	Delete(ctx context.Context, id, ownerID string) error
}

// albumService 是 AlbumService 接口的实现
type albumService struct {
	albumRepo  repository.AlbumRepository
	photoRepo  repository.PhotoRepository
	cleanupSvc cleanup.Service
	now        func() time.Time
}

// NewAlbumService 是 albumService 的构造函数
func NewAlbumService(albumRepo repository.AlbumRepository, photoRepo repository.PhotoRepository, cleanupSvc cleanup.Service) AlbumService {
	return &albumService{
		albumRepo:  albumRepo,
		photoRepo:  photoRepo,
		cleanupSvc: cleanupSvc,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// GetByID 返回对请求者可见的相册，私有相册对非所有者表现为不存在
func (s *albumService) GetByID(ctx context.Context, id, requesterID string) (*model.Album, error) {
	if !idgen.IsValidID(id) {
		return nil, fmt.Errorf("%w: 相册ID格式错误", constant.ErrInvalidInput)
	}
	album, err := s.albumRepo.FindByID(ctx, id)
	if err != nil {
		return nil, constant.WrapUpstream("查询相册失败", err)
	}
	if album == nil || !album.VisibleTo(requesterID) {
		return nil, constant.ErrNotFound
	}
	return album, nil
}

func (s *albumService) GetWithPhotos(ctx context.Context, id, requesterID string) (*AlbumWithPhotos, error) {
	album, err := s.GetByID(ctx, id, requesterID)
	if err != nil {
		return nil, err
	}
	photos, err := s.photoRepo.ListByAlbum(ctx, album.ID)
	if err != nil {
		return nil, constant.WrapUpstream("查询相册照片失败", err)
	}
	return &AlbumWithPhotos{Album: album, Photos: photos}, nil
}

func (s *albumService) ListByOwner(ctx context.Context, ownerID string) ([]*model.Album, error) {
	albums, err := s.albumRepo.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, constant.WrapUpstream("查询用户相册失败", err)
	}
	return albums, nil
}

func (s *albumService) ListPublic(ctx context.Context, limit, offset int) ([]*model.Album, error) {
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(constant.DefaultPublicAlbumLimit, constant.MaxPageLimit)
	albums, err := s.albumRepo.ListPublic(ctx, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("查询公开相册失败", err)
	}
	return albums, nil
}

func (s *albumService) Search(ctx context.Context, query, requesterID string, limit, offset int) ([]*model.Album, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: 搜索关键字不能为空", constant.ErrInvalidInput)
	}
	limit, offset = model.OffsetInput{Limit: limit, Offset: offset}.Normalize(constant.DefaultSearchLimit, constant.MaxPageLimit)
	albums, err := s.albumRepo.Search(ctx, query, requesterID, limit, offset)
	if err != nil {
		return nil, constant.WrapUpstream("搜索相册失败", err)
	}
	return albums, nil
}

// Create 实现了创建相册的业务逻辑
func (s *albumService) Create(ctx context.Context, ownerID string, params CreateAlbumParams) (*model.Album, error) {
	title, err := validateTitle(params.Title)
	if err != nil {
		return nil, err
	}

	now := s.now()
	album := &model.Album{
		ID:          idgen.NewID(),
		UserID:      ownerID,
		Title:       title,
		Description: params.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if params.IsPrivate != nil {
		album.IsPrivate = *params.IsPrivate
	}

	// 在存入数据库前，应用默认值
	s.applyDefaultAlbumParams(album)

	if err := s.albumRepo.Create(ctx, album); err != nil {
		return nil, constant.WrapUpstream("创建相册失败", err)
	}
	zap.S().Infof("[相册服务] 用户 %s 创建了相册 %s", ownerID, album.ID)
	return album, nil
}

// Update 实现了更新相册的业务逻辑，非所有者与不存在一样返回 ErrNotFound
func (s *albumService) Update(ctx context.Context, id, ownerID string, params UpdateAlbumParams) (*model.Album, error) {
	if !idgen.IsValidID(id) {
		return nil, fmt.Errorf("%w: 相册ID格式错误", constant.ErrInvalidInput)
	}

	fields := repository.UpdateAlbumFields{
		IsPrivate: params.IsPrivate,
		UpdatedAt: s.now(),
	}
	if params.Title != nil {
		title, err := validateTitle(*params.Title)
		if err != nil {
			return nil, err
		}
		fields.Title = &title
	}
	if params.Description != nil {
		if *params.Description == "" {
			fields.ClearDescription = true
		} else {
			fields.Description = params.Description
		}
	}
	if params.CoverPhotoID != nil {
		if *params.CoverPhotoID == "" {
			fields.ClearCover = true
		} else {
			// 先确认归属，再校验封面，避免向非所有者暴露相册内容
			if err := s.checkOwner(ctx, id, ownerID); err != nil {
				return nil, err
			}
			if err := s.checkCover(ctx, id, *params.CoverPhotoID); err != nil {
				return nil, err
			}
			fields.CoverPhotoID = params.CoverPhotoID
		}
	}

	album, err := s.albumRepo.Update(ctx, id, ownerID, fields)
	if err != nil {
		return nil, constant.WrapUpstream("更新相册失败", err)
	}
	if album == nil {
		return nil, constant.ErrNotFound
	}
	s.applyDefaultAlbumParams(album)
	return album, nil
}

func (s *albumService) checkOwner(ctx context.Context, albumID, ownerID string) error {
	album, err := s.albumRepo.FindByID(ctx, albumID)
	if err != nil {
		return constant.WrapUpstream("查询相册失败", err)
	}
	if album == nil || album.UserID != ownerID {
		return constant.ErrNotFound
	}
	return nil
}

// checkCover 要求封面照片属于该相册
func (s *albumService) checkCover(ctx context.Context, albumID, photoID string) error {
	if !idgen.IsValidID(photoID) {
		return fmt.Errorf("%w: 封面照片ID格式错误", constant.ErrInvalidInput)
	}
	photo, err := s.photoRepo.FindByID(ctx, photoID)
	if err != nil {
		return constant.WrapUpstream("查询封面照片失败", err)
	}
	if photo == nil || photo.AlbumID != albumID {
		return fmt.Errorf("%w: 封面照片不属于该相册", constant.ErrInvalidInput)
	}
	return nil
}

// Delete 删除相册，照片记录随外键级联删除，存储对象尽力清理
func (s *albumService) Delete(ctx context.Context, id, ownerID string) error {
	if !idgen.IsValidID(id) {
		return fmt.Errorf("%w: 相册ID格式错误", constant.ErrInvalidInput)
	}
	album, err := s.albumRepo.FindByID(ctx, id)
	if err != nil {
		return constant.WrapUpstream("查询相册失败", err)
	}
	if album == nil || album.UserID != ownerID {
		return constant.ErrNotFound
	}

	photos, err := s.photoRepo.ListByAlbum(ctx, id)
	if err != nil {
		return constant.WrapUpstream("查询相册照片失败", err)
	}

	n, err := s.albumRepo.Delete(ctx, id, ownerID)
	if err != nil {
		return constant.WrapUpstream("删除相册失败", err)
	}
	if n == 0 {
		return constant.ErrNotFound
	}

	paths := make([]string, 0, len(photos))
	for _, p := range photos {
		paths = append(paths, p.StoragePath)
	}
	s.cleanupSvc.RemovePhotoObjects(ctx, paths...)
	zap.S().Infof("[相册服务] 相册 %s 已删除，清理 %d 张照片的存储对象", id, len(paths))
	return nil
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: 相册标题不能为空", constant.ErrInvalidInput)
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return "", fmt.Errorf("%w: 相册标题不能超过 %d 个字符", constant.ErrInvalidInput, maxTitleLength)
	}
	return title, nil
}

// applyDefaultAlbumParams 为相册模型填充默认值：空白描述视为没有描述
func (s *albumService) applyDefaultAlbumParams(album *model.Album) {
	if album == nil {
		return
	}
	if album.Description != nil && strings.TrimSpace(*album.Description) == "" {
		album.Description = nil
	}
}
