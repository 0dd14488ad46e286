package engagement

import (
	"context"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
)

// --- 照片收藏 ---

func (s *Service) IsPhotoBookmarked(ctx context.Context, photoID, userID string) (bool, error) {
	if err := validID(photoID, "照片"); err != nil {
		return false, err
	}
	ok, err := s.bookmarkRepo.IsPhotoBookmarked(ctx, userID, photoID)
	if err != nil {
		return false, constant.WrapUpstream("查询收藏状态失败", err)
	}
	return ok, nil
}

func (s *Service) BookmarkPhoto(ctx context.Context, photoID, userID string) error {
	if _, err := s.photoForWrite(ctx, photoID, userID); err != nil {
		return err
	}
	if _, err := s.bookmarkRepo.AddPhoto(ctx, userID, photoID); err != nil {
		return constant.WrapUpstream("收藏照片失败", err)
	}
	return nil
}

func (s *Service) UnbookmarkPhoto(ctx context.Context, photoID, userID string) error {
	if err := validID(photoID, "照片"); err != nil {
		return err
	}
	if err := s.bookmarkRepo.RemovePhoto(ctx, userID, photoID); err != nil {
		return constant.WrapUpstream("取消收藏照片失败", err)
	}
	return nil
}

// ListBookmarkedPhotos 按收藏时间倒序返回仍然可见的照片
func (s *Service) ListBookmarkedPhotos(ctx context.Context, userID string) ([]*model.Photo, error) {
	photos, err := s.bookmarkRepo.ListPhotos(ctx, userID)
	if err != nil {
		return nil, constant.WrapUpstream("查询收藏照片失败", err)
	}
	return photos, nil
}

// --- 相册收藏 ---

func (s *Service) IsAlbumBookmarked(ctx context.Context, albumID, userID string) (bool, error) {
	if err := validID(albumID, "相册"); err != nil {
		return false, err
	}
	ok, err := s.bookmarkRepo.IsAlbumBookmarked(ctx, userID, albumID)
	if err != nil {
		return false, constant.WrapUpstream("查询收藏状态失败", err)
	}
	return ok, nil
}

func (s *Service) BookmarkAlbum(ctx context.Context, albumID, userID string) error {
	if _, err := s.albumForWrite(ctx, albumID, userID); err != nil {
		return err
	}
	if _, err := s.bookmarkRepo.AddAlbum(ctx, userID, albumID); err != nil {
		return constant.WrapUpstream("收藏相册失败", err)
	}
	return nil
}

func (s *Service) UnbookmarkAlbum(ctx context.Context, albumID, userID string) error {
	if err := validID(albumID, "相册"); err != nil {
		return err
	}
	if err := s.bookmarkRepo.RemoveAlbum(ctx, userID, albumID); err != nil {
		return constant.WrapUpstream("取消收藏相册失败", err)
	}
	return nil
}

func (s *Service) ListBookmarkedAlbums(ctx context.Context, userID string) ([]*model.Album, error) {
	albums, err := s.bookmarkRepo.ListAlbums(ctx, userID)
	if err != nil {
		return nil, constant.WrapUpstream("查询收藏相册失败", err)
	}
	return albums, nil
}
