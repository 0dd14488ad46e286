package ent

import (
	"entgo.io/ent/dialect"

	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/repository"
)

// Repositories 汇总了所有基于同一驱动的仓储实例
type Repositories struct {
	User     repository.UserRepository
	Album    repository.AlbumRepository
	Photo    repository.PhotoRepository
	Comment  repository.CommentRepository
	Like     repository.LikeRepository
	Bookmark repository.BookmarkRepository
	Follow   repository.FollowRepository
	Orphan   repository.OrphanRepository
}

func NewRepositories(drv dialect.Driver) *Repositories {
	return &Repositories{
		User:     NewEntUserRepository(drv),
		Album:    NewEntAlbumRepository(drv),
		Photo:    NewEntPhotoRepository(drv),
		Comment:  NewEntCommentRepository(drv),
		Like:     NewEntLikeRepository(drv),
		Bookmark: NewEntBookmarkRepository(drv),
		Follow:   NewEntFollowRepository(drv),
		Orphan:   NewEntOrphanRepository(drv),
	}
}
