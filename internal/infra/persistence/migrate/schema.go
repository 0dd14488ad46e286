/*
 * @Description: 数据库表结构定义与自动迁移
 * @Author: 安知鱼
 * @Date: 2025-10-03 13:40:26
 * @LastEditTime: 2025-10-10 20:20:31
 * @LastEditors: 安知鱼
 */
package migrate

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
	"go.uber.org/zap"
)

const textSize = 2147483647

var (
	// UsersColumns holds the columns for the "users" table.
	UsersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "clerk_id", Type: field.TypeString, Unique: true, Size: 191},
		{Name: "username", Type: field.TypeString, Unique: true, Size: 30},
		{Name: "name", Type: field.TypeString, Size: 255, Default: ""},
		{Name: "email", Type: field.TypeString, Size: 255},
		{Name: "avatar_url", Type: field.TypeString, Nullable: true, Size: 2048},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	UsersTable = &schema.Table{
		Name:       "users",
		Columns:    UsersColumns,
		PrimaryKey: []*schema.Column{UsersColumns[0]},
	}

	AlbumsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "is_private", Type: field.TypeBool, Default: false},
		{Name: "cover_photo_id", Type: field.TypeString, Nullable: true, Size: 36},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	AlbumsTable = &schema.Table{
		Name:       "albums",
		Columns:    AlbumsColumns,
		PrimaryKey: []*schema.Column{AlbumsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "albums_users_albums",
				Columns:    []*schema.Column{AlbumsColumns[1]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "album_user_id_updated_at", Columns: []*schema.Column{AlbumsColumns[1], AlbumsColumns[7]}},
			{Name: "album_is_private_updated_at", Columns: []*schema.Column{AlbumsColumns[4], AlbumsColumns[7]}},
		},
	}

	PhotosColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "album_id", Type: field.TypeString, Size: 36},
		{Name: "title", Type: field.TypeString, Size: 255},
		{Name: "description", Type: field.TypeString, Nullable: true, Size: textSize},
		{Name: "url", Type: field.TypeString, Size: 2048},
		{Name: "storage_path", Type: field.TypeString, Size: 1024},
		{Name: "thumbnail_url", Type: field.TypeString, Size: 2048},
		{Name: "aspect_ratio", Type: field.TypeFloat64, Nullable: true},
		{Name: "dominant_color", Type: field.TypeString, Nullable: true, Size: 16},
		{Name: "taken_at", Type: field.TypeTime, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	PhotosTable = &schema.Table{
		Name:       "photos",
		Columns:    PhotosColumns,
		PrimaryKey: []*schema.Column{PhotosColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "photos_users_photos",
				Columns:    []*schema.Column{PhotosColumns[1]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "photos_albums_photos",
				Columns:    []*schema.Column{PhotosColumns[2]},
				RefColumns: []*schema.Column{AlbumsColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "photo_album_id_created_at", Columns: []*schema.Column{PhotosColumns[2], PhotosColumns[11]}},
			{Name: "photo_user_id", Columns: []*schema.Column{PhotosColumns[1]}},
		},
	}

	PhotoLikesColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "photo_id", Type: field.TypeString, Size: 36},
		{Name: "created_at", Type: field.TypeTime},
	}
	PhotoLikesTable = joinTable("photo_likes", PhotoLikesColumns, PhotosColumns[0])

	PhotoBookmarksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "photo_id", Type: field.TypeString, Size: 36},
		{Name: "created_at", Type: field.TypeTime},
	}
	PhotoBookmarksTable = joinTable("photo_bookmarks", PhotoBookmarksColumns, PhotosColumns[0])

	AlbumBookmarksColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "album_id", Type: field.TypeString, Size: 36},
		{Name: "created_at", Type: field.TypeTime},
	}
	AlbumBookmarksTable = joinTable("album_bookmarks", AlbumBookmarksColumns, AlbumsColumns[0])

	FollowsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "follower_id", Type: field.TypeString, Size: 36},
		{Name: "following_id", Type: field.TypeString, Size: 36},
		{Name: "created_at", Type: field.TypeTime},
	}
	FollowsTable = joinTable("follows", FollowsColumns, UsersColumns[0])

	PhotoCommentsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "user_id", Type: field.TypeString, Size: 36},
		{Name: "photo_id", Type: field.TypeString, Size: 36},
		{Name: "content", Type: field.TypeString, Size: textSize},
		{Name: "content_html", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeTime},
	}
	PhotoCommentsTable = &schema.Table{
		Name:       "photo_comments",
		Columns:    PhotoCommentsColumns,
		PrimaryKey: []*schema.Column{PhotoCommentsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     "photo_comments_users_comments",
				Columns:    []*schema.Column{PhotoCommentsColumns[1]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     "photo_comments_photos_comments",
				Columns:    []*schema.Column{PhotoCommentsColumns[2]},
				RefColumns: []*schema.Column{PhotosColumns[0]},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{Name: "photocomment_photo_id_created_at", Columns: []*schema.Column{PhotoCommentsColumns[2], PhotoCommentsColumns[5]}},
		},
	}

	StorageOrphansColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 36},
		{Name: "storage_path", Type: field.TypeString, Size: 1024},
		{Name: "attempts", Type: field.TypeInt, Default: 0},
		{Name: "last_error", Type: field.TypeString, Size: textSize},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "updated_at", Type: field.TypeTime},
	}
	StorageOrphansTable = &schema.Table{
		Name:       "storage_orphans",
		Columns:    StorageOrphansColumns,
		PrimaryKey: []*schema.Column{StorageOrphansColumns[0]},
	}

	// Tables holds all the tables in the schema.
	Tables = []*schema.Table{
		UsersTable,
		AlbumsTable,
		PhotosTable,
		PhotoLikesTable,
		PhotoBookmarksTable,
		AlbumBookmarksTable,
		FollowsTable,
		PhotoCommentsTable,
		StorageOrphansTable,
	}
)

// joinTable 构造 (左列, 右列) 唯一的关联表，两端都随被引用行级联删除。
// 第二列总是指向 users，第三列指向 target。
func joinTable(name string, columns []*schema.Column, target *schema.Column) *schema.Table {
	return &schema.Table{
		Name:       name,
		Columns:    columns,
		PrimaryKey: []*schema.Column{columns[0]},
		ForeignKeys: []*schema.ForeignKey{
			{
				Symbol:     name + "_" + columns[1].Name,
				Columns:    []*schema.Column{columns[1]},
				RefColumns: []*schema.Column{UsersColumns[0]},
				OnDelete:   schema.Cascade,
			},
			{
				Symbol:     name + "_" + columns[2].Name,
				Columns:    []*schema.Column{columns[2]},
				RefColumns: []*schema.Column{target},
				OnDelete:   schema.Cascade,
			},
		},
		Indexes: []*schema.Index{
			{
				Name:    name + "_" + columns[1].Name + "_" + columns[2].Name,
				Unique:  true,
				Columns: []*schema.Column{columns[1], columns[2]},
			},
			{
				Name:    name + "_" + columns[2].Name + "_" + columns[3].Name,
				Columns: []*schema.Column{columns[2], columns[3]},
			},
		},
	}
}

func init() {
	AlbumsTable.ForeignKeys[0].RefTable = UsersTable
	PhotosTable.ForeignKeys[0].RefTable = UsersTable
	PhotosTable.ForeignKeys[1].RefTable = AlbumsTable
	PhotoLikesTable.ForeignKeys[0].RefTable = UsersTable
	PhotoLikesTable.ForeignKeys[1].RefTable = PhotosTable
	PhotoBookmarksTable.ForeignKeys[0].RefTable = UsersTable
	PhotoBookmarksTable.ForeignKeys[1].RefTable = PhotosTable
	AlbumBookmarksTable.ForeignKeys[0].RefTable = UsersTable
	AlbumBookmarksTable.ForeignKeys[1].RefTable = AlbumsTable
	FollowsTable.ForeignKeys[0].RefTable = UsersTable
	FollowsTable.ForeignKeys[1].RefTable = UsersTable
	PhotoCommentsTable.ForeignKeys[0].RefTable = UsersTable
	PhotoCommentsTable.ForeignKeys[1].RefTable = PhotosTable
}

// Create 在启动阶段自动同步表结构，只新增不删除
func Create(ctx context.Context, drv dialect.Driver) error {
	m, err := schema.NewMigrate(drv)
	if err != nil {
		return fmt.Errorf("创建迁移器失败: %w", err)
	}
	if err := m.Create(ctx, Tables...); err != nil {
		return fmt.Errorf("创建/更新数据库 schema 失败: %w", err)
	}
	zap.S().Info("✅ 数据库 schema 同步完成")
	return nil
}
