package engagement

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/idgen"
)

const maxCommentLength = 2000

// ListComments 按时间正序返回评论
func (s *Service) ListComments(ctx context.Context, photoID, requesterID string) ([]*model.Comment, error) {
	if _, err := s.photoForRead(ctx, photoID, requesterID); err != nil {
		return nil, err
	}
	comments, err := s.commentRepo.ListByPhoto(ctx, photoID, constant.DefaultCommentLimit)
	if err != nil {
		return nil, constant.WrapUpstream("查询评论失败", err)
	}
	return comments, nil
}

// AddComment 发表评论，内容按 Markdown 渲染并清洗后保存
func (s *Service) AddComment(ctx context.Context, photoID, userID, content string) (*model.Comment, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, fmt.Errorf("%w: 评论内容不能为空", constant.ErrInvalidInput)
	}
	if utf8.RuneCountInString(content) > maxCommentLength {
		return nil, fmt.Errorf("%w: 评论内容不能超过 %d 个字符", constant.ErrInvalidInput, maxCommentLength)
	}
	if _, err := s.photoForWrite(ctx, photoID, userID); err != nil {
		return nil, err
	}

	html, err := s.parserSvc.ToHTML(content)
	if err != nil {
		return nil, fmt.Errorf("渲染评论内容失败: %w", err)
	}

	comment, err := s.commentRepo.Create(ctx, &model.Comment{
		ID:          idgen.NewID(),
		PhotoID:     photoID,
		UserID:      userID,
		Content:     content,
		ContentHTML: html,
		CreatedAt:   s.now(),
	})
	if err != nil {
		return nil, constant.WrapUpstream("保存评论失败", err)
	}
	return comment, nil
}

// DeleteComment 只有作者本人可以删除，其他情况返回 ErrNotFound
func (s *Service) DeleteComment(ctx context.Context, id, userID string) error {
	if err := validID(id, "评论"); err != nil {
		return err
	}
	n, err := s.commentRepo.Delete(ctx, id, userID)
	if err != nil {
		return constant.WrapUpstream("删除评论失败", err)
	}
	if n == 0 {
		return constant.ErrNotFound
	}
	return nil
}
