// anheyu-photos/pkg/service/parser/service.go
package parser

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	gmhtml "github.com/yuin/goldmark/renderer/html"
)

// Service 把评论中的 Markdown 渲染为经过安全过滤的 HTML
type Service struct {
	mdParser goldmark.Markdown
	policy   *bluemonday.Policy
}

// NewService 创建一个新的解析服务实例
func NewService() *Service {
	mdParser := goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
		// 不开启 WithUnsafe，原始 HTML 会被 goldmark 忽略
		goldmark.WithRendererOptions(gmhtml.WithHardWraps(), gmhtml.WithXHTML()),
	)

	policy := bluemonday.UGCPolicy()
	policy.RequireNoFollowOnLinks(true)
	policy.AddTargetBlankToFullyQualifiedLinks(true)

	return &Service{
		mdParser: mdParser,
		policy:   policy,
	}
}

// ToHTML 渲染并过滤评论内容
func (s *Service) ToHTML(content string) (string, error) {
	var buf bytes.Buffer
	if err := s.mdParser.Convert([]byte(content), &buf); err != nil {
		return "", fmt.Errorf("Markdown 渲染失败: %w", err)
	}
	return strings.TrimSpace(s.policy.Sanitize(buf.String())), nil
}
