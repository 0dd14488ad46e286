package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

// ClaimsKey 是会话声明在 gin.Context 中的键
const ClaimsKey = "session_claims"

// ErrTokenInvalid 表示会话令牌缺失、过期或签名无效
var ErrTokenInvalid = errors.New("无效或过期的Token")

// Claims 是从会话令牌中解析出的身份声明
type Claims struct {
	Subject   string `json:"sub"`
	Email     string `json:"email,omitempty"`
	Username  string `json:"username,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
}

// Verifier 校验会话令牌并返回身份声明
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// BearerToken 从 Authorization 头中取出 Bearer 令牌
func BearerToken(header string) (string, bool) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

// GetClaims 从 gin.Context 中读取会话声明
func GetClaims(c *gin.Context) (*Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*Claims)
	return claims, ok && claims != nil
}
