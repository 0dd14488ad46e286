// internal/app/middleware/auth.go
package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
)

// CurrentUserKey 是本地用户在 gin.Context 中的键
const CurrentUserKey = "current_user"

type Middleware struct {
	verifier    auth.Verifier
	identitySvc identity.Service
}

func NewMiddleware(verifier auth.Verifier, identitySvc identity.Service) *Middleware {
	return &Middleware{verifier: verifier, identitySvc: identitySvc}
}

type resolveMode int

const (
	resolveExisting resolveMode = iota
	resolveSync
	resolveNone
)

// JWTAuth 是一个强制性的会话认证中间件，并把会话主体解析为本地用户。
// 主体在本地不存在时返回 404。
func (m *Middleware) JWTAuth() gin.HandlerFunc {
	return m.authenticate(resolveExisting)
}

// JWTAuthSync 与 JWTAuth 相同，但本地用户不存在时按会话声明创建
func (m *Middleware) JWTAuthSync() gin.HandlerFunc {
	return m.authenticate(resolveSync)
}

// JWTClaims 只校验会话，不解析本地用户，由处理器自行同步
func (m *Middleware) JWTClaims() gin.HandlerFunc {
	return m.authenticate(resolveNone)
}

func (m *Middleware) authenticate(mode resolveMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.Request.Header.Get("Authorization")
		if authHeader == "" {
			response.Fail(c, http.StatusUnauthorized, "请求未携带Token，无权限访问")
			c.Abort()
			return
		}
		token, ok := auth.BearerToken(authHeader)
		if !ok {
			response.Fail(c, http.StatusUnauthorized, "Token格式不正确")
			c.Abort()
			return
		}
		claims, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			zap.S().Debugf("[认证] 会话校验失败: %v", err)
			response.Fail(c, http.StatusUnauthorized, "无效或过期的Token")
			c.Abort()
			return
		}
		c.Set(auth.ClaimsKey, claims)
		if mode == resolveNone {
			c.Next()
			return
		}

		var user *model.User
		if mode == resolveSync {
			user, err = m.identitySvc.Sync(c.Request.Context(), IdentityFromClaims(claims))
		} else {
			user, err = m.identitySvc.GetBySubject(c.Request.Context(), claims.Subject)
		}
		if err != nil {
			switch {
			case errors.Is(err, constant.ErrNotFound):
				response.Fail(c, http.StatusNotFound, "用户不存在")
			case errors.Is(err, constant.ErrInvalidIdentity):
				response.Fail(c, http.StatusBadRequest, "会话缺少邮箱信息，无法创建用户")
			default:
				zap.S().Errorf("[认证] 解析本地用户失败: %v", err)
				response.Fail(c, http.StatusInternalServerError, "服务器内部错误")
			}
			c.Abort()
			return
		}
		c.Set(CurrentUserKey, user)
		c.Next()
	}
}

// JWTAuthOptional 是一个可选的会话认证中间件，任何失败都按匿名请求放行
func (m *Middleware) JWTAuthOptional() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := auth.BearerToken(c.Request.Header.Get("Authorization"))
		if !ok {
			c.Next()
			return
		}
		claims, err := m.verifier.Verify(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}
		c.Set(auth.ClaimsKey, claims)
		if user, err := m.identitySvc.GetBySubject(c.Request.Context(), claims.Subject); err == nil {
			c.Set(CurrentUserKey, user)
		}
		c.Next()
	}
}

// IdentityFromClaims 把会话声明转换为身份断言
func IdentityFromClaims(claims *auth.Claims) identity.Identity {
	id := identity.Identity{
		Subject:   claims.Subject,
		Email:     claims.Email,
		Username:  claims.Username,
		FirstName: claims.FirstName,
		LastName:  claims.LastName,
	}
	if claims.ImageURL != "" {
		avatar := claims.ImageURL
		id.AvatarURL = &avatar
	}
	return id
}

// CurrentUser 返回已解析的本地用户
func CurrentUser(c *gin.Context) (*model.User, bool) {
	v, exists := c.Get(CurrentUserKey)
	if !exists {
		return nil, false
	}
	u, ok := v.(*model.User)
	return u, ok && u != nil
}

// RequesterID 返回当前用户ID，匿名请求返回空字符串
func RequesterID(c *gin.Context) string {
	if u, ok := CurrentUser(c); ok {
		return u.ID
	}
	return ""
}
