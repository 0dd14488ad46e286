/*
 * @Description: 用户、个人主页与关注相关控制器
 * @Author: 安知鱼
 * @Date: 2025-06-15 13:03:21
 * @LastEditTime: 2025-10-11 16:58:24
 * @LastEditors: 安知鱼
 */
package user_handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-photos/internal/pkg/auth"
	"github.com/anzhiyu-c/anheyu-photos/pkg/domain/model"
	"github.com/anzhiyu-c/anheyu-photos/pkg/handler/binding"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/engagement"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/identity"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/user"
)

// UserHandler 封装用户相关的控制器方法
type UserHandler struct {
	userSvc       user.UserService
	identitySvc   identity.Service
	engagementSvc *engagement.Service
}

// NewUserHandler 是 UserHandler 的构造函数
func NewUserHandler(userSvc user.UserService, identitySvc identity.Service, engagementSvc *engagement.Service) *UserHandler {
	return &UserHandler{
		userSvc:       userSvc,
		identitySvc:   identitySvc,
		engagementSvc: engagementSvc,
	}
}

// List 带 query 时搜索用户，否则分页列出
func (h *UserHandler) List(c *gin.Context) {
	limit, offset := binding.OffsetParams(c)
	query := strings.TrimSpace(c.Query("query"))

	var (
		users []*model.User
		err   error
	)
	if query != "" {
		users, err = h.userSvc.Search(c.Request.Context(), query, limit, offset)
	} else {
		users, err = h.userSvc.List(c.Request.Context(), limit, offset)
	}
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, users, "获取用户列表成功")
}

// Sync 用请求体中的资料同步当前会话用户，缺省字段取自会话声明
func (h *UserHandler) Sync(c *gin.Context) {
	claims, ok := auth.GetClaims(c)
	if !ok {
		response.Fail(c, http.StatusUnauthorized, "未登录或会话无效")
		return
	}
	var req struct {
		Email     string `json:"email"`
		Username  string `json:"username"`
		FirstName string `json:"firstName"`
		LastName  string `json:"lastName"`
		ImageURL  string `json:"imageUrl"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			binding.BadRequest(c, err)
			return
		}
	}

	id := middleware.IdentityFromClaims(claims)
	if req.Email != "" {
		id.Email = req.Email
	}
	if req.Username != "" {
		id.Username = req.Username
	}
	if req.FirstName != "" {
		id.FirstName = req.FirstName
	}
	if req.LastName != "" {
		id.LastName = req.LastName
	}
	if req.ImageURL != "" {
		id.AvatarURL = &req.ImageURL
	}

	u, err := h.identitySvc.Sync(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, u, "同步用户成功")
}

// Current 返回当前用户，中间件已在缺失时完成同步
func (h *UserHandler) Current(c *gin.Context) {
	u, ok := middleware.CurrentUser(c)
	if !ok {
		response.Fail(c, http.StatusNotFound, "用户不存在")
		return
	}
	response.Success(c, u, "获取当前用户成功")
}

// Profile 返回个人主页，其他人看不到私有相册
func (h *UserHandler) Profile(c *gin.Context) {
	profile, err := h.userSvc.GetProfile(c.Request.Context(), c.Param("id"), middleware.RequesterID(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, profile, "获取用户信息成功")
}

func (h *UserHandler) Followers(c *gin.Context) {
	limit, offset := binding.OffsetParams(c)
	follows, err := h.engagementSvc.ListFollowers(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"followers": follows}, "获取粉丝列表成功")
}

func (h *UserHandler) Following(c *gin.Context) {
	limit, offset := binding.OffsetParams(c)
	follows, err := h.engagementSvc.ListFollowing(c.Request.Context(), c.Param("id"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"following": follows}, "获取关注列表成功")
}

func (h *UserHandler) FollowStatus(c *gin.Context) {
	target := c.Query("userId")
	if target == "" {
		response.Fail(c, http.StatusBadRequest, "缺少参数 userId")
		return
	}
	ok, err := h.engagementSvc.IsFollowing(c.Request.Context(), middleware.RequesterID(c), target)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isFollowing": ok}, "获取关注状态成功")
}

func (h *UserHandler) Follow(c *gin.Context) {
	target, err := binding.TargetID(c, "targetUserId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.Follow(c.Request.Context(), middleware.RequesterID(c), target); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isFollowing": true}, "关注成功")
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	target, err := binding.TargetID(c, "targetUserId")
	if err != nil {
		binding.BadRequest(c, err)
		return
	}
	if err := h.engagementSvc.Unfollow(c.Request.Context(), middleware.RequesterID(c), target); err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, gin.H{"isFollowing": false}, "已取消关注")
}
