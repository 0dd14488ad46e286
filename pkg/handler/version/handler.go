/*
 * @Description:
 * @Author: 安知鱼
 * @Date: 2025-09-26 09:52:32
 * @LastEditTime: 2025-10-11 11:36:56
 * @LastEditors: 安知鱼
 */
package version

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/internal/pkg/version"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
)

// Pinger 是健康检查依赖的最小接口，数据库与 Redis 都实现了它
type Pinger interface {
	PingContext(ctx context.Context) error
}

// PingFunc 把普通函数适配为 Pinger
type PingFunc func(ctx context.Context) error

func (f PingFunc) PingContext(ctx context.Context) error { return f(ctx) }

// Handler 版本信息与健康检查处理器
type Handler struct {
	checks map[string]Pinger
}

// NewHandler 创建处理器实例，checks 的键会出现在健康检查的返回中
func NewHandler(checks map[string]Pinger) *Handler {
	return &Handler{checks: checks}
}

// GetVersion 获取版本信息
func (h *Handler) GetVersion(c *gin.Context) {
	response.Success(c, version.GetBuildInfo(), "获取版本信息成功")
}

// Health 依次检查各依赖，任何一个失败都返回 503
func (h *Handler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	status := gin.H{}
	healthy := true
	for name, p := range h.checks {
		if p == nil {
			continue
		}
		if err := p.PingContext(ctx); err != nil {
			status[name] = "down"
			healthy = false
			continue
		}
		status[name] = "up"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, response.Response{
			Code:    http.StatusServiceUnavailable,
			Message: "依赖服务不可用",
			Data:    status,
		})
		return
	}
	response.Success(c, status, "ok")
}
