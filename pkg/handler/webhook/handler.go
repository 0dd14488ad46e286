package webhook_handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/webhook"
)

// maxWebhookBody 是 Webhook 请求体的上限
const maxWebhookBody = 1 << 20

// WebhookHandler 接收身份提供方的事件
type WebhookHandler struct {
	webhookSvc *webhook.Service
}

func NewWebhookHandler(webhookSvc *webhook.Service) *WebhookHandler {
	return &WebhookHandler{webhookSvc: webhookSvc}
}

// Clerk 校验签名后处理用户生命周期事件
func (h *WebhookHandler) Clerk(c *gin.Context) {
	if h.webhookSvc == nil {
		zap.S().Error("[Webhook] 未配置 Webhook 密钥，拒绝处理事件")
		response.Fail(c, http.StatusInternalServerError, "服务器配置错误")
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		response.Fail(c, http.StatusBadRequest, "读取请求体失败")
		return
	}

	out, err := h.webhookSvc.Handle(c.Request.Context(), c.Request.Header, body)
	if err != nil {
		zap.S().Warnf("[Webhook] 事件处理失败: %v", err)
		response.Error(c, err)
		return
	}
	response.Success(c, out.User, out.Message)
}
