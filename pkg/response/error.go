package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
)

// StatusFor 把服务层的哨兵错误映射为 HTTP 状态码
func StatusFor(err error) int {
	switch {
	case errors.Is(err, constant.ErrUpstream):
		return http.StatusInternalServerError
	case errors.Is(err, constant.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, constant.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, constant.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, constant.ErrInvalidInput),
		errors.Is(err, constant.ErrInvalidIdentity),
		errors.Is(err, constant.ErrInvalidOperation),
		errors.Is(err, constant.ErrInvalidSignature):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// Error 根据错误类型返回失败响应，500 只返回通用信息，细节写入日志
func Error(c *gin.Context, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		zap.S().Errorf("[HTTP] %s %s 处理失败: %v", c.Request.Method, c.FullPath(), err)
		Fail(c, status, "服务器内部错误")
		return
	}
	Fail(c, status, clientMessage(err))
}

// clientMessage 返回错误链最外层的描述，去掉重复的哨兵前缀
func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		constant.ErrInvalidInput, constant.ErrInvalidOperation, constant.ErrInvalidSignature,
	} {
		prefix := sentinel.Error() + ": "
		if strings.HasPrefix(msg, prefix) {
			return strings.TrimPrefix(msg, prefix)
		}
	}
	return msg
}
