// Package binding 提供处理器之间共用的请求参数解析
package binding

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
)

// TargetID 从 JSON 请求体读取 key 对应的ID，请求体为空时回退到同名查询参数。
// 互动类的 DELETE 请求既可能带请求体，也可能只带查询参数。
func TargetID(c *gin.Context, key string) (string, error) {
	var body map[string]interface{}
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
			return "", err
		}
	}
	if v, ok := body[key].(string); ok && v != "" {
		return v, nil
	}
	if v := c.Query(key); v != "" {
		return v, nil
	}
	return "", errors.New("缺少参数 " + key)
}

// OffsetParams 读取 limit 与 offset 查询参数，非法值按 0 处理
func OffsetParams(c *gin.Context) (int, int) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	return limit, offset
}

// BadRequest 返回参数错误
func BadRequest(c *gin.Context, err error) {
	response.Fail(c, http.StatusBadRequest, "参数错误: "+err.Error())
}
