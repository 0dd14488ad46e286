package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
)

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{constant.ErrNotFound, http.StatusNotFound},
		{fmt.Errorf("%w: 标题不能为空", constant.ErrInvalidInput), http.StatusBadRequest},
		{constant.ErrForbidden, http.StatusForbidden},
		{constant.ErrInvalidSignature, http.StatusBadRequest},
		{constant.WrapUpstream("查询失败", errors.New("conn refused")), http.StatusInternalServerError},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusFor(tt.err), tt.err.Error())
	}
}

func TestError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	run := func(err error) (int, Response) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		Error(c, err)
		var body Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
		return w.Code, body
	}

	code, body := run(fmt.Errorf("%w: 相册标题不能为空", constant.ErrInvalidInput))
	assert.Equal(t, http.StatusBadRequest, code)
	assert.Equal(t, "相册标题不能为空", body.Message)

	code, body = run(constant.WrapUpstream("查询失败", errors.New("secret dsn")))
	assert.Equal(t, http.StatusInternalServerError, code)
	assert.Equal(t, "服务器内部错误", body.Message)
	assert.NotContains(t, body.Message, "secret")
}
