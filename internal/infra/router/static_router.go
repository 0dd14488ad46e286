package router

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/anzhiyu-c/anheyu-photos/pkg/constant"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
)

// 本地存储只对外提供图片文件
var staticExtensions = []string{".jpg", ".jpeg", ".png", ".gif", ".webp", ".bmp", ".tiff", ".heic"}

// isStaticFileRequest 判断是否是图片请求（基于文件扩展名）
func isStaticFileRequest(filePath string) bool {
	filePath = strings.ToLower(filePath)
	for _, ext := range staticExtensions {
		if strings.HasSuffix(filePath, ext) {
			return true
		}
	}
	return false
}

// SetupStatic 在使用本地存储时注册对象的静态访问路由
func SetupStatic(engine *gin.Engine, root string) {
	engine.GET(constant.LocalStorageRoute+"/*filepath", func(c *gin.Context) {
		tryServeStaticFile(c, root, c.Param("filepath"))
	})
	zap.S().Infof("[路由] 本地图片访问路径: %s -> %s", constant.LocalStorageRoute, root)
}

// tryServeStaticFile 从本地存储目录提供文件，越出根目录或非图片的请求按 404 处理
func tryServeStaticFile(c *gin.Context, root, filePath string) bool {
	cleaned := filepath.Clean("/" + strings.TrimPrefix(filePath, "/"))
	if !isStaticFileRequest(cleaned) {
		response.Fail(c, http.StatusNotFound, "文件不存在")
		return false
	}
	fullPath := filepath.Join(root, filepath.FromSlash(cleaned))
	rel, err := filepath.Rel(root, fullPath)
	if err != nil || strings.HasPrefix(rel, "..") {
		response.Fail(c, http.StatusNotFound, "文件不存在")
		return false
	}
	stat, err := os.Stat(fullPath)
	if err != nil || stat.IsDir() {
		response.Fail(c, http.StatusNotFound, "文件不存在")
		return false
	}
	// 对象键带时间戳与随机串，内容不会变化
	c.Header("Cache-Control", "public, max-age=31536000, immutable")
	c.File(fullPath)
	return true
}
