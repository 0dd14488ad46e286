package search_handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/anzhiyu-c/anheyu-photos/internal/app/middleware"
	"github.com/anzhiyu-c/anheyu-photos/pkg/response"
	"github.com/anzhiyu-c/anheyu-photos/pkg/service/search"
)

// SearchHandler 处理综合搜索
type SearchHandler struct {
	searchSvc *search.Service
}

func NewSearchHandler(searchSvc *search.Service) *SearchHandler {
	return &SearchHandler{searchSvc: searchSvc}
}

// Search 按关键字搜索用户、相册与照片
// @Summary      综合搜索
// @Tags         搜索
// @Param        query  query  string  true   "关键字"
// @Param        type   query  string  false  "all|users|albums|photos"
// @Param        limit  query  int     false  "每页数量"
// @Param        page   query  int     false  "页码"
// @Router       /search [get]
func (h *SearchHandler) Search(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	page, _ := strconv.Atoi(c.Query("page"))

	res, err := h.searchSvc.Search(c.Request.Context(), search.Query{
		Text:      c.Query("query"),
		Type:      c.Query("type"),
		Limit:     limit,
		Page:      page,
		Requester: middleware.RequesterID(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, res, "搜索成功")
}
