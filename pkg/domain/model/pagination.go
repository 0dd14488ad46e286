package model

// OffsetInput 是基于 limit/offset 的分页输入，可被其他请求 DTO 嵌入
type OffsetInput struct {
	Limit  int `form:"limit" binding:"omitempty,gte=1"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

// Normalize 返回安全的 limit 与 offset，limit 为空时使用 def，并限制在 max 以内
func (p OffsetInput) Normalize(def, max int) (int, int) {
	limit := p.Limit
	if limit <= 0 {
		limit = def
	}
	if max > 0 && limit > max {
		limit = max
	}
	offset := p.Offset
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
