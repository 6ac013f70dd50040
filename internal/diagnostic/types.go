package diagnostic

import "time"

// 诊断类型，与索引构建的错误分类一一对应
const (
	KindMalformedScope     = "malformed-scope"
	KindMalformedReference = "malformed-reference"
	KindExcluded           = "excluded"
)

// Diagnostic 是一次索引构建中记录的单条非致命问题
type Diagnostic struct {
	ID        int64     `json:"id,omitempty"` // Database ID
	DocID     uint32    `json:"docId"`
	Kind      string    `json:"kind"`
	Detail    string    `json:"detail"`
	Position  int       `json:"position"` // 问题发生处的文本偏移量 (无法定位时为 0)
	CreatedAt time.Time `json:"created_at,omitempty"`
}
