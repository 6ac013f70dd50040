package scan

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotNamespaced 表示字符串缺少 'prefix:name' 结构 (没有 ':' 分隔符)
var ErrNotNamespaced = errors.New("不是一个带命名空间的名称")

// Range 表示文档文本中的一个半开区间 [Begin, End)
// 所有偏移量都基于索引构建时捕获的同一份文本快照
type Range struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// Empty 返回该区间是否为空 (光标位置)
func (r Range) Empty() bool {
	return r.Begin >= r.End
}

// Len 返回区间长度
func (r Range) Len() int {
	if r.Empty() {
		return 0
	}
	return r.End - r.Begin
}

// Contains 返回 other 是否完全落在 r 内
func (r Range) Contains(other Range) bool {
	return other.Begin >= r.Begin && other.End <= r.End
}

// ContainsPoint 返回偏移量 p 是否落在 r 内 (半开区间语义)
func (r Range) ContainsPoint(p int) bool {
	return p >= r.Begin && p < r.End
}

// Intersects 返回两个区间是否有重叠部分
func (r Range) Intersects(other Range) bool {
	return r.Begin < other.End && other.Begin < r.End
}

// Text 返回该区间覆盖的文本片段
func (r Range) Text(doc string) string {
	if r.Begin < 0 || r.End > len(doc) || r.Empty() {
		return ""
	}
	return doc[r.Begin:r.End]
}

func (r Range) String() string {
	return fmt.Sprintf("[%d, %d)", r.Begin, r.End)
}

// NamespacedName 表示一个 'wd-wsdl:sometype' 形式的名称，拆分为 (前缀, 本地名)
type NamespacedName struct {
	Prefix string
	Local  string
}

// ParseNamespacedName 在第一个 ':' 处拆分字符串
// 缺少分隔符是一个解析错误，必须上报给调用方，绝不能静默回退
func ParseNamespacedName(s string) (NamespacedName, error) {
	prefix, local, ok := strings.Cut(s, ":")
	if !ok {
		return NamespacedName{}, fmt.Errorf("%w: '%s'", ErrNotNamespaced, s)
	}
	return NamespacedName{Prefix: prefix, Local: local}, nil
}

// String 用 ':' 重新拼接，保证与解析前的字符串一致 (round-trip)
func (n NamespacedName) String() string {
	return n.Prefix + ":" + n.Local
}

// KeyValue 表示一个 'key="value"' 形式的属性，value 已去掉引号
type KeyValue struct {
	Key   string
	Value string
}

// ParseKeyValue 在第一个 '=' 处拆分字符串并去掉 value 两侧的引号
func ParseKeyValue(s string) (KeyValue, error) {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return KeyValue{}, fmt.Errorf("不是一个 key=\"value\" 形式的属性: '%s'", s)
	}
	return KeyValue{Key: key, Value: strings.ReplaceAll(value, `"`, "")}, nil
}
