package index

import "wsdl-navigator/internal/scan"

// NamespaceScope 表示一个 targetNamespace 的文本作用域:
// 从声明 targetNamespace="URI" 的元素起始处，到同名闭合标签为止。
// 该命名空间的定义预期都位于这个范围之内。
type NamespaceScope struct {
	URI   string     `json:"uri"`
	Start scan.Range `json:"start"`
	End   scan.Range `json:"end"`
}

// Coverage 返回该作用域覆盖的完整区间 [Start.Begin, End.End)
func (s NamespaceScope) Coverage() scan.Range {
	return scan.Range{Begin: s.Start.Begin, End: s.End.End}
}

// Contains 返回给定区间是否完全落在该作用域的覆盖范围内
func (s NamespaceScope) Contains(r scan.Range) bool {
	return s.Coverage().Contains(r)
}

// DocumentIndex 是一个文档的完整导航索引快照。
// Text 是构建索引时捕获的文本，所有区间偏移量都基于这份快照；
// 快照一旦构建完成就不再修改，导航读取无需加锁。
type DocumentIndex struct {
	Text       string
	Scopes     []NamespaceScope
	References []scan.Range
}

// 索引构建过程中产生的非致命问题类型
const (
	ProblemMalformedScope     = "malformed-scope"
	ProblemMalformedReference = "malformed-reference"
	ProblemExcluded           = "excluded"
)

// Problem 描述一次构建中某个局部的失败。
// 问题只会降级单个作用域或单个引用的精度，绝不会中止整个构建。
type Problem struct {
	Kind     string
	Detail   string
	Position int
}
