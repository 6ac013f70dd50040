package index

import (
	"fmt"
	"strings"

	"wsdl-navigator/internal/scan"
)

// Binding 记录一个已声明的命名空间前缀及其声明位置
type Binding struct {
	URI  string
	Decl scan.Range
}

// buildNamespaceTable 从 xmlns 声明构建 前缀 -> 命名空间 的映射。
// 只保留 URI 与某个作用域的 targetNamespace 一致的前缀:
// 其它前缀 (如 xmlns:xsd="http://www.w3.org/2001/XMLSchema") 指向
// 在别处定义的外部命名空间，在本文档内不可导航。
func buildNamespaceTable(doc string, scopes []NamespaceScope) map[string]Binding {
	table := make(map[string]Binding)
	for _, m := range scan.Namespaces(doc) {
		kv, err := scan.ParseKeyValue(m.Text)
		if err != nil {
			continue
		}
		// kv.Key 形如 'xmlns:wd'，本地名部分才是文档内使用的前缀
		name, err := scan.ParseNamespacedName(kv.Key)
		if err != nil {
			continue
		}
		if !isTargetNamespace(kv.Value, scopes) {
			continue
		}
		table[name.Local] = Binding{URI: kv.Value, Decl: m.Range}
	}
	return table
}

func isTargetNamespace(uri string, scopes []NamespaceScope) bool {
	for _, s := range scopes {
		if s.URI == uri {
			return true
		}
	}
	return false
}

// extractReferences 把可点击属性的原始匹配收窄成引用值的区间，
// 即只保留引号之间的 'wd:Validation_FaultType' 部分。
// 前缀不在命名空间表中的引用指向外部命名空间，直接丢弃;
// 没有 'prefix:name' 结构的值作为 Problem 返回并丢弃。
func extractReferences(doc string, table map[string]Binding) ([]scan.Range, []Problem) {
	var refs []scan.Range
	var problems []Problem

	for _, m := range scan.Clickables(doc) {
		quote := strings.Index(m.Text, `"`)
		if quote < 0 {
			continue
		}
		value := scan.Range{Begin: m.Range.Begin + quote + 1, End: m.Range.End - 1}

		name, err := scan.ParseNamespacedName(value.Text(doc))
		if err != nil {
			problems = append(problems, Problem{
				Kind:     ProblemMalformedReference,
				Detail:   fmt.Sprintf("引用值 '%s' 缺少命名空间前缀", value.Text(doc)),
				Position: value.Begin,
			})
			continue
		}
		if _, ok := table[name.Prefix]; !ok {
			continue
		}
		refs = append(refs, value)
	}

	return refs, problems
}
