package scan

import "regexp"

// 匹配模式与原始文档中的文本标记一一对应:
//   - 命名空间声明, 如 xmlns:nyw="urn:com.netyourwork/aod"
//   - targetNamespace 标记, 如 targetNamespace="urn:com.workday/bsvc"
//   - 可点击属性, 如 type="wd:Validation_FaultType"
var (
	namespaceRegex       = regexp.MustCompile(`xmlns:[^=]+="[^"]+"`)
	targetNamespaceRegex = regexp.MustCompile(`targetNamespace="[^"]+"`)
	clickableRegex       = regexp.MustCompile(`(type|ref|base|element|message|binding)="[^"]+"`)
)

// Match 是扫描器产出的一次原始匹配: 匹配区间加匹配到的文本
type Match struct {
	Range Range
	Text  string
}

// Namespaces 返回文档中所有命名空间声明的匹配，按文档顺序排列
// 扫描器是纯函数: 只做文本模式匹配，不理解任何作用域结构
func Namespaces(doc string) []Match {
	return findAll(namespaceRegex, doc)
}

// TargetNamespaces 返回文档中所有 targetNamespace 标记的匹配，按文档顺序排列
func TargetNamespaces(doc string) []Match {
	return findAll(targetNamespaceRegex, doc)
}

// Clickables 返回文档中所有可点击属性的匹配，按文档顺序排列
func Clickables(doc string) []Match {
	return findAll(clickableRegex, doc)
}

func findAll(re *regexp.Regexp, doc string) []Match {
	locs := re.FindAllStringIndex(doc, -1)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		r := Range{Begin: loc[0], End: loc[1]}
		matches = append(matches, Match{Range: r, Text: doc[loc[0]:loc[1]]})
	}
	return matches
}
