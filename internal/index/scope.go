package index

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"wsdl-navigator/internal/scan"
)

// BuildScopes 把文档中每个 targetNamespace 标记转换为一个 NamespaceScope。
// 定位失败的标记作为 Problem 返回并跳过，不影响其余标记的处理。
//
// 已知的精度限制 (刻意保留，不做修正):
//   - 自闭合元素 (如 <xsd:schema ... />) 没有闭合标签，闭合标签搜索会失败；
//   - 嵌套的同名元素会让闭合标签搜索命中最近的那个，导致作用域覆盖偏小。
func BuildScopes(doc string) ([]NamespaceScope, []Problem) {
	var scopes []NamespaceScope
	var problems []Problem

	for _, m := range scan.TargetNamespaces(doc) {
		kv, err := scan.ParseKeyValue(m.Text)
		if err != nil {
			problems = append(problems, Problem{
				Kind:     ProblemMalformedScope,
				Detail:   fmt.Sprintf("无法解析 targetNamespace 标记 '%s': %v", m.Text, err),
				Position: m.Range.Begin,
			})
			continue
		}

		name, err := enclosingElementName(doc, m.Range.Begin)
		if err != nil {
			problems = append(problems, Problem{
				Kind:     ProblemMalformedScope,
				Detail:   fmt.Sprintf("找不到包含 targetNamespace 标记 %s 的元素: %v", m.Range, err),
				Position: m.Range.Begin,
			})
			continue
		}

		end, ok := findClosingTag(doc, m.Range.End, name)
		if !ok {
			problems = append(problems, Problem{
				Kind:     ProblemMalformedScope,
				Detail:   fmt.Sprintf("找不到元素 '%s' 的闭合标签 (起始于 %s)", name, m.Range),
				Position: m.Range.Begin,
			})
			continue
		}

		scopes = append(scopes, NamespaceScope{URI: kv.Value, Start: m.Range, End: end})
	}

	return scopes, problems
}

// enclosingElementName 返回包含偏移量 pos 的 xml 元素的命名空间名称。
// 从 pos 向前扫描到最近的单词或标点起始位置，再向后取到下一个空白字符，
// 得到一个完整 token; 如果 token 不以 '<' 开头 (说明落在了属性值等位置)，
// 丢弃并从它之前继续向前扫描。显式循环，以文档起点 0 作为硬边界。
func enclosingElementName(doc string, pos int) (scan.NamespacedName, error) {
	for {
		start := prevWordOrPunctStart(doc, pos)
		if start < 0 {
			return scan.NamespacedName{}, fmt.Errorf("向前扫描到达文档起点仍未找到元素起始")
		}

		token := doc[start:nextSpace(doc, start)]
		if strings.HasPrefix(token, "<") {
			return scan.ParseNamespacedName(token[1:])
		}
		if start == 0 {
			return scan.NamespacedName{}, fmt.Errorf("文档起点处的 token '%s' 不是一个元素起始", token)
		}
		pos = start
	}
}

// findClosingTag 从 from 开始向后查找 '/prefix:Name' 形式的闭合标签文本
func findClosingTag(doc string, from int, name scan.NamespacedName) (scan.Range, bool) {
	if from > len(doc) {
		return scan.Range{}, false
	}
	search := "/" + name.String()
	idx := strings.Index(doc[from:], search)
	if idx < 0 {
		return scan.Range{}, false
	}
	return scan.Range{Begin: from + idx, End: from + idx + len(search)}, true
}

type charClass int

const (
	classSpace charClass = iota
	classWord
	classPunct
)

func classOf(r rune) charClass {
	switch {
	case unicode.IsSpace(r):
		return classSpace
	case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
		return classWord
	default:
		return classPunct
	}
}

// prevWordOrPunctStart 返回 pos 之前最近的单词起始或标点起始的偏移量。
// 起始的含义: 该字符非空白，且前一个字符属于不同的字符类别 (或位于文档起点)。
// 找不到时返回 -1。
func prevWordOrPunctStart(doc string, pos int) int {
	if pos > len(doc) {
		pos = len(doc)
	}
	i := pos
	for i > 0 {
		r, size := utf8.DecodeLastRuneInString(doc[:i])
		ri := i - size
		c := classOf(r)
		if c != classSpace {
			if ri == 0 {
				return ri
			}
			prev, _ := utf8.DecodeLastRuneInString(doc[:ri])
			if classOf(prev) != c {
				return ri
			}
		}
		i = ri
	}
	return -1
}

// nextSpace 返回 from 之后 (含 from) 第一个空白字符的偏移量，没有则返回文档末尾
func nextSpace(doc string, from int) int {
	idx := strings.IndexFunc(doc[from:], unicode.IsSpace)
	if idx < 0 {
		return len(doc)
	}
	return from + idx
}
