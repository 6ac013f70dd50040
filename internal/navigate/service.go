package navigate

import (
	"errors"
	"log"
	"strings"

	"wsdl-navigator/internal/index"
	"wsdl-navigator/internal/scan"
)

var (
	// ErrNotFound 表示语法合法的引用没有可定位的定义。
	// 这是一个正常的预期结果 (例如引用了外部未定义的符号)，不是内部错误。
	ErrNotFound = errors.New("未找到定义")
	// ErrNoClickable 表示光标位置没有任何可导航引用
	ErrNoClickable = errors.New("当前位置没有可点击项")
)

// Service 是定义解析器: 消费索引守卫产出的只读快照，
// 把一次选中的引用解析为定义所在的区间。
type Service struct {
	Index *index.Service
}

func NewService(idx *index.Service) *Service {
	return &Service{Index: idx}
}

// Resolve 解析 docID 文档中 selection 处引用的定义位置。
//
// 空选区会先扩展为包含光标点的可导航引用 (没有则返回 ErrNoClickable)。
// 索引快照缺失 (包括与并发重建/关闭竞争的情况) 视为 ErrNotFound;
// 被排除的文档返回 index.ErrExcluded;
// 引用文本缺少命名空间结构时返回 scan.ErrNotNamespaced，与 ErrNotFound 可区分。
func (s *Service) Resolve(docID uint32, selection scan.Range) (scan.Range, error) {
	idx, err := s.Index.Snapshot(docID)
	if err != nil {
		if errors.Is(err, index.ErrExcluded) {
			return scan.Range{}, err
		}
		return scan.Range{}, ErrNotFound
	}

	ref, ok := expandSelection(idx, selection)
	if !ok {
		return scan.Range{}, ErrNoClickable
	}

	return resolveDefinition(idx, ref)
}

// expandSelection 把空选区扩展为包含该点的可导航引用。
// 非空选区原样使用 (调用方已经选中了想要导航的文本)。
func expandSelection(idx *index.DocumentIndex, sel scan.Range) (scan.Range, bool) {
	if !sel.Empty() {
		return sel, true
	}
	for _, r := range idx.References {
		if r.ContainsPoint(sel.Begin) {
			return r, true
		}
	}
	return scan.Range{}, false
}

// resolveDefinition 在快照内查找引用的定义区间。
//
// 搜索起点由包含该引用的作用域决定:
//   - 没有作用域包含它: 从文档起点整篇搜索 (引用无法定位到某个作用域);
//   - 恰好一个: 从该作用域起始标记的末尾开始;
//   - 多个 (嵌套作用域): 取起始位置离引用最近的那个，距离相同时保留
//     先遇到的候选 (稳定、确定，顺序即作用域的发现顺序)。
func resolveDefinition(idx *index.DocumentIndex, ref scan.Range) (scan.Range, error) {
	name, err := scan.ParseNamespacedName(ref.Text(idx.Text))
	if err != nil {
		return scan.Range{}, err
	}

	var enclosing []index.NamespaceScope
	for _, scope := range idx.Scopes {
		if scope.Contains(ref) {
			enclosing = append(enclosing, scope)
		}
	}

	searchStart := 0
	switch {
	case len(enclosing) == 1:
		searchStart = enclosing[0].Start.End
	case len(enclosing) > 1:
		closest := closestScope(ref, enclosing)
		log.Printf("DEBUG: 引用 %s '%s' 的最近包含作用域是 %s", ref, name, closest.URI)
		searchStart = closest.Start.End
	default:
		log.Printf("DEBUG: 引用 '%s' 不在任何 targetNamespace 作用域内，回退为全文搜索", name)
	}

	candidate, ok := findNameRegion(idx.Text, name.Local, searchStart)
	if ok && candidate.Intersects(ref) {
		// 搜索命中了引用自身而不是定义 (引用文本恰好也满足模式，
		// 或它之前不存在真正的定义); 从引用末尾再搜一次
		candidate, ok = findNameRegion(idx.Text, name.Local, ref.End)
	}
	if !ok {
		return scan.Range{}, ErrNotFound
	}
	return candidate, nil
}

// closestScope 在多个包含引用的作用域中选出起始位置离引用最近的一个。
// 距离相同时保留先遇到的候选。
func closestScope(ref scan.Range, scopes []index.NamespaceScope) index.NamespaceScope {
	closest := scopes[0]
	best := absDistance(ref.Begin, closest.Start.Begin)
	for _, s := range scopes[1:] {
		if d := absDistance(ref.Begin, s.Start.Begin); d < best {
			closest = s
			best = d
		}
	}
	return closest
}

func absDistance(a, b int) int {
	if a > b {
		return a - b
	}
	return b - a
}

// findNameRegion 从 from 开始向后查找第一个 name="<local>" 出现的区间
func findNameRegion(doc, local string, from int) (scan.Range, bool) {
	if from < 0 {
		from = 0
	}
	if from > len(doc) {
		return scan.Range{}, false
	}
	pattern := `name="` + local + `"`
	idx := strings.Index(doc[from:], pattern)
	if idx < 0 {
		return scan.Range{}, false
	}
	return scan.Range{Begin: from + idx, End: from + idx + len(pattern)}, true
}
