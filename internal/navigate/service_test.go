package navigate

import (
	"errors"
	"strings"
	"testing"

	"wsdl-navigator/internal/index"
	"wsdl-navigator/internal/scan"
)

func buildIndex(t *testing.T, svc *index.Service, docID uint32, doc string) *index.DocumentIndex {
	t.Helper()
	idx, err := svc.Rebuild(docID, doc)
	if err != nil {
		t.Fatalf("rebuild failed: %v", err)
	}
	return idx
}

func pointIn(doc, substr string) scan.Range {
	p := strings.Index(doc, substr)
	return scan.Range{Begin: p, End: p}
}

func TestResolve_Scenario(t *testing.T) {
	doc := `<a:Schema targetNamespace="urn:x" xmlns:a="urn:x"><b:Validation name="Foo"/><c ref="a:Foo"/></a:Schema>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	// 光标落在 ref="a:Foo" 的值上，空选区被扩展为整个引用
	cursor := pointIn(doc, "a:Foo\"/>")
	target, err := svc.Resolve(1, cursor)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := strings.Index(doc, `name="Foo"`)
	if target.Begin != want || target.Text(doc) != `name="Foo"` {
		t.Fatalf("expected the definition range at %d, got %v (%q)", want, target, target.Text(doc))
	}
}

func TestResolve_NoClickableAtCursor(t *testing.T) {
	doc := `<a:Schema targetNamespace="urn:x" xmlns:a="urn:x"><c ref="a:Foo"/></a:Schema>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	_, err := svc.Resolve(1, scan.Range{Begin: 0, End: 0})
	if !errors.Is(err, ErrNoClickable) {
		t.Fatalf("expected ErrNoClickable, got %v", err)
	}
}

func TestResolve_NotFound(t *testing.T) {
	// 引用合法但文档里没有任何 name="Bar" 定义
	doc := `<a:Schema targetNamespace="urn:x" xmlns:a="urn:x"><c ref="a:Bar"/></a:Schema>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	_, err := svc.Resolve(1, pointIn(doc, "a:Bar"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_MalformedReferenceIsDistinct(t *testing.T) {
	doc := `<a:Schema targetNamespace="urn:x" xmlns:a="urn:x"><x name="Foo"/><c ref="a:Foo"/></a:Schema>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	// 显式选中一段没有命名空间结构的文本: 解析失败必须与 NotFound 可区分
	sel := scan.Range{Begin: strings.Index(doc, "Foo"), End: strings.Index(doc, "Foo") + 3}
	_, err := svc.Resolve(1, sel)
	if !errors.Is(err, scan.ErrNotNamespaced) {
		t.Fatalf("expected ErrNotNamespaced, got %v", err)
	}
	if errors.Is(err, ErrNotFound) {
		t.Fatalf("a parse failure must not be reported as NotFound")
	}
}

func TestResolve_MissingIndexIsNotFound(t *testing.T) {
	svc := NewService(index.NewService(0, nil))

	// 快照缺失 (从未构建或与关闭并发竞争) 一律视为普通的未找到
	_, err := svc.Resolve(99, scan.Range{Begin: 0, End: 0})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestResolve_ExcludedDocument(t *testing.T) {
	var sb strings.Builder
	sb.WriteString(`<a:S targetNamespace="urn:x" xmlns:a="urn:x">`)
	for i := 0; i < 4; i++ {
		sb.WriteString(`<c ref="a:Foo"/>`)
	}
	sb.WriteString(`</a:S>`)
	doc := sb.String()

	idxSvc := index.NewService(2, nil)
	if _, err := idxSvc.Rebuild(1, doc); !errors.Is(err, index.ErrExcluded) {
		t.Fatalf("expected ErrExcluded from rebuild, got %v", err)
	}

	svc := NewService(idxSvc)
	_, err := svc.Resolve(1, scan.Range{Begin: 0, End: 0})
	if !errors.Is(err, index.ErrExcluded) {
		t.Fatalf("expected ErrExcluded, got %v", err)
	}
}

func TestResolve_SiblingScopesPickTheEnclosingOne(t *testing.T) {
	// 同一命名空间有两个不相交的兄弟作用域，各自定义了自己的 Foo;
	// 第二个作用域内的引用必须解析到第二个作用域的 Foo
	doc := `<a:S targetNamespace="urn:x" xmlns:a="urn:x"><x name="Foo"/></a:S>` +
		`<a:S targetNamespace="urn:x"><y name="Foo"/><c ref="a:Foo"/></a:S>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	target, err := svc.Resolve(1, pointIn(doc, "a:Foo\"/>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	secondFoo := strings.Index(doc, `<y name="Foo"`) + len("<y ")
	if target.Begin != secondFoo {
		t.Fatalf("expected the second scope's Foo at %d, got %v", secondFoo, target)
	}
}

func TestResolve_NoEnclosingScopeFallsBackToWholeDocument(t *testing.T) {
	// 引用位于所有作用域之外: 从文档起点整篇搜索
	doc := `<a:S targetNamespace="urn:x" xmlns:a="urn:x"><x name="Foo"/></a:S><c ref="a:Foo"/>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	target, err := svc.Resolve(1, pointIn(doc, "a:Foo\"/>"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Begin != strings.Index(doc, `name="Foo"`) {
		t.Fatalf("expected the whole-document search to find Foo, got %v", target)
	}
}

func TestResolve_SelfMatchAvoidance(t *testing.T) {
	// 构造一个第一次搜索命中引用自身所在区间的场景:
	// 选区内恰好包含满足 name="Foo" 模式的文本，解析必须跳过自身,
	// 从选区末尾重新搜索，绝不能把引用自己的区间当作定义返回
	doc := `<a:S targetNamespace="urn:x" xmlns:a="urn:x">name="Foo" a:Foo and <b name="Foo"/></a:S>`

	idxSvc := index.NewService(0, nil)
	buildIndex(t, idxSvc, 1, doc)
	svc := NewService(idxSvc)

	selBegin := strings.Index(doc, `name="Foo" a:Foo`)
	sel := scan.Range{Begin: selBegin, End: selBegin + len(`name="Foo" a:Foo`)}

	target, err := svc.Resolve(1, sel)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if target.Intersects(sel) {
		t.Fatalf("resolution returned the reference's own range: %v", target)
	}
	wantBegin := strings.Index(doc, `<b name="Foo"`) + len("<b ")
	if target.Begin != wantBegin {
		t.Fatalf("expected the later definition at %d, got %v", wantBegin, target)
	}
}

func TestClosestScope_TieKeepsFirstEncountered(t *testing.T) {
	ref := scan.Range{Begin: 50, End: 55}
	scopes := []index.NamespaceScope{
		{URI: "urn:first", Start: scan.Range{Begin: 40, End: 45}, End: scan.Range{Begin: 90, End: 95}},
		{URI: "urn:second", Start: scan.Range{Begin: 40, End: 46}, End: scan.Range{Begin: 80, End: 85}},
	}

	// 距离相同时保留先遇到的候选，重复执行结果一致
	for i := 0; i < 10; i++ {
		if got := closestScope(ref, scopes); got.URI != "urn:first" {
			t.Fatalf("tie-break must keep the first-encountered scope, got %q", got.URI)
		}
	}
}

func TestClosestScope_PicksNearest(t *testing.T) {
	ref := scan.Range{Begin: 60, End: 65}
	scopes := []index.NamespaceScope{
		{URI: "urn:outer", Start: scan.Range{Begin: 0, End: 10}, End: scan.Range{Begin: 100, End: 110}},
		{URI: "urn:inner", Start: scan.Range{Begin: 40, End: 50}, End: scan.Range{Begin: 90, End: 95}},
	}
	if got := closestScope(ref, scopes); got.URI != "urn:inner" {
		t.Fatalf("expected the nearest scope, got %q", got.URI)
	}
}
