package navigate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"wsdl-navigator/internal/index"
	"wsdl-navigator/internal/scan"

	"github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"
)

// BuildSCIPIndex 把一个文档索引快照导出为 SCIP 索引:
// 每个可导航引用产生一个引用 occurrence，解析成功的定义产生
// 带 Definition 角色的 occurrence，供标准代码智能工具链消费。
// 解析失败的引用 (NotFound / 格式损坏) 直接跳过，不影响其它引用。
func BuildSCIPIndex(idx *index.DocumentIndex, relPath string) *scip.Index {
	doc := &scip.Document{
		Language:     "xml",
		RelativePath: relPath,
	}

	lines := lineStarts(idx.Text)
	seenDefs := make(map[scan.Range]bool)
	seenSymbols := make(map[string]bool)

	for _, ref := range idx.References {
		def, err := resolveDefinition(idx, ref)
		if err != nil {
			continue
		}

		symbol := symbolFor(idx, ref, def)
		doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
			Range:  scipRange(lines, ref),
			Symbol: symbol,
		})
		if !seenDefs[def] {
			seenDefs[def] = true
			doc.Occurrences = append(doc.Occurrences, &scip.Occurrence{
				Range:       scipRange(lines, def),
				Symbol:      symbol,
				SymbolRoles: int32(scip.SymbolRole_Definition),
			})
		}
		if !seenSymbols[symbol] {
			seenSymbols[symbol] = true
			doc.Symbols = append(doc.Symbols, &scip.SymbolInformation{Symbol: symbol})
		}
	}

	return &scip.Index{
		Metadata: &scip.Metadata{
			ToolInfo: &scip.ToolInfo{Name: "wsdl-navigator"},
		},
		Documents: []*scip.Document{doc},
	}
}

// WriteSCIPIndex 把 SCIP 索引序列化后写到 path (目录不存在时自动创建)
func WriteSCIPIndex(path string, scipIndex *scip.Index) error {
	data, err := proto.Marshal(scipIndex)
	if err != nil {
		return fmt.Errorf("序列化 SCIP 索引失败: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("创建 SCIP 索引目录失败: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("写入 SCIP 索引文件 '%s' 失败: %w", path, err)
	}
	return nil
}

// symbolFor 为一个引用构造稳定的符号名。
// 优先用定义所在作用域的 targetNamespace URI 限定本地名，
// 定义不在任何作用域内时退回到引用自己的 'prefix:name' 文本。
func symbolFor(idx *index.DocumentIndex, ref, def scan.Range) string {
	name, err := scan.ParseNamespacedName(ref.Text(idx.Text))
	if err != nil {
		return ref.Text(idx.Text)
	}
	for _, scope := range idx.Scopes {
		if scope.Contains(def) {
			return scope.URI + "/" + name.Local
		}
	}
	return name.String()
}

// scipRange 把字节偏移区间转换为 SCIP 的 [startLine, startCol, endCol]
// 或 [startLine, startCol, endLine, endCol] 形式 (0-based)
func scipRange(lines []int, r scan.Range) []int32 {
	startLine, startCol := position(lines, r.Begin)
	endLine, endCol := position(lines, r.End)
	if startLine == endLine {
		return []int32{int32(startLine), int32(startCol), int32(endCol)}
	}
	return []int32{int32(startLine), int32(startCol), int32(endLine), int32(endCol)}
}

// lineStarts 返回每一行起始处的字节偏移量
func lineStarts(text string) []int {
	starts := []int{0}
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			starts = append(starts, i+1)
		}
	}
	return starts
}

// position 把字节偏移量转换为 0-based 的 (行, 列)
func position(lines []int, offset int) (line, col int) {
	// 二分找到 offset 所在的行
	lo, hi := 0, len(lines)-1
	for lo < hi {
		mid := (lo + hi + 1) / 2
		if lines[mid] <= offset {
			lo = mid
		} else {
			hi = mid - 1
		}
	}
	return lo, offset - lines[lo]
}

// ErrSnapshotMissing 表示导出时文档没有可用的索引快照
var ErrSnapshotMissing = errors.New("文档没有可导出的索引快照")

// ExportSCIP 把文档当前的索引快照写到其数据目录下的 scip/index.scip
func (s *Service) ExportSCIP(docID uint32, docName, dataPath string) (string, error) {
	idx, err := s.Index.Snapshot(docID)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnapshotMissing, err)
	}

	relPath := docName
	if !strings.ContainsRune(relPath, '.') {
		relPath += ".xml"
	}

	scipPath := filepath.Join(dataPath, "scip", "index.scip")
	if err := WriteSCIPIndex(scipPath, BuildSCIPIndex(idx, relPath)); err != nil {
		return "", err
	}
	return scipPath, nil
}
