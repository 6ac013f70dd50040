package index

import (
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"

	"wsdl-navigator/internal/scan"

	"github.com/patrickmn/go-cache"
)

// DefaultMaxClickables 是单个文档可导航引用数量的默认上限
const DefaultMaxClickables = 1000

var (
	// ErrExcluded 表示文档因可点击项过多被整体排除在索引之外
	ErrExcluded = errors.New("文档可点击项过多，已被排除在索引之外")
	// ErrNoIndex 表示文档当前没有可用的索引快照 (从未构建、已被关闭或正被替换)
	ErrNoIndex = errors.New("文档尚未建立索引")
)

// DiagnosticSink 接收索引构建过程中产生的非致命诊断记录
type DiagnosticSink interface {
	Record(docID uint32, kind, detail string, position int) error
	Clear(docID uint32) error
}

// Service 是索引守卫: 独占持有所有按文档组织的索引状态。
// 重建可能由多个工作线程并发触发，一把进程级互斥锁串行化所有重建操作
// (粗粒度，正确性优先; 重建相对于导航读取是低频操作)。
// 导航读取只消费已完成的快照，不需要重建锁。
type Service struct {
	indexes       *cache.Cache // docID -> *DocumentIndex
	rebuildMu     sync.Mutex   // 进程级重建锁
	excludedMu    sync.RWMutex
	excluded      map[uint32]struct{}
	MaxClickables int
	Diagnostics   DiagnosticSink // 可以为 nil
}

// NewService 创建索引守卫。maxClickables <= 0 时使用默认上限。
func NewService(maxClickables int, diagnostics DiagnosticSink) *Service {
	if maxClickables <= 0 {
		maxClickables = DefaultMaxClickables
	}
	return &Service{
		indexes:       cache.New(cache.NoExpiration, cache.NoExpiration),
		excluded:      make(map[uint32]struct{}),
		MaxClickables: maxClickables,
		Diagnostics:   diagnostics,
	}
}

// Rebuild 为文档重建导航索引。
// text 是本次构建捕获的文本快照，产出的所有区间都基于这份文本。
// 引用数量超过上限时整个文档被标记为排除，不保留部分索引 (二元策略)，
// 此时返回 ErrExcluded; 后续导航请求同样得到 ErrExcluded，直到某次
// 重建在上限内成功为止。
func (s *Service) Rebuild(docID uint32, text string) (*DocumentIndex, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if s.Diagnostics != nil {
		if err := s.Diagnostics.Clear(docID); err != nil {
			log.Printf("WARN: 清理文档 %d 的历史诊断失败: %v", docID, err)
		}
	}

	scopes, problems := BuildScopes(text)
	table := buildNamespaceTable(text, scopes)
	refs, refProblems := extractReferences(text, table)
	problems = append(problems, refProblems...)

	for _, p := range problems {
		log.Printf("WARN: 文档 %d 索引构建问题 (%s @%d): %s", docID, p.Kind, p.Position, p.Detail)
		s.record(docID, p)
	}

	log.Printf("DEBUG: 文档 %d: %d 个作用域, %d 个命名空间前缀, %d 个可导航引用",
		docID, len(scopes), len(table), len(refs))

	if len(refs) > s.MaxClickables {
		log.Printf("文档 %d 有 %d 个可点击项，超过上限 %d，忽略该文档", docID, len(refs), s.MaxClickables)
		s.record(docID, Problem{
			Kind:   ProblemExcluded,
			Detail: fmt.Sprintf("可点击项数量 %d 超过上限 %d", len(refs), s.MaxClickables),
		})
		s.setExcluded(docID, true)
		s.indexes.Delete(indexKey(docID))
		return nil, ErrExcluded
	}

	idx := &DocumentIndex{Text: text, Scopes: scopes, References: refs}
	s.setExcluded(docID, false)
	s.indexes.Set(indexKey(docID), idx, cache.NoExpiration)
	return idx, nil
}

// Snapshot 返回文档当前的索引快照 (只读)。
// 被排除的文档返回 ErrExcluded; 没有快照 (包括与重建/关闭并发竞争的情况)
// 返回 ErrNoIndex，调用方应视为普通的 "无可导航内容"，而非内部错误。
func (s *Service) Snapshot(docID uint32) (*DocumentIndex, error) {
	s.excludedMu.RLock()
	_, excluded := s.excluded[docID]
	s.excludedMu.RUnlock()
	if excluded {
		return nil, ErrExcluded
	}

	data, found := s.indexes.Get(indexKey(docID))
	if !found {
		return nil, ErrNoIndex
	}
	return data.(*DocumentIndex), nil
}

// ListReferences 返回文档所有可导航引用的区间
func (s *Service) ListReferences(docID uint32) ([]scan.Range, error) {
	idx, err := s.Snapshot(docID)
	if err != nil {
		return nil, err
	}
	refs := make([]scan.Range, len(idx.References))
	copy(refs, idx.References)
	return refs, nil
}

// Remove 清除文档的全部索引状态 (文档关闭时调用)
func (s *Service) Remove(docID uint32) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()
	s.indexes.Delete(indexKey(docID))
	s.setExcluded(docID, false)
}

func (s *Service) setExcluded(docID uint32, excluded bool) {
	s.excludedMu.Lock()
	defer s.excludedMu.Unlock()
	if excluded {
		s.excluded[docID] = struct{}{}
	} else {
		delete(s.excluded, docID)
	}
}

func (s *Service) record(docID uint32, p Problem) {
	if s.Diagnostics == nil {
		return
	}
	if err := s.Diagnostics.Record(docID, p.Kind, p.Detail, p.Position); err != nil {
		log.Printf("WARN: 记录文档 %d 的诊断失败: %v", docID, err)
	}
}

func indexKey(docID uint32) string {
	return strconv.FormatUint(uint64(docID), 10)
}
