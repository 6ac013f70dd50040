package index

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"wsdl-navigator/internal/config"
	"wsdl-navigator/internal/document"
	"wsdl-navigator/internal/scan"
)

// Handlers 封装了索引守卫的 HTTP 处理器
type Handlers struct {
	Service  *Service
	Provider *document.Provider
	Source   *document.CachedSource
}

// HandleReindex handles POST /api/documents/{id}/reindex
// 文档打开/修改通知的落点: 重新读取文本并重建该文档的索引
func (h *Handlers) HandleReindex(w http.ResponseWriter, r *http.Request) {
	id, err := document.ParseDocID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, ok := h.Provider.Get(id)
	if !ok {
		http.Error(w, "未找到指定的文档", http.StatusNotFound)
		return
	}

	// 资格门槛: 只有标记语言类型的文档才建导航索引
	if !document.IsMarkupSyntax(doc.Syntax) {
		log.Printf("DEBUG: 语法类型 '%s' 不支持导航索引", doc.Syntax)
		http.Error(w, "该文档的语法类型不支持导航索引", http.StatusUnprocessableEntity)
		return
	}

	// 重建必须基于最新文本，先丢弃缓存
	h.Source.Invalidate(id)
	text, err := h.Source.Text(doc)
	if err != nil {
		log.Printf("读取文档 %d 文本失败: %v", id, err)
		http.Error(w, "无法读取文档", http.StatusInternalServerError)
		return
	}

	idx, err := h.Service.Rebuild(id, text)
	w.Header().Set("Content-Type", "application/json")
	if errors.Is(err, ErrExcluded) {
		json.NewEncoder(w).Encode(map[string]any{
			"status":  "excluded",
			"message": "可点击项过多，已忽略该文档。",
		})
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	json.NewEncoder(w).Encode(map[string]any{
		"status":     "ok",
		"scopes":     len(idx.Scopes),
		"references": len(idx.References),
	})
}

// clickableInfo 是返回给高亮协作方的单个可点击项
type clickableInfo struct {
	Range scan.Range `json:"range"`
	Text  string     `json:"text"`
}

// HandleListClickables handles GET /api/documents/{id}/clickables
// 供高亮协作方消费: 返回全部可导航引用及 highlight_clickables 开关
func (h *Handlers) HandleListClickables(w http.ResponseWriter, r *http.Request) {
	id, err := document.ParseDocID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")

	idx, err := h.Service.Snapshot(id)
	if errors.Is(err, ErrExcluded) {
		json.NewEncoder(w).Encode(map[string]any{
			"excluded": true,
			"message":  "可点击项过多，已忽略该文档。",
		})
		return
	}
	if errors.Is(err, ErrNoIndex) {
		http.Error(w, "文档尚未建立索引", http.StatusNotFound)
		return
	}

	clickables := make([]clickableInfo, 0, len(idx.References))
	for _, ref := range idx.References {
		clickables = append(clickables, clickableInfo{Range: ref, Text: ref.Text(idx.Text)})
	}

	json.NewEncoder(w).Encode(map[string]any{
		"excluded":   false,
		"highlight":  config.HighlightClickables(),
		"clickables": clickables,
	})
}
