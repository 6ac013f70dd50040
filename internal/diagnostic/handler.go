package diagnostic

import (
	"encoding/json"
	"log"
	"net/http"

	"wsdl-navigator/internal/document"
)

// Handlers 封装了诊断服务的 HTTP 处理器
type Handlers struct {
	Service *Service
}

// HandleList handles GET /api/documents/{id}/diagnostics
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	id, err := document.ParseDocID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	diags, err := h.Service.ListForDocument(id)
	if err != nil {
		log.Printf("查询文档 %d 的诊断失败: %v", id, err)
		http.Error(w, "无法查询诊断记录", http.StatusInternalServerError)
		return
	}

	// 保证即使没有记录也返回空数组 `[]` 而不是 `null`
	if diags == nil {
		diags = make([]Diagnostic, 0)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(diags)
}
