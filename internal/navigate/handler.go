package navigate

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"wsdl-navigator/internal/document"
	"wsdl-navigator/internal/index"
	"wsdl-navigator/internal/scan"
)

// Handlers 封装了定义解析服务的 HTTP 处理器
type Handlers struct {
	Service  *Service
	Provider *document.Provider
}

// ResolveRequest 定义了前端发起的"跳转到定义"请求结构。
// Begin == End 表示一个光标点，服务端会扩展为包含它的可点击项。
type ResolveRequest struct {
	Begin int `json:"begin"`
	End   int `json:"end"`
}

// ResolveResponse 定义了返回给前端的解析结果
type ResolveResponse struct {
	Kind    string      `json:"kind"` // "definition" | "not-found" | "no-clickable" | "excluded" | "malformed-reference"
	Range   *scan.Range `json:"range,omitempty"`
	Message string      `json:"message,omitempty"`
}

// HandleResolve handles POST /api/documents/{id}/definition
func (h *Handlers) HandleResolve(w http.ResponseWriter, r *http.Request) {
	id, err := document.ParseDocID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req ResolveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	target, err := h.Service.Resolve(id, scan.Range{Begin: req.Begin, End: req.End})

	w.Header().Set("Content-Type", "application/json")
	switch {
	case err == nil:
		json.NewEncoder(w).Encode(ResolveResponse{Kind: "definition", Range: &target})
	case errors.Is(err, ErrNoClickable):
		// 普通的用户可见结果，不是错误
		json.NewEncoder(w).Encode(ResolveResponse{Kind: "no-clickable", Message: "当前位置没有可点击项"})
	case errors.Is(err, ErrNotFound):
		json.NewEncoder(w).Encode(ResolveResponse{Kind: "not-found", Message: "未找到定义"})
	case errors.Is(err, index.ErrExcluded):
		json.NewEncoder(w).Encode(ResolveResponse{Kind: "excluded", Message: "可点击项过多，已忽略该文档。"})
	case errors.Is(err, scan.ErrNotNamespaced):
		w.WriteHeader(http.StatusUnprocessableEntity)
		json.NewEncoder(w).Encode(ResolveResponse{Kind: "malformed-reference", Message: err.Error()})
	default:
		log.Printf("解析定义失败: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleExportSCIP handles POST /api/documents/{id}/scip
func (h *Handlers) HandleExportSCIP(w http.ResponseWriter, r *http.Request) {
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

	scipPath, err := h.Service.ExportSCIP(id, doc.Name, doc.DataPath)
	if err != nil {
		if errors.Is(err, ErrSnapshotMissing) {
			http.Error(w, "文档尚未建立索引，无法导出", http.StatusConflict)
			return
		}
		log.Printf("导出文档 %d 的 SCIP 索引失败: %v", id, err)
		http.Error(w, fmt.Sprintf("导出失败: %v", err), http.StatusInternalServerError)
		return
	}

	log.Printf("成功导出文档 %d 的 SCIP 索引: %s", id, scipPath)
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"status": "ok", "path": scipPath})
}
