package document

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
)

// Indexer 是文档关闭时需要同步清理的索引状态 (由索引守卫实现)
type Indexer interface {
	Remove(docID uint32)
}

// Handlers 封装了文档注册表的所有 HTTP 处理器
type Handlers struct {
	Provider   *Provider
	Source     *CachedSource
	Index      Indexer
	AdminToken string
}

// AuthMiddleware checks for the correct admin token
func (h *Handlers) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if h.AdminToken != "" {
			authHeader := r.Header.Get("Authorization")
			if !strings.HasPrefix(authHeader, "Bearer ") {
				http.Error(w, "Unauthorized: Missing or invalid token", http.StatusUnauthorized)
				return
			}
			token := strings.TrimPrefix(authHeader, "Bearer ")
			if token != h.AdminToken {
				http.Error(w, "Unauthorized: Invalid token", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

// ParseDocID 从路径参数中解析 uint32 文档 ID
func ParseDocID(r *http.Request) (uint32, error) {
	raw := r.PathValue("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("无效的文档 ID '%s'", raw)
	}
	return uint32(id), nil
}

// HandleAdd handles POST /api/documents
func (h *Handlers) HandleAdd(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ID     uint32 `json:"id"`
		Name   string `json:"name"`
		Path   string `json:"path"`
		Syntax string `json:"syntax"`
		GitDir string `json:"gitDir"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.Provider.AddDocument(req.ID, req.Name, req.Path, req.Syntax, req.GitDir); err != nil {
		http.Error(w, fmt.Sprintf("Failed to add document: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleDelete handles DELETE /api/documents/{id}
// 删除文档同时清理它的索引状态和文本缓存 (文档关闭的生命周期语义)
func (h *Handlers) HandleDelete(w http.ResponseWriter, r *http.Request) {
	id, err := ParseDocID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Provider.DeleteDocument(id); err != nil {
		http.Error(w, fmt.Sprintf("Failed to delete document: %v", err), http.StatusInternalServerError)
		return
	}

	if h.Index != nil {
		h.Index.Remove(id)
	}
	if h.Source != nil {
		h.Source.Invalidate(id)
	}

	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

// HandleList handles GET /api/documents
// 为了安全，只返回 id / name / syntax 给前端
func (h *Handlers) HandleList(w http.ResponseWriter, r *http.Request) {
	docs := h.Provider.GetAll()

	type docInfo struct {
		ID     uint32 `json:"id"`
		Name   string `json:"name"`
		Syntax string `json:"syntax"`
	}

	infos := make([]docInfo, len(docs))
	for i, doc := range docs {
		infos[i] = docInfo{ID: doc.DocID, Name: doc.Name, Syntax: doc.Syntax}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(infos); err != nil {
		log.Printf("序列化文档列表为 JSON 失败: %v", err)
	}
}

// HandleListAdmin handles GET /api/admin/documents
// Returns full document details including paths (Protected)
func (h *Handlers) HandleListAdmin(w http.ResponseWriter, r *http.Request) {
	docs := h.Provider.GetAll()

	type adminDocInfo struct {
		ID     uint32 `json:"id"`
		Name   string `json:"name"`
		Path   string `json:"path"`
		Syntax string `json:"syntax"`
		GitDir string `json:"gitDir,omitempty"`
	}

	var infos []adminDocInfo
	for _, doc := range docs {
		infos = append(infos, adminDocInfo{
			ID:     doc.DocID,
			Name:   doc.Name,
			Path:   doc.SourcePath,
			Syntax: doc.Syntax,
			GitDir: doc.GitDir,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(infos)
}

// HandleGetText handles GET /api/documents/{id}/text
func (h *Handlers) HandleGetText(w http.ResponseWriter, r *http.Request) {
	id, err := ParseDocID(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, ok := h.Provider.Get(id)
	if !ok {
		http.Error(w, "未找到指定的文档", http.StatusNotFound)
		return
	}

	text, err := h.Source.Text(doc)
	if err != nil {
		log.Printf("读取文档 %d 文本失败: %v", id, err)
		http.Error(w, "无法读取文档", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Write([]byte(text))
}
