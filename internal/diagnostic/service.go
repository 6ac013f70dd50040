package diagnostic

import (
	"database/sql"
	"fmt"
)

// Service 把索引构建过程中的非致命诊断落到 SQLite，
// 供用户事后排查 "为什么这个文件的跳转不工作"。
type Service struct {
	db *sql.DB
}

func NewService(db *sql.DB) (*Service, error) {
	s := &Service{db: db}
	if err := s.initSchema(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Service) initSchema() error {
	query := `
	CREATE TABLE IF NOT EXISTS diagnostics (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		doc_id INTEGER NOT NULL,
		kind TEXT NOT NULL,
		detail TEXT NOT NULL,
		position INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_diagnostics_doc_id ON diagnostics(doc_id);
	`
	_, err := s.db.Exec(query)
	return err
}

// Record 保存一条诊断 (实现索引守卫的 DiagnosticSink 接口)
func (s *Service) Record(docID uint32, kind, detail string, position int) error {
	query := `INSERT INTO diagnostics (doc_id, kind, detail, position) VALUES (?, ?, ?, ?)`
	_, err := s.db.Exec(query, docID, kind, detail, position)
	if err != nil {
		return fmt.Errorf("插入诊断记录失败: %w", err)
	}
	return nil
}

// Clear 删除文档的全部诊断 (重建索引前或文档关闭时调用)
func (s *Service) Clear(docID uint32) error {
	_, err := s.db.Exec(`DELETE FROM diagnostics WHERE doc_id = ?`, docID)
	if err != nil {
		return fmt.Errorf("删除文档 %d 的诊断记录失败: %w", docID, err)
	}
	return nil
}

// ListForDocument 返回文档的全部诊断，新的在前
func (s *Service) ListForDocument(docID uint32) ([]Diagnostic, error) {
	query := `SELECT id, doc_id, kind, detail, position, created_at FROM diagnostics WHERE doc_id = ? ORDER BY created_at DESC, id DESC`
	rows, err := s.db.Query(query, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var diags []Diagnostic
	for rows.Next() {
		var d Diagnostic
		var createdAt sql.NullTime

		if err := rows.Scan(&d.ID, &d.DocID, &d.Kind, &d.Detail, &d.Position, &createdAt); err != nil {
			return nil, err
		}
		if createdAt.Valid {
			d.CreatedAt = createdAt.Time
		}
		diags = append(diags, d)
	}
	return diags, rows.Err()
}
