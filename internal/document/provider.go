package document

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite 驱动
)

// Document 定义了单个已注册文档的配置结构 (与数据库表对应)
type Document struct {
	DBID       int64     `json:"-"`      // 数据库内部自增 ID
	DocID      uint32    `json:"id"`     // 用户定义的、API 使用的唯一 uint32 ID
	Name       string    `json:"name"`   // 显示给用户的名称
	SourcePath string    `json:"-"`      // 文档在文件系统中的路径 (git 模式下为仓库内相对路径)
	Syntax     string    `json:"syntax"` // 语法类型, 如 XML / XSL / HTML
	GitDir     string    `json:"-"`      // 非空时表示文档存放在该 git 仓库中，文本从 HEAD 读取
	DataPath   string    `json:"-"`      // 该文档专属数据目录的路径 (SCIP 导出等)
	CreatedAt  time.Time `json:"-"`
	UpdatedAt  time.Time `json:"-"`
}

// markupSyntaxes 列出可以建立导航索引的语法类型。
// 核心本身对任何文本一视同仁，这里只是入口处的资格门槛。
var markupSyntaxes = []string{"XML", "HTML", "XSL", "WSDL", "XSD"}

// IsMarkupSyntax 返回该语法类型的文档是否可以建立导航索引
func IsMarkupSyntax(syntax string) bool {
	for _, s := range markupSyntaxes {
		if strings.EqualFold(s, syntax) {
			return true
		}
	}
	return false
}

// Provider 是文档注册表服务，负责加载和提供文档信息。
// 数据落在 SQLite，内存中维护一份读写锁保护的镜像供快速查找。
type Provider struct {
	db        *sql.DB
	DataDir   string
	documents []Document
	docMap    map[uint32]Document
	mu        sync.RWMutex
}

const dbFileName = "app.db"
const docsSubDir = "docs" // 子目录，存放各文档数据

// NewProvider 创建一个新的文档注册表实例
// 它会在全局数据目录 (dataDir) 下初始化 SQLite 数据库。
func NewProvider(dataDir string) (*Provider, error) {
	absDataDir, err := filepath.Abs(dataDir)
	if err != nil {
		return nil, fmt.Errorf("无法获取全局数据目录 '%s' 的绝对路径: %w", dataDir, err)
	}
	docsPath := filepath.Join(absDataDir, docsSubDir)
	if err := os.MkdirAll(docsPath, 0755); err != nil {
		return nil, fmt.Errorf("创建文档数据子目录 '%s' 失败: %w", docsPath, err)
	}

	dbPath := filepath.Join(absDataDir, dbFileName) + "?_foreign_keys=on&_journal_mode=WAL" // Use WAL mode for better concurrency
	log.Printf("初始化数据库: %s", filepath.Join(absDataDir, dbFileName))
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("打开数据库 '%s' 失败: %w", dbPath, err)
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)

	p := &Provider{
		db:        db,
		DataDir:   absDataDir,
		documents: make([]Document, 0),
		docMap:    make(map[uint32]Document),
	}

	if err := p.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("初始化数据库 schema 失败: %w", err)
	}

	if err := p.loadDocsFromDB(); err != nil {
		db.Close()
		return nil, fmt.Errorf("从数据库加载文档失败: %w", err)
	}
	log.Printf("从数据库加载 %d 个文档...", len(p.documents))

	return p, nil
}

// initSchema 确保数据库表和触发器存在
func (p *Provider) initSchema() error {
	query := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS documents (
		id INTEGER PRIMARY KEY AUTOINCREMENT, -- 数据库内部 ID
		doc_id INTEGER UNIQUE NOT NULL,       -- 用户/API 使用的唯一 uint32 ID
		name TEXT NOT NULL,
		source_path TEXT NOT NULL,
		syntax TEXT NOT NULL DEFAULT 'XML',
		git_dir TEXT NOT NULL DEFAULT '',
		data_path TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TRIGGER IF NOT EXISTS update_doc_updated_at
	AFTER UPDATE ON documents FOR EACH ROW
	BEGIN
		UPDATE documents SET updated_at = CURRENT_TIMESTAMP WHERE id = OLD.id;
	END;
	`
	_, err := p.db.Exec(query)
	return err
}

// loadDocsFromDB 从数据库加载所有文档信息到内存镜像
func (p *Provider) loadDocsFromDB() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	rows, err := p.db.Query("SELECT id, doc_id, name, source_path, syntax, git_dir, data_path, created_at, updated_at FROM documents ORDER BY name")
	if err != nil {
		return fmt.Errorf("查询数据库文档失败: %w", err)
	}
	defer rows.Close()

	p.documents = make([]Document, 0)
	p.docMap = make(map[uint32]Document)

	for rows.Next() {
		var doc Document
		var createdAt sql.NullTime
		var updatedAt sql.NullTime
		err := rows.Scan(&doc.DBID, &doc.DocID, &doc.Name, &doc.SourcePath, &doc.Syntax, &doc.GitDir, &doc.DataPath, &createdAt, &updatedAt)
		if err != nil {
			log.Printf("警告: 扫描数据库行失败: %v", err)
			continue
		}

		if createdAt.Valid {
			doc.CreatedAt = createdAt.Time
		}
		if updatedAt.Valid {
			doc.UpdatedAt = updatedAt.Time
		}

		p.documents = append(p.documents, doc)
		p.docMap[doc.DocID] = doc
	}

	if err = rows.Err(); err != nil {
		return fmt.Errorf("数据库行迭代错误: %w", err)
	}
	return nil
}

// AddDocument 注册一个新文档到数据库并更新镜像。
// gitDir 非空时 sourcePath 是仓库内的相对路径，文本将从 HEAD 提交读取;
// 否则 sourcePath 是文件系统上的普通文件路径。
func (p *Provider) AddDocument(id uint32, name, sourcePath, syntax, gitDir string) error {
	if id == 0 {
		return fmt.Errorf("文档 ID 不能为 0")
	}
	if name == "" {
		return fmt.Errorf("文档名称不能为空")
	}
	if sourcePath == "" {
		return fmt.Errorf("文档源路径不能为空")
	}
	if syntax == "" {
		syntax = "XML"
	}

	if gitDir != "" {
		absGitDir, err := filepath.Abs(gitDir)
		if err != nil {
			return fmt.Errorf("无法获取文档 '%d' 仓库路径 '%s' 的绝对路径: %w", id, gitDir, err)
		}
		info, err := os.Stat(absGitDir)
		if err != nil || !info.IsDir() {
			return fmt.Errorf("文档 '%d' 的仓库路径 '%s' 不存在或不是目录", id, absGitDir)
		}
		gitDir = absGitDir
		sourcePath = filepath.ToSlash(sourcePath) // git tree 统一使用 / 分隔符
	} else {
		absSourcePath, err := filepath.Abs(sourcePath)
		if err != nil {
			return fmt.Errorf("无法获取文档 '%d' 源路径 '%s' 的绝对路径: %w", id, sourcePath, err)
		}
		info, err := os.Stat(absSourcePath)
		if os.IsNotExist(err) {
			return fmt.Errorf("文档 '%d' 的源路径 '%s' 不存在", id, absSourcePath)
		}
		if err != nil {
			return fmt.Errorf("检查文档 '%d' 的源路径 '%s' 时出错: %w", id, absSourcePath, err)
		}
		if info.IsDir() {
			return fmt.Errorf("文档 '%d' 的源路径 '%s' 是一个目录", id, absSourcePath)
		}
		sourcePath = absSourcePath
	}

	docDataDirName := strconv.FormatUint(uint64(id), 10)
	docDataPath := filepath.Join(p.DataDir, docsSubDir, docDataDirName) // <dataDir>/docs/<id>/

	if err := os.MkdirAll(docDataPath, 0755); err != nil {
		return fmt.Errorf("为文档 '%d' 创建数据目录 '%s' 失败: %w", id, docDataPath, err)
	}

	query := "INSERT INTO documents (doc_id, name, source_path, syntax, git_dir, data_path) VALUES (?, ?, ?, ?, ?, ?)"
	_, err := p.db.Exec(query, id, name, sourcePath, syntax, gitDir, docDataPath)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: documents.doc_id") {
			return fmt.Errorf("文档 ID '%d' 已存在", id)
		}
		return fmt.Errorf("插入文档 '%d' 到数据库失败: %w", id, err)
	}

	log.Printf("成功注册文档到数据库: ID=%d, Name=%s, Syntax=%s", id, name, syntax)

	return p.loadDocsFromDB()
}

// DeleteDocument 从数据库删除一个文档并更新镜像
func (p *Provider) DeleteDocument(id uint32) error {
	doc, ok := p.Get(id)
	if !ok {
		return fmt.Errorf("文档 ID '%d' 未找到", id)
	}
	docDataPath := doc.DataPath

	query := "DELETE FROM documents WHERE doc_id = ?"
	result, err := p.db.Exec(query, id)
	if err != nil {
		return fmt.Errorf("从数据库删除文档 '%d' 失败: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Printf("警告: 检查删除文档 '%d' 的影响行数失败: %v", id, err)
	}
	if rowsAffected == 0 {
		// This might happen in a race condition, reload cache just in case
		_ = p.loadDocsFromDB()
		return fmt.Errorf("文档 ID '%d' 在数据库中未找到 (可能已被删除)", id)
	}

	log.Printf("成功从数据库删除文档: ID=%d", id)

	if docDataPath != "" {
		if err := os.RemoveAll(docDataPath); err != nil {
			log.Printf("警告: 删除文档 '%d' 的数据目录 '%s' 失败: %v", id, docDataPath, err)
		}
	}

	return p.loadDocsFromDB()
}

// Get 根据 uint32 ID 查找并返回一个文档配置 (线程安全)
func (p *Provider) Get(id uint32) (Document, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	doc, ok := p.docMap[id]
	return doc, ok
}

// GetAll 返回所有已注册的文档列表 (按名称排序, 线程安全)
func (p *Provider) GetAll() []Document {
	p.mu.RLock()
	defer p.mu.RUnlock()
	// 返回副本以防止外部修改
	docsCopy := make([]Document, len(p.documents))
	copy(docsCopy, p.documents)
	return docsCopy
}

// Count 返回已注册的文档数量 (线程安全)
func (p *Provider) Count() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.documents)
}

// DB 返回底层数据库连接，供同库的其它服务 (如诊断日志) 复用
func (p *Provider) DB() *sql.DB {
	return p.db
}

// Close 关闭数据库连接 (应用退出时调用)
func (p *Provider) Close() error {
	if p.db != nil {
		log.Println("关闭数据库连接...")
		return p.db.Close()
	}
	return nil
}
