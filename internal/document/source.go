package document

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/go-git/go-git/v5"
	"github.com/patrickmn/go-cache"
)

// TextSource 提供文档当前文本快照的读取
type TextSource interface {
	Text(doc Document) (string, error)
}

// FileSource 直接从文件系统读取文档文本
type FileSource struct{}

func (FileSource) Text(doc Document) (string, error) {
	content, err := os.ReadFile(doc.SourcePath)
	if err != nil {
		return "", fmt.Errorf("读取文档文件 '%s' 失败: %w", doc.SourcePath, err)
	}
	return string(content), nil
}

// GitSource 从 git 仓库的 HEAD 提交中读取文档文本。
// 纳入版本控制的文档以提交内容为准，不受工作区未提交改动的影响。
type GitSource struct{}

func (GitSource) Text(doc Document) (string, error) {
	// 1. 打开 Git 仓库
	r, err := git.PlainOpen(doc.GitDir)
	if err != nil {
		return "", fmt.Errorf("打开 Git 仓库 '%s' 失败: %w", doc.GitDir, err)
	}

	// 2. 获取 HEAD 引用
	ref, err := r.Head()
	if err != nil {
		return "", fmt.Errorf("获取 HEAD 引用失败: %w", err)
	}

	// 3. 获取 HEAD 指向的 Commit 对象
	commit, err := r.CommitObject(ref.Hash())
	if err != nil {
		return "", fmt.Errorf("获取 Commit 对象失败: %w", err)
	}

	// 4. 在提交中查找文档文件 (SourcePath 是仓库内相对路径，使用 / 分隔符)
	file, err := commit.File(doc.SourcePath)
	if err != nil {
		return "", fmt.Errorf("文档 '%s' 在 HEAD 中未找到: %w", doc.SourcePath, err)
	}

	reader, err := file.Reader()
	if err != nil {
		return "", fmt.Errorf("创建 Blob Reader 失败: %w", err)
	}
	defer reader.Close()

	content, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取 Blob 内容失败: %w", err)
	}
	return string(content), nil
}

// CachedSource 按文档的注册方式选择底层来源 (git 或文件系统) 并缓存结果。
// 重建索引前应先 Invalidate，保证索引基于最新文本。
type CachedSource struct {
	Cache *cache.Cache
	File  TextSource
	Git   TextSource
}

// NewCachedSource 创建带缓存的文本来源
func NewCachedSource(c *cache.Cache) *CachedSource {
	return &CachedSource{
		Cache: c,
		File:  FileSource{},
		Git:   GitSource{},
	}
}

func (s *CachedSource) Text(doc Document) (string, error) {
	cacheKey := textKey(doc.DocID)
	if data, found := s.Cache.Get(cacheKey); found {
		log.Printf("DEBUG: 文档文本缓存命中: %s", cacheKey)
		return data.(string), nil
	}

	source := s.File
	if doc.GitDir != "" {
		source = s.Git
	}
	text, err := source.Text(doc)
	if err != nil {
		return "", err
	}

	s.Cache.Set(cacheKey, text, cache.DefaultExpiration)
	return text, nil
}

// Invalidate 丢弃文档的文本缓存
func (s *CachedSource) Invalidate(docID uint32) {
	s.Cache.Delete(textKey(docID))
}

func textKey(docID uint32) string {
	return fmt.Sprintf("text:%d", docID)
}
