package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"wsdl-navigator/internal/config"
	"wsdl-navigator/internal/document"
	"wsdl-navigator/internal/index"
	"wsdl-navigator/internal/navigate"
	"wsdl-navigator/internal/scan"

	"github.com/patrickmn/go-cache"
)

func main() {
	// --- Define Flags ---
	// Command flag determines the action
	command := flag.String("command", "", "操作命令: 'add', 'delete', 'reindex' 或 'resolve' (必填)")
	// Common flags
	dataDir := flag.String("data-dir", "./.data", "应用程序的全局数据目录")
	settingsPath := flag.String("settings", "./settings.json", "导航设置文件路径")
	// A single ID flag used by 'add', 'delete' and 'reindex'
	docID := flag.Uint("id", 0, "文档的唯一数字 ID (必填, 用于 'add', 'delete' 或 'reindex' 命令)")
	// Flags for 'add' command
	docName := flag.String("name", "", "'add' 命令: 文档的显示名称 (必填)")
	docPath := flag.String("path", "", "'add' 命令: 文档文件的路径 (必填)")
	docSyntax := flag.String("syntax", "XML", "'add' 命令: 文档的语法类型 (XML/HTML/XSL/WSDL/XSD)")
	gitDir := flag.String("git-dir", "", "'add' 命令: 可选的 git 仓库路径 (此时 -path 为仓库内相对路径)")
	// Flags for one-shot 'resolve' command
	resolveFile := flag.String("file", "", "'resolve' 命令: 要解析的文档文件路径 (必填)")
	resolveOffset := flag.Int("offset", -1, "'resolve' 命令: 光标所在的字节偏移量 (必填)")
	// --- Parse Flags ---
	flag.Parse()

	if err := config.Load(*settingsPath); err != nil {
		log.Fatalf("错误: 无法加载设置文件: %v", err)
	}

	// 'resolve' 是一次性命令，在内存中建索引并解析，不接触数据目录
	if *command == "resolve" {
		runResolve(*resolveFile, *resolveOffset)
		return
	}

	// --- Initialize Document Provider ---
	log.Printf("使用数据目录: %s", *dataDir)
	docProvider, err := document.NewProvider(*dataDir)
	if err != nil {
		log.Fatalf("错误: 无法初始化文档注册表: %v", err)
	}
	defer func() {
		if err := docProvider.Close(); err != nil {
			log.Printf("关闭数据库连接时出错: %v", err)
		}
	}()

	// --- Execute Command ---
	switch *command {
	case "add":
		if *docID == 0 || *docName == "" || *docPath == "" {
			fmt.Fprintln(os.Stderr, "错误: 'add' 命令需要 -id, -name, 和 -path 参数。")
			os.Exit(1)
		}
		err = docProvider.AddDocument(uint32(*docID), *docName, *docPath, *docSyntax, *gitDir)
		if err != nil {
			log.Fatalf("错误: 注册文档失败: %v", err)
		}
		fmt.Printf("成功注册文档: ID=%d, Name=%s\n", *docID, *docName)

	case "delete":
		if *docID == 0 {
			fmt.Fprintln(os.Stderr, "错误: 'delete' 命令需要 -id 参数.")
			os.Exit(1)
		}
		err = docProvider.DeleteDocument(uint32(*docID))
		if err != nil {
			log.Fatalf("错误: 删除文档失败: %v", err)
		}
		fmt.Printf("成功删除文档: ID=%d\n", *docID)

	case "reindex":
		if *docID == 0 {
			fmt.Fprintln(os.Stderr, "错误: 'reindex' 命令需要 -id 参数。")
			os.Exit(1)
		}

		doc, ok := docProvider.Get(uint32(*docID))
		if !ok {
			log.Fatalf("错误: 文档 ID '%d' 未找到", *docID)
		}
		if !document.IsMarkupSyntax(doc.Syntax) {
			log.Fatalf("错误: 语法类型 '%s' 不支持导航索引", doc.Syntax)
		}

		source := document.NewCachedSource(cache.New(cache.NoExpiration, cache.NoExpiration))
		text, err := source.Text(doc)
		if err != nil {
			log.Fatalf("错误: 读取文档失败: %v", err)
		}

		indexService := index.NewService(config.MaxClickableLimit(), nil)
		idx, err := indexService.Rebuild(doc.DocID, text)
		if err != nil {
			log.Fatalf("错误: 索引文档失败: %v", err)
		}
		fmt.Printf("成功索引文档 %d: %d 个作用域, %d 个可导航引用。\n", *docID, len(idx.Scopes), len(idx.References))

	default:
		fmt.Fprintf(os.Stderr, "错误: 无效或未指定命令 '%s'\n\n", *command)
		os.Exit(1)
	}
}

// runResolve 读取文件、在内存中建索引、解析 offset 处的引用并打印目标区间
func runResolve(file string, offset int) {
	if file == "" || offset < 0 {
		fmt.Fprintln(os.Stderr, "错误: 'resolve' 命令需要 -file 和 -offset 参数。")
		os.Exit(1)
	}

	content, err := os.ReadFile(file)
	if err != nil {
		log.Fatalf("错误: 读取文件失败: %v", err)
	}
	text := string(content)

	indexService := index.NewService(config.MaxClickableLimit(), nil)
	const oneShotDocID = 1
	if _, err := indexService.Rebuild(oneShotDocID, text); err != nil {
		log.Fatalf("错误: 索引文件失败: %v", err)
	}

	navService := navigate.NewService(indexService)
	target, err := navService.Resolve(oneShotDocID, scan.Range{Begin: offset, End: offset})
	if err != nil {
		log.Fatalf("解析失败: %v", err)
	}

	fmt.Printf("定义位于 %s: %s\n", target, target.Text(text))
}
