package main

import (
	"flag"
	"log"
	"net/http"
	"time"

	"wsdl-navigator/internal/config"
	"wsdl-navigator/internal/diagnostic"
	"wsdl-navigator/internal/document"
	"wsdl-navigator/internal/index"
	"wsdl-navigator/internal/navigate"

	"github.com/patrickmn/go-cache"
)

// corsMiddleware 为所有响应添加 CORS 头
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func main() {
	// 1. 定义命令行参数
	dataDir := flag.String("data-dir", "./.data", "应用程序的全局数据目录 (包含数据库和文档数据)")
	settingsPath := flag.String("settings", "./settings.json", "导航设置文件路径")
	adminToken := flag.String("admin-token", "", "管理 API 的鉴权 Token (如果为空则不开启鉴权)")
	addr := flag.String("addr", ":8088", "HTTP 监听地址")
	flag.Parse()

	log.Printf("使用数据目录: %s", *dataDir)

	if err := config.Load(*settingsPath); err != nil {
		log.Fatalf("错误: 无法加载设置文件: %v", err)
	}
	log.Printf("settings.max_clickable_limit: %d", config.MaxClickableLimit())

	// 2. 创建文档注册表实例
	docProvider, err := document.NewProvider(*dataDir)
	if err != nil {
		log.Fatalf("错误: 无法初始化文档注册表: %v", err)
	}
	defer func() {
		if err := docProvider.Close(); err != nil {
			log.Printf("关闭数据库连接时出错: %v", err)
		}
	}()

	log.Printf("成功加载并初始化 %d 个文档", docProvider.Count())

	// 3. 创建诊断服务 (与注册表共用同一个 SQLite 库)
	diagService, err := diagnostic.NewService(docProvider.DB())
	if err != nil {
		log.Fatalf("错误: 无法初始化诊断服务: %v", err)
	}

	appCache := cache.New(5*time.Minute, 10*time.Minute)
	textSource := document.NewCachedSource(appCache)

	// 4. 创建索引守卫和定义解析服务
	indexService := index.NewService(config.MaxClickableLimit(), diagService)
	navService := navigate.NewService(indexService)

	docHandlers := &document.Handlers{
		Provider:   docProvider,
		Source:     textSource,
		Index:      indexService,
		AdminToken: *adminToken,
	}
	indexHandlers := &index.Handlers{
		Service:  indexService,
		Provider: docProvider,
		Source:   textSource,
	}
	navHandlers := &navigate.Handlers{
		Service:  navService,
		Provider: docProvider,
	}
	diagHandlers := &diagnostic.Handlers{Service: diagService}

	// 5. 创建路由器并集中注册所有服务的路由
	mux := http.NewServeMux()

	// 文档注册表管理 API (受 AuthMiddleware 保护)
	mux.HandleFunc("GET /api/admin/documents", docHandlers.AuthMiddleware(docHandlers.HandleListAdmin))
	mux.HandleFunc("POST /api/documents", docHandlers.AuthMiddleware(docHandlers.HandleAdd))
	mux.HandleFunc("DELETE /api/documents/{id}", docHandlers.AuthMiddleware(docHandlers.HandleDelete))

	// 文档浏览
	mux.HandleFunc("GET /api/documents", docHandlers.HandleList)
	mux.HandleFunc("GET /api/documents/{id}/text", docHandlers.HandleGetText)

	// 索引构建与可点击项
	mux.HandleFunc("POST /api/documents/{id}/reindex", indexHandlers.HandleReindex)
	mux.HandleFunc("GET /api/documents/{id}/clickables", indexHandlers.HandleListClickables)

	// 定义导航与 SCIP 导出
	mux.HandleFunc("POST /api/documents/{id}/definition", navHandlers.HandleResolve)
	mux.HandleFunc("POST /api/documents/{id}/scip", navHandlers.HandleExportSCIP)

	// 诊断
	mux.HandleFunc("GET /api/documents/{id}/diagnostics", diagHandlers.HandleList)

	// 6. 配置并启动服务器
	server := &http.Server{
		Addr:         *addr,
		Handler:      corsMiddleware(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	log.Printf("服务器启动，监听端口 %s", *addr)

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("启动服务器失败: %v", err)
	}
}
