package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/swaggo/swag" // 导入 swag

	"intent_finder/config"
	_ "intent_finder/docs" // 导入 swagger 文档
	"intent_finder/handlers"
	"intent_finder/httpclient"
	"intent_finder/logger"
)

func main() {
	cfg := config.Load()

	// 初始化日志系统
	if err := logger.Init(cfg); err != nil {
		log.Fatalf("init logger failed: %v", err)
	}
	logger.Info("日志系统初始化成功", "level", cfg.Log.Level, "format", cfg.Log.Format, "output", cfg.Log.Output)

	// 初始化共享HTTP连接池，所有外部请求复用
	httpclient.InitWithConfig(cfg)
	logger.Info("HTTP连接池初始化成功",
		"max_conns", cfg.HTTP.MaxConns,
		"max_idle_conns", cfg.HTTP.MaxIdleConns,
		"request_timeout_sec", cfg.HTTP.RequestTimeoutSec)

	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	handlers.RegisterRoutes(r, cfg)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	logger.Info("服务器启动", "address", serverAddr)
	logger.Info("Swagger文档可访问", "url", fmt.Sprintf("http://%s/swagger/index.html", serverAddr))
	log.Fatal(http.ListenAndServe(cfg.Server.Addr, r))
}
