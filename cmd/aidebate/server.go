package main

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/hoofy2009-dotcom/AIDEBATE/config"
	"github.com/hoofy2009-dotcom/AIDEBATE/debate"
	"github.com/hoofy2009-dotcom/AIDEBATE/internal/metrics"
	"github.com/hoofy2009-dotcom/AIDEBATE/internal/server"
	"github.com/hoofy2009-dotcom/AIDEBATE/llm/factory"
	"github.com/hoofy2009-dotcom/AIDEBATE/websearch"
)

// Server 组装辩论服务的全部组件
type Server struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *server.Manager
	hub     *debate.Hub
}

// NewServer 创建并装配服务器
func NewServer(cfg *config.Config, logger *zap.Logger) *Server {
	collector := metrics.NewCollector("aidebate", nil, logger)

	hub := debate.NewHub(logger, collector)
	providerFactory := factory.New(cfg, logger)
	searcher := websearch.NewSearcher(logger,
		websearch.WithMaxResults(cfg.Debate.SearchMaxResults))

	// 每个连接一个编排器，会话记录随连接创建与销毁
	newSession := func() *debate.Orchestrator {
		return debate.NewOrchestrator(
			hub,
			providerFactory.Resolve,
			searcher,
			cfg,
			logger,
			collector,
		)
	}

	wsHandler := debate.NewHandler(hub, newSession, cfg.Server.AllowedOrigins, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws/debate", wsHandler)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		p := cfg.Providers
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"status":      "ok",
			"version":     Version,
			"connections": hub.Len(),
			"providers": map[string]bool{
				"openai":   p.OpenAI.Available(),
				"claude":   p.Claude.Available(),
				"gemini":   p.Gemini.Available(),
				"grok":     p.Grok.Available(),
				"deepseek": p.DeepSeek.Available(),
				"qwen":     p.Qwen.Available(),
				"doubao":   p.Doubao.Available(),
			},
		})
	})

	handler := Chain(mux,
		Recovery(logger),
		RequestLogger(logger),
		CORS(),
	)

	srvCfg := server.DefaultConfig()
	srvCfg.Addr = cfg.Server.Addr
	srvCfg.ReadTimeout = cfg.Server.ReadTimeout
	srvCfg.WriteTimeout = cfg.Server.WriteTimeout
	if cfg.Server.ShutdownTimeout > 0 {
		srvCfg.ShutdownTimeout = cfg.Server.ShutdownTimeout
	}

	return &Server{
		cfg:     cfg,
		logger:  logger,
		manager: server.NewManager(handler, srvCfg, logger),
		hub:     hub,
	}
}

// Start 启动服务（非阻塞）
func (s *Server) Start() error {
	return s.manager.Start()
}

// WaitForShutdown 阻塞等待关闭信号并优雅退出
func (s *Server) WaitForShutdown() {
	s.manager.WaitForShutdown()
}

// Shutdown 主动关闭服务
func (s *Server) Shutdown(ctx context.Context) error {
	return s.manager.Shutdown(ctx)
}
