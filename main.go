package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wavesurf/server"
)

// wavesurf 入口：启动模拟对局 + 调试叠加层 WebSocket + 管理接口
func main() {
	var envFile, addr, logFile string
	flag.StringVar(&envFile, "env", ".env", "optional .env file with WAVESURF_* settings")
	flag.StringVar(&addr, "addr", "", "server listen address, e.g. :8080 (overrides WAVESURF_ADDR)")
	flag.StringVar(&logFile, "log", "", "log file path (overrides WAVESURF_LOG_FILE)")
	flag.Parse()

	cfg, err := server.LoadConfig(envFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}

	// 使用 zap 日志写入文件（lumberjack 滚动）
	if err := server.InitLogger(cfg.LogFile, cfg.LogLevel); err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(2)
	}
	defer server.SyncLogger()

	rm := server.InitEngagementManager(cfg, server.Log.Desugar())
	// 先预创建默认对局，便于直接观察
	_ = rm.Default()

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", server.HandleWS)
	mux.HandleFunc("/admin/config", server.HandleAdminConfig)
	mux.HandleFunc("/admin/stats", server.HandleStats)
	mux.HandleFunc("/admin/engagements", server.HandleEngagements)
	mux.HandleFunc("/metrics", server.HandleMetrics)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	srv := &http.Server{Addr: cfg.Addr, Handler: mux}

	go func() {
		server.Log.Infof("wavesurf listening on %s (arena %.0fx%.0f, %d TPS, aim=%s)",
			cfg.Addr, cfg.Width, cfg.Height, cfg.TicksPerSecond, cfg.Aim)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			server.Log.Fatalf("listen: %v", err)
		}
	}()

	// 优雅退出（Ctrl+C）
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	server.Log.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		server.Log.Warnf("http shutdown: %v", err)
	}
	if err := rm.Shutdown(); err != nil {
		server.Log.Warnf("engagement shutdown: %v", err)
	}
}
