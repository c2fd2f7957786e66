package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"wwreviews/internal/app"
	"wwreviews/internal/core/config"
	"wwreviews/internal/core/logger"
	"wwreviews/internal/core/server"
	"wwreviews/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load(os.Getenv("CONFIG_PATH"))
	log, cleanup := logger.FromConfig(cfg.Log, "wwreviews-admin")
	defer cleanup()
	log = log.Named("admin")
	gin.DefaultWriter = logger.ToWriter(log, zapcore.DebugLevel)
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, closeDeps, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer closeDeps()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// 启动时提升配置里的版主
	if names := cfg.Admin.BootstrapModerators; len(names) > 0 {
		bctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		n, err := deps.Members.BootstrapModerators(bctx, names)
		cancel()
		if err != nil {
			log.Fatal("bootstrap moderators failed", zap.Error(err))
		}
		log.Info("moderators bootstrapped", zap.Strings("names", names), zap.Int64("matched", n))
	}

	ln := server.Listen{Host: cfg.App.Admin.Host, Port: cfg.App.Admin.Port}
	srv := server.BuildServer(ln, router.NewAdminEngine(deps))

	base := ln.BaseURL()
	log.Info("admin api starting",
		zap.String("open", base),
		zap.String("admin_v1", base+"/admin/v1"),
	)

	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("admin api exited", zap.Error(err))
		return
	}
	log.Info("admin api stopped gracefully")
}
