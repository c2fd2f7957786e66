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
	log, cleanup := logger.FromConfig(cfg.Log, "wwreviews-api")
	defer cleanup()
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()
	gin.DefaultWriter = logger.ToWriter(log.Named("gin"), zapcore.DebugLevel)
	gin.DefaultErrorWriter = logger.ToWriter(log.Named("gin"), zapcore.ErrorLevel)
	if cfg.App.Env != "local" {
		gin.SetMode(gin.ReleaseMode)
	}

	deps, closeDeps, err := app.Build(cfg, log)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	defer closeDeps()

	h := cfg.App.HTTP
	ln := server.Listen{
		Host:         h.Host,
		Port:         h.Port,
		ReadTimeout:  time.Duration(h.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(h.WriteTimeoutSec) * time.Second,
		IdleTimeout:  time.Duration(h.IdleTimeoutSec) * time.Second,
	}
	srv := server.BuildServer(ln, router.NewAPIEngine(deps))

	base := ln.BaseURL()
	log.Info("review api starting",
		zap.String("open", base),
		zap.String("health", base+"/health"),
		zap.String("api_v1", base+"/v1"),
		zap.Bool("reddit_login", deps.Auth != nil),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := server.Run(ctx, srv, log, 10*time.Second); err != nil {
		log.Error("review api exited", zap.Error(err))
		return
	}
	log.Info("review api stopped gracefully")
}
