// Package app 组装两个二进制共用的依赖
package app

import (
	"context"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"wwreviews/internal/core/auth"
	"wwreviews/internal/core/cache"
	"wwreviews/internal/core/config"
	"wwreviews/internal/core/database"
	"wwreviews/internal/core/logger"
	"wwreviews/internal/core/reddit"
	"wwreviews/internal/core/session"
	"wwreviews/internal/service"
	"wwreviews/internal/transport/http/router"
)

// Build 打开数据库、redis，组装服务；返回的 cleanup 负责关闭连接
func Build(cfg *config.Config, log *zap.Logger) (router.Deps, func(), error) {
	db, err := openDB(cfg, log)
	if err != nil {
		return router.Deps{}, nil, err
	}
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	// 自动迁移
	if cfg.DB.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			return router.Deps{}, nil, err
		}
		log.Info("automigrate done")
	}

	var rc *cache.Cache
	if cfg.Redis.Addr != "" {
		rc = cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rc.Ping(ctx); err != nil {
			// redis 挂了不影响启动，只是没有缓存
			log.Warn("redis unavailable, identity cache disabled", zap.Error(err))
			_ = rc.Close()
			rc = nil
		}
	}

	d := router.Deps{
		Log:         log,
		DB:          db,
		Cache:       rc,
		IdentityTTL: time.Duration(cfg.Redis.IdentityTTLSec) * time.Second,
		Limits:      cfg.Limits,
		CORSOrigins: cfg.App.HTTP.CORSOrigins,
		Catalog:     service.NewCatalogService(log),
		Reviews:     service.NewReviewService(db),
		Members:     service.NewMemberService(db, rc, log),
	}

	if cfg.Reddit.ClientID != "" {
		client := reddit.New(reddit.Options{
			ClientID:     cfg.Reddit.ClientID,
			ClientSecret: cfg.Reddit.ClientSecret,
			RedirectURL:  cfg.Reddit.RedirectURL,
			UserAgent:    cfg.Reddit.UserAgent,
			Timeout:      time.Duration(cfg.Reddit.TimeoutSec) * time.Second,
		})
		d.Auth = service.NewAuthService(db, client, cfg.Reddit.FrontendURL, log)
		ttl := time.Duration(cfg.Session.TTLMin) * time.Minute
		d.Sessions = session.NewCookieStore(cfg.Session.CookieName, ttl, cfg.Session.Secure,
			&auth.Signer{Secret: []byte(cfg.JWT.Secret), Issuer: cfg.JWT.Issuer, TTL: ttl})
	} else {
		log.Warn("reddit.client_id empty, login routes disabled")
	}

	cleanup := func() {
		_ = rc.Close()
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return d, cleanup, nil
}

func openDB(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	w, err := logger.ToStdLogger(l.Named("gorm"), zapcore.WarnLevel)
	if err != nil {
		return nil, err
	}
	return database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
		Writer:             w,
	})
}
