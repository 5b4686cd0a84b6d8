package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "go.uber.org/automaxprocs"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"usuarios-api/internal/core/cache"
	"usuarios-api/internal/core/config"
	"usuarios-api/internal/core/logger"
	"usuarios-api/internal/core/server"
	"usuarios-api/internal/transport/http/handler"
	"usuarios-api/internal/transport/http/router"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		panic(err)
	}
	log, cleanup := logger.New(cfg.Log.Level, cfg.Log.JSON, cfg.Log.File)
	defer cleanup()

	// 孤儿图片清单在 Redis；没配就只暴露 health / metrics
	var lister handler.OrphanLister
	if cfg.Redis.Addr != "" {
		c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		defer c.Close()
		lister = cache.NewOrphanLedger(c, cache.OrphanKey, cfg.Redis.OrphanLimit)
	} else {
		log.Warn("redis not configured, orphan ledger disabled")
	}

	r := router.NewAdminEngine(log, handler.NewAdminHandler(lister))

	a := cfg.App.Admin
	addr := server.Addr(a.Host, a.Port)
	srv := server.BuildServer(addr, r, 5*time.Second, 10*time.Second, 60*time.Second)

	baseURL := server.HumanURL(a.Host, a.Port)
	log.Info("admin api starting",
		zap.String("addr", addr),
		zap.String("health", baseURL+"/health"),
		zap.String("metrics", baseURL+"/metrics"),
		zap.String("orphans", baseURL+"/admin/v1/orphans"),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("admin api start FAILED", zap.Error(err))
		}
	}()
	log.Info("admin api started SUCCESS")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	log.Info("admin api stopped gracefully")
}
