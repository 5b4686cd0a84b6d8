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
	"go.uber.org/zap/zapcore"
	"gorm.io/gorm"

	"usuarios-api/internal/core/cache"
	"usuarios-api/internal/core/config"
	"usuarios-api/internal/core/database"
	"usuarios-api/internal/core/logger"
	"usuarios-api/internal/core/obs"
	"usuarios-api/internal/core/server"
	"usuarios-api/internal/feature/user"
	"usuarios-api/internal/media"
	"usuarios-api/internal/repo"
	"usuarios-api/internal/service"
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
	defer logger.RedirectStdLog(log, zapcore.InfoLevel)()

	shutdownTracer, err := obs.InitTracer(context.Background(), cfg.App.Name, cfg.App.Env, cfg.Trace.Endpoint)
	if err != nil {
		log.Fatal("tracer init", zap.Error(err))
	}

	// 数据库（失败会直接 Fatal）
	db := mustOpenDB(cfg, log)
	log.Info("database connected", zap.String("driver", cfg.DB.Driver))

	if cfg.DB.AutoMigrate {
		if err := db.AutoMigrate(&user.UsuarioModel{}); err != nil {
			log.Fatal("automigrate failed", zap.Error(err))
		}
		log.Info("automigrate done")
	}

	// 图床
	up, err := media.New(cfg.Media)
	if err != nil {
		log.Fatal("media init", zap.Error(err), zap.String("provider", cfg.Media.Provider))
	}

	var opts []service.Option
	if rc := openCache(cfg, log); rc != nil {
		defer rc.Close()
		opts = append(opts,
			service.WithListCache(service.NewRedisListCache(rc, time.Duration(cfg.Redis.ListTTLSec)*time.Second)),
			service.WithOrphanRecorder(cache.NewOrphanLedger(rc, cache.OrphanKey, cfg.Redis.OrphanLimit)),
		)
	}

	userRepo := repo.NewUserRepo(db, time.Duration(cfg.DB.QueryTimeoutSec)*time.Second)
	userSvc := service.NewUserService(userRepo, up, log, opts...)

	h := cfg.App.HTTP
	r := router.NewAPIEngine(log, handler.NewUserHandler(userSvc), router.APIOptions{
		RateLimitRPS:   h.RateLimitRPS,
		RateLimitBurst: h.RateLimitBurst,
		MaxConcurrent:  h.MaxConcurrent,
		MaxBodyBytes:   int64(h.MaxBodyMB) << 20,
		RequestTimeout: time.Duration(h.RequestTimeoutSec) * time.Second,
	})

	addr := server.Addr(h.Host, h.Port)
	srv := server.BuildServer(
		addr, r,
		time.Duration(h.ReadTimeoutSec)*time.Second,
		time.Duration(h.WriteTimeoutSec)*time.Second,
		time.Duration(h.IdleTimeoutSec)*time.Second,
	)

	baseURL := server.HumanURL(h.Host, h.Port)
	log.Info("usuarios api starting",
		zap.String("addr", addr),
		zap.String("open", baseURL),
		zap.String("health", baseURL+"/health"),
		zap.String("usuarios", baseURL+"/usuarios"),
		zap.String("media", cfg.Media.Provider),
	)

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("usuarios api start FAILED", zap.Error(err))
		}
	}()
	log.Info("usuarios api started SUCCESS")

	// 优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	_ = shutdownTracer(ctx)
	log.Info("usuarios api stopped gracefully")
}

func mustOpenDB(cfg *config.Config, l *zap.Logger) *gorm.DB {
	db, err := database.NewGorm(database.Opts{
		Driver:             cfg.DB.Driver,
		DSN:                cfg.DB.DSN,
		Host:               cfg.DB.Host,
		Name:               cfg.DB.Name,
		Username:           cfg.DB.Username,
		Password:           cfg.DB.Password,
		MaxOpenConns:       cfg.DB.MaxOpenConns,
		MaxIdleConns:       cfg.DB.MaxIdleConns,
		ConnMaxLifetimeMin: cfg.DB.ConnMaxLifetimeMin,
		LogLevel:           cfg.DB.LogLevel,
	}, l)
	if err != nil {
		l.Fatal("db open", zap.Error(err))
	}
	return db
}

// openCache Redis 可选：没配地址或连不上都返回 nil，服务照常跑
func openCache(cfg *config.Config, l *zap.Logger) *cache.Cache {
	if cfg.Redis.Addr == "" {
		return nil
	}
	c := cache.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.Ping(ctx); err != nil {
		l.Warn("redis unavailable, cache disabled", zap.String("addr", cfg.Redis.Addr), zap.Error(err))
		_ = c.Close()
		return nil
	}
	l.Info("redis connected", zap.String("addr", cfg.Redis.Addr))
	return c
}
