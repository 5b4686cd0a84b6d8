package router

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"usuarios-api/internal/core/server"
	"usuarios-api/internal/transport/http/handler"
	mdw "usuarios-api/internal/transport/http/middleware"
)

type APIOptions struct {
	RateLimitRPS   float64
	RateLimitBurst int
	MaxConcurrent  int64
	QueueWait      time.Duration
	MaxBodyBytes   int64
	RequestTimeout time.Duration
}

func (o APIOptions) withDefaults() APIOptions {
	if o.RateLimitRPS <= 0 {
		o.RateLimitRPS = 200
	}
	if o.RateLimitBurst <= 0 {
		o.RateLimitBurst = 400
	}
	if o.MaxConcurrent <= 0 {
		o.MaxConcurrent = 300
	}
	if o.QueueWait <= 0 {
		o.QueueWait = 2 * time.Second
	}
	if o.MaxBodyBytes <= 0 {
		o.MaxBodyBytes = 16 << 20
	}
	return o
}

func NewAPIEngine(l *zap.Logger, users *handler.UserHandler, o APIOptions) *gin.Engine {
	o = o.withDefaults()
	r := server.NewRouter(l, mdw.RecoverJSON)

	r.Use(
		mdw.RequestID(),
		mdw.RateLimit(rate.Limit(o.RateLimitRPS), o.RateLimitBurst),
		mdw.ConcurrencyLimit(o.MaxConcurrent, o.QueueWait),
		mdw.MaxBodyBytes(o.MaxBodyBytes),
		mdw.Timeout(o.RequestTimeout),
		mdw.Metrics(),
		mdw.AccessLog(l),
	)

	r.GET("/", handler.Alive)
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	// 上传指标只存在于 API 进程内
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	users.Mount(r.Group("/usuarios"))
	return r
}
