package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"usuarios-api/internal/core/server"
	"usuarios-api/internal/transport/http/handler"
	mdw "usuarios-api/internal/transport/http/middleware"
)

// NewAdminEngine 运维端口：指标和孤儿图片清单，默认只监听回环地址
func NewAdminEngine(l *zap.Logger, admin *handler.AdminHandler) *gin.Engine {
	r := server.NewRouter(l, mdw.RecoverJSON)
	r.Use(mdw.RequestID(), mdw.AccessLog(l))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": 1}) })
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	v1 := r.Group("/admin/v1")
	v1.GET("/orphans", admin.Orphans)
	return r
}
