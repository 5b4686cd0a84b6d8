package handler

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"usuarios-api/internal/core/cache"
	resp "usuarios-api/internal/transport/http/response"
)

type OrphanLister interface {
	List(ctx context.Context, n int64) ([]cache.Orphan, error)
}

type AdminHandler struct {
	orphans OrphanLister
}

func NewAdminHandler(o OrphanLister) *AdminHandler { return &AdminHandler{orphans: o} }

// Orphans GET /admin/v1/orphans?limit=N 新的在前；limit 非整数时 500
func (h *AdminHandler) Orphans(c *gin.Context) {
	if h.orphans == nil {
		c.JSON(http.StatusOK, gin.H{"items": []cache.Orphan{}, "enabled": false})
		return
	}
	raw := c.DefaultQuery("limit", "100")
	limit, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		resp.Fail(c, fmt.Errorf("invalid limit %q", raw))
		return
	}
	items, err := h.orphans.List(c.Request.Context(), limit)
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "enabled": true})
}
