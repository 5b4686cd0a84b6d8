package middleware

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	resp "usuarios-api/internal/transport/http/response"
)

// Timeout 整个请求的总期限，d<=0 不启用。
// 上传和数据库调用还有各自更短的期限，这里兜住两者之外的时间（读 multipart 等）。
func Timeout(d time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		if d <= 0 {
			c.Next()
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), d)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if c.Writer.Written() {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			resp.Abort(c, http.StatusInternalServerError, resp.MsgRequestTimeout)
		}
	}
}
