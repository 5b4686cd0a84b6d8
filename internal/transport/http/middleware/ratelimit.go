package middleware

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	resp "usuarios-api/internal/transport/http/response"
)

// RateLimit 全局令牌桶；被拒时带 Retry-After（秒，向上取整）
func RateLimit(rps rate.Limit, burst int) gin.HandlerFunc {
	lim := rate.NewLimiter(rps, burst)
	return func(c *gin.Context) {
		r := lim.Reserve()
		if r.OK() && r.Delay() == 0 {
			c.Next()
			return
		}
		wait := 1
		if r.OK() {
			wait = int(math.Ceil(r.Delay().Seconds()))
			r.Cancel()
		}
		c.Header("Retry-After", strconv.Itoa(wait))
		resp.Abort(c, http.StatusTooManyRequests, resp.MsgTooManyRequests)
	}
}
