package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	resp "usuarios-api/internal/transport/http/response"
)

// RecoverJSON 作为 ginzap.CustomRecoveryWithZap 的回调：日志由 ginzap 打，这里只回 {error}
func RecoverJSON(c *gin.Context, _ any) {
	resp.Abort(c, http.StatusInternalServerError, resp.MsgInternal)
}
