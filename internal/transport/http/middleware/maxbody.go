package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	resp "usuarios-api/internal/transport/http/response"
)

// MaxBodyBytes 限制请求体大小；上传的照片整张读入内存，必须有上限
func MaxBodyBytes(n int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.ContentLength > n {
			resp.Abort(c, http.StatusRequestEntityTooLarge, resp.MsgRequestBodyTooLarge)
			return
		}
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, n)
		c.Next()
	}
}

// IsBodyTooLarge 处理器解析表单出错时用来区分“超限”
func IsBodyTooLarge(err error) bool {
	var mbe *http.MaxBytesError
	return errors.As(err, &mbe)
}
