package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"usuarios-api/internal/domain"
)

// Message 成功响应；ID / Foto 只在创建时出现
type Message struct {
	Mensaje string  `json:"mensaje"`
	ID      *uint   `json:"id,omitempty"`
	Foto    *string `json:"foto,omitempty"`
}

// Failure 所有失败都是 {error}
type Failure struct {
	Error string `json:"error"`
}

func OK(msg string) Message { return Message{Mensaje: msg} }

func Created(id uint, foto *string) Message {
	msg := MsgCreatedNoPhoto
	if foto != nil {
		msg = MsgCreated
	}
	return Message{Mensaje: msg, ID: &id, Foto: foto}
}

// ErrorMessage 把内部错误映射成对外文案：
// 上传失败用固定文案，超时标明阶段，数据库错误透传驱动信息
func ErrorMessage(err error) string {
	var te *domain.TimeoutError
	if errors.As(err, &te) {
		return te.Error()
	}
	var ue *domain.UploadError
	if errors.As(err, &ue) {
		return MsgUploadFailed
	}
	return err.Error()
}

// Fail 统一 500 {error}，并把原始错误挂到 gin 上供访问日志输出
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, Failure{Error: ErrorMessage(err)})
}

// Abort 中间件用：指定状态码并中断
func Abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, Failure{Error: msg})
}
