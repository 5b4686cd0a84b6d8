package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"usuarios-api/internal/domain"
	"usuarios-api/internal/media"
	"usuarios-api/internal/service"
	mdw "usuarios-api/internal/transport/http/middleware"
	resp "usuarios-api/internal/transport/http/response"
)

// PhotoField multipart 里照片的字段名
const PhotoField = "foto"

type UserService interface {
	List(ctx context.Context) ([]domain.User, error)
	Create(ctx context.Context, in service.CreateInput) (service.CreateResult, error)
	Update(ctx context.Context, id uint, in service.UpdateInput) (service.UpdateResult, error)
	Delete(ctx context.Context, id uint) error
}

type UserHandler struct {
	svc UserService
}

func NewUserHandler(svc UserService) *UserHandler { return &UserHandler{svc: svc} }

// userForm multipart、urlencoded、JSON 三种 body 共用
type userForm struct {
	Nombre   string `form:"nombre" json:"nombre"`
	Email    string `form:"email" json:"email"`
	Telefono string `form:"telefono" json:"telefono"`
}

func (f userForm) fields() domain.Fields {
	return domain.Fields{Name: f.Nombre, Email: f.Email, Phone: f.Telefono}
}

func (h *UserHandler) Mount(g *gin.RouterGroup) {
	g.GET("", h.List)
	g.POST("", h.Create)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
}

// Alive GET /
func Alive(c *gin.Context) { c.String(http.StatusOK, resp.MsgAlive) }

// List GET /usuarios
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.svc.List(c.Request.Context())
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

// Create POST /usuarios
func (h *UserHandler) Create(c *gin.Context) {
	in, photo, ok := h.bindWrite(c)
	if !ok {
		return
	}
	res, err := h.svc.Create(c.Request.Context(), service.CreateInput{Fields: in.fields(), Photo: photo})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.Created(res.ID, res.PhotoURL))
}

// Update PUT /usuarios/:id
func (h *UserHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	in, photo, ok := h.bindWrite(c)
	if !ok {
		return
	}
	res, err := h.svc.Update(c.Request.Context(), id, service.UpdateInput{Fields: in.fields(), Photo: photo})
	if err != nil {
		resp.Fail(c, err)
		return
	}
	msg := resp.MsgUpdatedKeepPhoto
	if res.PhotoReplaced {
		msg = resp.MsgUpdated
	}
	c.JSON(http.StatusOK, resp.OK(msg))
}

// Delete DELETE /usuarios/:id；id 不存在也返回成功
func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		resp.Fail(c, err)
		return
	}
	c.JSON(http.StatusOK, resp.OK(resp.MsgDeleted))
}

func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		resp.Fail(c, fmt.Errorf("invalid id %q", raw))
		return 0, false
	}
	return uint(id), true
}

// bindWrite 绑定文本字段，并把可选的照片整张读进内存
func (h *UserHandler) bindWrite(c *gin.Context) (userForm, *media.Photo, bool) {
	var in userForm
	if err := c.ShouldBind(&in); err != nil {
		failBind(c, err)
		return in, nil, false
	}
	if !strings.HasPrefix(c.ContentType(), "multipart/") {
		return in, nil, true
	}
	fh, err := c.FormFile(PhotoField)
	if errors.Is(err, http.ErrMissingFile) {
		return in, nil, true
	}
	if err != nil {
		failBind(c, err)
		return in, nil, false
	}
	f, err := fh.Open()
	if err != nil {
		failBind(c, err)
		return in, nil, false
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		failBind(c, err)
		return in, nil, false
	}
	return in, &media.Photo{Filename: fh.Filename, Data: data}, true
}

func failBind(c *gin.Context, err error) {
	if mdw.IsBodyTooLarge(err) {
		_ = c.Error(err)
		resp.Abort(c, http.StatusRequestEntityTooLarge, resp.MsgRequestBodyTooLarge)
		return
	}
	resp.Fail(c, err)
}
