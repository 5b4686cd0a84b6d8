package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"usuarios-api/internal/domain"
	"usuarios-api/internal/media"
)

// ListCache GET /usuarios 的读缓存；写成功后整体失效
type ListCache interface {
	Load(ctx context.Context, load func(context.Context) ([]domain.User, error)) ([]domain.User, error)
	Invalidate(ctx context.Context) error
}

// OrphanRecorder 记录上传成功但没落库的图片
type OrphanRecorder interface {
	Record(ctx context.Context, url, reason string) error
}

type CreateInput struct {
	Fields domain.Fields
	Photo  *media.Photo
}

type CreateResult struct {
	ID       uint
	PhotoURL *string
}

type UpdateInput struct {
	Fields domain.Fields
	Photo  *media.Photo
}

type UpdateResult struct {
	PhotoReplaced bool
}

type Option func(*UserService)

func WithListCache(c ListCache) Option { return func(s *UserService) { s.list = c } }

func WithOrphanRecorder(r OrphanRecorder) Option { return func(s *UserService) { s.orphans = r } }

// UserService 负责“先上传、后落库”的顺序：图片拿到 URL 之后才会写表，
// 任一阶段失败都不会进入下一阶段。两步之间没有事务，落库失败时已上传的图片不回滚。
type UserService struct {
	repo    domain.UserRepository
	up      media.Uploader
	log     *zap.Logger
	list    ListCache
	orphans OrphanRecorder
	tracer  trace.Tracer
}

func NewUserService(repo domain.UserRepository, up media.Uploader, l *zap.Logger, opts ...Option) *UserService {
	if l == nil {
		l = zap.NewNop()
	}
	s := &UserService{
		repo:   repo,
		up:     up,
		log:    l,
		tracer: otel.Tracer("usuarios-api/service"),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	if s.list == nil {
		return s.repo.ListAll(ctx)
	}
	return s.list.Load(ctx, s.repo.ListAll)
}

func (s *UserService) Create(ctx context.Context, in CreateInput) (CreateResult, error) {
	var photoURL *string
	if in.Photo != nil {
		url, err := s.upload(ctx, *in.Photo)
		if err != nil {
			return CreateResult{}, err
		}
		photoURL = &url
	}

	var id uint
	err := s.persist(ctx, "insert", func(ctx context.Context) error {
		var e error
		id, e = s.repo.Insert(ctx, in.Fields, photoURL)
		return e
	})
	if err != nil {
		if photoURL != nil {
			s.orphaned(ctx, *photoURL, "insert failed", err)
		}
		return CreateResult{}, err
	}

	s.invalidate(ctx)
	return CreateResult{ID: id, PhotoURL: photoURL}, nil
}

// Update 没有新文件时走 WithoutPhoto，foto 列保持原值
func (s *UserService) Update(ctx context.Context, id uint, in UpdateInput) (UpdateResult, error) {
	var fields domain.UpdateFields = domain.WithoutPhoto{Fields: in.Fields}
	var photoURL string
	if in.Photo != nil {
		url, err := s.upload(ctx, *in.Photo)
		if err != nil {
			return UpdateResult{}, err
		}
		photoURL = url
		fields = domain.WithPhoto{Fields: in.Fields, PhotoURL: url}
	}

	err := s.persist(ctx, "update", func(ctx context.Context) error {
		return s.repo.UpdateByID(ctx, id, fields)
	})
	if err != nil {
		if photoURL != "" {
			s.orphaned(ctx, photoURL, "update failed", err)
		}
		return UpdateResult{}, err
	}

	s.invalidate(ctx)
	return UpdateResult{PhotoReplaced: photoURL != ""}, nil
}

// Delete 只删行，图床上的图片保留
func (s *UserService) Delete(ctx context.Context, id uint) error {
	err := s.persist(ctx, "delete", func(ctx context.Context) error {
		return s.repo.DeleteByID(ctx, id)
	})
	if err != nil {
		return err
	}
	s.invalidate(ctx)
	return nil
}

func (s *UserService) upload(ctx context.Context, p media.Photo) (string, error) {
	ctx, span := s.tracer.Start(ctx, "usuarios.upload",
		trace.WithAttributes(attribute.Int("photo.bytes", len(p.Data))))
	defer span.End()

	url, err := s.up.Upload(ctx, p)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "upload failed")
		s.log.Warn("photo upload failed",
			zap.String("filename", p.Filename),
			zap.Int("bytes", len(p.Data)),
			zap.Error(err))
		return "", err
	}
	span.SetAttributes(attribute.String("photo.url", url))
	return url, nil
}

func (s *UserService) persist(ctx context.Context, op string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "usuarios.persist", trace.WithAttributes(attribute.String("db.op", op)))
	defer span.End()

	if err := fn(ctx); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, op+" failed")
		s.log.Error("store write failed", zap.String("op", op), zap.Error(err))
		return err
	}
	return nil
}

// orphaned 只记录不补偿；请求 ctx 可能已超时，这里用独立期限
func (s *UserService) orphaned(ctx context.Context, url, reason string, cause error) {
	s.log.Warn("orphaned photo on image host",
		zap.String("url", url),
		zap.String("reason", reason),
		zap.NamedError("cause", cause))
	if s.orphans == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.orphans.Record(ctx, url, reason); err != nil {
		s.log.Warn("orphan ledger write failed", zap.String("url", url), zap.Error(err))
	}
}

func (s *UserService) invalidate(ctx context.Context) {
	if s.list == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := s.list.Invalidate(ctx); err != nil {
		s.log.Warn("list cache invalidate failed", zap.Error(err))
	}
}
