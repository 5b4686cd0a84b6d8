package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"usuarios-api/internal/domain"
)

type UserRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewUserRepo timeout<=0 时不额外加期限（只受请求 ctx 约束）
func NewUserRepo(db *gorm.DB, timeout time.Duration) *UserRepo {
	return &UserRepo{db: db, timeout: timeout}
}

func (r *UserRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func (r *UserRepo) ListAll(ctx context.Context) ([]domain.User, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	users := make([]domain.User, 0)
	if err := r.db.WithContext(ctx).Find(&users).Error; err != nil {
		return nil, domain.WrapStore("list", err)
	}
	return users, nil
}

func (r *UserRepo) Insert(ctx context.Context, f domain.Fields, photoURL *string) (uint, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	u := domain.User{Name: f.Name, Email: f.Email, Phone: f.Phone, PhotoURL: photoURL}
	// Select 全列，空字符串 / nil 也要落库
	err := r.db.WithContext(ctx).
		Select("nombre", "email", "telefono", "foto").
		Create(&u).Error
	if err != nil {
		return 0, domain.WrapStore("insert", err)
	}
	return u.ID, nil
}

// UpdateByID 用列 map 更新，零值照样覆盖；WithoutPhoto 的 map 不含 foto
func (r *UserRepo) UpdateByID(ctx context.Context, id uint, u domain.UpdateFields) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).
		Model(&domain.User{}).
		Where("id = ?", id).
		Updates(domain.Columns(u)).Error
	return domain.WrapStore("update", err)
}

// DeleteByID 物理删除；影响 0 行也算成功
func (r *UserRepo) DeleteByID(ctx context.Context, id uint) error {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.User{}).Error
	return domain.WrapStore("delete", err)
}
