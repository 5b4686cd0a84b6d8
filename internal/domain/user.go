package domain

import "context"

// User 对应 usuarios 表的一行；JSON 键与列名一致
type User struct {
	ID       uint    `gorm:"primaryKey;column:id" json:"id"`
	Name     string  `gorm:"column:nombre" json:"nombre"`
	Email    string  `gorm:"column:email" json:"email"`
	Phone    string  `gorm:"column:telefono" json:"telefono"`
	PhotoURL *string `gorm:"column:foto" json:"foto"`
}

func (User) TableName() string { return "usuarios" }

// Fields 每次写入都会整体覆盖的文本列（空字符串同样会写入）
type Fields struct {
	Name  string
	Email string
	Phone string
}

// UpdateFields 更新的两种形态：带新照片 / 不动照片。
// 只有本包内的 WithPhoto 和 WithoutPhoto 实现它，不存在“照片置空”的第三种形态。
type UpdateFields interface {
	columns() map[string]any
}

type WithPhoto struct {
	Fields
	PhotoURL string
}

type WithoutPhoto struct {
	Fields
}

func (f Fields) textColumns() map[string]any {
	return map[string]any{
		"nombre":   f.Name,
		"email":    f.Email,
		"telefono": f.Phone,
	}
}

func (w WithPhoto) columns() map[string]any {
	m := w.Fields.textColumns()
	m["foto"] = w.PhotoURL
	return m
}

func (w WithoutPhoto) columns() map[string]any { return w.Fields.textColumns() }

// Columns 返回 UPDATE 的 SET 列；WithoutPhoto 永远不含 foto
func Columns(u UpdateFields) map[string]any { return u.columns() }

type UserRepository interface {
	ListAll(ctx context.Context) ([]User, error)
	Insert(ctx context.Context, f Fields, photoURL *string) (uint, error)
	UpdateByID(ctx context.Context, id uint, u UpdateFields) error
	DeleteByID(ctx context.Context, id uint) error
}
