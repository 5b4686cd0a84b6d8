package user

// UsuarioModel 仅用于建表（AutoMigrate）；读写走 domain.User
type UsuarioModel struct {
	ID       uint    `gorm:"primaryKey;autoIncrement"`
	Nombre   string  `gorm:"size:255;not null"`
	Email    string  `gorm:"size:255;not null"`
	Telefono string  `gorm:"size:64"`
	Foto     *string `gorm:"size:1024"`
}

func (UsuarioModel) TableName() string { return "usuarios" }
