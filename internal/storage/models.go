package storage

import "time"

// Role はユーザーの種別です。
type Role string

const (
	RoleAdmin       Role = "admin"
	RoleRegularUser Role = "regular_user"
)

// Valid は既知のロールかどうかを返します。
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleRegularUser
}

// User はログイン可能なユーザーです。Todo/Category を所有できるのは RoleRegularUser のみです。
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"size:255;uniqueIndex;not null"`
	Email        string `gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	Role         Role   `gorm:"size:32;not null;index"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Todo はユーザーが所有するタスクです。
type Todo struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Owner     *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Text      string `gorm:"not null"`
	Done      bool   `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Toggle は完了状態を反転します。
func (t *Todo) Toggle() {
	t.Done = !t.Done
}

// Category はユーザーが所有するカテゴリです。
type Category struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    uint   `gorm:"not null;index"`
	Owner     *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Text      string `gorm:"not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TodoCategory は Todo と Category の紐付けです（組ごとに一意）。
type TodoCategory struct {
	TodoID     uint      `gorm:"primaryKey;autoIncrement:false"`
	CategoryID uint      `gorm:"primaryKey;autoIncrement:false;index"`
	Todo       *Todo     `gorm:"constraint:OnDelete:CASCADE"`
	Category   *Category `gorm:"constraint:OnDelete:CASCADE"`
	CreatedAt  time.Time
}
