package auth

import (
	"github.com/yourusername/todo-api/internal/apierr"
	"github.com/yourusername/todo-api/internal/storage"
)

// Principal は認証済みのリクエスト主体です。
type Principal struct {
	UserID   uint
	Username string
	Email    string
	Role     storage.Role
}

func principalFromUser(u *storage.User) Principal {
	return Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// Owns は principal が ownerID のリソースの所有者であるかを返します。
func Owns(p Principal, ownerID uint) bool {
	return p.UserID != 0 && p.UserID == ownerID
}

// Authorize は所有者でない場合に 403 のエラーを返します。
func Authorize(p Principal, ownerID uint, resource string) error {
	if !Owns(p, ownerID) {
		return apierr.New(apierr.CodeForbidden, "Not authorized for this "+resource)
	}
	return nil
}

// CanOwn は principal が Todo/Category を所有できるロールかを返します。
func CanOwn(p Principal) bool {
	return p.UserID != 0 && p.Role == storage.RoleRegularUser
}
