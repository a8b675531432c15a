package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// CreateUser はユーザーを作成します。ユーザー名かメールアドレスが重複する場合は ErrDuplicate を返します。
func (s *Store) CreateUser(ctx context.Context, u *User) error {
	if u == nil {
		return fmt.Errorf("user is nil")
	}
	if !u.Role.Valid() {
		return fmt.Errorf("invalid role: %q", u.Role)
	}
	return translate(s.db.WithContext(ctx).Create(u).Error)
}

// UserByUsername はユーザー名でユーザーを取得します。
func (s *Store) UserByUsername(ctx context.Context, username string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, ErrNotFound
	}
	var u User
	if err := s.db.WithContext(ctx).Where("username = ?", username).First(&u).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// UserByID は ID でユーザーを取得します。
func (s *Store) UserByID(ctx context.Context, id uint) (*User, error) {
	var u User
	if err := s.db.WithContext(ctx).First(&u, id).Error; err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

// EnsureUser は同じユーザー名のユーザーが無い場合のみ作成します。作成した場合は true を返します。
func (s *Store) EnsureUser(ctx context.Context, u *User) (bool, error) {
	if u == nil {
		return false, fmt.Errorf("user is nil")
	}
	existing, err := s.UserByUsername(ctx, u.Username)
	if err == nil {
		*u = *existing
		return false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return false, err
	}
	if err := s.CreateUser(ctx, u); err != nil {
		return false, err
	}
	return true, nil
}
