// Package auth は認証・認可機能を提供します。
//
// トークンの検証（ミドルウェア）→ 所有者チェック（Authorize）→ 永続化、の順に
// リクエストを処理するための部品をまとめています。
package auth

import (
	"context"
	"errors"
	"log"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/storage"
)

// ContextPrincipalKey は、ハンドラー間で認証済みの Principal を共有するためのキーです。
const ContextPrincipalKey = "auth.principal"

// UserStore は認証に必要なユーザーの永続化操作です。
type UserStore interface {
	CreateUser(ctx context.Context, u *storage.User) error
	UserByUsername(ctx context.Context, username string) (*storage.User, error)
	UserByID(ctx context.Context, id uint) (*storage.User, error)
}

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	users  UserStore
	tokens *TokenManager
	hasher PasswordHasher
	logger *log.Logger
}

// NewManager は認証マネージャーを作成します。
func NewManager(users UserStore, tokens *TokenManager, hasher PasswordHasher, logger *log.Logger) (*Manager, error) {
	if users == nil {
		return nil, errors.New("users is nil")
	}
	if tokens == nil {
		return nil, errors.New("tokens is nil")
	}
	if hasher == nil {
		return nil, errors.New("hasher is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Manager{
		users:  users,
		tokens: tokens,
		hasher: hasher,
		logger: logger,
	}, nil
}

// PrincipalFrom は RequireToken が設定した Principal を取り出します。
func PrincipalFrom(c *gin.Context) (Principal, bool) {
	v, ok := c.Get(ContextPrincipalKey)
	if !ok {
		return Principal{}, false
	}
	p, ok := v.(Principal)
	return p, ok
}

// authenticate はユーザー名とパスワードを照合します。
func (m *Manager) authenticate(ctx context.Context, username, password string) (*storage.User, error) {
	user, err := m.users.UserByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if !m.hasher.Check(password, user.PasswordHash) {
		return nil, storage.ErrNotFound
	}
	return user, nil
}

// resolve はトークンを検証し、対応するユーザーを Principal として返します。
func (m *Manager) resolve(ctx context.Context, raw string) (Principal, error) {
	claims, err := m.tokens.Verify(raw)
	if err != nil {
		return Principal{}, err
	}
	user, err := m.users.UserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Principal{}, ErrInvalidToken
		}
		return Principal{}, err
	}
	if user.Role != claims.Role {
		return Principal{}, ErrInvalidToken
	}
	return principalFromUser(user), nil
}
