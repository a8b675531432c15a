package auth

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/yourusername/todo-api/internal/storage"
)

// DefaultTokenTTL はアクセストークンの既定の有効期限です。
const DefaultTokenTTL = 15 * time.Minute

var (
	// ErrInvalidToken はトークンの形式・署名・クレームが不正であることを表します。
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenExpired はトークンの有効期限切れを表します。
	ErrTokenExpired = errors.New("token expired")
)

// TokenConfig はトークン発行・検証の設定です。
type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
	Now    func() time.Time
}

// Claims は検証済みトークンから取り出した情報です。
type Claims struct {
	UserID    uint
	Role      storage.Role
	TokenID   string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type tokenClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// TokenManager は HS256 の JWT を発行・検証します。
type TokenManager struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager は TokenManager を作成します。
func NewTokenManager(cfg TokenConfig) (*TokenManager, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("token secret is required")
	}
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTokenTTL
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &TokenManager{
		secret: cfg.Secret,
		issuer: cfg.Issuer,
		ttl:    cfg.TTL,
		now:    cfg.Now,
	}, nil
}

// TTL はトークンの有効期間を返します。
func (m *TokenManager) TTL() time.Duration {
	return m.ttl
}

// Issue は userID と role を埋め込んだトークンを発行します。
func (m *TokenManager) Issue(userID uint, role storage.Role) (string, error) {
	if userID == 0 {
		return "", errors.New("user id is required")
	}
	if !role.Valid() {
		return "", fmt.Errorf("invalid role: %q", role)
	}

	now := m.now().UTC()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			Issuer:    m.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			ID:        uuid.NewString(),
		},
		Role: string(role),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Verify はトークンを検証し、クレームを返します。
// 形式不正・署名不一致・期限切れ・sub/role の欠落はすべてエラーになります。
func (m *TokenManager) Verify(raw string) (Claims, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Claims{}, ErrInvalidToken
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(m.now),
	}
	if m.issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.issuer))
	}

	var parsed tokenClaims
	_, err := jwt.ParseWithClaims(raw, &parsed, func(token *jwt.Token) (any, error) {
		return m.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, ErrTokenExpired
		}
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if parsed.Subject == "" || parsed.Role == "" {
		return Claims{}, fmt.Errorf("%w: missing sub or role", ErrInvalidToken)
	}
	userID, err := strconv.ParseUint(parsed.Subject, 10, 64)
	if err != nil || userID == 0 {
		return Claims{}, fmt.Errorf("%w: malformed sub", ErrInvalidToken)
	}
	role := storage.Role(parsed.Role)
	if !role.Valid() {
		return Claims{}, fmt.Errorf("%w: unknown role", ErrInvalidToken)
	}

	claims := Claims{
		UserID:  uint(userID),
		Role:    role,
		TokenID: parsed.ID,
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}
	return claims, nil
}
