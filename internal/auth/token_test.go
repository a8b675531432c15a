package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/yourusername/todo-api/internal/storage"
)

var testSecret = []byte("0123456789abcdef0123456789abcdef")

func newTestTokens(t *testing.T, now func() time.Time) *TokenManager {
	t.Helper()
	tokens, err := NewTokenManager(TokenConfig{
		Secret: testSecret,
		Issuer: "todo-api-test",
		TTL:    15 * time.Minute,
		Now:    now,
	})
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tokens
}

func signRaw(t *testing.T, method jwt.SigningMethod, key any, claims jwt.Claims) string {
	t.Helper()
	signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func TestNewTokenManagerRequiresSecret(t *testing.T) {
	if _, err := NewTokenManager(TokenConfig{}); err == nil {
		t.Fatal("expected error for empty secret")
	}
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	now := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	tokens := newTestTokens(t, func() time.Time { return now })

	for _, role := range []storage.Role{storage.RoleRegularUser, storage.RoleAdmin} {
		token, err := tokens.Issue(42, role)
		if err != nil {
			t.Fatalf("Issue: %v", err)
		}
		claims, err := tokens.Verify(token)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if claims.UserID != 42 || claims.Role != role {
			t.Fatalf("unexpected claims: %+v", claims)
		}
		if !claims.ExpiresAt.Equal(now.Add(15 * time.Minute)) {
			t.Fatalf("unexpected expiry: %v", claims.ExpiresAt)
		}
		if claims.TokenID == "" {
			t.Fatal("expected jti to be set")
		}
	}
}

func TestIssueRejectsInvalidInput(t *testing.T) {
	tokens := newTestTokens(t, nil)
	if _, err := tokens.Issue(0, storage.RoleRegularUser); err == nil {
		t.Fatal("expected error for zero user id")
	}
	if _, err := tokens.Issue(1, "superuser"); err == nil {
		t.Fatal("expected error for unknown role")
	}
}

func TestVerifyExpired(t *testing.T) {
	issuedAt := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	issuer := newTestTokens(t, func() time.Time { return issuedAt })
	token, err := issuer.Issue(7, storage.RoleRegularUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	later := newTestTokens(t, func() time.Time { return issuedAt.Add(16 * time.Minute) })
	if _, err := later.Verify(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestVerifyRejects(t *testing.T) {
	now := time.Now()
	tokens := newTestTokens(t, func() time.Time { return now })
	exp := jwt.NewNumericDate(now.Add(time.Minute))

	valid, err := tokens.Issue(1, storage.RoleRegularUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	otherKey := newTestTokensWithSecret(t, []byte("another-secret-another-secret-xx"), now)
	foreign, err := otherKey.Issue(1, storage.RoleRegularUser)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"malformed", "not.a.jwt"},
		{"tampered", valid[:len(valid)-2] + "xx"},
		{"wrong key", foreign},
		{"none alg", signRaw(t, jwt.SigningMethodNone, jwt.UnsafeAllowNoneSignatureType, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "todo-api-test", ExpiresAt: exp},
			Role:             "regular_user",
		})},
		{"missing sub", signRaw(t, jwt.SigningMethodHS256, testSecret, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Issuer: "todo-api-test", ExpiresAt: exp},
			Role:             "regular_user",
		})},
		{"missing role", signRaw(t, jwt.SigningMethodHS256, testSecret, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "todo-api-test", ExpiresAt: exp},
		})},
		{"unknown role", signRaw(t, jwt.SigningMethodHS256, testSecret, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "todo-api-test", ExpiresAt: exp},
			Role:             "root",
		})},
		{"non numeric sub", signRaw(t, jwt.SigningMethodHS256, testSecret, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "alice", Issuer: "todo-api-test", ExpiresAt: exp},
			Role:             "regular_user",
		})},
		{"missing exp", signRaw(t, jwt.SigningMethodHS256, testSecret, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "todo-api-test"},
			Role:             "regular_user",
		})},
		{"wrong issuer", signRaw(t, jwt.SigningMethodHS256, testSecret, tokenClaims{
			RegisteredClaims: jwt.RegisteredClaims{Subject: "1", Issuer: "someone-else", ExpiresAt: exp},
			Role:             "regular_user",
		})},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tokens.Verify(tt.token)
			if !errors.Is(err, ErrInvalidToken) {
				t.Fatalf("expected ErrInvalidToken, got %v", err)
			}
		})
	}
}

func newTestTokensWithSecret(t *testing.T, secret []byte, now time.Time) *TokenManager {
	t.Helper()
	tokens, err := NewTokenManager(TokenConfig{
		Secret: secret,
		Issuer: "todo-api-test",
		Now:    func() time.Time { return now },
	})
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tokens
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"Bearer   ", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := bearerToken(tt.header)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("bearerToken(%q) = %q, %v; want %q, %v", tt.header, got, ok, tt.want, tt.ok)
		}
	}
}
