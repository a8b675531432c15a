package auth

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/apierr"
)

const bearerScheme = "bearer"

// RequireToken は Authorization: Bearer ヘッダーを検証するミドルウェアを返します。
// 検証に成功した場合のみ Principal をコンテキストに設定して次に進みます。
func (m *Manager) RequireToken() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			apierr.Respond(c, apierr.New(apierr.CodeUnauthorized, "Not authenticated"))
			return
		}

		principal, err := m.resolve(c.Request.Context(), raw)
		if err != nil {
			if errors.Is(err, ErrInvalidToken) || errors.Is(err, ErrTokenExpired) {
				apierr.Respond(c, apierr.Wrap(apierr.CodeUnauthorized, "Could not validate credentials", err))
				return
			}
			m.logger.Printf("failed to resolve principal: %v", err)
			apierr.Respond(c, err)
			return
		}

		c.Set(ContextPrincipalKey, principal)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) {
		return "", false
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}
	return token, true
}
