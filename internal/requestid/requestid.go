// Package requestid はリクエストごとの ID を付与する gin ミドルウェアです。
package requestid

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// HeaderName はリクエスト ID を受け渡すヘッダー名です。
	HeaderName = "X-Request-Id"
	// ContextKey は gin.Context にリクエスト ID を保存するキーです。
	ContextKey = "requestid"

	maxLength = 128
)

// Middleware はクライアントから受け取った ID を引き継ぐか、新しい UUID を払い出します。
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderName)
		if !valid(id) {
			id = uuid.NewString()
		}
		c.Set(ContextKey, id)
		c.Header(HeaderName, id)
		c.Next()
	}
}

// FromContext は Middleware が設定したリクエスト ID を返します。
func FromContext(c *gin.Context) string {
	return c.GetString(ContextKey)
}

// LogFormatter はリクエスト ID 付きのアクセスログ行を整形します。
func LogFormatter(param gin.LogFormatterParams) string {
	id, _ := param.Keys[ContextKey].(string)
	return fmt.Sprintf("[GIN] %s | %s | %3d | %13v | %15s | %-7s %s\n%s",
		param.TimeStamp.Format(time.RFC3339),
		id,
		param.StatusCode,
		param.Latency,
		param.ClientIP,
		param.Method,
		param.Path,
		param.ErrorMessage,
	)
}

// valid は印字可能な ASCII のみで構成された妥当な長さの ID かを判定します。
func valid(id string) bool {
	if id == "" || len(id) > maxLength {
		return false
	}
	for i := 0; i < len(id); i++ {
		if id[i] < 0x21 || id[i] > 0x7e {
			return false
		}
	}
	return true
}
