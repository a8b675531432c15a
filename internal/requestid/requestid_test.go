package requestid

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func newTestRouter(seen *string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Middleware())
	router.GET("/", func(c *gin.Context) {
		*seen = FromContext(c)
		c.Status(http.StatusNoContent)
	})
	return router
}

func TestMiddlewareGeneratesID(t *testing.T) {
	var seen string
	router := newTestRouter(&seen)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	got := rec.Header().Get(HeaderName)
	if _, err := uuid.Parse(got); err != nil {
		t.Fatalf("expected generated uuid, got %q", got)
	}
	if seen != got {
		t.Fatalf("context id %q does not match header %q", seen, got)
	}
}

func TestMiddlewarePropagatesID(t *testing.T) {
	var seen string
	router := newTestRouter(&seen)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(HeaderName, "client-trace-1")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if got := rec.Header().Get(HeaderName); got != "client-trace-1" {
		t.Fatalf("unexpected header: %q", got)
	}
	if seen != "client-trace-1" {
		t.Fatalf("unexpected context id: %q", seen)
	}
}

func TestMiddlewareReplacesInvalidID(t *testing.T) {
	for _, id := range []string{"has space", strings.Repeat("a", maxLength+1), "tab\tid"} {
		var seen string
		router := newTestRouter(&seen)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderName, id)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		if seen == id {
			t.Fatalf("expected %q to be replaced", id)
		}
		if _, err := uuid.Parse(seen); err != nil {
			t.Fatalf("expected uuid replacement, got %q", seen)
		}
	}
}

func TestLogFormatterIncludesID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	var buf bytes.Buffer
	router := gin.New()
	router.Use(Middleware(), gin.LoggerWithConfig(gin.LoggerConfig{
		Formatter: LogFormatter,
		Output:    &buf,
	}))
	router.GET("/todos", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/todos", nil)
	req.Header.Set(HeaderName, "abc-123")
	router.ServeHTTP(httptest.NewRecorder(), req)

	line := buf.String()
	if !strings.Contains(line, "abc-123") || !strings.Contains(line, "/todos") {
		t.Fatalf("unexpected log line: %q", line)
	}
}
