// Package apierr は API レスポンスに変換できるコード付きエラーを提供します。
package apierr

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Code は機械可読なエラーコードです。
type Code string

const (
	CodeInvalidInput           Code = "INVALID_INPUT"
	CodeInvalidCredentials     Code = "INVALID_CREDENTIALS"
	CodeUnauthorized           Code = "UNAUTHORIZED"
	CodeForbidden              Code = "FORBIDDEN"
	CodeUserExists             Code = "USER_ALREADY_EXISTS"
	CodeTodoNotFound           Code = "TODO_NOT_FOUND"
	CodeCategoryNotFound       Code = "CATEGORY_NOT_FOUND"
	CodeLinkNotFound           Code = "LINK_NOT_FOUND"
	CodePersistenceUnavailable Code = "PERSISTENCE_UNAVAILABLE"
	CodeInternal               Code = "INTERNAL_ERROR"
	CodeRequestCanceled        Code = "REQUEST_CANCELED"
)

var statusByCode = map[Code]int{
	CodeInvalidInput:           http.StatusBadRequest,
	CodeUserExists:             http.StatusBadRequest,
	CodeInvalidCredentials:     http.StatusUnauthorized,
	CodeUnauthorized:           http.StatusUnauthorized,
	CodeForbidden:              http.StatusForbidden,
	CodeTodoNotFound:           http.StatusNotFound,
	CodeCategoryNotFound:       http.StatusNotFound,
	CodeLinkNotFound:           http.StatusNotFound,
	CodePersistenceUnavailable: http.StatusServiceUnavailable,
	CodeRequestCanceled:        http.StatusRequestTimeout,
	CodeInternal:               http.StatusInternalServerError,
}

// Status はコードに対応する HTTP ステータスを返します。
func (c Code) Status() int {
	if status, ok := statusByCode[c]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// Error は API エラーを表します。Message はそのままクライアントに返されます。
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is はコードが一致するかで比較します。
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Code == t.Code
	}
	return false
}

// New はコード付きエラーを作成します。
func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

// Wrap は原因エラーを保持したコード付きエラーを作成します。
func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// StatusOf は err に対応する HTTP ステータスを返します。
func StatusOf(err error) int {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
		return apiErr.Code.Status()
	case errors.Is(err, context.Canceled):
		return http.StatusRequestTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Respond は err を {code, message} 形式の JSON で返します。
// 401 の場合は Bearer チャレンジヘッダーを付与します。
func Respond(c *gin.Context, err error) {
	var apiErr *Error
	switch {
	case errors.As(err, &apiErr):
	case errors.Is(err, context.Canceled):
		apiErr = New(CodeRequestCanceled, "request was canceled")
	default:
		apiErr = New(CodeInternal, "internal server error")
	}

	status := apiErr.Code.Status()
	if status == http.StatusUnauthorized {
		c.Header("WWW-Authenticate", "Bearer")
	}
	if status >= http.StatusInternalServerError {
		_ = c.Error(err)
	}
	c.AbortWithStatusJSON(status, gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	})
}
