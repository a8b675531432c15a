package todo

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/todo-api/internal/apierr"
	"github.com/yourusername/todo-api/internal/auth"
)

// TodoService は Todo 操作を提供します。
type TodoService interface {
	ListTodos(ctx context.Context, p auth.Principal) ([]TodoView, error)
	GetTodo(ctx context.Context, p auth.Principal, id uint) (TodoView, error)
	CreateTodo(ctx context.Context, p auth.Principal, text string) (TodoView, error)
	UpdateTodo(ctx context.Context, p auth.Principal, id uint, upd Update) (TodoView, error)
	ToggleTodo(ctx context.Context, p auth.Principal, id uint) (TodoView, error)
	DeleteTodo(ctx context.Context, p auth.Principal, id uint) error
}

// CategoryService はカテゴリと紐付けの操作を提供します。
type CategoryService interface {
	CreateCategory(ctx context.Context, p auth.Principal, text string) (CategoryView, error)
	LinkCategory(ctx context.Context, p auth.Principal, todoID, categoryID uint) (bool, error)
	UnlinkCategory(ctx context.Context, p auth.Principal, todoID, categoryID uint) error
	CategoryTodos(ctx context.Context, p auth.Principal, categoryID uint) ([]TodoView, error)
}

type textRequest struct {
	Text string `json:"text" binding:"required"`
}

type updateRequest struct {
	Text *string `json:"text"`
	Done *bool   `json:"done"`
}

// ListTodosHandler は GET /todos のハンドラーを返します。
func ListTodosHandler(svc TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		todos, err := svc.ListTodos(c.Request.Context(), p)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, todos)
	}
}

// CreateTodoHandler は POST /todos のハンドラーを返します。
func CreateTodoHandler(svc TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, "text is required"))
			return
		}
		todo, err := svc.CreateTodo(c.Request.Context(), p, req.Text)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// GetTodoHandler は GET /todo/:id のハンドラーを返します。
func GetTodoHandler(svc TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		todo, err := svc.GetTodo(c.Request.Context(), p, id)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// UpdateTodoHandler は PUT /todo/:id のハンドラーを返します。
func UpdateTodoHandler(svc TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		var req updateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, "text must be a string and done must be a boolean"))
			return
		}
		todo, err := svc.UpdateTodo(c.Request.Context(), p, id, Update{Text: req.Text, Done: req.Done})
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// ToggleTodoHandler は POST /todo/:id/toggle のハンドラーを返します。
func ToggleTodoHandler(svc TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		todo, err := svc.ToggleTodo(c.Request.Context(), p, id)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, todo)
	}
}

// DeleteTodoHandler は DELETE /todo/:id のハンドラーを返します。
func DeleteTodoHandler(svc TodoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		id, ok := pathID(c, "id")
		if !ok {
			return
		}
		if err := svc.DeleteTodo(c.Request.Context(), p, id); err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": MessageTodoDeleted})
	}
}

// CreateCategoryHandler は POST /category のハンドラーを返します。
func CreateCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		var req textRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, "text is required"))
			return
		}
		category, err := svc.CreateCategory(c.Request.Context(), p, req.Text)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, category)
	}
}

// LinkCategoryHandler は POST /todo/:id/category/:cid のハンドラーを返します。
func LinkCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		todoID, ok := pathID(c, "id")
		if !ok {
			return
		}
		categoryID, ok := pathID(c, "cid")
		if !ok {
			return
		}
		added, err := svc.LinkCategory(c.Request.Context(), p, todoID, categoryID)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		message := MessageAlreadyAssigned
		if added {
			message = MessageCategoryAdded
		}
		c.JSON(http.StatusOK, gin.H{"message": message})
	}
}

// UnlinkCategoryHandler は DELETE /todo/:id/category/:cid のハンドラーを返します。
func UnlinkCategoryHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		todoID, ok := pathID(c, "id")
		if !ok {
			return
		}
		categoryID, ok := pathID(c, "cid")
		if !ok {
			return
		}
		if err := svc.UnlinkCategory(c.Request.Context(), p, todoID, categoryID); err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": MessageCategoryRemoved})
	}
}

// CategoryTodosHandler は GET /category/:id/todos のハンドラーを返します。
func CategoryTodosHandler(svc CategoryService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, ok := principal(c)
		if !ok {
			return
		}
		categoryID, ok := pathID(c, "id")
		if !ok {
			return
		}
		todos, err := svc.CategoryTodos(c.Request.Context(), p, categoryID)
		if err != nil {
			apierr.Respond(c, err)
			return
		}
		c.JSON(http.StatusOK, todos)
	}
}

func principal(c *gin.Context) (auth.Principal, bool) {
	p, ok := auth.PrincipalFrom(c)
	if !ok {
		apierr.Respond(c, apierr.New(apierr.CodeUnauthorized, "Not authenticated"))
		return auth.Principal{}, false
	}
	return p, true
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 0)
	if err != nil || id == 0 {
		apierr.Respond(c, apierr.New(apierr.CodeInvalidInput, name+" must be a positive integer"))
		return 0, false
	}
	return uint(id), true
}
