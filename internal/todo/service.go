// Package todo は Todo とカテゴリの操作を提供します。
//
// すべての操作は認証済みの Principal を受け取り、所有者チェックを通過した場合のみ
// ストレージに到達します。
package todo

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/yourusername/todo-api/internal/apierr"
	"github.com/yourusername/todo-api/internal/auth"
	"github.com/yourusername/todo-api/internal/storage"
)

const (
	MessageCategoryAdded   = "Category added"
	MessageAlreadyAssigned = "Category already assigned to todo"
	MessageCategoryRemoved = "Category removed"
	MessageTodoDeleted     = "Todo deleted"
)

// Store は Service が利用する永続化操作です。
type Store interface {
	ListTodos(ctx context.Context, userID uint) ([]storage.Todo, error)
	GetTodo(ctx context.Context, id uint) (*storage.Todo, error)
	CreateTodo(ctx context.Context, todo *storage.Todo) error
	SaveTodo(ctx context.Context, todo *storage.Todo) error
	DeleteTodo(ctx context.Context, id uint) error
	CategoryNames(ctx context.Context, todoIDs []uint) (map[uint][]string, error)

	CreateCategory(ctx context.Context, category *storage.Category) error
	GetCategory(ctx context.Context, id uint) (*storage.Category, error)
	CategoryTodos(ctx context.Context, categoryID uint) ([]storage.Todo, error)

	LinkExists(ctx context.Context, todoID, categoryID uint) (bool, error)
	CreateLink(ctx context.Context, todoID, categoryID uint) error
	DeleteLink(ctx context.Context, todoID, categoryID uint) error
}

// TodoView は Todo のレスポンス表現です。
type TodoView struct {
	ID         uint     `json:"id"`
	Text       string   `json:"text"`
	Done       bool     `json:"done"`
	Categories []string `json:"categories"`
}

// CategoryView はカテゴリのレスポンス表現です。
type CategoryView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

// Update は Todo の部分更新です。nil のフィールドは変更しません。
type Update struct {
	Text *string
	Done *bool
}

// Service は Todo/カテゴリ操作のビジネスロジックです。
type Service struct {
	store  Store
	logger *log.Logger
}

// NewService は Service を作成します。
func NewService(store Store, logger *log.Logger) (*Service, error) {
	if store == nil {
		return nil, errors.New("store is nil")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Service{store: store, logger: logger}, nil
}

// ListTodos は principal の Todo 一覧を返します。
func (s *Service) ListTodos(ctx context.Context, p auth.Principal) ([]TodoView, error) {
	todos, err := s.store.ListTodos(ctx, p.UserID)
	if err != nil {
		return nil, fmt.Errorf("list todos: %w", err)
	}
	return s.views(ctx, todos)
}

// GetTodo は principal が所有する Todo を返します。
func (s *Service) GetTodo(ctx context.Context, p auth.Principal, id uint) (TodoView, error) {
	todo, err := s.ownedTodo(ctx, p, id)
	if err != nil {
		return TodoView{}, err
	}
	return s.view(ctx, todo)
}

// CreateTodo は principal の Todo を作成します。
func (s *Service) CreateTodo(ctx context.Context, p auth.Principal, text string) (TodoView, error) {
	if !auth.CanOwn(p) {
		return TodoView{}, apierr.New(apierr.CodeForbidden, "Only regular users can create todos")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return TodoView{}, apierr.New(apierr.CodeInvalidInput, "text is required")
	}

	todo := &storage.Todo{UserID: p.UserID, Text: text}
	if err := s.store.CreateTodo(ctx, todo); err != nil {
		return TodoView{}, s.writeFailure("An error occurred while creating an item", err)
	}
	return TodoView{ID: todo.ID, Text: todo.Text, Done: todo.Done, Categories: []string{}}, nil
}

// UpdateTodo は Todo の本文・完了状態を更新します。空白のみの本文は無視します。
func (s *Service) UpdateTodo(ctx context.Context, p auth.Principal, id uint, upd Update) (TodoView, error) {
	todo, err := s.ownedTodo(ctx, p, id)
	if err != nil {
		return TodoView{}, err
	}
	if upd.Text != nil {
		if text := strings.TrimSpace(*upd.Text); text != "" {
			todo.Text = text
		}
	}
	if upd.Done != nil {
		todo.Done = *upd.Done
	}
	if err := s.store.SaveTodo(ctx, todo); err != nil {
		return TodoView{}, s.writeFailure("An error occurred while updating an item", err)
	}
	return s.view(ctx, todo)
}

// ToggleTodo は Todo の完了状態を反転します。
func (s *Service) ToggleTodo(ctx context.Context, p auth.Principal, id uint) (TodoView, error) {
	todo, err := s.ownedTodo(ctx, p, id)
	if err != nil {
		return TodoView{}, err
	}
	todo.Toggle()
	if err := s.store.SaveTodo(ctx, todo); err != nil {
		return TodoView{}, s.writeFailure("An error occurred while updating an item", err)
	}
	return s.view(ctx, todo)
}

// DeleteTodo は Todo とその紐付けを削除します。
func (s *Service) DeleteTodo(ctx context.Context, p auth.Principal, id uint) error {
	if _, err := s.ownedTodo(ctx, p, id); err != nil {
		return err
	}
	if err := s.store.DeleteTodo(ctx, id); err != nil {
		return s.writeFailure("An error occurred while deleting an item", err)
	}
	return nil
}

// CreateCategory は principal のカテゴリを作成します。
func (s *Service) CreateCategory(ctx context.Context, p auth.Principal, text string) (CategoryView, error) {
	if !auth.CanOwn(p) {
		return CategoryView{}, apierr.New(apierr.CodeForbidden, "Only regular users can create categories")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return CategoryView{}, apierr.New(apierr.CodeInvalidInput, "text is required")
	}

	category := &storage.Category{UserID: p.UserID, Text: text}
	if err := s.store.CreateCategory(ctx, category); err != nil {
		return CategoryView{}, s.writeFailure("An error occurred while creating an item", err)
	}
	return CategoryView{ID: category.ID, Text: category.Text}, nil
}

// LinkCategory は Todo にカテゴリを紐付けます。
// 既に紐付いている場合は何もせず added=false を返します。
func (s *Service) LinkCategory(ctx context.Context, p auth.Principal, todoID, categoryID uint) (added bool, err error) {
	if _, err := s.ownedTodo(ctx, p, todoID); err != nil {
		return false, err
	}
	if _, err := s.ownedCategory(ctx, p, categoryID); err != nil {
		return false, err
	}

	exists, err := s.store.LinkExists(ctx, todoID, categoryID)
	if err != nil {
		return false, fmt.Errorf("check link: %w", err)
	}
	if exists {
		return false, nil
	}

	if err := s.store.CreateLink(ctx, todoID, categoryID); err != nil {
		// 同時リクエストで先に作成された場合も「紐付け済み」として扱う
		if errors.Is(err, storage.ErrDuplicate) {
			return false, nil
		}
		return false, s.writeFailure("An error occurred while creating relation", err)
	}
	return true, nil
}

// UnlinkCategory は Todo とカテゴリの紐付けを解除します。
func (s *Service) UnlinkCategory(ctx context.Context, p auth.Principal, todoID, categoryID uint) error {
	if _, err := s.ownedTodo(ctx, p, todoID); err != nil {
		return err
	}
	if _, err := s.ownedCategory(ctx, p, categoryID); err != nil {
		return err
	}
	if err := s.store.DeleteLink(ctx, todoID, categoryID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return apierr.New(apierr.CodeLinkNotFound, "Category is not assigned to this todo")
		}
		return s.writeFailure("An error occurred while deleting an item", err)
	}
	return nil
}

// CategoryTodos はカテゴリに紐付いた Todo を返します。
func (s *Service) CategoryTodos(ctx context.Context, p auth.Principal, categoryID uint) ([]TodoView, error) {
	if _, err := s.ownedCategory(ctx, p, categoryID); err != nil {
		return nil, err
	}
	todos, err := s.store.CategoryTodos(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("list category todos: %w", err)
	}
	return s.views(ctx, todos)
}

// ownedTodo は Todo を取得し、存在しなければ 404、所有者でなければ 403 を返します。
func (s *Service) ownedTodo(ctx context.Context, p auth.Principal, id uint) (*storage.Todo, error) {
	todo, err := s.store.GetTodo(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.New(apierr.CodeTodoNotFound, "Todo not found")
		}
		return nil, fmt.Errorf("get todo: %w", err)
	}
	if err := auth.Authorize(p, todo.UserID, "todo"); err != nil {
		return nil, err
	}
	return todo, nil
}

// ownedCategory は ownedTodo のカテゴリ版です。
func (s *Service) ownedCategory(ctx context.Context, p auth.Principal, id uint) (*storage.Category, error) {
	category, err := s.store.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, apierr.New(apierr.CodeCategoryNotFound, "Category not found")
		}
		return nil, fmt.Errorf("get category: %w", err)
	}
	if err := auth.Authorize(p, category.UserID, "category"); err != nil {
		return nil, err
	}
	return category, nil
}

func (s *Service) writeFailure(message string, err error) error {
	s.logger.Printf("%s: %v", message, err)
	return apierr.Wrap(apierr.CodePersistenceUnavailable, message, err)
}

func (s *Service) view(ctx context.Context, todo *storage.Todo) (TodoView, error) {
	views, err := s.views(ctx, []storage.Todo{*todo})
	if err != nil {
		return TodoView{}, err
	}
	return views[0], nil
}

func (s *Service) views(ctx context.Context, todos []storage.Todo) ([]TodoView, error) {
	ids := make([]uint, len(todos))
	for i, t := range todos {
		ids[i] = t.ID
	}
	names, err := s.store.CategoryNames(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load category names: %w", err)
	}

	views := make([]TodoView, len(todos))
	for i, t := range todos {
		categories := names[t.ID]
		if categories == nil {
			categories = []string{}
		}
		views[i] = TodoView{
			ID:         t.ID,
			Text:       t.Text,
			Done:       t.Done,
			Categories: categories,
		}
	}
	return views, nil
}
