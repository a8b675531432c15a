package storage

import (
	"context"
	"fmt"

	"gorm.io/gorm"
)

// ListTodos はユーザーが所有する Todo を ID 順に返します。
func (s *Store) ListTodos(ctx context.Context, userID uint) ([]Todo, error) {
	todos := []Todo{}
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id").
		Find(&todos).Error
	if err != nil {
		return nil, translate(err)
	}
	return todos, nil
}

// GetTodo は ID で Todo を取得します。所有者の確認は呼び出し側の責務です。
func (s *Store) GetTodo(ctx context.Context, id uint) (*Todo, error) {
	var todo Todo
	if err := s.db.WithContext(ctx).First(&todo, id).Error; err != nil {
		return nil, translate(err)
	}
	return &todo, nil
}

// CreateTodo は Todo を作成します。
func (s *Store) CreateTodo(ctx context.Context, todo *Todo) error {
	if todo == nil {
		return fmt.Errorf("todo is nil")
	}
	return translate(s.db.WithContext(ctx).Create(todo).Error)
}

// SaveTodo は Todo の本文と完了状態を更新します。
func (s *Store) SaveTodo(ctx context.Context, todo *Todo) error {
	if todo == nil {
		return fmt.Errorf("todo is nil")
	}
	result := s.db.WithContext(ctx).
		Model(todo).
		Select("text", "done", "updated_at").
		Updates(todo)
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteTodo は Todo とその紐付けを同一トランザクションで削除します。
func (s *Store) DeleteTodo(ctx context.Context, id uint) error {
	return translate(s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("todo_id = ?", id).Delete(&TodoCategory{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&Todo{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	}))
}

// CategoryNames は Todo ごとの紐付け済みカテゴリ名を返します。
func (s *Store) CategoryNames(ctx context.Context, todoIDs []uint) (map[uint][]string, error) {
	names := make(map[uint][]string, len(todoIDs))
	if len(todoIDs) == 0 {
		return names, nil
	}

	var rows []struct {
		TodoID uint
		Text   string
	}
	err := s.db.WithContext(ctx).
		Table("todo_categories").
		Select("todo_categories.todo_id AS todo_id, categories.text AS text").
		Joins("JOIN categories ON categories.id = todo_categories.category_id").
		Where("todo_categories.todo_id IN ?", todoIDs).
		Order("categories.id").
		Scan(&rows).Error
	if err != nil {
		return nil, translate(err)
	}
	for _, row := range rows {
		names[row.TodoID] = append(names[row.TodoID], row.Text)
	}
	return names, nil
}
