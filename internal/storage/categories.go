package storage

import (
	"context"
	"fmt"
)

// CreateCategory はカテゴリを作成します。
func (s *Store) CreateCategory(ctx context.Context, category *Category) error {
	if category == nil {
		return fmt.Errorf("category is nil")
	}
	return translate(s.db.WithContext(ctx).Create(category).Error)
}

// GetCategory は ID でカテゴリを取得します。
func (s *Store) GetCategory(ctx context.Context, id uint) (*Category, error) {
	var category Category
	if err := s.db.WithContext(ctx).First(&category, id).Error; err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

// CategoryTodos はカテゴリに紐付いた Todo を返します。
func (s *Store) CategoryTodos(ctx context.Context, categoryID uint) ([]Todo, error) {
	todos := []Todo{}
	err := s.db.WithContext(ctx).
		Joins("JOIN todo_categories ON todo_categories.todo_id = todos.id").
		Where("todo_categories.category_id = ?", categoryID).
		Order("todos.id").
		Find(&todos).Error
	if err != nil {
		return nil, translate(err)
	}
	return todos, nil
}

// LinkExists は Todo とカテゴリが紐付いているかを返します。
func (s *Store) LinkExists(ctx context.Context, todoID, categoryID uint) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&TodoCategory{}).
		Where("todo_id = ? AND category_id = ?", todoID, categoryID).
		Count(&count).Error
	if err != nil {
		return false, translate(err)
	}
	return count > 0, nil
}

// CreateLink は紐付けを作成します。既に存在する場合は ErrDuplicate を返します。
func (s *Store) CreateLink(ctx context.Context, todoID, categoryID uint) error {
	link := &TodoCategory{TodoID: todoID, CategoryID: categoryID}
	return translate(s.db.WithContext(ctx).Create(link).Error)
}

// DeleteLink は紐付けを削除します。存在しない場合は ErrNotFound を返します。
func (s *Store) DeleteLink(ctx context.Context, todoID, categoryID uint) error {
	result := s.db.WithContext(ctx).
		Where("todo_id = ? AND category_id = ?", todoID, categoryID).
		Delete(&TodoCategory{})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
