package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"todo-tracker/internal/model"
)

// TodoFields is the full set of writable todo columns. A nil pointer is
// written as NULL.
type TodoFields struct {
	Title      *string
	Completed  *bool
	DueDate    *model.Date
	CategoryID *string
}

// TodoRepository handles CRUD for todos. Errors are returned as the
// driver reports them so callers can surface the message unchanged.
type TodoRepository struct {
	db *gorm.DB
}

func NewTodoRepository(db *gorm.DB) *TodoRepository {
	return &TodoRepository{db: db}
}

// withCategory expands the referenced category into Todo.Categories.
func withCategory(db *gorm.DB) *gorm.DB {
	return db.Preload("Categories", func(tx *gorm.DB) *gorm.DB {
		return tx.Select("id", "name", "color")
	})
}

// List returns all todos, earliest due date first and newest first within a day.
// Where undated todos sort is left to the database.
func (r *TodoRepository) List(ctx context.Context) ([]model.Todo, error) {
	todos := []model.Todo{}
	err := withCategory(r.db.WithContext(ctx)).
		Order("due_date ASC").
		Order("created_at DESC").
		Find(&todos).Error
	if err != nil {
		return nil, err
	}
	return todos, nil
}

// Get returns a single todo with its category.
func (r *TodoRepository) Get(ctx context.Context, id string) (*model.Todo, error) {
	var todo model.Todo
	if err := withCategory(r.db.WithContext(ctx)).Where("id = ?", id).First(&todo).Error; err != nil {
		return nil, err
	}
	return &todo, nil
}

// Create inserts the todo and returns the stored row with its category.
func (r *TodoRepository) Create(ctx context.Context, todo *model.Todo) (*model.Todo, error) {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(todo).Error; err != nil {
		return nil, err
	}
	return r.Get(ctx, todo.ID)
}

// Update overwrites every writable column of the row with the given id and
// returns the stored row. Matching no row surfaces as gorm.ErrRecordNotFound
// from the re-read.
func (r *TodoRepository) Update(ctx context.Context, id string, fields TodoFields) (*model.Todo, error) {
	values := map[string]interface{}{
		"title":       nil,
		"completed":   nil,
		"due_date":    nil,
		"category_id": nil,
	}
	if fields.Title != nil {
		values["title"] = *fields.Title
	}
	if fields.Completed != nil {
		values["completed"] = *fields.Completed
	}
	if fields.DueDate != nil {
		values["due_date"] = *fields.DueDate
	}
	if fields.CategoryID != nil {
		values["category_id"] = *fields.CategoryID
	}

	err := r.db.WithContext(ctx).Model(&model.Todo{}).Where("id = ?", id).Updates(values).Error
	if err != nil {
		return nil, err
	}
	return r.Get(ctx, id)
}

// Delete removes the todo; deleting an unknown id is not an error.
func (r *TodoRepository) Delete(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Todo{}).Error
}
