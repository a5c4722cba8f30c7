package service

import (
	"context"
	"log"

	"todo-tracker/internal/model"
	"todo-tracker/internal/repository"
)

// TodoStore is the persistence the todo service relies on.
type TodoStore interface {
	List(ctx context.Context) ([]model.Todo, error)
	Create(ctx context.Context, todo *model.Todo) (*model.Todo, error)
	Update(ctx context.Context, id string, fields repository.TodoFields) (*model.Todo, error)
	Delete(ctx context.Context, id string) error
}

// TodoInput represents data required to create a todo.
type TodoInput struct {
	Title      string  `json:"title"`
	DueDate    *string `json:"due_date"`
	CategoryID *string `json:"category_id"`
}

// TodoUpdate is the body of an update request. Every field other than ID
// is written; a nil field clears the stored value.
type TodoUpdate struct {
	ID         string  `json:"id"`
	Title      *string `json:"title"`
	Completed  *bool   `json:"completed"`
	DueDate    *string `json:"due_date"`
	CategoryID *string `json:"category_id"`
}

// TodoService wraps todo-related request logic.
type TodoService struct {
	repo TodoStore
}

func NewTodoService(repo TodoStore) *TodoService {
	return &TodoService{repo: repo}
}

func (s *TodoService) List(ctx context.Context) ([]model.Todo, error) {
	todos, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list todos", err)
	}
	return todos, nil
}

func (s *TodoService) Create(ctx context.Context, input TodoInput) (*model.Todo, error) {
	if input.Title == "" {
		return nil, invalid("Title is required")
	}
	due, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	todo, err := s.repo.Create(ctx, &model.Todo{
		Title:      input.Title,
		DueDate:    due,
		CategoryID: nonEmpty(input.CategoryID),
	})
	if err != nil {
		return nil, storeErr("create todo", err)
	}

	log.Printf("[info] todo created id=%s", todo.ID)
	return todo, nil
}

// Update writes all four fields of the todo, including the ones the caller
// left out. Omitting due_date or category_id clears them.
func (s *TodoService) Update(ctx context.Context, input TodoUpdate) (*model.Todo, error) {
	if input.ID == "" {
		return nil, invalid("ID is required")
	}
	due, err := parseDueDate(input.DueDate)
	if err != nil {
		return nil, err
	}

	todo, err := s.repo.Update(ctx, input.ID, repository.TodoFields{
		Title:      input.Title,
		Completed:  input.Completed,
		DueDate:    due,
		CategoryID: nonEmpty(input.CategoryID),
	})
	if err != nil {
		return nil, storeErr("update todo", err)
	}
	return todo, nil
}

func (s *TodoService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return invalid("ID is required")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return storeErr("delete todo", err)
	}
	log.Printf("[info] todo deleted id=%s", id)
	return nil
}

func parseDueDate(raw *string) (*model.Date, error) {
	if raw == nil || *raw == "" {
		return nil, nil
	}
	d, err := model.ParseDate(*raw)
	if err != nil {
		return nil, invalid("Due date must be formatted as YYYY-MM-DD")
	}
	return &d, nil
}

// nonEmpty maps an empty reference to no reference.
func nonEmpty(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
