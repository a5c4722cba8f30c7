package service

import (
	"context"
	"log"

	"todo-tracker/internal/model"
)

// CategoryStore is the persistence the category service relies on.
type CategoryStore interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, category *model.Category) error
}

// CategoryInput is the body of a create-category request.
type CategoryInput struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// CategoryService provides list and create over categories.
type CategoryService struct {
	repo CategoryStore
}

func NewCategoryService(repo CategoryStore) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) List(ctx context.Context) ([]model.Category, error) {
	categories, err := s.repo.List(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return categories, nil
}

func (s *CategoryService) Create(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if input.Name == "" || input.Color == "" {
		return nil, invalid("Name and color are required")
	}

	category := model.Category{Name: input.Name, Color: input.Color}
	if err := s.repo.Create(ctx, &category); err != nil {
		return nil, storeErr("create category", err)
	}

	log.Printf("[info] category created id=%s name=%q", category.ID, category.Name)
	return &category, nil
}
