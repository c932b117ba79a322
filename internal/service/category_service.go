package service

import (
	"context"
	"strings"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"

	"github.com/google/uuid"
)

type CategoryService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, name, description string) (*model.Category, error)
	DeleteCategory(ctx context.Context, id uuid.UUID) error
}

type categoryService struct {
	categories repository.CategoryRepository
}

func NewCategoryService(categories repository.CategoryRepository) CategoryService {
	return &categoryService{categories: categories}
}

func (s *categoryService) ListCategories(ctx context.Context) ([]model.Category, error) {
	categories, err := s.categories.FindAll(ctx)
	if err != nil {
		return nil, storeErr("list categories", err)
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, name, description string) (*model.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, invalid("name", "nome é obrigatório")
	}
	c := &model.Category{Name: name, Description: strings.TrimSpace(description)}
	if err := s.categories.Create(ctx, c); err != nil {
		return nil, storeErr("create category", err)
	}
	return c, nil
}

func (s *categoryService) DeleteCategory(ctx context.Context, id uuid.UUID) error {
	return storeErr("delete category", s.categories.Delete(ctx, id))
}
