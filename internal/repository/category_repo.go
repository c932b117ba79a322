package repository

import (
	"context"
	"errors"

	"deposito-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CategoryRepository interface {
	FindAll(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, category *model.Category) error
	Delete(ctx context.Context, id uuid.UUID) error
	SeedDefaults(ctx context.Context) (int, error)
}

type categoryRepo struct {
	db *gorm.DB
}

func NewCategoryRepo(db *gorm.DB) CategoryRepository {
	return &categoryRepo{db: db}
}

func (r *categoryRepo) FindAll(ctx context.Context) ([]model.Category, error) {
	var categories []model.Category
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error; err != nil {
		return nil, err
	}
	return keepValid("categories", categories, func(c model.Category) string { return c.ID.String() }), nil
}

func (r *categoryRepo) Create(ctx context.Context, category *model.Category) error {
	if err := checkRecord(category); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(category).Error)
}

func (r *categoryRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Category{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// SeedDefaults creates the default categories that are missing and returns
// how many were created.
func (r *categoryRepo) SeedDefaults(ctx context.Context) (int, error) {
	created := 0
	for _, def := range model.DefaultCategories {
		var existing model.Category
		err := r.db.WithContext(ctx).Where("name = ?", def.Name).First(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c := def
			if err := r.db.WithContext(ctx).Create(&c).Error; err != nil {
				return created, err
			}
			created++
		} else if err != nil {
			return created, err
		}
	}
	return created, nil
}
