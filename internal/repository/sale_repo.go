package repository

import (
	"context"
	"time"

	"deposito-pos/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SaleFilter narrows FindAll. Zero values match everything.
type SaleFilter struct {
	Search   string // customer name or sale number, case insensitive
	Status   model.SaleStatus
	SellerID uuid.UUID
	From     time.Time
	To       time.Time
	Limit    int
}

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	FindAll(ctx context.Context, filter SaleFilter) ([]model.Sale, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus) error
	Delete(ctx context.Context, id uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

type saleRepo struct {
	db *gorm.DB
}

func NewSaleRepo(db *gorm.DB) SaleRepository {
	return &saleRepo{db}
}

func (r *saleRepo) Create(ctx context.Context, sale *model.Sale) error {
	if err := checkRecord(sale); err != nil {
		return err
	}
	return translate(r.db.WithContext(ctx).Create(sale).Error)
}

// FindAll returns sales newest first.
func (r *saleRepo) FindAll(ctx context.Context, filter SaleFilter) ([]model.Sale, error) {
	q := r.db.WithContext(ctx).Model(&model.Sale{})
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		q = q.Where("customer_name ILIKE ? OR number ILIKE ?", like, like)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.SellerID != uuid.Nil {
		q = q.Where("seller_id = ?", filter.SellerID)
	}
	if !filter.From.IsZero() {
		q = q.Where("sold_at >= ?", filter.From)
	}
	if !filter.To.IsZero() {
		q = q.Where("sold_at <= ?", filter.To)
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}

	var sales []model.Sale
	if err := q.Order("sold_at DESC").Find(&sales).Error; err != nil {
		return nil, err
	}
	return keepValid("sales", sales, func(s model.Sale) string { return s.ID.String() }), nil
}

func (r *saleRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		return nil, translate(err)
	}
	return &sale, nil
}

func (r *saleRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status model.SaleStatus) error {
	res := r.db.WithContext(ctx).Model(&model.Sale{}).Where("id = ?", id).Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *saleRepo) Delete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Sale{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *saleRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Sale{}).Count(&n).Error
	return n, err
}
