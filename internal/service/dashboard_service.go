package service

import (
	"context"
	"time"

	"deposito-pos/internal/dashboard"
	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"
)

type DashboardService interface {
	Metrics(ctx context.Context) (*dashboard.Metrics, error)
}

type dashboardService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	loc      *time.Location
	now      func() time.Time
}

func NewDashboardService(sales repository.SaleRepository, products repository.ProductRepository, loc *time.Location) DashboardService {
	if loc == nil {
		loc = time.Local
	}
	return &dashboardService{sales: sales, products: products, loc: loc, now: time.Now}
}

// Metrics runs the same computation the live reducer does, on demand.
func (s *dashboardService) Metrics(ctx context.Context) (*dashboard.Metrics, error) {
	now := s.now().In(s.loc)
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, s.loc)

	sales, err := s.sales.FindAll(ctx, repository.SaleFilter{Status: model.SaleCompleted, From: monthStart})
	if err != nil {
		return nil, storeErr("load sales", err)
	}
	products, err := s.products.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, storeErr("load products", err)
	}

	m := dashboard.Compute(now, sales, products)
	return &m, nil
}
