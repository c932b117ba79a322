package service

import (
	"context"
	"time"

	"deposito-pos/internal/report"
	"deposito-pos/internal/repository"
	"deposito-pos/internal/workbook"

	"github.com/rs/zerolog/log"
)

type ReportService interface {
	Summary(ctx context.Context, start, end time.Time) (*ReportSummary, error)
	Export(ctx context.Context, kind workbook.Kind, start, end time.Time) ([]byte, string, error)
}

type ReportSummary struct {
	Sales     report.SalesSummary     `json:"sales"`
	Inventory report.InventorySummary `json:"inventory"`
}

type reportService struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	loc      *time.Location
	now      func() time.Time
}

func NewReportService(sales repository.SaleRepository, products repository.ProductRepository, loc *time.Location) ReportService {
	if loc == nil {
		loc = time.Local
	}
	return &reportService{sales: sales, products: products, loc: loc, now: time.Now}
}

// Summary loads both collections and aggregates in memory.
func (s *reportService) Summary(ctx context.Context, start, end time.Time) (*ReportSummary, error) {
	sales, err := s.sales.FindAll(ctx, repository.SaleFilter{})
	if err != nil {
		return nil, storeErr("load sales", err)
	}
	products, err := s.products.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		return nil, storeErr("load products", err)
	}

	r := report.NewRange(start, end, s.loc)
	return &ReportSummary{
		Sales:     report.Aggregate(sales, r, s.loc),
		Inventory: report.Inventory(products),
	}, nil
}

func (s *reportService) Export(ctx context.Context, kind workbook.Kind, start, end time.Time) ([]byte, string, error) {
	sum, err := s.Summary(ctx, start, end)
	if err != nil {
		return nil, "", err
	}

	now := s.now().In(s.loc)
	data, err := workbook.Write(workbook.Input{
		Kind:        kind,
		Sales:       sum.Sales,
		Inventory:   sum.Inventory,
		GeneratedAt: now,
		Location:    s.loc,
	})
	if err != nil {
		return nil, "", err
	}

	name := workbook.FileName(kind, now)
	log.Info().Str("file", name).Int("sales", sum.Sales.Count).Int("products", sum.Inventory.TotalProducts).Msg("report exported")
	return data, name, nil
}
