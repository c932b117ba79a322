// Package dashboard computes the home screen counters and keeps them live by
// recomputing on every sales or products snapshot.
package dashboard

import (
	"time"

	"deposito-pos/internal/model"

	"github.com/shopspring/decimal"
)

const recentLimit = 5

type Metrics struct {
	SalesToday       int             `json:"sales_today"`
	RevenueToday     decimal.Decimal `json:"revenue_today"`
	SalesMonth       int             `json:"sales_month"`
	RevenueMonth     decimal.Decimal `json:"revenue_month"`
	LowStockProducts int             `json:"low_stock_products"`
	TotalProducts    int             `json:"total_products"`
	RecentSales      []model.Sale    `json:"recent_sales"`
	LowStock         []model.Product `json:"low_stock"`
	ComputedAt       time.Time       `json:"computed_at"`
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// Compute is a full recompute over the two snapshots. The month window is
// completed sales sold since the first day of now's month; today's figures
// are the part of that window sold since midnight. now's location defines
// the calendar. Recent sales keep snapshot order.
func Compute(now time.Time, sales []model.Sale, products []model.Product) Metrics {
	today := startOfDay(now)
	month := startOfMonth(now)

	m := Metrics{
		RevenueToday: decimal.Zero,
		RevenueMonth: decimal.Zero,
		RecentSales:  make([]model.Sale, 0, recentLimit),
		ComputedAt:   now,
	}

	for _, s := range sales {
		if s.Status != model.SaleCompleted || s.SoldAt.Before(month) {
			continue
		}
		m.SalesMonth++
		m.RevenueMonth = m.RevenueMonth.Add(s.Total)
		if !s.SoldAt.Before(today) {
			m.SalesToday++
			m.RevenueToday = m.RevenueToday.Add(s.Total)
		}
		if len(m.RecentSales) < recentLimit {
			m.RecentSales = append(m.RecentSales, s)
		}
	}

	m.LowStock = model.LowStock(products)
	m.LowStockProducts = len(m.LowStock)
	m.TotalProducts = len(products)
	return m
}
