package report

import (
	"deposito-pos/internal/model"

	"github.com/shopspring/decimal"
)

type StockStatus string

const (
	StockOK  StockStatus = "ok"
	StockLow StockStatus = "low"
)

// InventoryRow is one product with its derived figures.
type InventoryRow struct {
	model.Product
	Margin     decimal.Decimal `json:"margin"` // fraction, 0.6 = 60%
	StockValue decimal.Decimal `json:"stock_value"`
	Status     StockStatus     `json:"status"`
}

// InventorySummary is the stock side of the report.
type InventorySummary struct {
	Rows            []InventoryRow  `json:"rows"`
	TotalProducts   int             `json:"total_products"`
	TotalUnits      int             `json:"total_units"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	TotalStockValue decimal.Decimal `json:"total_stock_value"`
	OutOfStock      []model.Product `json:"out_of_stock"`
	LowStock        []model.Product `json:"low_stock"`
	Attention       []model.Product `json:"attention"`
}

// Inventory derives margins, stock values and the alert lists.
func Inventory(products []model.Product) InventorySummary {
	sum := InventorySummary{
		Rows:            make([]InventoryRow, 0, len(products)),
		TotalProducts:   len(products),
		TotalCost:       decimal.Zero,
		TotalStockValue: decimal.Zero,
		OutOfStock:      make([]model.Product, 0),
		LowStock:        make([]model.Product, 0),
		Attention:       make([]model.Product, 0),
	}

	for _, p := range products {
		row := InventoryRow{
			Product:    p,
			Margin:     p.Margin(),
			StockValue: p.StockValue(),
			Status:     StockOK,
		}
		if p.IsLowStock() {
			row.Status = StockLow
			sum.LowStock = append(sum.LowStock, p)
		}
		if p.IsOutOfStock() {
			sum.OutOfStock = append(sum.OutOfStock, p)
		}
		if p.NeedsAttention() {
			sum.Attention = append(sum.Attention, p)
		}
		sum.Rows = append(sum.Rows, row)
		sum.TotalUnits += p.StockQuantity
		sum.TotalCost = sum.TotalCost.Add(p.CostPrice)
		sum.TotalStockValue = sum.TotalStockValue.Add(row.StockValue)
	}
	return sum
}
