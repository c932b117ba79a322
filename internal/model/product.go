package model

import "github.com/shopspring/decimal"

// Product is a stock keeping unit of the shop.
type Product struct {
	BaseModel
	Code            string          `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Name            string          `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
	Category        string          `gorm:"type:varchar(100);index" json:"category"`
	CostPrice       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"cost_price" validate:"gte=0"`
	SalePrice       decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"sale_price" validate:"gte=0"`
	StockQuantity   int             `gorm:"not null;default:0" json:"stock_quantity" validate:"gte=0"`
	MinimumQuantity int             `gorm:"not null;default:0" json:"minimum_quantity" validate:"gte=0"`
	Unit            string          `gorm:"type:varchar(20)" json:"unit"`
	Supplier        string          `gorm:"type:varchar(255)" json:"supplier"`
	Active          bool            `gorm:"not null" json:"active"`
}

// IsLowStock reports stock at or below the configured minimum. There is no
// hysteresis: a product hovering at its minimum moves in and out of the set.
func (p Product) IsLowStock() bool {
	return p.StockQuantity <= p.MinimumQuantity
}

// IsOutOfStock reports an empty shelf.
func (p Product) IsOutOfStock() bool {
	return p.StockQuantity == 0
}

// NeedsAttention flags products above zero but within 1.5x the minimum.
func (p Product) NeedsAttention() bool {
	if p.StockQuantity <= 0 {
		return false
	}
	return decimal.NewFromInt(int64(p.StockQuantity)).
		LessThanOrEqual(decimal.NewFromInt(int64(p.MinimumQuantity)).Mul(decimal.NewFromFloat(1.5)))
}

// Margin is (sale - cost) / cost as a fraction. Zero cost yields zero.
func (p Product) Margin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.SalePrice.Sub(p.CostPrice).Div(p.CostPrice)
}

// StockValue is sale price times stock on hand.
func (p Product) StockValue() decimal.Decimal {
	return p.SalePrice.Mul(decimal.NewFromInt(int64(p.StockQuantity)))
}

// LowStock filters the products for which IsLowStock holds, keeping order.
func LowStock(products []Product) []Product {
	out := make([]Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			out = append(out, p)
		}
	}
	return out
}
