package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentCredit   PaymentMethod = "credit"
	PaymentDebit    PaymentMethod = "debit"
	PaymentPix      PaymentMethod = "pix"
	PaymentDeferred PaymentMethod = "deferred"
)

// PaymentMethods in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentCredit, PaymentDebit, PaymentPix, PaymentDeferred}

func (m PaymentMethod) Valid() bool {
	for _, pm := range PaymentMethods {
		if m == pm {
			return true
		}
	}
	return false
}

func (m PaymentMethod) Label() string {
	switch m {
	case PaymentCash:
		return "Dinheiro"
	case PaymentCredit:
		return "Cartão de Crédito"
	case PaymentDebit:
		return "Cartão de Débito"
	case PaymentPix:
		return "PIX"
	case PaymentDeferred:
		return "A Prazo"
	}
	return string(m)
}

type SaleStatus string

const (
	SaleCompleted SaleStatus = "completed"
	SalePending   SaleStatus = "pending"
	SaleCancelled SaleStatus = "cancelled"
)

func (s SaleStatus) Valid() bool {
	return s == SaleCompleted || s == SalePending || s == SaleCancelled
}

func (s SaleStatus) Label() string {
	switch s {
	case SaleCompleted:
		return "Concluída"
	case SalePending:
		return "Pendente"
	case SaleCancelled:
		return "Cancelada"
	}
	return string(s)
}

// SaleLineItem is embedded in the sale; ProductName is denormalized at sale time.
type SaleLineItem struct {
	ProductID   uuid.UUID       `json:"product_id" validate:"uuid_required"`
	ProductName string          `json:"product_name" validate:"required"`
	Quantity    int             `json:"quantity" validate:"gt=0"`
	UnitPrice   decimal.Decimal `json:"unit_price" validate:"gte=0"`
	Subtotal    decimal.Decimal `json:"subtotal"`
}

// NewLineItem computes the subtotal as quantity x unit price.
func NewLineItem(productID uuid.UUID, name string, qty int, unitPrice decimal.Decimal) SaleLineItem {
	return SaleLineItem{
		ProductID:   productID,
		ProductName: name,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		Subtotal:    unitPrice.Mul(decimal.NewFromInt(int64(qty))),
	}
}

type Sale struct {
	BaseModel
	Number        string          `gorm:"type:varchar(20);index;not null" json:"number" validate:"required"`
	CustomerName  string          `gorm:"type:varchar(255)" json:"customer_name"`
	CustomerPhone string          `gorm:"type:varchar(30)" json:"customer_phone,omitempty"`
	Items         []SaleLineItem  `gorm:"serializer:json;type:jsonb;not null" json:"items" validate:"required,min=1,dive"`
	Subtotal      decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"subtotal"`
	Discount      decimal.Decimal `gorm:"type:numeric(12,2);not null;default:0" json:"discount" validate:"gte=0"`
	Total         decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"total"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);index;not null" json:"payment_method" validate:"required,oneof=cash credit debit pix deferred"`
	Status        SaleStatus      `gorm:"type:varchar(20);index;not null" json:"status" validate:"required,oneof=completed pending cancelled"`
	SellerID      uuid.UUID       `gorm:"type:uuid;index" json:"seller_id"`
	SellerName    string          `gorm:"type:varchar(255)" json:"seller_name"`
	Notes         string          `gorm:"type:text" json:"notes,omitempty"`
	SoldAt        time.Time       `gorm:"index;not null" json:"sold_at"`
}

// ComputeTotals sets Subtotal to the sum of the line subtotals and
// Total to Subtotal minus Discount.
func (s *Sale) ComputeTotals() {
	sum := decimal.Zero
	for i := range s.Items {
		it := &s.Items[i]
		it.Subtotal = it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))
		sum = sum.Add(it.Subtotal)
	}
	s.Subtotal = sum
	s.Total = sum.Sub(s.Discount)
}

// ItemCount is the total number of units sold.
func (s Sale) ItemCount() int {
	n := 0
	for _, it := range s.Items {
		n += it.Quantity
	}
	return n
}
