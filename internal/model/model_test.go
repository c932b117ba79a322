package model

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestProduct_IsLowStock(t *testing.T) {
	cases := []struct {
		stock, min int
		want       bool
	}{
		{10, 5, false},
		{5, 5, true},
		{3, 5, true},
		{0, 5, true},
		{0, 0, true},
		{1, 0, false},
	}
	for _, c := range cases {
		p := Product{StockQuantity: c.stock, MinimumQuantity: c.min}
		assert.Equal(t, c.want, p.IsLowStock(), "stock=%d min=%d", c.stock, c.min)
	}
}

func TestLowStock_Scenario(t *testing.T) {
	products := []Product{
		{Name: "a", StockQuantity: 10, MinimumQuantity: 5},
		{Name: "b", StockQuantity: 3, MinimumQuantity: 5},
		{Name: "c", StockQuantity: 0, MinimumQuantity: 5},
	}
	low := LowStock(products)
	require.Len(t, low, 2)
	assert.Equal(t, "b", low[0].Name)
	assert.Equal(t, "c", low[1].Name)
}

func TestProduct_AttentionAndMargin(t *testing.T) {
	p := Product{StockQuantity: 15, MinimumQuantity: 10, CostPrice: dec("2.50"), SalePrice: dec("4.00")}
	assert.True(t, p.NeedsAttention())
	assert.True(t, p.Margin().Equal(dec("0.6")))
	assert.True(t, p.StockValue().Equal(dec("60")))

	p.StockQuantity = 16
	assert.False(t, p.NeedsAttention())
	p.StockQuantity = 0
	assert.False(t, p.NeedsAttention())
	assert.True(t, p.IsOutOfStock())

	assert.True(t, Product{SalePrice: dec("3")}.Margin().IsZero())
}

func TestSale_ComputeTotals(t *testing.T) {
	s := Sale{Items: []SaleLineItem{
		NewLineItem(uuid.New(), "Cerveja Skol 350ml", 12, dec("4.00")),
		NewLineItem(uuid.New(), "Coca-Cola 2L", 2, dec("9.00")),
	}}
	s.ComputeTotals()

	assert.True(t, s.Subtotal.Equal(dec("66.00")), s.Subtotal.String())
	assert.True(t, s.Total.Equal(dec("66.00")), s.Total.String())
	assert.True(t, s.Items[0].Subtotal.Equal(dec("48")))
	assert.Equal(t, 14, s.ItemCount())

	s.Discount = dec("6")
	s.ComputeTotals()
	assert.True(t, s.Total.Equal(s.Subtotal.Sub(s.Discount)))
}

func TestRole_Privileges(t *testing.T) {
	assert.True(t, RoleAdmin.Can(PrivUserCreate))
	assert.False(t, RoleSeller.Can(PrivUserCreate))
	assert.True(t, RoleSeller.Can(PrivSaleCreate))
	assert.False(t, RoleSeller.Can(PrivSaleDelete))
	assert.False(t, Role("guest").Can(PrivSaleView))
	assert.False(t, RoleAdmin.Can("unknown:code"))
	assert.Len(t, RoleAdmin.Privileges(), len(DefaultPrivileges))
	assert.NotContains(t, RoleSeller.Privileges(), PrivUserView)
}

func TestLabels(t *testing.T) {
	assert.Equal(t, "PIX", PaymentPix.Label())
	assert.Equal(t, "A Prazo", PaymentDeferred.Label())
	assert.Equal(t, "Concluída", SaleCompleted.Label())
	assert.True(t, PaymentDebit.Valid())
	assert.False(t, PaymentMethod("boleto").Valid())
	assert.False(t, SaleStatus("x").Valid())
}
