package service

import (
	"context"
	"testing"

	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProductFixture(t *testing.T) (ProductService, Feeds, *captureHub, context.Context) {
	t.Helper()
	store := newMemStore()
	feeds := NewFeeds()
	hub := &captureHub{}
	snap := NewSnapshotter(memSales{store}, memProducts{store}, feeds)
	user := &model.Account{BaseModel: model.BaseModel{ID: uuid.New()}, Name: "Vendedor", Role: model.RoleSeller}
	return NewProductService(memProducts{store}, snap, hub), feeds, hub, asSession(context.Background(), user)
}

func TestCreateProduct(t *testing.T) {
	svc, feeds, hub, ctx := newProductFixture(t)

	p, err := svc.CreateProduct(ctx, &ProductRequest{
		Code: " CERV001 ", Name: "Cerveja Skol 350ml", Category: "Cerveja",
		CostPrice: money("2.50"), SalePrice: money("4.00"), StockQuantity: 120, MinimumQuantity: 30,
	})
	require.NoError(t, err)
	assert.Equal(t, "CERV001", p.Code)
	assert.Equal(t, "Unidade", p.Unit)
	assert.True(t, p.Active)
	assert.Equal(t, []string{"stock_update"}, hub.types())

	snap, ok := feeds.Products.Latest()
	require.True(t, ok)
	assert.Len(t, snap.Items, 1)

	_, err = svc.CreateProduct(ctx, &ProductRequest{Code: "CERV001", Name: "Outra"})
	assert.ErrorIs(t, err, ErrConflict)

	_, err = svc.CreateProduct(ctx, &ProductRequest{Code: "X1", Name: ""})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.CreateProduct(ctx, &ProductRequest{Code: "X2", Name: "Y", StockQuantity: -1})
	assert.ErrorAs(t, err, &verr)

	inactive := false
	p2, err := svc.CreateProduct(ctx, &ProductRequest{Code: "X3", Name: "Inativo", Active: &inactive})
	require.NoError(t, err)
	assert.False(t, p2.Active)
}

func TestUpdateProduct(t *testing.T) {
	svc, _, hub, ctx := newProductFixture(t)
	p, err := svc.CreateProduct(ctx, &ProductRequest{Code: "A", Name: "Água", StockQuantity: 10, MinimumQuantity: 5})
	require.NoError(t, err)
	other, err := svc.CreateProduct(ctx, &ProductRequest{Code: "B", Name: "Brahma"})
	require.NoError(t, err)

	stock := 3
	updated, err := svc.UpdateProduct(ctx, p.ID, &ProductPatch{StockQuantity: &stock})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.StockQuantity)
	assert.Equal(t, "Água", updated.Name)
	assert.True(t, updated.IsLowStock())
	assert.Len(t, hub.types(), 3)

	code := "B"
	_, err = svc.UpdateProduct(ctx, p.ID, &ProductPatch{Code: &code})
	assert.ErrorIs(t, err, ErrConflict)

	neg := money("-1")
	_, err = svc.UpdateProduct(ctx, other.ID, &ProductPatch{SalePrice: &neg})
	var verr *ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.UpdateProduct(ctx, uuid.New(), &ProductPatch{})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestDeleteProductAndLowStock(t *testing.T) {
	svc, _, _, ctx := newProductFixture(t)
	ok, err := svc.CreateProduct(ctx, &ProductRequest{Code: "A", Name: "Água", StockQuantity: 50, MinimumQuantity: 5})
	require.NoError(t, err)
	low, err := svc.CreateProduct(ctx, &ProductRequest{Code: "B", Name: "Brahma", StockQuantity: 5, MinimumQuantity: 5})
	require.NoError(t, err)

	lows, err := svc.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, lows, 1)
	assert.Equal(t, low.ID, lows[0].ID)

	require.NoError(t, svc.DeleteProduct(ctx, ok.ID))
	assert.ErrorIs(t, svc.DeleteProduct(ctx, ok.ID), ErrNotFound)

	all, err := svc.ListProducts(ctx, repository.ProductFilter{Search: "brah"})
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestProductWritesRequireSession(t *testing.T) {
	svc, _, _, _ := newProductFixture(t)
	_, err := svc.CreateProduct(context.Background(), &ProductRequest{Code: "A", Name: "Água"})
	assert.ErrorIs(t, err, ErrUnauthenticated)
}
