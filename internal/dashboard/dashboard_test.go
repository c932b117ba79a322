package dashboard

import (
	"context"
	"sync"
	"testing"
	"time"

	"deposito-pos/internal/live"
	"deposito-pos/internal/model"
	"deposito-pos/internal/ws"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var brt = time.FixedZone("BRT", -3*60*60)

func sold(at time.Time, total int64, status model.SaleStatus) model.Sale {
	return model.Sale{Total: decimal.NewFromInt(total), Status: status, SoldAt: at}
}

func TestCompute_LowStockScenario(t *testing.T) {
	products := []model.Product{
		{StockQuantity: 10, MinimumQuantity: 5},
		{StockQuantity: 3, MinimumQuantity: 5},
		{StockQuantity: 0, MinimumQuantity: 5},
	}
	m := Compute(time.Now(), nil, products)
	assert.Equal(t, 2, m.LowStockProducts)
	assert.Equal(t, 3, m.TotalProducts)
	assert.Len(t, m.LowStock, 2)
}

func TestCompute_TodayAndMonthWindows(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, brt)
	sales := []model.Sale{
		sold(time.Date(2024, 3, 15, 9, 0, 0, 0, brt), 30, model.SaleCompleted),
		sold(time.Date(2024, 3, 15, 0, 0, 0, 0, brt), 20, model.SaleCompleted),
		sold(time.Date(2024, 3, 14, 23, 59, 0, 0, brt), 10, model.SaleCompleted),
		sold(time.Date(2024, 3, 1, 0, 0, 0, 0, brt), 5, model.SaleCompleted),
		sold(time.Date(2024, 3, 15, 10, 0, 0, 0, brt), 100, model.SaleCancelled),
		sold(time.Date(2024, 2, 29, 23, 0, 0, 0, brt), 7, model.SaleCompleted),
	}

	m := Compute(now, sales, nil)
	assert.Equal(t, 2, m.SalesToday)
	assert.True(t, m.RevenueToday.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, 4, m.SalesMonth)
	assert.True(t, m.RevenueMonth.Equal(decimal.NewFromInt(65)))
	assert.Len(t, m.RecentSales, 4)
	assert.Equal(t, 0, m.TotalProducts)
}

func TestCompute_RecentCappedAtFive(t *testing.T) {
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, brt)
	var sales []model.Sale
	for i := 0; i < 8; i++ {
		sales = append(sales, sold(now.Add(-time.Duration(i)*time.Minute), int64(i+1), model.SaleCompleted))
	}
	m := Compute(now, sales, nil)
	require.Len(t, m.RecentSales, 5)
	assert.True(t, m.RecentSales[0].Total.Equal(decimal.NewFromInt(1)))
	assert.Equal(t, 8, m.SalesToday)
}

type captureHub struct {
	mu     sync.Mutex
	events []ws.Event
}

func (h *captureHub) BroadcastJSON(v any) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if ev, ok := v.(ws.Event); ok {
		h.events = append(h.events, ev)
	}
}

func (h *captureHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.events)
}

func TestReducer_RecomputesOnEveryPush(t *testing.T) {
	sales := live.NewFeed[model.Sale]()
	products := live.NewFeed[model.Product]()
	hub := &captureHub{}

	r := NewReducer(sales, products, hub, brt)
	now := time.Date(2024, 3, 15, 18, 0, 0, 0, brt)
	r.now = func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() { r.Run(ctx); close(done) }()

	products.Publish([]model.Product{{StockQuantity: 1, MinimumQuantity: 5}, {StockQuantity: 9, MinimumQuantity: 5}})
	require.Eventually(t, func() bool { return r.Current().TotalProducts == 2 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 1, r.Current().LowStockProducts)

	sales.Publish([]model.Sale{sold(now.Add(-time.Hour), 66, model.SaleCompleted)})
	require.Eventually(t, func() bool { return r.Current().SalesToday == 1 }, time.Second, 5*time.Millisecond)
	assert.Equal(t, 2, r.Current().TotalProducts, "products snapshot is kept across sales pushes")
	assert.GreaterOrEqual(t, hub.count(), 2)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reducer did not stop")
	}
}
