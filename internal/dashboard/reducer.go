package dashboard

import (
	"context"
	"sync"
	"time"

	"deposito-pos/internal/live"
	"deposito-pos/internal/model"
	"deposito-pos/internal/ws"

	"github.com/rs/zerolog/log"
)

// Reducer keeps the latest sales and products snapshots and recomputes the
// metrics whenever either changes.
type Reducer struct {
	sales    *live.Feed[model.Sale]
	products *live.Feed[model.Product]
	hub      ws.Broadcaster
	loc      *time.Location
	now      func() time.Time

	mu       sync.RWMutex
	current  Metrics
	onUpdate func(Metrics)
}

func NewReducer(sales *live.Feed[model.Sale], products *live.Feed[model.Product], hub ws.Broadcaster, loc *time.Location) *Reducer {
	if loc == nil {
		loc = time.Local
	}
	return &Reducer{
		sales:    sales,
		products: products,
		hub:      hub,
		loc:      loc,
		now:      time.Now,
	}
}

// Current returns the last computed metrics.
func (r *Reducer) Current() Metrics {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.current
}

// Run consumes both feeds until ctx ends or a feed subscription closes.
func (r *Reducer) Run(ctx context.Context) {
	salesSub := r.sales.Subscribe(ctx)
	defer salesSub.Cancel()
	productsSub := r.products.Subscribe(ctx)
	defer productsSub.Cancel()

	var sales []model.Sale
	var products []model.Product

	for {
		select {
		case <-ctx.Done():
			return
		case snap, ok := <-salesSub.C:
			if !ok {
				return
			}
			sales = snap.Items
		case snap, ok := <-productsSub.C:
			if !ok {
				return
			}
			products = snap.Items
		}
		r.recompute(sales, products)
	}
}

func (r *Reducer) recompute(sales []model.Sale, products []model.Product) {
	m := Compute(r.now().In(r.loc), sales, products)

	r.mu.Lock()
	r.current = m
	cb := r.onUpdate
	r.mu.Unlock()

	if r.hub != nil {
		r.hub.BroadcastJSON(ws.Event{Type: "dashboard_metrics", Data: m})
	}
	if cb != nil {
		cb(m)
	}
	log.Debug().Int("sales_month", m.SalesMonth).Int("low_stock", m.LowStockProducts).Msg("dashboard recomputed")
}
