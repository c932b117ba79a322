package service

import (
	"context"
	"sync"

	"deposito-pos/internal/live"
	"deposito-pos/internal/model"
	"deposito-pos/internal/repository"

	"github.com/rs/zerolog/log"
)

// Feeds are the live collections every write republishes.
type Feeds struct {
	Sales    *live.Feed[model.Sale]
	Products *live.Feed[model.Product]
}

func NewFeeds() Feeds {
	return Feeds{
		Sales:    live.NewFeed[model.Sale](),
		Products: live.NewFeed[model.Product](),
	}
}

// Snapshotter reloads a full collection and publishes it. A failed reload is
// logged and leaves the previous snapshot in place. Reload and publish of a
// collection run under its lock, so snapshots go out in the order they were read.
type Snapshotter struct {
	sales    repository.SaleRepository
	products repository.ProductRepository
	feeds    Feeds

	salesMu    sync.Mutex
	productsMu sync.Mutex
}

func NewSnapshotter(sales repository.SaleRepository, products repository.ProductRepository, feeds Feeds) *Snapshotter {
	return &Snapshotter{sales: sales, products: products, feeds: feeds}
}

func (s *Snapshotter) RefreshProducts(ctx context.Context) {
	s.productsMu.Lock()
	defer s.productsMu.Unlock()
	products, err := s.products.FindAll(ctx, repository.ProductFilter{})
	if err != nil {
		log.Error().Err(err).Msg("refresh products snapshot")
		return
	}
	s.feeds.Products.Publish(products)
}

func (s *Snapshotter) RefreshSales(ctx context.Context) {
	s.salesMu.Lock()
	defer s.salesMu.Unlock()
	sales, err := s.sales.FindAll(ctx, repository.SaleFilter{})
	if err != nil {
		log.Error().Err(err).Msg("refresh sales snapshot")
		return
	}
	s.feeds.Sales.Publish(sales)
}

// RefreshAll publishes both collections, used at startup.
func (s *Snapshotter) RefreshAll(ctx context.Context) {
	s.RefreshProducts(ctx)
	s.RefreshSales(ctx)
}
