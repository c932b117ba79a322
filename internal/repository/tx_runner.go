package repository

import (
	"context"

	"gorm.io/gorm"
)

// Stores are repositories bound to one transaction.
type Stores struct {
	Sales    SaleRepository
	Products ProductRepository
}

// TxRunner runs fn inside a database transaction. A returned error rolls
// back every write made through the given Stores.
type TxRunner interface {
	Run(ctx context.Context, fn func(Stores) error) error
}

type gormTxRunner struct {
	db *gorm.DB
}

func NewTxRunner(db *gorm.DB) TxRunner {
	return &gormTxRunner{db: db}
}

func (r *gormTxRunner) Run(ctx context.Context, fn func(Stores) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(Stores{
			Sales:    NewSaleRepo(tx),
			Products: NewProductRepo(tx),
		})
	})
}
