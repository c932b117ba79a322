package repository

import (
	"errors"
	"fmt"
	"testing"

	"deposito-pos/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	assert.NoError(t, translate(nil))
	assert.ErrorIs(t, translate(gorm.ErrRecordNotFound), ErrNotFound)
	assert.ErrorIs(t, translate(fmt.Errorf("wrapped: %w", gorm.ErrDuplicatedKey)), ErrDuplicate)

	other := errors.New("connection refused")
	assert.Equal(t, other, translate(other))
}

func TestCheckRecord(t *testing.T) {
	err := checkRecord(&model.Product{Name: "Skol"})
	assert.ErrorIs(t, err, ErrInvalidRecord)
	assert.ErrorContains(t, err, "Code")

	assert.NoError(t, checkRecord(&model.Product{Code: "CERV001", Name: "Skol", SalePrice: decimal.NewFromInt(4)}))

	sale := &model.Sale{Number: "V000001", PaymentMethod: model.PaymentPix, Status: model.SaleCompleted}
	assert.ErrorIs(t, checkRecord(sale), ErrInvalidRecord, "a sale needs at least one item")

	sale.Items = []model.SaleLineItem{model.NewLineItem(uuid.New(), "Skol", 1, decimal.NewFromInt(4))}
	assert.NoError(t, checkRecord(sale))
}

func TestKeepValid(t *testing.T) {
	rows := []model.Category{{Name: "Cerveja"}, {Name: ""}, {Name: "Suco"}}
	got := keepValid("categories", rows, func(c model.Category) string { return c.Name })
	assert.Len(t, got, 2)
	assert.Equal(t, "Suco", got[1].Name)
}
