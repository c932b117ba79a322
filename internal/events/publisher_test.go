package events

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEnvelope(t *testing.T) {
	ev := SaleRecorded{
		SaleID: uuid.New(),
		Number: "V123456",
		Total:  decimal.RequireFromString("66.00"),
		Items:  []SaleRecordedItem{{ProductID: uuid.New(), Quantity: 12, UnitPrice: decimal.NewFromInt(4)}},
	}

	env, err := NewEnvelope(TypeSaleRecorded, ev)
	require.NoError(t, err)
	assert.Equal(t, TypeSaleRecorded, env.Type)
	assert.NotEqual(t, uuid.Nil, env.ID)

	var back SaleRecorded
	require.NoError(t, json.Unmarshal(env.Payload, &back))
	assert.Equal(t, ev.SaleID, back.SaleID)
	assert.True(t, back.Total.Equal(ev.Total))
}

func TestNoopPublisher(t *testing.T) {
	var p Publisher = NoopPublisher{}
	assert.NoError(t, p.PublishSaleRecorded(context.Background(), SaleRecorded{}))
	assert.NoError(t, p.Close())
}
