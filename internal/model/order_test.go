package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidTransition(t *testing.T) {
	cases := []struct {
		from, to OrderStatus
		want     bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderConfirmed, OrderCompleted, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderConfirmed, OrderPending, false},
		{OrderCancelled, OrderPending, true},
		{OrderCancelled, OrderConfirmed, true},
		{OrderCancelled, OrderCompleted, false},
		{OrderCompleted, OrderPending, false},
		{OrderCompleted, OrderConfirmed, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderPending, OrderPending, false},
		{OrderCancelled, OrderCancelled, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, ValidTransition(tc.from, tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestParseOrderStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "cancelled", "completed"} {
		got, ok := ParseOrderStatus(s)
		assert.True(t, ok, s)
		assert.Equal(t, OrderStatus(s), got)
	}
	for _, s := range []string{"", "PENDING", "refunded", "canceled"} {
		_, ok := ParseOrderStatus(s)
		assert.False(t, ok, s)
	}
}

func TestOrderItemSubtotal(t *testing.T) {
	item := OrderItem{
		Quantity:     3,
		PricePerUnit: decimal.RequireFromString("2500.50"),
	}
	assert.Equal(t, "7501.50", item.Subtotal().StringFixed(2))
}
