package pricing_test

import (
	"booknotify/config"
	"booknotify/internal/domains/booking/pricing"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTable_Subtotal(t *testing.T) {
	table := pricing.NewTable(map[string]float64{"standard": 10, "vip": 25, "premium": 50}, 0)

	tests := []struct {
		name       string
		ticketType string
		quantity   int
		unitPrice  float64
		subtotal   float64
		known      bool
	}{
		{name: "standard", ticketType: "standard", quantity: 2, unitPrice: 10, subtotal: 20, known: true},
		{name: "vip times three", ticketType: "vip", quantity: 3, unitPrice: 25, subtotal: 75, known: true},
		{name: "premium", ticketType: "premium", quantity: 1, unitPrice: 50, subtotal: 50, known: true},
		{name: "case and spaces ignored", ticketType: " VIP ", quantity: 1, unitPrice: 25, subtotal: 25, known: true},
		{name: "unknown type is free", ticketType: "backstage", quantity: 4, unitPrice: 0, subtotal: 0, known: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			unitPrice, subtotal, known := table.Subtotal(tt.ticketType, tt.quantity)

			assert.InDelta(t, tt.unitPrice, unitPrice, 0.0001)
			assert.InDelta(t, tt.subtotal, subtotal, 0.0001)
			assert.Equal(t, tt.known, known)
		})
	}
}

func TestTable_UnknownTypePriceFromConfig(t *testing.T) {
	cfg := &config.Config{}
	cfg.Pricing.TicketPrices = map[string]float64{"standard": 12}
	cfg.Pricing.UnknownTypePrice = 5

	table := pricing.New(cfg)

	price, known := table.UnitPrice("standard")
	assert.True(t, known)
	assert.InDelta(t, 12, price, 0.0001)

	price, known = table.UnitPrice("vip")
	assert.False(t, known)
	assert.InDelta(t, 5, price, 0.0001)
}

func TestTable_DefaultsWhenUnconfigured(t *testing.T) {
	table := pricing.New(&config.Config{})

	price, known := table.UnitPrice("vip")
	assert.True(t, known)
	assert.InDelta(t, 25, price, 0.0001)
}
