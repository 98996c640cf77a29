package pricing

import (
	"booknotify/config"
	"strings"
)

var defaultPrices = map[string]float64{
	"standard": 10,
	"vip":      25,
	"premium":  50,
}

// Table maps ticket types to unit prices. Unknown types use an explicit fallback price.
type Table struct {
	prices  map[string]float64
	unknown float64
}

func New(cfg *config.Config) Table {
	prices := cfg.Pricing.TicketPrices
	if len(prices) == 0 {
		prices = defaultPrices
	}

	return NewTable(prices, cfg.Pricing.UnknownTypePrice)
}

func NewTable(prices map[string]float64, unknown float64) Table {
	normalized := make(map[string]float64, len(prices))
	for ticketType, price := range prices {
		normalized[normalize(ticketType)] = price
	}

	return Table{prices: normalized, unknown: unknown}
}

// UnitPrice returns the price of one ticket and whether the type is listed.
func (t Table) UnitPrice(ticketType string) (float64, bool) {
	price, ok := t.prices[normalize(ticketType)]
	if !ok {
		return t.unknown, false
	}

	return price, true
}

func (t Table) Subtotal(ticketType string, quantity int) (unitPrice, subtotal float64, known bool) {
	unitPrice, known = t.UnitPrice(ticketType)

	return unitPrice, unitPrice * float64(quantity), known
}

func normalize(ticketType string) string {
	return strings.ToLower(strings.TrimSpace(ticketType))
}
