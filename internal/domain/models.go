package domain

import (
	"fmt"
	"time"
)

// Listing represents an item posted for sale in the marketplace
type Listing struct {
	ID          string
	Title       string
	Description string
	Category    string
	Seller      string
	PriceCents  int64
	Currency    string // ISO 4217 code, "USD" when empty
	PostedAt    time.Time
}

// Price formats the listing price for display
func (l Listing) Price() string {
	currency := l.Currency
	if currency == "" {
		currency = "USD"
	}
	sign := ""
	cents := l.PriceCents
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d %s", sign, cents/100, cents%100, currency)
}
