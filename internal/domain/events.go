package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceUpdateEvent - a ticker update pushed by a streaming source
type PriceUpdateEvent struct {
	Symbol    string
	Price     decimal.Decimal
	Timestamp time.Time
	Source    string
}
