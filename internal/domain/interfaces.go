package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	// ErrPriceUnavailable - price fetch failed for any reason (network, parse, non-2xx)
	ErrPriceUnavailable = errors.New("price unavailable")
	// ErrNotificationFailed - the messaging provider rejected or never received the message
	ErrNotificationFailed = errors.New("notification failed")
	// ErrInvalidPrice - zero or negative price
	ErrInvalidPrice = errors.New("invalid price")
)

// PriceProvider - adapter to an external price API
type PriceProvider interface {
	// Current spot price of the asset in its quote currency
	GetPrice(ctx context.Context, asset Asset) (decimal.Decimal, error)
	Name() string
}

// Messenger - adapter to an external messaging API with a fixed recipient
type Messenger interface {
	// SendText delivers one message and returns the provider's message id
	SendText(ctx context.Context, text string) (string, error)
	Name() string
}
