package domain

import (
	"strings"
)

// Asset - the single instrument the notifier tracks
type Asset struct {
	ID       string // price API identifier, e.g. "solana"
	Name     string // display name used in messages, e.g. "Solana"
	Symbol   string // ticker, e.g. "SOL"
	Currency string // quote currency, e.g. "usd"
}

// PairSymbol builds the exchange ticker for the asset, e.g. "SOLUSDT".
// Exchanges quote USD pairs against USDT.
func (a Asset) PairSymbol() string {
	base := strings.ToUpper(strings.TrimSpace(a.Symbol))
	quote := strings.ToUpper(strings.TrimSpace(a.Currency))
	if quote == "" || quote == "USD" {
		quote = "USDT"
	}
	if strings.HasSuffix(base, quote) {
		return base
	}
	return base + quote
}

// QuoteCurrency returns the lower-case currency code expected by price APIs.
func (a Asset) QuoteCurrency() string {
	c := strings.ToLower(strings.TrimSpace(a.Currency))
	if c == "" {
		return "usd"
	}
	return c
}

// DisplayName falls back to the ticker when no name is configured.
func (a Asset) DisplayName() string {
	if a.Name != "" {
		return a.Name
	}
	if a.Symbol != "" {
		return strings.ToUpper(a.Symbol)
	}
	return a.ID
}
