package price

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/romanzzaa/price-notifier/internal/metrics"
	"github.com/shopspring/decimal"
)

// Source fetches the configured asset's price and turns every failure
// into a logged "unavailable" result.
type Source struct {
	provider domain.PriceProvider
	asset    domain.Asset
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

func NewSource(provider domain.PriceProvider, asset domain.Asset, m *metrics.Metrics, logger *slog.Logger) *Source {
	return &Source{
		provider: provider,
		asset:    asset,
		metrics:  m,
		logger:   logger.With("component", "price_source", "provider", provider.Name()),
	}
}

func (s *Source) Asset() domain.Asset { return s.asset }

// Fetch makes exactly one provider call. ok is false when the price is unavailable.
func (s *Source) Fetch(ctx context.Context) (decimal.Decimal, bool) {
	p, err := s.provider.GetPrice(ctx, s.asset)
	if err == nil && !p.IsPositive() {
		err = fmt.Errorf("%w: %w: %s", domain.ErrPriceUnavailable, domain.ErrInvalidPrice, p.String())
	}
	if err != nil {
		s.logger.Error("Error fetching price",
			slog.String("asset", s.asset.ID),
			slog.String("error", err.Error()))
		s.metrics.ObservePriceFetch(s.provider.Name(), false)
		return decimal.Zero, false
	}

	s.metrics.ObservePriceFetch(s.provider.Name(), true)
	s.metrics.SetPrice(s.asset.ID, s.asset.QuoteCurrency(), p)
	s.logger.Debug("Price fetched", slog.String("asset", s.asset.ID), slog.String("price", p.String()))
	return p, true
}
