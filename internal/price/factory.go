package price

import (
	"fmt"
	"log/slog"

	"github.com/romanzzaa/price-notifier/internal/config"
	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/romanzzaa/price-notifier/internal/infrastructure/bybit"
	"github.com/romanzzaa/price-notifier/internal/infrastructure/coingecko"
)

// NewProviderFromConfig builds the provider selected by price.provider.
// A *bybit.MarketStream must be Run by the caller before it yields prices.
func NewProviderFromConfig(pc config.Price, asset domain.Asset, logger *slog.Logger) (domain.PriceProvider, error) {
	switch pc.Provider {
	case config.ProviderCoinGecko:
		return coingecko.NewClient(pc.BaseURL, pc.APIKey, pc.UserAgent, pc.Timeout), nil
	case config.ProviderBybit:
		return bybit.NewClient(pc.BaseURL, pc.Testnet, pc.Timeout), nil
	case config.ProviderBybitStream:
		return bybit.NewMarketStream(pc.BaseURL, pc.Testnet, asset, pc.StreamMaxAge, logger), nil
	case "":
		return nil, fmt.Errorf("price.provider is required")
	default:
		return nil, fmt.Errorf("unknown price provider: %s", pc.Provider)
	}
}
