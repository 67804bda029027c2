package usecase

import (
	"fmt"

	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/shopspring/decimal"
)

// FormatChangeMessage renders the hourly update. Price and percent are rounded to 2 places.
func FormatChangeMessage(asset domain.Asset, change domain.PriceChange) string {
	return fmt.Sprintf("%s Hourly Update (%s)\n💰 Current Price: *$%s*\n📊 Change: *%s%%* since last hour",
		asset.DisplayName(),
		change.Direction.Label(),
		change.Current.StringFixed(2),
		change.DiffPercent.StringFixed(2),
	)
}

func FormatStartupMessage(asset domain.Asset, price decimal.Decimal) string {
	return fmt.Sprintf("Server Started Successfully\n💰 Current %s Price: *$%s*",
		asset.DisplayName(),
		price.StringFixed(2),
	)
}
