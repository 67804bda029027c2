package notify

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/romanzzaa/price-notifier/internal/config"
	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/romanzzaa/price-notifier/internal/infrastructure/telegram"
	"github.com/romanzzaa/price-notifier/internal/infrastructure/twilio"
	"github.com/romanzzaa/price-notifier/internal/metrics"
)

// Notifier delivers messages on a best-effort basis: one attempt, failures
// are logged and reported as false, never returned as errors.
type Notifier struct {
	messenger domain.Messenger
	metrics   *metrics.Metrics
	logger    *slog.Logger
	now       func() time.Time
}

func NewNotifier(messenger domain.Messenger, m *metrics.Metrics, logger *slog.Logger) *Notifier {
	return &Notifier{
		messenger: messenger,
		metrics:   m,
		logger:    logger.With("component", "notifier", "messenger", messenger.Name()),
		now:       time.Now,
	}
}

func (n *Notifier) Notify(ctx context.Context, text string) bool {
	if strings.TrimSpace(text) == "" {
		n.logger.Warn("Refusing to send empty message")
		return false
	}

	id, err := n.messenger.SendText(ctx, text)
	if err != nil {
		err = fmt.Errorf("%w: %w", domain.ErrNotificationFailed, err)
		n.logger.Error("Error sending message", slog.String("error", err.Error()))
		n.metrics.ObserveNotification(n.messenger.Name(), false)
		return false
	}

	n.metrics.ObserveNotification(n.messenger.Name(), true)
	n.logger.Info("Message sent",
		slog.String("at", n.now().Format(time.Kitchen)),
		slog.String("message_id", id))
	return true
}

// NewMessengerFromConfig builds the messenger selected by messenger.type.
func NewMessengerFromConfig(mc config.Messenger) (domain.Messenger, error) {
	switch mc.Type {
	case config.MessengerTwilio:
		t := mc.Twilio
		return twilio.NewMessenger(t.AccountSID, t.AuthToken, t.From, t.To), nil
	case config.MessengerTelegram:
		return telegram.NewMessenger(mc.Telegram.BotToken, mc.Telegram.ChatID)
	default:
		return nil, fmt.Errorf("unknown messenger: %s", mc.Type)
	}
}
