package usecase

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/romanzzaa/price-notifier/internal/metrics"
	"github.com/shopspring/decimal"
)

type State string

const (
	StateUninitialized State = "UNINITIALIZED" // no baseline yet
	StateTracking      State = "TRACKING"
)

type TickResult string

const (
	TickSkipped      TickResult = "skipped"       // another tick still in flight
	TickUnavailable  TickResult = "unavailable"   // price fetch failed, nothing changed
	TickInitialized  TickResult = "initialized"   // first price stored, no notification
	TickNotified     TickResult = "notified"      // change message delivered
	TickNotifyFailed TickResult = "notify_failed" // change message lost, baseline still advanced
	TickStartup      TickResult = "startup"       // startup message path
)

// PriceSource - see price.Source
type PriceSource interface {
	Fetch(ctx context.Context) (decimal.Decimal, bool)
	Asset() domain.Asset
}

// Notifier - see notify.Notifier
type Notifier interface {
	Notify(ctx context.Context, text string) bool
}

// Snapshot - read-only view of the watcher state
type Snapshot struct {
	Asset         domain.Asset
	State         State
	LastPrice     *decimal.Decimal
	LastTickAt    time.Time
	LastResult    TickResult
	Ticks         int
	Notifications int
}

// Watcher owns LastPrice and decides when to notify.
type Watcher struct {
	source   PriceSource
	notifier Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time

	mu            sync.RWMutex
	lastPrice     *decimal.Decimal // nil while UNINITIALIZED
	lastTickAt    time.Time
	lastResult    TickResult
	ticks         int
	notifications int

	// Set while a tick is running; an overlapping trigger is skipped instead of racing on lastPrice.
	inFlight atomic.Bool
}

func NewWatcher(source PriceSource, notifier Notifier, m *metrics.Metrics, logger *slog.Logger) *Watcher {
	return &Watcher{
		source:   source,
		notifier: notifier,
		metrics:  m,
		logger:   logger.With("component", "watcher", "asset", source.Asset().ID),
		now:      time.Now,
	}
}

// Tick runs one scheduled check: fetch, compare with LastPrice, notify, advance.
func (w *Watcher) Tick(ctx context.Context) TickResult {
	return w.guarded(ctx, w.tick)
}

// Startup runs the startup check: the current price is announced without
// comparison and becomes the baseline.
func (w *Watcher) Startup(ctx context.Context) TickResult {
	return w.guarded(ctx, w.startup)
}

func (w *Watcher) guarded(ctx context.Context, fn func(context.Context) TickResult) TickResult {
	start := w.now()
	if !w.inFlight.CompareAndSwap(false, true) {
		w.logger.Warn("Previous tick still running, skipping")
		w.metrics.ObserveTick(string(TickSkipped), 0)
		return TickSkipped
	}
	defer w.inFlight.Store(false)

	result := fn(ctx)

	w.mu.Lock()
	w.lastTickAt = start
	w.lastResult = result
	w.ticks++
	w.mu.Unlock()

	w.metrics.ObserveTick(string(result), w.now().Sub(start))
	return result
}

func (w *Watcher) tick(ctx context.Context) TickResult {
	current, ok := w.source.Fetch(ctx)
	if !ok {
		return TickUnavailable
	}

	last := w.LastPrice()
	if last == nil {
		w.setLastPrice(current)
		w.logger.Info("Initial price set", slog.String("price", current.String()))
		return TickInitialized
	}

	change, err := domain.ComputeChange(*last, current)
	if err != nil {
		// unreachable while Source rejects non-positive prices
		w.logger.Error("Invalid baseline, resetting", slog.String("error", err.Error()))
		w.setLastPrice(current)
		return TickInitialized
	}

	log := w.logger.With(
		slog.String("price", current.String()),
		slog.String("previous", last.String()),
		slog.String("change_pct", change.DiffPercent.StringFixed(2)),
		slog.String("direction", string(change.Direction)),
	)

	sent := w.notifier.Notify(ctx, FormatChangeMessage(w.source.Asset(), change))

	// The baseline advances whether or not the message went out.
	w.setLastPrice(current)

	if !sent {
		log.Warn("Price change recorded, notification not delivered")
		return TickNotifyFailed
	}
	w.countNotification()
	log.Info("Price change notified")
	return TickNotified
}

func (w *Watcher) startup(ctx context.Context) TickResult {
	price, ok := w.source.Fetch(ctx)
	if !ok {
		w.logger.Warn("Startup message skipped (could not fetch price)")
		return TickUnavailable
	}

	sent := w.notifier.Notify(ctx, FormatStartupMessage(w.source.Asset(), price))
	w.setLastPrice(price)
	if !sent {
		w.logger.Warn("Startup message not delivered", slog.String("price", price.String()))
		return TickStartup
	}
	w.countNotification()
	w.logger.Info("Startup message sent", slog.String("price", price.String()))
	return TickStartup
}

// LastPrice returns a copy of the baseline, nil while UNINITIALIZED.
func (w *Watcher) LastPrice() *decimal.Decimal {
	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.lastPrice == nil {
		return nil
	}
	p := *w.lastPrice
	return &p
}

func (w *Watcher) State() State {
	if w.LastPrice() == nil {
		return StateUninitialized
	}
	return StateTracking
}

func (w *Watcher) Snapshot() Snapshot {
	w.mu.RLock()
	defer w.mu.RUnlock()

	s := Snapshot{
		Asset:         w.source.Asset(),
		State:         StateUninitialized,
		LastTickAt:    w.lastTickAt,
		LastResult:    w.lastResult,
		Ticks:         w.ticks,
		Notifications: w.notifications,
	}
	if w.lastPrice != nil {
		p := *w.lastPrice
		s.LastPrice = &p
		s.State = StateTracking
	}
	return s
}

func (w *Watcher) countNotification() {
	w.mu.Lock()
	w.notifications++
	w.mu.Unlock()
}

func (w *Watcher) setLastPrice(p decimal.Decimal) {
	w.mu.Lock()
	w.lastPrice = &p
	w.mu.Unlock()
}
