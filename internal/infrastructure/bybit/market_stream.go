package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/shopspring/decimal"
)

const (
	MainnetSpotStream = "wss://stream.bybit.com/v5/public/spot"
	TestnetSpotStream = "wss://stream-testnet.bybit.com/v5/public/spot"

	reconnectDelay = 5 * time.Second
	pingInterval   = 20 * time.Second
)

// MarketStream keeps the latest spot price of one pair from the public
// ticker stream. GetPrice only reads the cache, so a tick never waits on
// the socket.
type MarketStream struct {
	url    string
	symbol string
	maxAge time.Duration
	logger *slog.Logger

	conn   *websocket.Conn
	connMu sync.Mutex

	latest   domain.PriceUpdateEvent
	latestMu sync.RWMutex

	now func() time.Time
}

// NewMarketStream uses url when set, otherwise mainnet or testnet.
func NewMarketStream(url string, isTestnet bool, asset domain.Asset, maxAge time.Duration, logger *slog.Logger) *MarketStream {
	if url == "" {
		url = MainnetSpotStream
		if isTestnet {
			url = TestnetSpotStream
		}
	}
	return &MarketStream{
		url:    url,
		symbol: asset.PairSymbol(),
		maxAge: maxAge,
		logger: logger.With("component", "market_stream"),
		now:    time.Now,
	}
}

func (s *MarketStream) Name() string { return "bybit-stream" }

// GetPrice returns the most recent streamed price if it is fresh enough.
func (s *MarketStream) GetPrice(_ context.Context, asset domain.Asset) (decimal.Decimal, error) {
	if sym := asset.PairSymbol(); sym != s.symbol {
		return decimal.Zero, fmt.Errorf("%w: bybit-stream: subscribed to %s, asked for %s", domain.ErrPriceUnavailable, s.symbol, sym)
	}

	s.latestMu.RLock()
	last := s.latest
	s.latestMu.RUnlock()

	if last.Timestamp.IsZero() {
		return decimal.Zero, fmt.Errorf("%w: bybit-stream: no ticker received yet for %s", domain.ErrPriceUnavailable, s.symbol)
	}
	if age := s.now().Sub(last.Timestamp); age > s.maxAge {
		return decimal.Zero, fmt.Errorf("%w: bybit-stream: last ticker is %s old", domain.ErrPriceUnavailable, age.Truncate(time.Second))
	}
	return last.Price, nil
}

// Run keeps the connection alive until ctx is cancelled.
func (s *MarketStream) Run(ctx context.Context) {
	for {
		if err := s.connectAndListen(ctx); err != nil && ctx.Err() == nil {
			s.logger.Error("Connection lost or failed", "err", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Market stream stopped")
			return
		case <-time.After(reconnectDelay):
			s.logger.Info("Reconnecting to Bybit spot stream")
		}
	}
}

func (s *MarketStream) connectAndListen(ctx context.Context) error {
	s.logger.Info("Connecting to Bybit spot stream", "url", s.url, "symbol", s.symbol)

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, s.url, nil)
	if err != nil {
		return err
	}

	s.connMu.Lock()
	s.conn = conn
	s.connMu.Unlock()

	connCtx, cancel := context.WithCancel(ctx)
	defer func() {
		cancel()
		s.connMu.Lock()
		if s.conn != nil {
			s.conn.Close()
			s.conn = nil
		}
		s.connMu.Unlock()
	}()

	// ReadMessage blocks; closing the socket is the only way to unblock it.
	go func() {
		<-connCtx.Done()
		conn.Close()
	}()

	if err := s.writeJSON(map[string]interface{}{
		"op":   "subscribe",
		"args": []string{"tickers." + s.symbol},
	}); err != nil {
		return err
	}

	go s.heartbeat(connCtx)

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return fmt.Errorf("read error: %w", err)
		}
		s.handleMessage(message)
	}
}

func (s *MarketStream) handleMessage(message []byte) {
	var rawMsg map[string]json.RawMessage
	if err := json.Unmarshal(message, &rawMsg); err != nil {
		return
	}

	// ping/subscribe acks
	if _, ok := rawMsg["op"]; ok {
		return
	}

	var event WsTickerEvent
	if err := json.Unmarshal(message, &event); err != nil {
		s.logger.Debug("Skipping malformed ticker", "err", err)
		return
	}
	if event.Topic != "tickers."+s.symbol || !event.Data.LastPrice.IsPositive() {
		return
	}

	s.latestMu.Lock()
	s.latest = domain.PriceUpdateEvent{
		Symbol:    event.Data.Symbol,
		Price:     event.Data.LastPrice,
		Timestamp: s.now(),
		Source:    "bybit-spot-ws",
	}
	s.latestMu.Unlock()
}

func (s *MarketStream) writeJSON(v interface{}) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	if s.conn == nil {
		return fmt.Errorf("not connected")
	}
	return s.conn.WriteJSON(v)
}

func (s *MarketStream) heartbeat(ctx context.Context) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.writeJSON(map[string]string{"op": "ping"}); err != nil {
				s.logger.Error("Ping failed", "err", err)
			}
		}
	}
}
