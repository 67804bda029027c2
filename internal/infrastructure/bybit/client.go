package bybit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/shopspring/decimal"
)

const maxBodyBytes = 1 << 20

const (
	MainnetBaseURL = "https://api.bybit.com"
	TestnetBaseURL = "https://api-testnet.bybit.com"
)

// Client - public market-data client for Bybit V5 (no signed endpoints)
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient uses baseURL when set, otherwise mainnet or testnet.
func NewClient(baseURL string, isTestnet bool, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = MainnetBaseURL
		if isTestnet {
			baseURL = TestnetBaseURL
		}
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *Client) Name() string { return "bybit" }

// GetPrice returns the spot last traded price for the asset's USDT pair.
func (c *Client) GetPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	symbol := asset.PairSymbol()
	params := url.Values{}
	params.Set("category", "spot")
	params.Set("symbol", symbol)

	var resp BaseResponse[TickerResponse]
	if err := c.sendPublicRequest(ctx, http.MethodGet, "/v5/market/tickers", params, &resp); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", domain.ErrPriceUnavailable, err)
	}

	if len(resp.Result.List) == 0 {
		return decimal.Zero, fmt.Errorf("%w: bybit: ticker not found for %s", domain.ErrPriceUnavailable, symbol)
	}

	return resp.Result.List[0].LastPrice, nil
}

func (c *Client) sendPublicRequest(ctx context.Context, method, endpoint string, params url.Values, result interface{}) error {
	fullURL := c.baseURL + endpoint
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, fullURL, nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("bybit: http %d", resp.StatusCode)
	}

	return c.decodeResponse(resp.Body, result)
}

func (c *Client) decodeResponse(body io.Reader, result interface{}) error {
	raw, err := io.ReadAll(io.LimitReader(body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("bybit: read body: %w", err)
	}

	var envelope BaseResponse[json.RawMessage]
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return fmt.Errorf("bybit: decode envelope: %w", err)
	}
	if envelope.RetCode != 0 {
		return fmt.Errorf("bybit: retCode %d: %s", envelope.RetCode, envelope.RetMsg)
	}

	return json.Unmarshal(raw, result)
}
