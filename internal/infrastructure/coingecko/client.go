package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/shopspring/decimal"
)

// CoinGecko docs: https://docs.coingecko.com/
// Endpoint used: /simple/price?ids=<asset>&vs_currencies=<fiat>

const DefaultBaseURL = "https://api.coingecko.com/api/v3"

type Client struct {
	baseURL    string
	apiKey     string // optional, sent as x-cg-pro-api-key
	userAgent  string
	httpClient *http.Client
}

// {"solana":{"usd":142.17}}
type simplePriceResponse map[string]map[string]decimal.Decimal

func NewClient(baseURL, apiKey, userAgent string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    strings.TrimSpace(apiKey),
		userAgent: userAgent,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: tr,
		},
	}
}

func (c *Client) Name() string { return "coingecko" }

func (c *Client) GetPrice(ctx context.Context, asset domain.Asset) (decimal.Decimal, error) {
	fiat := asset.QuoteCurrency()

	q := url.Values{}
	q.Set("ids", asset.ID)
	q.Set("vs_currencies", fiat)

	u := fmt.Sprintf("%s/simple/price?%s", c.baseURL, q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return decimal.Zero, err
	}
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	if c.apiKey != "" {
		req.Header.Set("x-cg-pro-api-key", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: coingecko: %v", domain.ErrPriceUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return decimal.Zero, fmt.Errorf("%w: coingecko: rate limited (%d)", domain.ErrPriceUnavailable, resp.StatusCode)
	}
	if resp.StatusCode/100 != 2 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("%w: coingecko: http %d: %s", domain.ErrPriceUnavailable, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var data simplePriceResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return decimal.Zero, fmt.Errorf("%w: coingecko: decode: %v", domain.ErrPriceUnavailable, err)
	}
	m, ok := data[asset.ID]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: coingecko: missing '%s' key", domain.ErrPriceUnavailable, asset.ID)
	}
	val, ok := m[fiat]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: coingecko: missing fiat '%s'", domain.ErrPriceUnavailable, fiat)
	}
	return val, nil
}
