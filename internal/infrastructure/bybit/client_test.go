package bybit

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/romanzzaa/price-notifier/internal/domain"
)

var solana = domain.Asset{ID: "solana", Name: "Solana", Symbol: "SOL", Currency: "usd"}

func TestClientGetPrice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v5/market/tickers" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.URL.Query().Get("symbol"); got != "SOLUSDT" {
			t.Errorf("symbol = %q", got)
		}
		if got := r.URL.Query().Get("category"); got != "spot" {
			t.Errorf("category = %q", got)
		}
		w.Write([]byte(`{"retCode":0,"retMsg":"OK","result":{"category":"spot","list":[{"symbol":"SOLUSDT","lastPrice":"142.55","bid1Price":"142.54","ask1Price":"142.56"}]}}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, false, time.Second)
	price, err := c.GetPrice(context.Background(), solana)
	if err != nil {
		t.Fatalf("GetPrice failed: %v", err)
	}
	if price.String() != "142.55" {
		t.Errorf("price = %s, want 142.55", price)
	}
}

func TestClientGetPriceFailures(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{name: "api error", status: http.StatusOK, body: `{"retCode":10001,"retMsg":"params error","result":{}}`},
		{name: "empty list", status: http.StatusOK, body: `{"retCode":0,"retMsg":"OK","result":{"list":[]}}`},
		{name: "http error", status: http.StatusBadGateway, body: `bad gateway`},
		{name: "not json", status: http.StatusOK, body: `<html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := NewClient(srv.URL, false, time.Second)
			if _, err := c.GetPrice(context.Background(), solana); !errors.Is(err, domain.ErrPriceUnavailable) {
				t.Fatalf("err = %v, want ErrPriceUnavailable", err)
			}
		})
	}
}

func TestNewClientBaseURL(t *testing.T) {
	if c := NewClient("", true, time.Second); c.baseURL != TestnetBaseURL {
		t.Errorf("testnet url = %s", c.baseURL)
	}
	if c := NewClient("", false, time.Second); c.baseURL != MainnetBaseURL {
		t.Errorf("mainnet url = %s", c.baseURL)
	}
	if c := NewClient("http://localhost:1/", true, time.Second); c.baseURL != "http://localhost:1" {
		t.Errorf("custom url = %s", c.baseURL)
	}
}
