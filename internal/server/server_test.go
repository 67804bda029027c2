package server

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/romanzzaa/price-notifier/internal/domain"
	"github.com/romanzzaa/price-notifier/internal/metrics"
	"github.com/romanzzaa/price-notifier/internal/usecase"
	"github.com/romanzzaa/price-notifier/internal/worker"
)

type stubWatcher struct{ snap usecase.Snapshot }

func (w stubWatcher) Snapshot() usecase.Snapshot { return w.snap }

type stubScheduler struct{ st worker.JobStatus }

func (s stubScheduler) Status() worker.JobStatus { return s.st }

func newTestServer(snap usecase.Snapshot) *Server {
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))
	return New(":0", stubWatcher{snap}, stubScheduler{worker.JobStatus{Schedule: "0 * * * *", Runs: 3}}, metrics.New(), logger)
}

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthz(t *testing.T) {
	rec := get(t, newTestServer(usecase.Snapshot{}).Handler(), "/healthz")
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Errorf("got %d %q", rec.Code, rec.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	rec := get(t, newTestServer(usecase.Snapshot{}).Handler(), "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "go_goroutines") {
		t.Error("metrics body missing go collector output")
	}
}

func TestStatusTracking(t *testing.T) {
	p := decimal.RequireFromString("142.5")
	snap := usecase.Snapshot{
		Asset:         domain.Asset{ID: "solana", Currency: "usd"},
		State:         usecase.StateTracking,
		LastPrice:     &p,
		LastTickAt:    time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC),
		LastResult:    usecase.TickNotified,
		Ticks:         4,
		Notifications: 2,
	}

	rec := get(t, newTestServer(snap).Handler(), "/status")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var resp StatusResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Asset != "solana" || resp.State != usecase.StateTracking {
		t.Errorf("resp = %+v", resp)
	}
	if resp.LastPrice == nil || *resp.LastPrice != "142.5" {
		t.Errorf("last_price = %v", resp.LastPrice)
	}
	if resp.Ticks != 4 || resp.Notifications != 2 || resp.LastResult != usecase.TickNotified {
		t.Errorf("counters = %+v", resp)
	}
	if resp.Scheduler.Runs != 3 || resp.Scheduler.Schedule != "0 * * * *" {
		t.Errorf("scheduler = %+v", resp.Scheduler)
	}
}

func TestStatusUninitialized(t *testing.T) {
	rec := get(t, newTestServer(usecase.Snapshot{State: usecase.StateUninitialized}).Handler(), "/status")

	body := rec.Body.String()
	if !strings.Contains(body, `"last_price":null`) {
		t.Errorf("expected null last_price: %s", body)
	}
	if strings.Contains(body, "last_tick_at") {
		t.Errorf("last_tick_at should be omitted: %s", body)
	}
}
