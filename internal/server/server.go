package server

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/romanzzaa/price-notifier/internal/metrics"
	"github.com/romanzzaa/price-notifier/internal/usecase"
	"github.com/romanzzaa/price-notifier/internal/worker"
)

type WatcherView interface {
	Snapshot() usecase.Snapshot
}

type SchedulerView interface {
	Status() worker.JobStatus
}

// StatusResponse - body of GET /status
type StatusResponse struct {
	Asset         string             `json:"asset"`
	Currency      string             `json:"currency"`
	State         usecase.State      `json:"state"`
	LastPrice     *string            `json:"last_price"`
	LastTickAt    *time.Time         `json:"last_tick_at,omitempty"`
	LastResult    usecase.TickResult `json:"last_result,omitempty"`
	Ticks         int                `json:"ticks"`
	Notifications int                `json:"notifications"`
	Scheduler     worker.JobStatus   `json:"scheduler"`
}

type Server struct {
	addr      string
	echo      *echo.Echo
	watcher   WatcherView
	scheduler SchedulerView
	logger    *slog.Logger
}

func New(addr string, watcher WatcherView, scheduler SchedulerView, m *metrics.Metrics, logger *slog.Logger) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		addr:      addr,
		echo:      e,
		watcher:   watcher,
		scheduler: scheduler,
		logger:    logger.With("component", "http"),
	}

	e.GET("/healthz", s.handleHealth)
	e.GET("/status", s.handleStatus)
	if m != nil {
		e.GET("/metrics", echo.WrapHandler(m.Handler()))
	}
	return s
}

// Listen binds the port so the caller knows the server is reachable before Serve.
func (s *Server) Listen() error {
	l, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.echo.Listener = l
	s.logger.Info("Server is running", slog.String("addr", l.Addr().String()))
	return nil
}

func (s *Server) Serve() error {
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.String(http.StatusOK, "ok")
}

func (s *Server) handleStatus(c echo.Context) error {
	snap := s.watcher.Snapshot()

	resp := StatusResponse{
		Asset:         snap.Asset.ID,
		Currency:      snap.Asset.Currency,
		State:         snap.State,
		LastResult:    snap.LastResult,
		Ticks:         snap.Ticks,
		Notifications: snap.Notifications,
	}
	if snap.LastPrice != nil {
		p := snap.LastPrice.String()
		resp.LastPrice = &p
	}
	if !snap.LastTickAt.IsZero() {
		t := snap.LastTickAt
		resp.LastTickAt = &t
	}
	if s.scheduler != nil {
		resp.Scheduler = s.scheduler.Status()
	}
	return c.JSON(http.StatusOK, resp)
}
