package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

// Metrics holds the notifier's collectors on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	priceFetches  *prometheus.CounterVec
	price         *prometheus.GaugeVec
	notifications *prometheus.CounterVec
	ticks         *prometheus.CounterVec
	tickDuration  prometheus.Histogram
	lastSuccessTS prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.priceFetches = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "price_notifier",
		Name:      "price_fetch_total",
		Help:      "Price API requests by provider and status",
	}, []string{"provider", "status"})
	m.price = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "price_notifier",
		Name:      "price",
		Help:      "Last successfully fetched price",
	}, []string{"asset", "currency"})
	m.notifications = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "price_notifier",
		Name:      "notifications_total",
		Help:      "Messages handed to the messaging API by status",
	}, []string{"messenger", "status"})
	m.ticks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "price_notifier",
		Name:      "ticks_total",
		Help:      "Watcher ticks by result",
	}, []string{"result"})
	m.tickDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: "price_notifier",
		Name:      "tick_duration_seconds",
		Help:      "Time spent in one watcher tick",
		Buckets:   prometheus.DefBuckets,
	})
	m.lastSuccessTS = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "price_notifier",
		Name:      "last_price_success_timestamp_seconds",
		Help:      "Unix timestamp of the last successful price fetch",
	})

	m.registry.MustRegister(
		m.priceFetches, m.price, m.notifications,
		m.ticks, m.tickDuration, m.lastSuccessTS,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) ObservePriceFetch(provider string, ok bool) {
	if m == nil {
		return
	}
	m.priceFetches.WithLabelValues(provider, status(ok)).Inc()
	if ok {
		m.lastSuccessTS.Set(float64(time.Now().Unix()))
	}
}

func (m *Metrics) SetPrice(asset, currency string, p decimal.Decimal) {
	if m == nil {
		return
	}
	m.price.WithLabelValues(asset, currency).Set(p.InexactFloat64())
}

func (m *Metrics) ObserveNotification(messenger string, ok bool) {
	if m == nil {
		return
	}
	m.notifications.WithLabelValues(messenger, status(ok)).Inc()
}

func (m *Metrics) ObserveTick(result string, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.ticks.WithLabelValues(result).Inc()
	m.tickDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func status(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}
