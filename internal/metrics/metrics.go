// Package metrics exposes Prometheus metrics and a /metrics + /healthz HTTP
// server for the trading bot.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus metrics for the decision engine.
type Metrics struct {
	CyclesTotal    prometheus.Counter
	CycleDur       prometheus.Histogram
	CycleFailures  *prometheus.CounterVec // labels: figi
	DecisionsTotal *prometheus.CounterVec // labels: figi, action
	OrdersTotal    *prometheus.CounterVec // labels: figi, side
	OrderFailures  *prometheus.CounterVec // labels: figi

	CandleFetchDur prometheus.Histogram
	CacheHits      prometheus.Counter
	CacheMisses    prometheus.Counter

	LedgerWriteFailures prometheus.Counter
	NotifyFailures      prometheus.Counter
}

// New registers and returns all metrics on the default registry.
func New() *Metrics {
	m := &Metrics{
		CyclesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_cycles_total",
			Help: "Total completed decision cycles",
		}),
		CycleDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalbot_cycle_duration_seconds",
			Help:    "Wall time of one full decision cycle across all instruments",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
		CycleFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_cycle_failures_total",
			Help: "Per-instrument cycle failures (execution errors)",
		}, []string{"figi"}),
		DecisionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_decisions_total",
			Help: "Trigger decisions by instrument and action",
		}, []string{"figi", "action"}),
		OrdersTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_orders_total",
			Help: "Orders placed by instrument and side",
		}, []string{"figi", "side"}),
		OrderFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "signalbot_order_failures_total",
			Help: "Order placement failures by instrument",
		}, []string{"figi"}),
		CandleFetchDur: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "signalbot_candle_fetch_duration_seconds",
			Help:    "Latency of candle history loads (cache plus broker)",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 14),
		}),
		CacheHits: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_candle_cache_hits_total",
			Help: "Candle windows served entirely from the Redis cache",
		}),
		CacheMisses: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_candle_cache_misses_total",
			Help: "Candle windows that required a broker fetch",
		}),
		LedgerWriteFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_ledger_write_failures_total",
			Help: "Trade ledger writes that failed and were swallowed",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "signalbot_notify_failures_total",
			Help: "Notification deliveries that failed",
		}),
	}

	prometheus.MustRegister(
		m.CyclesTotal,
		m.CycleDur,
		m.CycleFailures,
		m.DecisionsTotal,
		m.OrdersTotal,
		m.OrderFailures,
		m.CandleFetchDur,
		m.CacheHits,
		m.CacheMisses,
		m.LedgerWriteFailures,
		m.NotifyFailures,
	)

	return m
}
