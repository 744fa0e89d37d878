package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "paintstock"

// Результаты операций со складом (label result).
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

var (
	Updates = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "updates_total",
		Help:      "Telegram updates handled, by kind.",
	}, []string{"kind"})

	StockOps = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_operations_total",
		Help:      "Add/use stock attempts, by operation and result.",
	}, []string{"op", "result"})

	StockKg = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_moved_kg_total",
		Help:      "Kilograms added or used.",
	}, []string{"op"})

	PollRestarts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "poll_restarts_total",
		Help:      "Long-poll loop restarts after a failure.",
	})

	HandlerPanics = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "handler_panics_total",
		Help:      "Recovered panics while handling an update.",
	})

	DialogSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "dialog_sessions",
		Help:      "Active dialog sessions after the last sweep.",
	})
)
