package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	SnapshotsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "snapshots_total", Help: "Count of market snapshots ingested"},
		[]string{"provider"},
	)
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "signals_total", Help: "Signal evaluations by side"},
		[]string{"side"},
	)
	EvaluationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "evaluation_errors_total", Help: "Evaluator and plan builder rejections"},
		[]string{"stage"},
	)
	PlansTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "plans_total", Help: "Trade plans created"},
		[]string{"side"},
	)
	EntriesBlockedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "entries_blocked_total", Help: "Entries refused by risk gates"},
		[]string{"reason"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orders_total", Help: "Orders submitted"},
		[]string{"symbol", "side"},
	)
	ExitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "exits_total", Help: "Plans closed by exit reason"},
		[]string{"reason"},
	)
	DayPnL = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "day_pnl", Help: "Realized plus unrealized paper P&L"},
	)
	OpenPlans = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "open_plans", Help: "Plans currently PLANNED or ACTIVE"},
	)
)

func init() {
	prometheus.MustRegister(
		SnapshotsTotal,
		SignalsTotal,
		EvaluationErrorsTotal,
		PlansTotal,
		EntriesBlockedTotal,
		OrdersTotal,
		ExitsTotal,
		DayPnL,
		OpenPlans,
	)
}

func Serve(addr string) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	srv := &http.Server{Addr: addr, Handler: mux}
	go func() { _ = srv.ListenAndServe() }()
	return srv
}
