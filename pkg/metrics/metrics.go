package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blockpay",
			Name:      "requests_total",
			Help:      "Total HTTP requests by route",
		},
		[]string{"route", "method", "status"},
	)

	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "blockpay",
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration by route",
			Buckets: []float64{
				0.01, 0.02, 0.03, 0.05, 0.08, 0.12,
				0.2, 0.3, 0.5, 0.8, 1.2, 2, 3, 5,
			},
		},
		[]string{"route", "status"},
	)

	LedgerOperationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "blockpay",
			Name:      "ledger_operations_total",
			Help:      "Ledger operations by outcome",
		},
		[]string{"operation", "status"},
	)
)

func init() {
	prometheus.MustRegister(RequestsTotal, RequestDuration, LedgerOperationsTotal)
}

func IncRequest(route, method, status string) {
	RequestsTotal.WithLabelValues(route, method, status).Inc()
}

func ObserveDuration(route, status string, seconds float64) {
	RequestDuration.WithLabelValues(route, status).Observe(seconds)
}

func IncOperation(operation, status string) {
	LedgerOperationsTotal.WithLabelValues(operation, status).Inc()
}
