package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		paymentsTotal,
		paymentsRevenueTotal,
		sessionsBuiltTotal,
	)
}

var (
	paymentsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_total",
			Help: "Payment attempts by terminal disposition (completed/failed/cancelled/charged_back/unknown).",
		},
		[]string{"status"},
	)

	paymentsRevenueTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payments_revenue_cents_total",
			Help: "The total monetary value of completed payments, labeled by currency.",
		},
		[]string{"currency"},
	)

	sessionsBuiltTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_sessions_built_total",
			Help: "Checkout sessions built, by outcome (ok/already_enrolled/not_approved/error).",
		},
		[]string{"outcome"},
	)
)

func IncPayment(status string) {
	paymentsTotal.WithLabelValues(norm(status)).Inc()
}

func AddPaymentRevenue(currency string, cents int64) {
	paymentsRevenueTotal.WithLabelValues(norm(currency)).Add(float64(cents))
}

func IncSessionBuilt(outcome string) {
	sessionsBuiltTotal.WithLabelValues(norm(outcome)).Inc()
}
