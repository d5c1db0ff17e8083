package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		callbackRequests,
		signatureFailures,
		notifyDispatchTotal,
	)
}

var (
	// result: ok|fail
	// reason (fail only): bad_signature|missing_fields|not_found|store_error|unknown
	callbackRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_callback_requests_total",
			Help: "Gateway notification deliveries by result and reason.",
		},
		[]string{"result", "reason"},
	)

	signatureFailures = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "payment_signature_failures_total",
			Help: "Notifications rejected for hash mismatch; audit trail lives in logs.",
		},
	)

	// kind: buyer|admin
	// status: sent|error
	notifyDispatchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_notify_dispatch_total",
			Help: "WhatsApp dispatches about payment outcomes by audience and delivery status.",
		},
		[]string{"kind", "status"},
	)
)

func IncCallback(result, reason string) {
	callbackRequests.WithLabelValues(norm(result), norm(reason)).Inc()
}

func IncSignatureFailure() {
	signatureFailures.Inc()
}

func IncNotifyDispatch(kind, status string) {
	notifyDispatchTotal.WithLabelValues(norm(kind), norm(status)).Inc()
}
