package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(otpRequests)
}

var (
	// op: send|verify|register
	// result: ok|rate_limited|mismatch|expired|error
	otpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "registration_otp_requests_total",
			Help: "Registration OTP operations by op and result.",
		},
		[]string{"op", "result"},
	)
)

func IncOTP(op, result string) {
	otpRequests.WithLabelValues(norm(op), norm(result)).Inc()
}
