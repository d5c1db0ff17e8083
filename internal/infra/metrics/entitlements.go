package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() {
	register(
		entitlementGrants,
		entitlementDuplicates,
	)
}

var (
	// source: callback|client_verify|bank_transfer|admin_override
	entitlementGrants = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_grants_total",
			Help: "Entitlements created, by grant path.",
		},
		[]string{"source"},
	)

	entitlementDuplicates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "entitlement_duplicate_suppressed_total",
			Help: "Grant attempts suppressed because a live entitlement already existed.",
		},
		[]string{"source"},
	)
)

func IncEntitlementGrant(source string) {
	entitlementGrants.WithLabelValues(norm(source)).Inc()
}

func IncEntitlementDuplicate(source string) {
	entitlementDuplicates.WithLabelValues(norm(source)).Inc()
}
