package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	RateLimitAllowed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinicportal", Name: "rate_limit_allowed_total", Help: "Number of allowed requests by limiter type."},
		[]string{"limiter"},
	)
	RateLimitRejected = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinicportal", Name: "rate_limit_rejected_total", Help: "Number of rejected requests by limiter type."},
		[]string{"limiter"},
	)
	ContentWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinicportal", Name: "content_writes_total", Help: "Create/update/delete operations by collection and outcome."},
		[]string{"collection", "op", "outcome"},
	)
	CSVExports = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinicportal", Name: "csv_exports_total", Help: "Audit study CSV exports by study."},
		[]string{"study"},
	)
	AccessDenied = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: "clinicportal", Name: "access_denied_total", Help: "Requests rejected by the role gate, by resolved role."},
		[]string{"role"},
	)
)

func RegisterCollectors(reg prometheus.Registerer) {
	reg.MustRegister(RateLimitAllowed)
	reg.MustRegister(RateLimitRejected)
	reg.MustRegister(ContentWrites)
	reg.MustRegister(CSVExports)
	reg.MustRegister(AccessDenied)
}
