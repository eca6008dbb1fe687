package recorder

import "github.com/prometheus/client_golang/prometheus"

// FallbackCounter counts operations that degraded from the primary backend.
var FallbackCounter = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "timestables_persistence_fallbacks_total",
		Help: "Persistence operations that fell back from the remote store",
	},
	[]string{"op"},
)

// RegisterMetrics registers the recorder's collectors with reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(FallbackCounter)
}
