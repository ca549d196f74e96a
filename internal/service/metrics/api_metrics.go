package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	APIErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantfuse",
			Subsystem: "api",
			Name:      "errors_total",
			Help:      "Errors by API endpoint and status",
		},
		[]string{"endpoint", "status"},
	)

	DegradedResults = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "quantfuse",
			Subsystem: "api",
			Name:      "degraded_results_total",
			Help:      "Insights and indicator sets served with neutral fallbacks",
		},
		[]string{"endpoint"},
	)
)

// Register adds the API collectors to the default registry once.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(APIErrors, DegradedResults)
	})
}
