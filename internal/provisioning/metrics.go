package provisioning

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/dropletd/internal/droplet"
)

const (
	resultCreated    = "created"
	resultExisting   = "existing"
	resultLocked     = "locked"
	resultMissing    = "missing"
	resultBootFailed = "boot_failed"
	resultError      = "error"
)

var (
	createTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "provisioning",
			Name:      "create_total",
			Help:      "Total number of create-or-get calls by result",
		},
		[]string{"result"},
	)

	createDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dropletd",
			Subsystem: "provisioning",
			Name:      "create_duration_seconds",
			Help:      "Duration of create-or-get calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10), // 500ms to ~4min
		},
		[]string{"result"},
	)

	destroyedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "provisioning",
			Name:      "destroyed_droplets_total",
			Help:      "Total number of droplets destroyed",
		},
	)
)

func init() {
	prometheus.MustRegister(createTotal, createDuration, destroyedTotal)
}

// recordCreateMetric records a create-or-get result.
func recordCreateMetric(result string, seconds float64) {
	createTotal.WithLabelValues(result).Inc()
	if result != resultLocked {
		createDuration.WithLabelValues(result).Observe(seconds)
	}
}

func recordDestroyMetric(n int) {
	destroyedTotal.Add(float64(n))
}

// resultFor maps an error to a metric result label.
func resultFor(err error) string {
	switch droplet.KindOf(err) {
	case droplet.KindResourceLocked:
		return resultLocked
	case droplet.KindResourceMissing:
		return resultMissing
	case droplet.KindBootFailed:
		return resultBootFailed
	default:
		return resultError
	}
}
