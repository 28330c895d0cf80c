package notify

import "github.com/prometheus/client_golang/prometheus"

const (
	resultSuccess = "success"
	resultError   = "error"
)

var (
	messagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "notify",
			Name:      "messages_total",
			Help:      "Total number of outbound messages by delivery result",
		},
		[]string{"result"},
	)

	queueDepth = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dropletd",
			Subsystem: "notify",
			Name:      "queue_depth",
			Help:      "Number of messages waiting for delivery",
		},
	)
)

func init() {
	prometheus.MustRegister(messagesTotal, queueDepth)
}

// recordDeliveryMetric records a delivery attempt.
func recordDeliveryMetric(result string) {
	messagesTotal.WithLabelValues(result).Inc()
}
