package monitor

import "github.com/prometheus/client_golang/prometheus"

var (
	fetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "monitor",
			Name:      "fetch_attempts_total",
			Help:      "Total number of liveness fetch attempts by result",
		},
		[]string{"result"},
	)

	idleTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "monitor",
			Name:      "idle_triggers_total",
			Help:      "Total number of idle callbacks invoked",
		},
		[]string{"droplet"},
	)

	sessionsEndedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "monitor",
			Name:      "sessions_ended_total",
			Help:      "Total number of monitoring sessions ended by final state",
		},
		[]string{"state"},
	)

	activeSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "dropletd",
			Subsystem: "monitor",
			Name:      "active_sessions",
			Help:      "Number of running monitoring sessions",
		},
	)
)

func init() {
	prometheus.MustRegister(fetchTotal, idleTriggersTotal, sessionsEndedTotal, activeSessions)
}

func recordFetchMetric(result string) {
	fetchTotal.WithLabelValues(result).Inc()
}

func recordIdleMetric(name string) {
	idleTriggersTotal.WithLabelValues(name).Inc()
}

func recordSessionEndMetric(state State) {
	sessionsEndedTotal.WithLabelValues(state.String()).Inc()
	activeSessions.Dec()
}
