package bot

import "github.com/prometheus/client_golang/prometheus"

var (
	commandsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "dropletd",
			Subsystem: "bot",
			Name:      "commands_total",
			Help:      "Total number of chat commands by command and result",
		},
		[]string{"command", "result"},
	)

	commandDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "dropletd",
			Subsystem: "bot",
			Name:      "command_duration_seconds",
			Help:      "Duration of chat commands in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 12), // 50ms to ~100s
		},
		[]string{"command"},
	)
)

func init() {
	prometheus.MustRegister(commandsTotal, commandDuration)
}

// recordCommandMetric records a handled command.
func recordCommandMetric(command, result string, duration float64) {
	commandsTotal.WithLabelValues(command, result).Inc()
	if result != resultRateLimited {
		commandDuration.WithLabelValues(command).Observe(duration)
	}
}
