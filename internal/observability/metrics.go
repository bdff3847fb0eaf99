package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	sessionPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "grind_service",
		Subsystem: "persistence",
		Name:      "last_session_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent grind session write to Postgres.",
	})
	transitionCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "grind_service",
		Subsystem: "lifecycle",
		Name:      "transitions_total",
		Help:      "Count of timer lifecycle transitions, labeled by operation.",
	}, []string{"operation"})
	recordedSecondsCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "grind_service",
		Subsystem: "lifecycle",
		Name:      "study_seconds_recorded_total",
		Help:      "Total study seconds folded into accumulated time by pause/stop.",
	})
)

func init() {
	prometheus.MustRegister(sessionPersistGauge, transitionCounter, recordedSecondsCounter)
}

// RecordSessionPersisted updates the persistence watermark gauge.
func RecordSessionPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	sessionPersistGauge.Set(float64(ts.Unix()))
}

// RecordTransition counts a successful lifecycle transition.
func RecordTransition(operation string) {
	transitionCounter.WithLabelValues(operation).Inc()
}

// RecordStudySeconds adds newly folded segment seconds to the running total.
func RecordStudySeconds(seconds int) {
	if seconds <= 0 {
		return
	}
	recordedSecondsCounter.Add(float64(seconds))
}
