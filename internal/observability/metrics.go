package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	modelCallCounter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "fitscribe",
		Subsystem: "assistant",
		Name:      "model_calls_total",
		Help:      "Number of model prompt executions, labeled by operation and outcome.",
	}, []string{"operation", "outcome"})

	entryPersistGauge = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "fitscribe",
		Subsystem: "persistence",
		Name:      "last_entry_persisted_timestamp_seconds",
		Help:      "Unix timestamp of the most recent journal entry persisted to Postgres.",
	})

	entrySaveCounter = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "fitscribe",
		Subsystem: "persistence",
		Name:      "entry_saves_total",
		Help:      "Number of journal entry merge-saves applied.",
	})
)

func init() {
	prometheus.MustRegister(modelCallCounter, entryPersistGauge, entrySaveCounter)
}

// RecordModelCall counts one prompt execution.
func RecordModelCall(operation string, err error) {
	outcome := "success"
	if err != nil {
		outcome = "failure"
	}
	modelCallCounter.WithLabelValues(operation, outcome).Inc()
}

// RecordEntryPersisted updates the persistence watermark gauge.
func RecordEntryPersisted(ts time.Time) {
	if ts.IsZero() {
		return
	}
	entrySaveCounter.Inc()
	entryPersistGauge.Set(float64(ts.Unix()))
}
