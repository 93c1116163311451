package observability

import "github.com/prometheus/client_golang/prometheus"

var (
	sessionsSwitched = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "sessions",
		Name:      "switched_total",
		Help:      "Sessions opened via a direct or replayed switch.",
	})
	sessionsStopped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "sessions",
		Name:      "stopped_total",
		Help:      "Sessions closed without a replacement.",
	})
	syncEventsProcessed = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "sync",
		Name:      "events_processed_total",
		Help:      "Queued client events newly applied by the sync endpoint.",
	})
	syncEventsSkipped = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "timeflow",
		Subsystem: "sync",
		Name:      "events_skipped_total",
		Help:      "Queued client events skipped as already-processed duplicates.",
	})
)

func init() {
	prometheus.MustRegister(sessionsSwitched, sessionsStopped, syncEventsProcessed, syncEventsSkipped)
}

func RecordSessionSwitched() {
	sessionsSwitched.Inc()
}

func RecordSessionStopped() {
	sessionsStopped.Inc()
}

// RecordSyncBatch updates the replay counters after a sync batch.
func RecordSyncBatch(processed, skipped int) {
	syncEventsProcessed.Add(float64(processed))
	syncEventsSkipped.Add(float64(skipped))
}
