// Package metrics exposes prometheus counters for cache-aside fetches and
// orchestrated operations.
//
// A nil *Recorder is valid and records nothing, so components can take one
// unconditionally.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Fetch outcome sources
const (
	SourceNetwork    = "network"
	SourceFreshCache = "fresh_cache"
	SourceStaleCache = "stale_cache"
	SourceFailure    = "failure"
)

// Recorder holds the marquee collectors
type Recorder struct {
	FetchesTotal       *prometheus.CounterVec
	RemoteDuration     *prometheus.HistogramVec
	StorageErrorsTotal *prometheus.CounterVec
	OperationsTotal    *prometheus.CounterVec
	Superseded         *prometheus.CounterVec
}

// New registers the collectors with reg. Pass prometheus.DefaultRegisterer for the process-wide registry.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)

	return &Recorder{
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_fetches_total",
				Help: "Cache-aside fetches by resource and the source that satisfied them",
			},
			[]string{"resource", "source"},
		),
		RemoteDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "marquee_remote_call_duration_seconds",
				Help:    "Duration of remote catalog calls in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"resource", "outcome"},
		),
		StorageErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_storage_errors_total",
				Help: "Persistent store errors downgraded to cache misses",
			},
			[]string{"op"},
		),
		OperationsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_operations_total",
				Help: "Orchestrated operations by kind and terminal outcome",
			},
			[]string{"op", "outcome"},
		),
		Superseded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "marquee_list_results_superseded_total",
				Help: "List fetch results discarded because a newer request was issued",
			},
			[]string{"list"},
		),
	}
}

// RecordFetch counts one fetch resolved from source
func (r *Recorder) RecordFetch(resource, source string) {
	if r == nil {
		return
	}
	r.FetchesTotal.WithLabelValues(resource, source).Inc()
}

// ObserveRemote records the latency of one remote call
func (r *Recorder) ObserveRemote(resource string, d time.Duration, err error) {
	if r == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	r.RemoteDuration.WithLabelValues(resource, outcome).Observe(d.Seconds())
}

// RecordStorageError counts a swallowed store error for op ("get", "set", "delete")
func (r *Recorder) RecordStorageError(op string) {
	if r == nil {
		return
	}
	r.StorageErrorsTotal.WithLabelValues(op).Inc()
}

// RecordOperation counts one terminal operation result
func (r *Recorder) RecordOperation(op string, ok bool) {
	if r == nil {
		return
	}
	outcome := "success"
	if !ok {
		outcome = "failure"
	}
	r.OperationsTotal.WithLabelValues(op, outcome).Inc()
}

// RecordSuperseded counts a discarded list result
func (r *Recorder) RecordSuperseded(list string) {
	if r == nil {
		return
	}
	r.Superseded.WithLabelValues(list).Inc()
}
