package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for a triple-redundant store
type Metrics struct {
	// Operation metrics
	WriteRequestsTotal    prometheus.Counter
	WriteRequestsDuration prometheus.Histogram
	ReadRequestsTotal     prometheus.Counter
	ReadRequestsDuration  prometheus.Histogram

	// Voting metrics
	VotesUnanimousTotal  prometheus.Counter
	ReplicaOutvotedTotal prometheus.CounterVec
	VotingFailuresTotal  prometheus.Counter

	// Fault injection metrics (test and soak harnesses)
	FaultInjectionsTotal prometheus.CounterVec

	// Scrub metrics
	ScrubRunsTotal          prometheus.Counter
	ScrubDuration           prometheus.Histogram
	ScrubDivergentWords     prometheus.Gauge
	ScrubUnrecoverableWords prometheus.Gauge

	// System metrics
	MemoryUsageBytes prometheus.Gauge
	GoroutinesTotal  prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics. storeID
// distinguishes multiple store instances in one process.
func NewMetrics(storeID string) *Metrics {
	labels := prometheus.Labels{"store_id": storeID}

	return &Metrics{
		WriteRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "store",
			Name:        "write_requests_total",
			Help:        "Total number of write requests",
			ConstLabels: labels,
		}),
		WriteRequestsDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "ariane",
			Subsystem:   "store",
			Name:        "write_requests_duration_seconds",
			Help:        "Histogram of write request durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		ReadRequestsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "store",
			Name:        "read_requests_total",
			Help:        "Total number of read requests",
			ConstLabels: labels,
		}),
		ReadRequestsDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "ariane",
			Subsystem:   "store",
			Name:        "read_requests_duration_seconds",
			Help:        "Histogram of read request durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),

		VotesUnanimousTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "vote",
			Name:        "unanimous_total",
			Help:        "Total number of reads where all three replicas agreed",
			ConstLabels: labels,
		}),
		ReplicaOutvotedTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "vote",
			Name:        "replica_outvoted_total",
			Help:        "Total number of reads where one replica was outvoted, by replica",
			ConstLabels: labels,
		}, []string{"replica"}),
		VotingFailuresTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "vote",
			Name:        "failures_total",
			Help:        "Total number of reads where all three replicas disagreed",
			ConstLabels: labels,
		}),

		FaultInjectionsTotal: *promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "store",
			Name:        "fault_injections_total",
			Help:        "Total number of injected single-replica faults, by replica",
			ConstLabels: labels,
		}, []string{"replica"}),

		ScrubRunsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Namespace:   "ariane",
			Subsystem:   "scrub",
			Name:        "runs_total",
			Help:        "Total number of scrub passes",
			ConstLabels: labels,
		}),
		ScrubDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace:   "ariane",
			Subsystem:   "scrub",
			Name:        "duration_seconds",
			Help:        "Histogram of scrub pass durations",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		ScrubDivergentWords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ariane",
			Subsystem:   "scrub",
			Name:        "divergent_words",
			Help:        "Number of addresses with a single divergent replica in the last scrub",
			ConstLabels: labels,
		}),
		ScrubUnrecoverableWords: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ariane",
			Subsystem:   "scrub",
			Name:        "unrecoverable_words",
			Help:        "Number of addresses where all three replicas disagreed in the last scrub",
			ConstLabels: labels,
		}),

		MemoryUsageBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ariane",
			Subsystem:   "system",
			Name:        "memory_usage_bytes",
			Help:        "Current memory usage in bytes",
			ConstLabels: labels,
		}),
		GoroutinesTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace:   "ariane",
			Subsystem:   "system",
			Name:        "goroutines_total",
			Help:        "Current number of goroutines",
			ConstLabels: labels,
		}),
	}
}

// RecordWriteRequest records metrics for a write request
func (m *Metrics) RecordWriteRequest(duration float64) {
	m.WriteRequestsTotal.Inc()
	m.WriteRequestsDuration.Observe(duration)
}

// RecordReadRequest records metrics for a read request
func (m *Metrics) RecordReadRequest(duration float64) {
	m.ReadRequestsTotal.Inc()
	m.ReadRequestsDuration.Observe(duration)
}

// RecordUnanimousVote records a read where all replicas agreed
func (m *Metrics) RecordUnanimousVote() {
	m.VotesUnanimousTotal.Inc()
}

// RecordOutvotedReplica records a read where one replica was outvoted
func (m *Metrics) RecordOutvotedReplica(replica string) {
	m.ReplicaOutvotedTotal.WithLabelValues(replica).Inc()
}

// RecordVotingFailure records a read with no majority
func (m *Metrics) RecordVotingFailure() {
	m.VotingFailuresTotal.Inc()
}

// RecordFaultInjection records an injected single-replica fault
func (m *Metrics) RecordFaultInjection(replica string) {
	m.FaultInjectionsTotal.WithLabelValues(replica).Inc()
}

// RecordScrub records the outcome of a scrub pass
func (m *Metrics) RecordScrub(duration float64, divergent, unrecoverable int) {
	m.ScrubRunsTotal.Inc()
	m.ScrubDuration.Observe(duration)
	m.ScrubDivergentWords.Set(float64(divergent))
	m.ScrubUnrecoverableWords.Set(float64(unrecoverable))
}

// UpdateSystemStats updates system-level statistics
func (m *Metrics) UpdateSystemStats(memoryUsage int64, goroutines int) {
	m.MemoryUsageBytes.Set(float64(memoryUsage))
	m.GoroutinesTotal.Set(float64(goroutines))
}
