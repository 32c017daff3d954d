// Package metrics wires the log's lifecycle events to Prometheus, grounded
// on buildbarn-bb-storage's convention of giving every subsystem its own
// small set of counters/histograms constructed once and passed in, rather
// than registered against prometheus's global default registry.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Set holds the metrics a wal.Log reports. A nil *Set is always legal: every
// method is a no-op on a nil receiver, so collecting metrics is never on the
// correctness path.
type Set struct {
	CommitsTotal      prometheus.Counter
	BlocksLoggedTotal prometheus.Counter
	BeginBlockedTotal prometheus.Counter
	CommitDuration    prometheus.Histogram
}

// NewSet constructs and registers a Set against reg. Pass
// prometheus.NewRegistry() in tests to avoid polluting the default
// registry; pass prometheus.DefaultRegisterer in production.
func NewSet(reg prometheus.Registerer) *Set {
	s := &Set{
		CommitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wal_commits_total",
			Help: "Number of commit groups written to the log.",
		}),
		BlocksLoggedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wal_blocks_logged_total",
			Help: "Number of distinct blocks enlisted via LogWrite across all commits.",
		}),
		BeginBlockedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "wal_begin_blocked_total",
			Help: "Number of times Begin had to sleep for log capacity or an in-progress commit.",
		}),
		CommitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "wal_commit_duration_seconds",
			Help:    "Wall-clock time spent in the four-phase commit sequence.",
			Buckets: prometheus.DefBuckets,
		}),
	}
	reg.MustRegister(s.CommitsTotal, s.BlocksLoggedTotal, s.BeginBlockedTotal, s.CommitDuration)
	return s
}

// IncCommits records one completed commit group.
func (s *Set) IncCommits() {
	if s == nil {
		return
	}
	s.CommitsTotal.Inc()
}

// AddBlocksLogged records n blocks having been enlisted via LogWrite.
func (s *Set) AddBlocksLogged(n int) {
	if s == nil {
		return
	}
	s.BlocksLoggedTotal.Add(float64(n))
}

// IncBeginBlocked records Begin having had to sleep once.
func (s *Set) IncBeginBlocked() {
	if s == nil {
		return
	}
	s.BeginBlockedTotal.Inc()
}

// ObserveCommitSeconds records the wall-clock duration of one commit call.
func (s *Set) ObserveCommitSeconds(seconds float64) {
	if s == nil {
		return
	}
	s.CommitDuration.Observe(seconds)
}
