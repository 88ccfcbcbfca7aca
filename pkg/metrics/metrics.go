// Package metrics defines DeltaGlider's metrics sink port and the four
// backends selectable via DG_METRICS (spec.md §6.3): noop, logging,
// prometheus, cloudwatch.
package metrics

import "time"

// Sink is the metrics port DeltaService records against. All methods must
// be safe for concurrent use. The stats aggregator (pkg/stats) holds no
// Sink, so nothing in this module calls BucketStatsCompleted.
type Sink interface {
	// PutCompleted records a successful put, tagged by operation
	// (upload_direct, create_reference, create_delta).
	PutCompleted(operation string, duration time.Duration, fileSize, deltaSize int64)

	// PutFailed records a failed put.
	PutFailed(reason string)

	// PolicyViolation records a delta-ratio policy-violation warning.
	PolicyViolation(deltaRatio float64)

	// GetCompleted records a successful get, tagged by path
	// (direct, delta, foreign).
	GetCompleted(path string, duration time.Duration)

	// IntegrityMismatch records an integrity check failure.
	IntegrityMismatch(operation string)

	// CacheHit / CacheMiss record reference cache lookups.
	CacheHit()
	CacheMiss()

	// BucketStatsCompleted records a completed (possibly partial) stats
	// aggregation pass.
	BucketStatsCompleted(objectCount int, partial bool, duration time.Duration)
}

// NoopSink discards everything. Selected by DG_METRICS=noop.
type NoopSink struct{}

func NewNoopSink() Sink { return NoopSink{} }

func (NoopSink) PutCompleted(string, time.Duration, int64, int64) {}
func (NoopSink) PutFailed(string)                                 {}
func (NoopSink) PolicyViolation(float64)                          {}
func (NoopSink) GetCompleted(string, time.Duration)               {}
func (NoopSink) IntegrityMismatch(string)                         {}
func (NoopSink) CacheHit()                                        {}
func (NoopSink) CacheMiss()                                       {}
func (NoopSink) BucketStatsCompleted(int, bool, time.Duration)    {}
