package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusSink registers DeltaGlider's metrics against a dedicated
// prometheus.Registry, adapted from the teacher's Registry
// (pkg/metrics/registry.go) with replication-shaped series replaced by
// put/get/cache/stats series. Selected by DG_METRICS=prometheus; exposed
// via pkg/adminserver's /metrics endpoint through promhttp.
type PrometheusSink struct {
	registry *prometheus.Registry

	putTotal             *prometheus.CounterVec
	putFailedTotal       *prometheus.CounterVec
	putDuration          *prometheus.HistogramVec
	deltaRatio           prometheus.Histogram
	policyViolationTotal prometheus.Counter

	getTotal    *prometheus.CounterVec
	getDuration *prometheus.HistogramVec

	integrityMismatchTotal *prometheus.CounterVec

	cacheHitTotal  prometheus.Counter
	cacheMissTotal prometheus.Counter

	statsCompletedTotal *prometheus.CounterVec
	statsDuration       prometheus.Histogram
	statsObjectCount    prometheus.Gauge
}

// NewPrometheusSink creates a PrometheusSink under the given namespace
// (DG_METRICS_NAMESPACE), registering all series on a fresh registry.
func NewPrometheusSink(namespace string) *PrometheusSink {
	reg := prometheus.NewRegistry()

	s := &PrometheusSink{
		registry: reg,
		putTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "put_total", Help: "Total number of put operations by operation type.",
		}, []string{"operation"}),
		putFailedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "put_failed_total", Help: "Total number of failed put operations by reason.",
		}, []string{"reason"}),
		putDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "put_duration_seconds", Help: "Put operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		deltaRatio: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "delta_ratio", Help: "Observed delta_size/file_size ratio.",
			Buckets: []float64{0.01, 0.02, 0.05, 0.1, 0.2, 0.3, 0.5, 0.75, 1.0},
		}),
		policyViolationTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "policy_violation_total", Help: "Total number of delta-ratio policy violations.",
		}),
		getTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "get_total", Help: "Total number of get operations by path.",
		}, []string{"path"}),
		getDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "get_duration_seconds", Help: "Get operation duration in seconds.",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		integrityMismatchTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "integrity_mismatch_total", Help: "Total number of integrity mismatches by operation.",
		}, []string{"operation"}),
		cacheHitTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_hit_total", Help: "Total number of reference cache hits.",
		}),
		cacheMissTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cache_miss_total", Help: "Total number of reference cache misses.",
		}),
		statsCompletedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "bucket_stats_completed_total", Help: "Total number of bucket stats passes by completeness.",
		}, []string{"partial"}),
		statsDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace, Name: "bucket_stats_duration_seconds", Help: "Bucket stats pass duration in seconds.",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300, 600},
		}),
		statsObjectCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "bucket_stats_object_count", Help: "Object count observed by the most recent bucket stats pass.",
		}),
	}

	reg.MustRegister(s.putTotal, s.putFailedTotal, s.putDuration, s.deltaRatio, s.policyViolationTotal,
		s.getTotal, s.getDuration, s.integrityMismatchTotal, s.cacheHitTotal, s.cacheMissTotal,
		s.statsCompletedTotal, s.statsDuration, s.statsObjectCount)

	return s
}

// Registry exposes the underlying prometheus.Registry for promhttp.
func (s *PrometheusSink) Registry() *prometheus.Registry { return s.registry }

func (s *PrometheusSink) PutCompleted(operation string, duration time.Duration, fileSize, deltaSize int64) {
	s.putTotal.WithLabelValues(operation).Inc()
	s.putDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if fileSize > 0 {
		s.deltaRatio.Observe(float64(deltaSize) / float64(fileSize))
	}
}

func (s *PrometheusSink) PutFailed(reason string) { s.putFailedTotal.WithLabelValues(reason).Inc() }

func (s *PrometheusSink) PolicyViolation(float64) { s.policyViolationTotal.Inc() }

func (s *PrometheusSink) GetCompleted(path string, duration time.Duration) {
	s.getTotal.WithLabelValues(path).Inc()
	s.getDuration.WithLabelValues(path).Observe(duration.Seconds())
}

func (s *PrometheusSink) IntegrityMismatch(operation string) {
	s.integrityMismatchTotal.WithLabelValues(operation).Inc()
}

func (s *PrometheusSink) CacheHit()  { s.cacheHitTotal.Inc() }
func (s *PrometheusSink) CacheMiss() { s.cacheMissTotal.Inc() }

func (s *PrometheusSink) BucketStatsCompleted(objectCount int, partial bool, duration time.Duration) {
	label := "false"
	if partial {
		label = "true"
	}
	s.statsCompletedTotal.WithLabelValues(label).Inc()
	s.statsDuration.Observe(duration.Seconds())
	s.statsObjectCount.Set(float64(objectCount))
}
