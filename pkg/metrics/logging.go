package metrics

import (
	"time"

	"deltaglider/pkg/helper/log"
)

// LoggingSink emits every metric as a structured log line. This is the
// default backend (DG_METRICS=logging), matching the original source's
// default metrics_type.
type LoggingSink struct {
	logger    log.Logger
	namespace string
}

// NewLoggingSink constructs a LoggingSink under the given metrics
// namespace (DG_METRICS_NAMESPACE).
func NewLoggingSink(logger log.Logger, namespace string) *LoggingSink {
	return &LoggingSink{logger: logger.WithField("metrics_namespace", namespace), namespace: namespace}
}

func (s *LoggingSink) PutCompleted(operation string, duration time.Duration, fileSize, deltaSize int64) {
	s.logger.WithFields(map[string]interface{}{
		"metric": "put_completed", "operation": operation, "duration_ms": duration.Milliseconds(),
		"file_size": fileSize, "delta_size": deltaSize,
	}).Info("metric")
}

func (s *LoggingSink) PutFailed(reason string) {
	s.logger.WithFields(map[string]interface{}{"metric": "put_failed", "reason": reason}).Warn("metric")
}

func (s *LoggingSink) PolicyViolation(deltaRatio float64) {
	s.logger.WithFields(map[string]interface{}{"metric": "policy_violation", "delta_ratio": deltaRatio}).Warn("metric")
}

func (s *LoggingSink) GetCompleted(path string, duration time.Duration) {
	s.logger.WithFields(map[string]interface{}{"metric": "get_completed", "path": path, "duration_ms": duration.Milliseconds()}).Info("metric")
}

func (s *LoggingSink) IntegrityMismatch(operation string) {
	s.logger.WithFields(map[string]interface{}{"metric": "integrity_mismatch", "operation": operation}).Error("metric", nil)
}

func (s *LoggingSink) CacheHit() {
	s.logger.WithFields(map[string]interface{}{"metric": "cache_hit"}).Debug("metric")
}

func (s *LoggingSink) CacheMiss() {
	s.logger.WithFields(map[string]interface{}{"metric": "cache_miss"}).Debug("metric")
}

func (s *LoggingSink) BucketStatsCompleted(objectCount int, partial bool, duration time.Duration) {
	s.logger.WithFields(map[string]interface{}{
		"metric": "bucket_stats_completed", "object_count": objectCount, "partial": partial, "duration_ms": duration.Milliseconds(),
	}).Info("metric")
}
