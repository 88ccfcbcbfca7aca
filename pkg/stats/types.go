// Package stats implements the bucket stats aggregator: a bounded,
// partial-failure-tolerant scan that sums storage footprint and
// compression ratio across a deltaspace tree (spec.md §4.8).
package stats

// BucketStats is the result of Aggregator.Compute.
type BucketStats struct {
	ObjectCount             int
	TotalSize               int64
	CompressedSize          int64
	SpaceSaved              int64
	AverageCompressionRatio float64
	DeltaObjects            int
	DirectObjects           int
	Warnings                []string
}
