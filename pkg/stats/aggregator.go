package stats

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"deltaglider/pkg/helper/log"
	"deltaglider/pkg/objectstore"
)

const (
	pageSize        = 1000
	maxIterations   = 10000
	wallBudget      = 10 * time.Minute
	maxWorkers      = 10
	perHeadTimeout  = 60 * time.Second
	perResultBudget = 5 * time.Second
)

// Options parameterizes Aggregator.Compute.
type Options struct {
	// Detailed fans out a bounded-concurrency head of every *.delta to
	// recover original_file_size metadata, per spec.md §4.8.
	Detailed bool
}

// Aggregator implements spec.md §4.8's paginated bucket scan.
type Aggregator struct {
	Store  objectstore.Store
	Logger log.Logger

	// headLimiter throttles the detailed-stats head fan-out; nil disables
	// throttling (used in tests against in-memory stores).
	headLimiter *rate.Limiter
}

// NewAggregator builds an Aggregator with a conservative default head
// throttle, matching the sustained-rate pattern of rate_limiter.go.
func NewAggregator(store objectstore.Store, logger log.Logger) *Aggregator {
	return &Aggregator{
		Store:       store,
		Logger:      logger,
		headLimiter: rate.NewLimiter(rate.Limit(50), 100),
	}
}

type scanEntry struct {
	relKey   string
	size     int64
	metadata map[string]string
}

// Compute implements spec.md §4.8: list bucket+prefix in pages of 1000 (capped
// at 10,000 pages / 10 minutes wall time), classify each object, optionally
// head every delta for its original_file_size, then aggregate.
func (a *Aggregator) Compute(ctx context.Context, bucket, prefix string, opts Options) (BucketStats, error) {
	deadline := time.Now().Add(wallBudget)
	ctx, cancel := context.WithDeadline(ctx, deadline)
	defer cancel()

	result := BucketStats{}
	var references, deltas, directs []scanEntry

	token := ""
	iterations := 0
	listedAny := false

	for {
		iterations++
		if iterations > maxIterations {
			result.Warnings = append(result.Warnings, "iteration cap (10000) reached; returning partial stats")
			break
		}
		if time.Now().After(deadline) {
			result.Warnings = append(result.Warnings, "wall-clock budget (10m) exceeded; returning partial stats")
			break
		}

		page, err := a.Store.List(ctx, joinPrefix(bucket, prefix), objectstore.ListOptions{ContinuationToken: token, MaxKeys: pageSize})
		if err != nil {
			if listedAny {
				result.Warnings = append(result.Warnings, "list page failed after first batch: "+err.Error())
				break
			}
			a.Logger.WithFields(map[string]interface{}{"bucket": bucket, "prefix": prefix}).Error("stats aggregation: total listing failure with zero objects collected", err)
			return BucketStats{}, nil
		}
		listedAny = true

		for _, obj := range page.Objects {
			relKey := strings.TrimPrefix(obj.Key, bucket+"/")
			meta, err := a.Store.Head(ctx, obj.Key)
			if err != nil || meta == nil {
				result.Warnings = append(result.Warnings, relKey+": head failed during classification, skipped")
				continue
			}
			entry := scanEntry{relKey: relKey, size: obj.Size, metadata: meta.Metadata}

			switch {
			case strings.HasSuffix(relKey, "/reference.bin") || relKey == "reference.bin":
				references = append(references, entry)
			case strings.HasSuffix(relKey, ".delta"):
				deltas = append(deltas, entry)
			case isDirect(meta.Metadata):
				directs = append(directs, entry)
			default:
				// Neither reference, delta, nor direct: not part of the
				// compression accounting (spec.md §4.8 only names these
				// three classes); ignored here as in the original scan.
			}
		}

		if page.IsTruncated && page.NextContinuationToken == "" {
			result.Warnings = append(result.Warnings, "truncated page with no continuation token; returning partial results")
			break
		}
		if !page.IsTruncated {
			break
		}
		token = page.NextContinuationToken
	}

	if opts.Detailed {
		a.headDeltasDetailed(ctx, bucket, deltas, &result)
	}

	a.aggregate(references, deltas, directs, &result)

	return result, nil
}

// headDeltasDetailed heads every delta, bounded to maxWorkers concurrent
// requests, to recover original_file_size where metadata alone did not
// already carry it. Per-item failures degrade to a warning.
func (a *Aggregator) headDeltasDetailed(ctx context.Context, bucket string, deltas []scanEntry, result *BucketStats) {
	if len(deltas) == 0 {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	sem := semaphore.NewWeighted(maxWorkers)
	var mu sync.Mutex

	for i := range deltas {
		i := i
		g.Go(func() error {
			// perResultBudget bounds the whole per-delta unit of work —
			// semaphore queueing and rate-limiter wait included, not just
			// the head RPC itself (perHeadTimeout) — so one slow/throttled
			// item can't eat into other items' share of wallBudget.
			resultCtx, cancel := context.WithTimeout(gctx, perResultBudget)
			defer cancel()

			if err := sem.Acquire(resultCtx, 1); err != nil {
				mu.Lock()
				result.Warnings = append(result.Warnings, deltas[i].relKey+": per-result budget exceeded waiting for a worker slot, falling back to compressed size")
				mu.Unlock()
				return nil
			}
			defer sem.Release(1)

			if a.headLimiter != nil {
				if err := a.headLimiter.Wait(resultCtx); err != nil {
					mu.Lock()
					result.Warnings = append(result.Warnings, deltas[i].relKey+": per-result budget exceeded waiting on rate limiter, falling back to compressed size")
					mu.Unlock()
					return nil
				}
			}

			headCtx, headCancel := context.WithTimeout(resultCtx, perHeadTimeout)
			defer headCancel()

			meta, err := a.Store.Head(headCtx, bucket+"/"+deltas[i].relKey)
			if err != nil || meta == nil {
				mu.Lock()
				result.Warnings = append(result.Warnings, deltas[i].relKey+": detailed head failed, falling back to compressed size")
				mu.Unlock()
				return nil
			}

			mu.Lock()
			deltas[i].metadata = meta.Metadata
			mu.Unlock()
			return nil
		})
	}
	// Errors from individual heads are already captured as warnings above;
	// Wait only surfaces context cancellation (budget/iteration exhaustion).
	_ = g.Wait()
}

func (a *Aggregator) aggregate(references, deltas, directs []scanEntry, result *BucketStats) {
	refSizes := make(map[string]int64, len(references))
	for _, r := range references {
		refSizes[r.relKey] = r.size
	}
	refReferenced := make(map[string]bool, len(references))

	for _, d := range deltas {
		result.ObjectCount++
		result.DeltaObjects++
		result.CompressedSize += d.size

		if originalSize, ok := lookupInt64(d.metadata, "file-size"); ok {
			result.TotalSize += originalSize
		} else {
			result.TotalSize += d.size
			result.Warnings = append(result.Warnings, d.relKey+": original_file_size unknown, counted compressed size toward total")
		}

		if refKey, ok := lookup(d.metadata, "ref-key"); ok {
			if _, known := refSizes[refKey]; known {
				refReferenced[refKey] = true
			}
		}
	}

	for _, entry := range directs {
		result.ObjectCount++
		result.DirectObjects++
		result.TotalSize += entry.size
		result.CompressedSize += entry.size
	}

	for _, r := range references {
		result.ObjectCount++
		if refReferenced[r.relKey] {
			result.CompressedSize += r.size
		} else if len(deltas) > 0 || len(references) > 0 {
			result.Warnings = append(result.Warnings, r.relKey+": reference has no referencing delta in scan scope; likely orphaned storage waste")
		}
	}

	result.SpaceSaved = result.TotalSize - result.CompressedSize
	if result.TotalSize > 0 {
		result.AverageCompressionRatio = float64(result.SpaceSaved) / float64(result.TotalSize)
	}
}

func isDirect(m map[string]string) bool {
	compression, ok := lookup(m, "compression")
	return ok && compression == "none"
}

// lookup resolves a metadata field against both the canonical dg-prefixed
// and bare legacy forms (spec.md §3).
func lookup(m map[string]string, name string) (string, bool) {
	if v, ok := m["dg-"+name]; ok {
		return v, true
	}
	if v, ok := m[name]; ok {
		return v, true
	}
	return "", false
}

func lookupInt64(m map[string]string, name string) (int64, bool) {
	v, ok := lookup(m, name)
	if !ok {
		return 0, false
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func joinPrefix(bucket, prefix string) string {
	if prefix == "" {
		return bucket
	}
	return bucket + "/" + prefix
}
