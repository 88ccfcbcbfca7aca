package deltaservice

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"deltaglider/pkg/helper/errors"
	"deltaglider/pkg/objectstore"
)

// RehydrateResult is the result of RehydrateForDownload.
type RehydrateResult struct {
	// Applicable is false when the key is neither delta-suffixed nor
	// DeltaGlider-managed; the facade should presign the original directly.
	Applicable bool
	TempKey    string
}

// RehydrateForDownload implements spec.md §4.7: decode a delta (or copy a
// direct object) into a time-limited temp key so a facade can presign a
// plain GET against it. A foreign object without a .delta suffix is not
// copied; it yields Applicable=false.
func (s *Service) RehydrateForDownload(ctx context.Context, bucket, key string, ttl time.Duration) (RehydrateResult, error) {
	meta, err := s.Store.Head(ctx, bucket+"/"+key)
	if err != nil {
		return RehydrateResult{}, err
	}

	lookupKey := key
	if meta == nil && !strings.HasSuffix(key, ".delta") {
		altKey := key + ".delta"
		altMeta, err := s.Store.Head(ctx, bucket+"/"+altKey)
		if err != nil {
			return RehydrateResult{}, err
		}
		if altMeta == nil {
			return RehydrateResult{}, errors.NotFoundf("object %s (or %s) not found", key, altKey)
		}
		meta = altMeta
		lookupKey = altKey
	}
	if meta == nil {
		return RehydrateResult{}, errors.NotFoundf("object %s not found", key)
	}

	if !strings.HasSuffix(lookupKey, ".delta") && isForeignObject(meta.Metadata) {
		return RehydrateResult{Applicable: false}, nil
	}

	scratch, err := os.CreateTemp("", "deltaglider-rehydrate-*.bin")
	if err != nil {
		return RehydrateResult{}, errors.StoreErrorf(err, "create rehydrate scratch file")
	}
	scratchPath := scratch.Name()
	scratch.Close()
	defer os.Remove(scratchPath)

	objKey := ObjectKey{Bucket: bucket, Key: lookupKey}
	if err := s.Get(ctx, objKey, Sink{FilePath: scratchPath}); err != nil {
		return RehydrateResult{}, err
	}

	info, err := os.Stat(scratchPath)
	if err != nil {
		return RehydrateResult{}, errors.StoreErrorf(err, "stat rehydrated scratch file")
	}

	basename := lookupKey
	if idx := lastSlash(basename); idx >= 0 {
		basename = basename[idx+1:]
	}
	basename = strings.TrimSuffix(basename, ".delta")

	now := s.Clock.Now()
	tempKey := rehydrateTempPrefix + uuid.NewString() + "_" + basename

	tempMeta := rehydratedTempMetaToMap(RehydratedTempMeta{
		ExpiresAt:        now.Add(ttl).Format(time.RFC3339),
		OriginalKey:      key,
		OriginalFilename: basename,
		Rehydrated:       "true",
		CreatedAt:        now.Format(time.RFC3339),
	})

	f, err := os.Open(scratchPath)
	if err != nil {
		return RehydrateResult{}, errors.StoreErrorf(err, "reopen rehydrated scratch file")
	}
	defer f.Close()

	if err := s.Store.Put(ctx, bucket+"/"+tempKey, f, info.Size(), tempMeta); err != nil {
		return RehydrateResult{}, err
	}

	return RehydrateResult{Applicable: true, TempKey: tempKey}, nil
}

// PurgeTempFiles implements spec.md §4.7: list rehydrated temp objects and
// delete any whose dg-expires-at has passed. Malformed or missing
// expiration is skipped with a warning, not an error.
func (s *Service) PurgeTempFiles(ctx context.Context, bucket string) (PurgeResult, error) {
	result := PurgeResult{}
	now := s.Clock.Now()

	token := ""
	for {
		page, err := s.Store.List(ctx, bucket+"/"+rehydrateTempPrefix, objectstore.ListOptions{ContinuationToken: token, MaxKeys: 1000})
		if err != nil {
			result.Warnings = append(result.Warnings, "list failed: "+err.Error())
			break
		}

		for _, obj := range page.Objects {
			meta, err := s.Store.Head(ctx, obj.Key)
			if err != nil || meta == nil {
				result.Warnings = append(result.Warnings, obj.Key+": head failed")
				continue
			}

			expiresAtStr, ok := metadataLookup(meta.Metadata, "expires-at")
			if !ok {
				result.Warnings = append(result.Warnings, obj.Key+": missing dg-expires-at, skipped")
				continue
			}
			expiresAt, err := time.Parse(time.RFC3339, expiresAtStr)
			if err != nil {
				result.Warnings = append(result.Warnings, obj.Key+": malformed dg-expires-at, skipped")
				continue
			}

			if now.Before(expiresAt) {
				continue
			}

			if err := s.Store.Delete(ctx, obj.Key); err != nil {
				result.Warnings = append(result.Warnings, obj.Key+": delete failed: "+err.Error())
				continue
			}
			result.PurgedCount++
			result.BytesFreed += obj.Size
		}

		if !page.IsTruncated || page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}

	return result, nil
}
