package deltaservice

import (
	"context"
	"strings"

	"deltaglider/pkg/objectstore"
)

// Delete implements spec.md §4.5: dispatch by object class (reference,
// delta, direct, other) and apply each class's cleanup rule.
func (s *Service) Delete(ctx context.Context, key ObjectKey) (DeleteResult, error) {
	switch {
	case strings.HasSuffix(key.Key, "/reference.bin") || key.Key == "reference.bin":
		return s.deleteReference(ctx, key)
	case strings.HasSuffix(key.Key, ".delta"):
		return s.deleteDelta(ctx, key)
	default:
		meta, err := s.Store.Head(ctx, key.FullKey())
		if err != nil {
			return DeleteResult{}, err
		}
		if meta != nil && isDirectObject(meta.Metadata) {
			if err := s.Store.Delete(ctx, key.FullKey()); err != nil {
				return DeleteResult{}, err
			}
			return DeleteResult{Type: "direct", Key: key.Key}, nil
		}
		if err := s.Store.Delete(ctx, key.FullKey()); err != nil {
			return DeleteResult{}, err
		}
		return DeleteResult{Type: "unknown", Key: key.Key}, nil
	}
}

func (s *Service) deleteReference(ctx context.Context, key ObjectKey) (DeleteResult, error) {
	prefix := strings.TrimSuffix(key.Key, "reference.bin")
	prefix = trimTrailingSlash(prefix)

	dependents, err := s.listDeltaDependents(ctx, key.Bucket, prefix, key.Key)
	if err != nil {
		return DeleteResult{}, err
	}

	var warnings []string
	if len(dependents) > 0 {
		warnings = append(warnings, "reference has dependent deltas; deleted anyway per explicit caller intent")
	}

	if err := s.Store.Delete(ctx, key.FullKey()); err != nil {
		return DeleteResult{}, err
	}
	if err := s.Cache.Evict(ctx, key.Bucket, prefix); err != nil {
		warnings = append(warnings, "cache evict failed: "+err.Error())
	}

	return DeleteResult{Type: "reference", Key: key.Key, Warnings: warnings}, nil
}

func (s *Service) deleteDelta(ctx context.Context, key ObjectKey) (DeleteResult, error) {
	prefix := deltaspaceOf(key.Bucket, key.Key).Prefix

	if err := s.Store.Delete(ctx, key.FullKey()); err != nil {
		return DeleteResult{}, err
	}

	refKey := joinKey(prefix, "reference.bin")
	remaining, err := s.listDeltaDependents(ctx, key.Bucket, prefix, refKey)
	if err != nil {
		return DeleteResult{}, err
	}

	result := DeleteResult{Type: "delta", Key: key.Key}
	if len(remaining) > 0 {
		return result, nil
	}

	refMeta, err := s.Store.Head(ctx, key.Bucket+"/"+refKey)
	if err != nil {
		return DeleteResult{}, err
	}
	if refMeta == nil {
		return result, nil
	}

	if err := s.Store.Delete(ctx, key.Bucket+"/"+refKey); err != nil {
		return DeleteResult{}, err
	}
	if err := s.Cache.Evict(ctx, key.Bucket, prefix); err != nil {
		result.Warnings = append(result.Warnings, "cache evict failed: "+err.Error())
	}
	result.CleanedReference = refKey
	return result, nil
}

// listDeltaDependents lists every *.delta under prefix whose ref_key
// metadata equals refKey.
func (s *Service) listDeltaDependents(ctx context.Context, bucket, prefix, refKey string) ([]string, error) {
	var dependents []string
	token := ""
	for {
		page, err := s.Store.List(ctx, bucket+"/"+prefix, objectstore.ListOptions{ContinuationToken: token, MaxKeys: 1000})
		if err != nil {
			return nil, err
		}
		for _, obj := range page.Objects {
			// obj.Key is bucket-qualified (the Store port returns full
			// keys); reduce to the bucket-relative form used by RefKey.
			relKey := strings.TrimPrefix(obj.Key, bucket+"/")
			if !strings.HasSuffix(relKey, ".delta") {
				continue
			}
			meta, err := s.Store.Head(ctx, obj.Key)
			if err != nil || meta == nil {
				continue
			}
			dm := deltaMetaFromMap(meta.Metadata)
			if dm.RefKey == refKey {
				dependents = append(dependents, relKey)
			}
		}
		if !page.IsTruncated || page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}
	return dependents, nil
}
