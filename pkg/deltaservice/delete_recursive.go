package deltaservice

import (
	"context"
	"strings"

	"deltaglider/pkg/objectstore"
)

type classifiedObject struct {
	key      string // bucket-relative
	class    string // "reference", "delta", "direct", "other"
	metadata map[string]string
}

// DeleteRecursive implements spec.md §4.6: classify everything under
// prefix, delete in dependency order (other -> direct -> delta), then run
// an orphan-reference safety pass across every deltaspace touched by a
// deleted delta (even references outside prefix), and finally evict the
// cache for prefix.
func (s *Service) DeleteRecursive(ctx context.Context, bucket, prefix string) (RecursiveDeleteResult, error) {
	objects, listErr := s.listAllUnder(ctx, bucket, prefix)
	result := RecursiveDeleteResult{}
	if listErr != nil {
		result.Errors = append(result.Errors, listErr.Error())
		return result, nil
	}

	touchedDeltaspaces := map[string]bool{}
	var others, directs, deltas, refsInPrefix []classifiedObject

	for _, obj := range objects {
		switch obj.class {
		case "reference":
			refsInPrefix = append(refsInPrefix, obj)
		case "delta":
			deltas = append(deltas, obj)
			touchedDeltaspaces[deltaspaceOf(bucket, obj.key).Prefix] = true
		case "direct":
			directs = append(directs, obj)
		default:
			others = append(others, obj)
		}
	}

	for _, obj := range others {
		s.deleteOneRecursive(ctx, bucket, obj.key, &result)
	}
	for _, obj := range directs {
		s.deleteOneRecursive(ctx, bucket, obj.key, &result)
	}
	for _, obj := range deltas {
		s.deleteOneRecursive(ctx, bucket, obj.key, &result)
	}

	for _, obj := range refsInPrefix {
		touchedDeltaspaces[deltaspaceOf(bucket, obj.key).Prefix] = true
	}

	for deltaspacePrefix := range touchedDeltaspaces {
		s.evaluateReferenceOrphan(ctx, bucket, deltaspacePrefix, prefix, &result)
	}

	if err := s.Cache.Evict(ctx, bucket, prefix); err != nil {
		result.Warnings = append(result.Warnings, "cache evict for prefix failed: "+err.Error())
	}

	return result, nil
}

func (s *Service) deleteOneRecursive(ctx context.Context, bucket, key string, result *RecursiveDeleteResult) {
	if err := s.Store.Delete(ctx, bucket+"/"+key); err != nil {
		result.Errors = append(result.Errors, key+": "+err.Error())
		return
	}
	result.DeletedCount++
	result.DeletedKeys = append(result.DeletedKeys, key)
}

// evaluateReferenceOrphan implements spec.md §4.6 step 3: for the
// reference under deltaspacePrefix, list everything still live in its
// deltaspace excluding items within deletionPrefix; if anything remains,
// keep the reference and warn, else delete it.
func (s *Service) evaluateReferenceOrphan(ctx context.Context, bucket, deltaspacePrefix, deletionPrefix string, result *RecursiveDeleteResult) {
	refKey := joinKey(deltaspacePrefix, "reference.bin")

	refMeta, err := s.Store.Head(ctx, bucket+"/"+refKey)
	if err != nil {
		result.Errors = append(result.Errors, refKey+": "+err.Error())
		return
	}
	if refMeta == nil {
		return
	}

	siblings, err := s.listAllUnder(ctx, bucket, deltaspacePrefix)
	if err != nil {
		result.Errors = append(result.Errors, refKey+": "+err.Error())
		return
	}

	var liveOutsideDeletion bool
	for _, obj := range siblings {
		if obj.key == refKey {
			continue
		}
		if withinPrefix(obj.key, deletionPrefix) {
			continue
		}
		liveOutsideDeletion = true
		break
	}

	if liveOutsideDeletion {
		result.RetainedReferences = append(result.RetainedReferences, refKey)
		result.Warnings = append(result.Warnings, "kept reference "+refKey+": live dependents remain outside deletion scope")
		return
	}

	s.deleteOneRecursive(ctx, bucket, refKey, result)
}

func withinPrefix(key, prefix string) bool {
	if prefix == "" {
		return true
	}
	return key == prefix || strings.HasPrefix(key, trimTrailingSlash(prefix)+"/")
}

// listAllUnder lists every object (bucket-relative key + classification)
// under prefix, paginating per spec.md §4.8's page size.
func (s *Service) listAllUnder(ctx context.Context, bucket, prefix string) ([]classifiedObject, error) {
	var out []classifiedObject
	token := ""
	for {
		page, err := s.Store.List(ctx, bucket+"/"+prefix, objectstore.ListOptions{ContinuationToken: token, MaxKeys: 1000})
		if err != nil {
			return out, err
		}
		for _, obj := range page.Objects {
			relKey := strings.TrimPrefix(obj.Key, bucket+"/")
			meta, err := s.Store.Head(ctx, obj.Key)
			if err != nil || meta == nil {
				continue
			}
			out = append(out, classifiedObject{key: relKey, class: classifyObject(relKey, meta.Metadata), metadata: meta.Metadata})
		}
		if !page.IsTruncated || page.NextContinuationToken == "" {
			break
		}
		token = page.NextContinuationToken
	}
	return out, nil
}

func classifyObject(key string, metadata map[string]string) string {
	switch {
	case strings.HasSuffix(key, "/reference.bin") || key == "reference.bin":
		return "reference"
	case strings.HasSuffix(key, ".delta"):
		return "delta"
	case isDirectObject(metadata):
		return "direct"
	default:
		return "other"
	}
}
