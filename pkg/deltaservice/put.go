package deltaservice

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"deltaglider/pkg/helper/errors"
)

// Put implements spec.md §4.1: classify by extension, then either upload
// directly or create/extend a delta against the deltaspace's reference.
func (s *Service) Put(ctx context.Context, localPath string, space DeltaSpace, opts PutOptions) (PutSummary, error) {
	start := s.Clock.Now()

	info, err := os.Stat(localPath)
	if err != nil {
		return PutSummary{}, errors.Configurationf("stat local file %s: %v", localPath, err)
	}
	fileSize := info.Size()

	fileSHA256, err := s.Hasher.SHA256File(ctx, localPath)
	if err != nil {
		s.Metrics.PutFailed("hash_failure")
		return PutSummary{}, err
	}

	originalName := opts.OverrideName
	if originalName == "" {
		originalName = filepath.Base(localPath)
	}

	maxRatio := s.MaxRatio
	if opts.MaxRatio != nil {
		maxRatio = *opts.MaxRatio
	}

	var summary PutSummary
	if !shouldUseDelta(originalName) {
		summary, err = s.putDirect(ctx, localPath, space, originalName, fileSize, fileSHA256)
	} else {
		summary, err = s.putDelta(ctx, localPath, space, originalName, fileSize, fileSHA256, maxRatio)
	}

	if err != nil {
		s.Metrics.PutFailed(summary.Operation)
		return PutSummary{}, err
	}

	s.Metrics.PutCompleted(summary.Operation, s.Clock.Now().Sub(start), fileSize, summary.DeltaSize)
	for _, w := range summary.Warnings {
		if w != "" {
			s.Metrics.PolicyViolation(summary.DeltaRatio)
		}
	}
	return summary, nil
}

func (s *Service) putDirect(ctx context.Context, localPath string, space DeltaSpace, originalName string, fileSize int64, fileSHA256 string) (PutSummary, error) {
	key := joinKey(space.Prefix, originalName)
	meta := directMetaToMap(DirectMeta{
		Tool:         toolIdentifier,
		OriginalName: originalName,
		FileSHA256:   fileSHA256,
		FileSize:     fileSize,
		CreatedAt:    s.Clock.Now().Format(time.RFC3339),
		Compression:  "none",
	})

	f, err := os.Open(localPath)
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "open %s", localPath)
	}
	defer f.Close()

	if err := s.Store.Put(ctx, space.Bucket+"/"+key, f, fileSize, meta); err != nil {
		return PutSummary{}, err
	}

	return PutSummary{
		Operation:    OpUploadDirect,
		Bucket:       space.Bucket,
		Key:          key,
		OriginalName: originalName,
		FileSize:     fileSize,
		FileSHA256:   fileSHA256,
	}, nil
}

func (s *Service) putDelta(ctx context.Context, localPath string, space DeltaSpace, originalName string, fileSize int64, fileSHA256 string, maxRatio float64) (PutSummary, error) {
	refFullKey := space.ReferenceFullKey()

	refMetaObj, err := s.Store.Head(ctx, refFullKey)
	if err != nil {
		return PutSummary{}, err
	}

	if refMetaObj == nil {
		return s.createReference(ctx, localPath, space, originalName, fileSize, fileSHA256)
	}

	refMeta := referenceMetaFromMap(refMetaObj.Metadata)
	return s.createDelta(ctx, localPath, space, originalName, fileSize, fileSHA256, refMeta.FileSHA256, maxRatio)
}

// createReference handles the "no reference yet" branch of spec.md §4.1
// step 4: upload the file as the reference, re-head to resolve a
// concurrent-writer race ("last writer's SHA wins; readers bind to
// whatever SHA is currently there"), cache it, and record a zero-diff
// delta bound to whichever SHA won.
func (s *Service) createReference(ctx context.Context, localPath string, space DeltaSpace, originalName string, fileSize int64, fileSHA256 string) (PutSummary, error) {
	refFullKey := space.ReferenceFullKey()
	createdAt := s.Clock.Now().Format(time.RFC3339)

	refMetaMap := referenceMetaToMap(ReferenceMeta{
		Tool:       toolIdentifier,
		SourceName: originalName,
		FileSHA256: fileSHA256,
		CreatedAt:  createdAt,
	})

	f, err := os.Open(localPath)
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "open %s", localPath)
	}
	putErr := func() error {
		defer f.Close()
		return s.Store.Put(ctx, refFullKey, f, fileSize, refMetaMap)
	}()
	if putErr != nil {
		return PutSummary{}, putErr
	}

	boundSHA := fileSHA256
	if after, err := s.Store.Head(ctx, refFullKey); err == nil && after != nil {
		if winning, ok := metadataLookup(after.Metadata, "file-sha256"); ok && winning != "" {
			boundSHA = winning
		}
	}

	if _, err := s.Cache.WriteRef(ctx, space.Bucket, space.Prefix, localPath); err != nil {
		s.Logger.WithFields(map[string]interface{}{"bucket": space.Bucket, "prefix": space.Prefix}).Warn("failed to populate reference cache after create_reference: " + err.Error())
	}

	refPath, release, err := s.Cache.GetValidatedRef(ctx, space.Bucket, space.Prefix, boundSHA)
	if err != nil {
		refPath = localPath
		release = func() {}
	}
	defer release()

	deltaOut, err := os.CreateTemp("", "deltaglider-zerodelta-*.delta")
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "create zero-delta scratch file")
	}
	deltaOutPath := deltaOut.Name()
	deltaOut.Close()
	defer os.Remove(deltaOutPath)

	cmd, err := s.Engine.Encode(ctx, refPath, localPath, deltaOutPath)
	if err != nil {
		return PutSummary{}, errors.DiffEncodeFailuref("zero-diff encode for %s: %v", refFullKey, err)
	}

	deltaInfo, err := os.Stat(deltaOutPath)
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "stat zero-delta output")
	}

	deltaKey := joinKey(space.Prefix, originalName+".delta")
	deltaMeta := deltaMetaToMap(DeltaMeta{
		Tool:         toolIdentifier,
		OriginalName: originalName,
		FileSHA256:   fileSHA256,
		FileSize:     fileSize,
		CreatedAt:    createdAt,
		RefKey:       space.ReferenceKey(),
		RefSHA256:    boundSHA,
		DeltaSize:    deltaInfo.Size(),
		DeltaCmd:     cmd,
		Note:         "zero-diff (reference identical)",
	})

	deltaFile, err := os.Open(deltaOutPath)
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "open zero-delta output")
	}
	defer deltaFile.Close()

	if err := s.Store.Put(ctx, space.Bucket+"/"+deltaKey, deltaFile, deltaInfo.Size(), deltaMeta); err != nil {
		return PutSummary{}, err
	}

	return PutSummary{
		Operation:    OpCreateReference,
		Bucket:       space.Bucket,
		Key:          space.ReferenceKey(),
		OriginalName: originalName,
		FileSize:     fileSize,
		FileSHA256:   fileSHA256,
		DeltaSize:    deltaInfo.Size(),
		RefKey:       space.ReferenceKey(),
		RefSHA256:    boundSHA,
	}, nil
}

// createDelta handles spec.md §4.1 step 4's "reference exists" branch.
func (s *Service) createDelta(ctx context.Context, localPath string, space DeltaSpace, originalName string, fileSize int64, fileSHA256, refSHA256 string, maxRatio float64) (PutSummary, error) {
	createdAt := s.Clock.Now().Format(time.RFC3339)

	cacheHit, err := s.Cache.HasRef(ctx, space.Bucket, space.Prefix, refSHA256)
	if err != nil {
		return PutSummary{}, err
	}
	if !cacheHit {
		if err := s.downloadReferenceIntoCache(ctx, space); err != nil {
			return PutSummary{}, err
		}
		s.Metrics.CacheMiss()
	} else {
		s.Metrics.CacheHit()
	}

	refPath, release, err := s.Cache.GetValidatedRef(ctx, space.Bucket, space.Prefix, refSHA256)
	if err != nil {
		return PutSummary{}, err
	}
	defer release()

	deltaOut, err := os.CreateTemp("", "deltaglider-delta-*.delta")
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "create delta scratch file")
	}
	deltaOutPath := deltaOut.Name()
	deltaOut.Close()
	defer os.Remove(deltaOutPath)

	cmd, err := s.Engine.Encode(ctx, refPath, localPath, deltaOutPath)
	if err != nil {
		return PutSummary{}, errors.DiffEncodeFailuref("encode for %s against %s: %v", originalName, space.ReferenceKey(), err)
	}

	deltaInfo, err := os.Stat(deltaOutPath)
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "stat delta output")
	}
	deltaSize := deltaInfo.Size()

	var deltaRatio float64
	if fileSize > 0 {
		deltaRatio = float64(deltaSize) / float64(fileSize)
	}

	var warnings []string
	if deltaRatio > maxRatio {
		warnings = append(warnings, errors.PolicyViolationf("delta ratio %.4f exceeds max_ratio %.4f for %s", deltaRatio, maxRatio, originalName).Error())
	}

	deltaKey := joinKey(space.Prefix, originalName+".delta")
	deltaMeta := deltaMetaToMap(DeltaMeta{
		Tool:         toolIdentifier,
		OriginalName: originalName,
		FileSHA256:   fileSHA256,
		FileSize:     fileSize,
		CreatedAt:    createdAt,
		RefKey:       space.ReferenceKey(),
		RefSHA256:    refSHA256,
		DeltaSize:    deltaSize,
		DeltaCmd:     cmd,
	})

	deltaFile, err := os.Open(deltaOutPath)
	if err != nil {
		return PutSummary{}, errors.StoreErrorf(err, "open delta output")
	}
	defer deltaFile.Close()

	if err := s.Store.Put(ctx, space.Bucket+"/"+deltaKey, deltaFile, deltaSize, deltaMeta); err != nil {
		return PutSummary{}, err
	}

	return PutSummary{
		Operation:    OpCreateDelta,
		Bucket:       space.Bucket,
		Key:          deltaKey,
		OriginalName: originalName,
		FileSize:     fileSize,
		FileSHA256:   fileSHA256,
		DeltaSize:    deltaSize,
		DeltaRatio:   deltaRatio,
		RefKey:       space.ReferenceKey(),
		RefSHA256:    refSHA256,
		CacheHit:     cacheHit,
		Warnings:     warnings,
	}, nil
}

// downloadReferenceIntoCache fetches the reference object body into a
// scratch file and populates the cache, used when Put needs a reference
// the local cache does not yet have.
func (s *Service) downloadReferenceIntoCache(ctx context.Context, space DeltaSpace) error {
	body, err := s.Store.Get(ctx, space.ReferenceFullKey())
	if err != nil {
		return err
	}
	defer body.Close()

	scratch, err := os.CreateTemp("", "deltaglider-refdl-*.bin")
	if err != nil {
		return errors.StoreErrorf(err, "create reference download scratch file")
	}
	scratchPath := scratch.Name()
	defer os.Remove(scratchPath)

	if _, err := copyAll(scratch, body); err != nil {
		scratch.Close()
		return errors.StoreErrorf(err, "download reference body")
	}
	scratch.Close()

	_, err = s.Cache.WriteRef(ctx, space.Bucket, space.Prefix, scratchPath)
	return err
}

func joinKey(prefix, name string) string {
	if prefix == "" {
		return name
	}
	return trimTrailingSlash(prefix) + "/" + name
}

func trimTrailingSlash(s string) string {
	for len(s) > 0 && s[len(s)-1] == '/' {
		s = s[:len(s)-1]
	}
	return s
}
