package deltaservice

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"deltaglider/pkg/helper/errors"
)

// Sink is the destination for Service.Get. Exactly one of FilePath or
// Writer must be set. Per spec.md §4.2, integrity is only verified when the
// sink is a file path; a byte-stream sink skips verification even for a
// known (non-foreign) object, a documented limitation.
type Sink struct {
	FilePath string
	Writer   io.Writer
}

func (s Sink) isWriter() bool { return s.FilePath == "" }

// Get implements spec.md §4.2: head, classify (foreign / direct / delta),
// and reconstruct into sink.
func (s *Service) Get(ctx context.Context, key ObjectKey, sink Sink) error {
	start := s.Clock.Now()

	meta, err := s.Store.Head(ctx, key.FullKey())
	if err != nil {
		return err
	}
	if meta == nil {
		return errors.NotFoundf("object %s not found", key.FullKey())
	}

	var path string
	switch {
	case isForeignObject(meta.Metadata):
		path = "foreign"
		err = s.getForeign(ctx, key, sink)
	case isDirectObject(meta.Metadata):
		path = "direct"
		err = s.getDirect(ctx, key, meta.Metadata, sink)
	default:
		path = "delta"
		err = s.getDelta(ctx, key, meta.Metadata, sink)
	}

	if err != nil {
		if errors.Is(err, errors.ErrIntegrityMismatch) {
			s.Metrics.IntegrityMismatch(path)
		}
		return err
	}

	s.Metrics.GetCompleted(path, s.Clock.Now().Sub(start))
	return nil
}

func (s *Service) getForeign(ctx context.Context, key ObjectKey, sink Sink) error {
	body, err := s.Store.Get(ctx, key.FullKey())
	if err != nil {
		return err
	}
	defer body.Close()
	return writeToSink(sink, body)
}

func (s *Service) getDirect(ctx context.Context, key ObjectKey, metaMap map[string]string, sink Sink) error {
	direct := directMetaFromMap(metaMap)

	body, err := s.Store.Get(ctx, key.FullKey())
	if err != nil {
		return err
	}
	defer body.Close()

	if sink.isWriter() {
		return writeToSink(sink, body)
	}

	return writeToFileAndVerify(sink.FilePath, body, direct.FileSHA256, s)
}

func (s *Service) getDelta(ctx context.Context, key ObjectKey, metaMap map[string]string, sink Sink) error {
	delta := deltaMetaFromMap(metaMap)

	deltaspacePrefix := strings.TrimSuffix(delta.RefKey, "/reference.bin")
	if deltaspacePrefix == delta.RefKey {
		deltaspacePrefix = ""
	}
	space := DeltaSpace{Bucket: key.Bucket, Prefix: deltaspacePrefix}

	cacheHit, err := s.Cache.HasRef(ctx, space.Bucket, space.Prefix, delta.RefSHA256)
	if err != nil {
		return err
	}
	if !cacheHit {
		if err := s.downloadReferenceIntoCache(ctx, space); err != nil {
			return err
		}
		s.Metrics.CacheMiss()
	} else {
		s.Metrics.CacheHit()
	}

	refPath, release, err := s.Cache.GetValidatedRef(ctx, space.Bucket, space.Prefix, delta.RefSHA256)
	if err != nil {
		return err
	}
	defer release()

	deltaBody, err := s.Store.Get(ctx, key.FullKey())
	if err != nil {
		return err
	}
	deltaScratch, err := os.CreateTemp("", "deltaglider-getdelta-*.delta")
	if err != nil {
		deltaBody.Close()
		return errors.StoreErrorf(err, "create delta scratch file")
	}
	deltaScratchPath := deltaScratch.Name()
	_, copyErr := copyAll(deltaScratch, deltaBody)
	deltaScratch.Close()
	deltaBody.Close()
	defer os.Remove(deltaScratchPath)
	if copyErr != nil {
		return errors.StoreErrorf(copyErr, "download delta body")
	}

	outScratch, err := os.CreateTemp("", "deltaglider-decoded-*.bin")
	if err != nil {
		return errors.StoreErrorf(err, "create decode scratch file")
	}
	outScratchPath := outScratch.Name()
	outScratch.Close()
	defer os.Remove(outScratchPath)

	if err := s.Engine.Decode(ctx, refPath, deltaScratchPath, outScratchPath); err != nil {
		return errors.DiffDecodeFailuref("decode %s against %s: %v", key.FullKey(), delta.RefKey, err)
	}

	// Per spec.md §4.2, a byte-stream sink skips verification entirely, so
	// there is no destination file to inspect on mismatch.
	if sink.isWriter() {
		f, err := os.Open(outScratchPath)
		if err != nil {
			return errors.StoreErrorf(err, "reopen decoded output")
		}
		defer f.Close()
		_, err = copyAll(sink.Writer, f)
		return err
	}

	// Move into place before hashing, mirroring getDirect/writeToFileAndVerify:
	// a mismatch still leaves the reconstructed bytes at sink.FilePath for
	// the caller (or Verify) to inspect, rather than discarding them.
	if err := os.MkdirAll(filepath.Dir(sink.FilePath), 0o755); err != nil {
		return errors.StoreErrorf(err, "create destination dir for %s", sink.FilePath)
	}
	if err := os.Rename(outScratchPath, sink.FilePath); err != nil {
		if err := renameAcrossDevices(outScratchPath, sink.FilePath); err != nil {
			return err
		}
	}

	actualSHA, err := s.Hasher.SHA256File(ctx, sink.FilePath)
	if err != nil {
		return err
	}
	if actualSHA != delta.FileSHA256 {
		return errors.IntegrityMismatchf("decoded %s: expected sha256 %s, got %s", key.FullKey(), delta.FileSHA256, actualSHA)
	}
	return nil
}

func writeToSink(sink Sink, body io.Reader) error {
	if sink.isWriter() {
		_, err := copyAll(sink.Writer, body)
		return err
	}
	f, err := os.Create(sink.FilePath)
	if err != nil {
		return errors.StoreErrorf(err, "create %s", sink.FilePath)
	}
	defer f.Close()
	_, err = copyAll(f, body)
	return err
}

func writeToFileAndVerify(path string, body io.Reader, expectedSHA256 string, s *Service) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.StoreErrorf(err, "create %s", path)
	}
	if _, err := copyAll(f, body); err != nil {
		f.Close()
		return errors.StoreErrorf(err, "write %s", path)
	}
	f.Close()

	actual, err := s.Hasher.SHA256File(context.Background(), path)
	if err != nil {
		return err
	}
	if actual != expectedSHA256 {
		return errors.IntegrityMismatchf("%s: expected sha256 %s, got %s", path, expectedSHA256, actual)
	}
	return nil
}

// renameAcrossDevices falls back to copy+remove when os.Rename fails due to
// src and dst living on different filesystems (the scratch dir and the
// destination directory need not share a device).
func renameAcrossDevices(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return errors.StoreErrorf(err, "reopen %s for cross-device move", src)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return errors.StoreErrorf(err, "create %s for cross-device move", dst)
	}
	if _, err := copyAll(out, in); err != nil {
		out.Close()
		return errors.StoreErrorf(err, "copy to %s", dst)
	}
	out.Close()
	return os.Remove(src)
}
