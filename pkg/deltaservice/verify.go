package deltaservice

import (
	"context"
	"os"

	"deltaglider/pkg/helper/errors"
)

// Verify implements spec.md §4.3: get into a throwaway temp path, rehash,
// and compare against the stored file_sha256. Does not mutate storage.
func (s *Service) Verify(ctx context.Context, key ObjectKey) (VerifyResult, error) {
	meta, err := s.Store.Head(ctx, key.FullKey())
	if err != nil {
		return VerifyResult{}, err
	}
	if meta == nil {
		return VerifyResult{}, errors.NotFoundf("object %s not found", key.FullKey())
	}

	expectedSHA256, ok := metadataLookup(meta.Metadata, "file-sha256")
	if !ok {
		return VerifyResult{
			Valid:   false,
			Message: "object has no dg-file-sha256 metadata; not a DeltaGlider-managed object",
		}, nil
	}

	scratch, err := os.CreateTemp("", "deltaglider-verify-*.bin")
	if err != nil {
		return VerifyResult{}, errors.StoreErrorf(err, "create verify scratch file")
	}
	scratchPath := scratch.Name()
	scratch.Close()
	defer os.Remove(scratchPath)

	if err := s.Get(ctx, key, Sink{FilePath: scratchPath}); err != nil {
		if errors.Is(err, errors.ErrIntegrityMismatch) {
			actual, hashErr := s.Hasher.SHA256File(ctx, scratchPath)
			if hashErr == nil {
				return VerifyResult{
					Valid:          false,
					ExpectedSHA256: expectedSHA256,
					ActualSHA256:   actual,
					Message:        "integrity mismatch: " + err.Error(),
				}, nil
			}
		}
		return VerifyResult{}, err
	}

	actualSHA256, err := s.Hasher.SHA256File(ctx, scratchPath)
	if err != nil {
		return VerifyResult{}, err
	}

	if actualSHA256 != expectedSHA256 {
		return VerifyResult{
			Valid:          false,
			ExpectedSHA256: expectedSHA256,
			ActualSHA256:   actualSHA256,
			Message:        "sha256 mismatch after reconstruction",
		}, nil
	}

	return VerifyResult{
		Valid:          true,
		ExpectedSHA256: expectedSHA256,
		ActualSHA256:   actualSHA256,
		Message:        "ok",
	}, nil
}
