package errors

import (
	"errors"
	"fmt"
)

// Domain error taxonomy for DeltaGlider, layered on top of the generic
// sentinels in errors.go using the same Wrap/Is/As idiom.
var (
	// ErrIntegrityMismatch indicates a computed SHA-256 did not match the
	// expected SHA-256. Always fatal for the current operation.
	ErrIntegrityMismatch = errors.New("integrity mismatch")

	// ErrDiffEncodeFailure indicates the diff engine failed to produce a
	// delta from a reference and target.
	ErrDiffEncodeFailure = errors.New("diff encode failure")

	// ErrDiffDecodeFailure indicates the diff engine failed to reconstruct
	// the original from a reference and delta, or the reconstruction was
	// corrupt.
	ErrDiffDecodeFailure = errors.New("diff decode failure")

	// ErrPolicyViolation indicates a delta ratio exceeded the configured
	// maximum. Non-fatal: callers observe it as a warning on the put
	// result, never as a returned error.
	ErrPolicyViolation = errors.New("delta ratio policy violation")

	// ErrStoreError wraps any object-store IO failure.
	ErrStoreError = errors.New("object store error")

	// ErrConfiguration indicates a malformed S3 URL, missing bucket, or
	// unreadable local file.
	ErrConfiguration = errors.New("configuration error")
)

// IntegrityMismatchf builds an ErrIntegrityMismatch-rooted error.
func IntegrityMismatchf(format string, args ...interface{}) error {
	return formatError(ErrIntegrityMismatch, format, args...)
}

// DiffEncodeFailuref builds an ErrDiffEncodeFailure-rooted error.
func DiffEncodeFailuref(format string, args ...interface{}) error {
	return formatError(ErrDiffEncodeFailure, format, args...)
}

// DiffDecodeFailuref builds an ErrDiffDecodeFailure-rooted error.
func DiffDecodeFailuref(format string, args ...interface{}) error {
	return formatError(ErrDiffDecodeFailure, format, args...)
}

// PolicyViolationf builds an ErrPolicyViolation-rooted error. Callers treat
// this as a warning string, never propagate it as a failed operation.
func PolicyViolationf(format string, args ...interface{}) error {
	return formatError(ErrPolicyViolation, format, args...)
}

// StoreErrorf builds an ErrStoreError-rooted error wrapping an underlying
// object-store failure. The result satisfies errors.Is against both
// ErrStoreError and err.
func StoreErrorf(err error, format string, args ...interface{}) error {
	msg := format
	if len(args) > 0 {
		msg = fmt.Sprintf(format, args...)
	}
	if err == nil {
		return fmt.Errorf("%s: %w", msg, ErrStoreError)
	}
	return fmt.Errorf("%s: %w: %w", msg, ErrStoreError, err)
}

// Configurationf builds an ErrConfiguration-rooted error.
func Configurationf(format string, args ...interface{}) error {
	return formatError(ErrConfiguration, format, args...)
}
