// Package deltaservice implements DeltaService: the orchestration engine
// that classifies each put/get/delete, manages reference creation, delta
// encode/decode, integrity verification, and cache coordination
// (spec.md §1, §4).
package deltaservice

import "strings"

// ObjectKey identifies a single object by bucket and key.
type ObjectKey struct {
	Bucket string
	Key    string
}

// FullKey returns bucket + "/" + key.
func (k ObjectKey) FullKey() string {
	return k.Bucket + "/" + k.Key
}

// DeltaSpace is (bucket, prefix): the logical grouping under which at most
// one reference exists.
type DeltaSpace struct {
	Bucket string
	Prefix string
}

// ReferenceKey returns prefix + "/reference.bin", or "reference.bin" if
// prefix is empty.
func (d DeltaSpace) ReferenceKey() string {
	if d.Prefix == "" {
		return "reference.bin"
	}
	return strings.TrimSuffix(d.Prefix, "/") + "/reference.bin"
}

// ReferenceFullKey returns the bucket-qualified reference key.
func (d DeltaSpace) ReferenceFullKey() string {
	return d.Bucket + "/" + d.ReferenceKey()
}

// ReferenceMeta is persisted as object metadata on reference.bin.
type ReferenceMeta struct {
	Tool       string
	SourceName string
	FileSHA256 string
	CreatedAt  string
}

// DeltaMeta is persisted as object metadata on *.delta objects.
type DeltaMeta struct {
	Tool         string
	OriginalName string
	FileSHA256   string
	FileSize     int64
	CreatedAt    string
	RefKey       string
	RefSHA256    string
	DeltaSize    int64
	DeltaCmd     string
	Note         string
}

// DirectMeta is persisted on directly uploaded objects.
type DirectMeta struct {
	Tool         string
	OriginalName string
	FileSHA256   string
	FileSize     int64
	CreatedAt    string
	Compression  string
}

// RehydratedTempMeta is persisted on .deltaglider/tmp/... objects.
type RehydratedTempMeta struct {
	ExpiresAt        string
	OriginalKey      string
	OriginalFilename string
	Rehydrated       string
	CreatedAt        string
}

// PutOptions parameterizes Service.Put.
type PutOptions struct {
	MaxRatio     *float64
	OverrideName string
}

// Operation names mirror spec.md §4.1's PutSummary.operation values.
const (
	OpUploadDirect   = "upload_direct"
	OpCreateReference = "create_reference"
	OpCreateDelta    = "create_delta"
)

// PutSummary is the result of Service.Put.
type PutSummary struct {
	Operation   string
	Bucket      string
	Key         string
	OriginalName string
	FileSize    int64
	FileSHA256  string
	DeltaSize   int64
	DeltaRatio  float64
	RefKey      string
	RefSHA256   string
	CacheHit    bool
	Warnings    []string
}

// VerifyResult is the result of Service.Verify.
type VerifyResult struct {
	Valid          bool
	ExpectedSHA256 string
	ActualSHA256   string
	Message        string
}

// DeleteResult is the result of Service.Delete.
type DeleteResult struct {
	Type             string // "reference", "delta", "direct", "unknown"
	Key              string
	CleanedReference string
	Warnings         []string
}

// RecursiveDeleteResult is the result of Service.DeleteRecursive.
type RecursiveDeleteResult struct {
	DeletedCount     int
	DeletedKeys      []string
	RetainedReferences []string
	Warnings         []string
	Errors           []string
}

// PurgeResult is the result of Service.PurgeTempFiles.
type PurgeResult struct {
	PurgedCount int
	BytesFreed  int64
	Warnings    []string
}

const (
	toolIdentifier = "deltaglider-go/1.0"

	rehydrateTempPrefix = ".deltaglider/tmp/"
)
