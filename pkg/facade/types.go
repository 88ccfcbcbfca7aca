// Package facade translates S3-style requests into deltaservice calls
// (spec.md §2 L4 "Client facade"), presenting delta-backed objects under
// their logical (un-suffixed) name the way a plain object-store client
// would see them.
package facade

import "time"

// S3Object mirrors boto3's Contents entry shape (spec.md §9's "boto3
// compatible types" design note), so callers written against boto3's
// list_objects_v2 response need no code changes.
type S3Object struct {
	Key          string
	Size         int64
	LastModified time.Time
	ETag         string
	StorageClass string

	// DeltaGlider is non-zero-value only for delta-backed objects; boto3
	// callers that don't know about it simply ignore the extra field.
	DeltaGlider *DeltaGliderObjectInfo
}

// DeltaGliderObjectInfo surfaces compression provenance for an object
// without requiring a second round trip.
type DeltaGliderObjectInfo struct {
	IsDelta        bool
	CompressedSize int64
	RefKey         string
}

// CommonPrefix mirrors boto3's CommonPrefixes entry.
type CommonPrefix struct {
	Prefix string
}

// ListObjectsV2Response mirrors boto3's ListObjectsV2 response shape.
type ListObjectsV2Response struct {
	Contents              []S3Object
	CommonPrefixes        []CommonPrefix
	IsTruncated           bool
	NextContinuationToken string
	KeyCount              int
}

// PutObjectInput parameterizes Client.PutObject.
type PutObjectInput struct {
	Bucket    string
	Key       string
	LocalPath string
	MaxRatio  *float64
}

// PutObjectOutput mirrors boto3's PutObject response, extended with the
// DeltaGlider-specific fields a caller can opt into reading.
type PutObjectOutput struct {
	ETag        string
	Operation   string
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

// GetObjectInput parameterizes Client.GetObject.
type GetObjectInput struct {
	Bucket string
	Key    string
}

// ListObjectsV2Input parameterizes Client.ListObjectsV2.
type ListObjectsV2Input struct {
	Bucket            string
	Prefix            string
	Delimiter         string
	MaxKeys           int
	ContinuationToken string
}
