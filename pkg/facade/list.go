package facade

import (
	"context"
	"strconv"
	"strings"
	"time"

	"deltaglider/pkg/objectstore"
)

// ListObjectsV2 lists bucket/prefix the way a plain S3 client would see it:
// reference.bin and rehydrated-temp internals are hidden, and delta-backed
// objects are presented under their original (un-suffixed) name with their
// reconstructed size, so a caller unaware of DeltaGlider sees an ordinary
// bucket listing.
func (c *Client) ListObjectsV2(ctx context.Context, input ListObjectsV2Input) (ListObjectsV2Response, error) {
	maxKeys := input.MaxKeys
	if maxKeys <= 0 {
		maxKeys = 1000
	}

	page, err := c.Store.List(ctx, joinPrefix(input.Bucket, input.Prefix), objectstore.ListOptions{
		MaxKeys:           maxKeys,
		ContinuationToken: input.ContinuationToken,
	})
	if err != nil {
		return ListObjectsV2Response{}, err
	}

	resp := ListObjectsV2Response{
		IsTruncated:           page.IsTruncated,
		NextContinuationToken: page.NextContinuationToken,
	}
	seenPrefixes := map[string]bool{}

	for _, obj := range page.Objects {
		relKey := strings.TrimPrefix(obj.Key, input.Bucket+"/")

		if isInternalKey(relKey) {
			continue
		}

		if input.Delimiter != "" {
			rest := strings.TrimPrefix(relKey, input.Prefix)
			if idx := strings.Index(rest, input.Delimiter); idx >= 0 {
				cp := input.Prefix + rest[:idx+len(input.Delimiter)]
				if !seenPrefixes[cp] {
					seenPrefixes[cp] = true
					resp.CommonPrefixes = append(resp.CommonPrefixes, CommonPrefix{Prefix: cp})
				}
				continue
			}
		}

		meta, err := c.Store.Head(ctx, obj.Key)
		if err != nil || meta == nil {
			continue
		}

		s3obj := toS3Object(relKey, obj.Size, obj.LastModified, obj.ETag, meta.Metadata)
		resp.Contents = append(resp.Contents, s3obj)
	}

	resp.KeyCount = len(resp.Contents) + len(resp.CommonPrefixes)
	return resp, nil
}

func isInternalKey(relKey string) bool {
	return strings.HasSuffix(relKey, "/reference.bin") || relKey == "reference.bin" ||
		strings.HasPrefix(relKey, ".deltaglider/")
}

// toS3Object presents one object under its logical key/size: a direct
// upload or foreign object as-is, a delta under its original filename and
// reconstructed size.
func toS3Object(relKey string, compressedSize int64, lastModified time.Time, etag string, metadata map[string]string) S3Object {
	if !strings.HasSuffix(relKey, ".delta") {
		return S3Object{Key: relKey, Size: compressedSize, LastModified: lastModified, ETag: etag}
	}

	logicalKey := strings.TrimSuffix(relKey, ".delta")
	size := compressedSize
	if fileSize, ok := lookupInt(metadata, "file-size"); ok {
		size = fileSize
	}
	refKey, _ := lookupMeta(metadata, "ref-key")

	return S3Object{
		Key:          logicalKey,
		Size:         size,
		LastModified: lastModified,
		ETag:         etag,
		DeltaGlider: &DeltaGliderObjectInfo{
			IsDelta:        true,
			CompressedSize: compressedSize,
			RefKey:         refKey,
		},
	}
}

func lookupMeta(m map[string]string, name string) (string, bool) {
	if v, ok := m["dg-"+name]; ok {
		return v, true
	}
	if v, ok := m[name]; ok {
		return v, true
	}
	return "", false
}

func lookupInt(m map[string]string, name string) (int64, bool) {
	v, ok := lookupMeta(m, name)
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
