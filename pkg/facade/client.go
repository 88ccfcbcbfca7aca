package facade

import (
	"context"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"deltaglider/pkg/deltaservice"
	"deltaglider/pkg/helper/errors"
	"deltaglider/pkg/objectstore"
)

// Client is the S3-style facade over deltaservice.Service (spec.md §2's L4
// "Client facade"). It owns no storage state of its own; every call is a
// direct translation into a Service/Store operation.
type Client struct {
	Service *deltaservice.Service
	Store   objectstore.Store
}

// New builds a Client wrapping svc and its underlying store.
func New(svc *deltaservice.Service, store objectstore.Store) *Client {
	return &Client{Service: svc, Store: store}
}

// nativeS3 probes the underlying store for S3-native pass-through,
// replacing the original source's `hasattr(storage_adapter, "client")`
// duck-typing with an explicit capability check (spec.md §9).
func (c *Client) nativeS3() (*s3.Client, bool) {
	provider, ok := c.Store.(objectstore.NativeClientProvider)
	if !ok {
		return nil, false
	}
	raw, ok := provider.NativeClient()
	if !ok {
		return nil, false
	}
	client, ok := raw.(*s3.Client)
	return client, ok
}

// PutObject uploads input.LocalPath to bucket/key, going through
// DeltaService.Put so delta classification, reference creation, and policy
// checks all apply (spec.md §4.1).
func (c *Client) PutObject(ctx context.Context, input PutObjectInput) (PutObjectOutput, error) {
	prefix, name := splitKey(input.Key)
	space := deltaservice.DeltaSpace{Bucket: input.Bucket, Prefix: prefix}

	summary, err := c.Service.Put(ctx, input.LocalPath, space, deltaservice.PutOptions{
		OverrideName: name,
		MaxRatio:     input.MaxRatio,
	})
	if err != nil {
		return PutObjectOutput{}, err
	}

	return PutObjectOutput{
		ETag:         summary.FileSHA256,
		Operation:    summary.Operation,
		OriginalName: summary.OriginalName,
		FileSize:     summary.FileSize,
		FileSHA256:   summary.FileSHA256,
		DeltaSize:    summary.DeltaSize,
		DeltaRatio:   summary.DeltaRatio,
		RefKey:       summary.RefKey,
		RefSHA256:    summary.RefSHA256,
		CacheHit:     summary.CacheHit,
		Warnings:     summary.Warnings,
	}, nil
}

// GetObject reconstructs bucket/key into localPath via DeltaService.Get. If
// key is absent and doesn't already end in ".delta", it retries with the
// suffix appended (spec.md §6.3's CLI `get` fallback, generalized to the
// facade so every caller gets it, not just the CLI).
func (c *Client) GetObject(ctx context.Context, input GetObjectInput, localPath string) error {
	key := deltaservice.ObjectKey{Bucket: input.Bucket, Key: input.Key}
	err := c.Service.Get(ctx, key, deltaservice.Sink{FilePath: localPath})
	if err != nil && errors.Is(err, errors.ErrNotFound) && !strings.HasSuffix(input.Key, ".delta") {
		key.Key = input.Key + ".delta"
		return c.Service.Get(ctx, key, deltaservice.Sink{FilePath: localPath})
	}
	return err
}

// HeadObject reports whether bucket/key exists and its logical size: for a
// delta-backed object this is the reconstructed original's size, not the
// compressed delta's, so callers see the same size boto3 would report for
// the uncompressed object. key is looked up as given first, then with a
// ".delta" suffix, since a caller addressing a delta-backed object by its
// logical (un-suffixed) name — as ListObjectsV2 presents it — won't find a
// same-named object in storage.
func (c *Client) HeadObject(ctx context.Context, bucket, key string) (S3Object, bool, error) {
	meta, err := c.Store.Head(ctx, bucket+"/"+key)
	if err != nil {
		return S3Object{}, false, err
	}
	relKey := key
	if meta == nil && !strings.HasSuffix(key, ".delta") {
		meta, err = c.Store.Head(ctx, bucket+"/"+key+".delta")
		if err != nil {
			return S3Object{}, false, err
		}
		relKey = key + ".delta"
	}
	if meta == nil {
		return S3Object{}, false, nil
	}
	return toS3Object(relKey, meta.Size, meta.LastModified, meta.ETag, meta.Metadata), true, nil
}

// VerifyObject re-derives bucket/key's bytes and compares their SHA-256
// against the recorded expectation, via DeltaService.Verify.
func (c *Client) VerifyObject(ctx context.Context, bucket, key string) (deltaservice.VerifyResult, error) {
	return c.Service.Verify(ctx, deltaservice.ObjectKey{Bucket: bucket, Key: key})
}

// DeleteObject removes bucket/key via DeltaService.Delete, applying the
// class-specific cleanup rule (spec.md §4.5).
func (c *Client) DeleteObject(ctx context.Context, bucket, key string) (deltaservice.DeleteResult, error) {
	return c.Service.Delete(ctx, deltaservice.ObjectKey{Bucket: bucket, Key: key})
}

// DeleteObjects removes every object under bucket/prefix via
// DeltaService.DeleteRecursive (spec.md §4.6).
func (c *Client) DeleteObjects(ctx context.Context, bucket, prefix string) (deltaservice.RecursiveDeleteResult, error) {
	return c.Service.DeleteRecursive(ctx, bucket, prefix)
}

func splitKey(key string) (prefix, name string) {
	idx := strings.LastIndexByte(key, '/')
	if idx < 0 {
		return "", key
	}
	return key[:idx], key[idx+1:]
}
