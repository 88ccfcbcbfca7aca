package facade

import (
	"context"
	stderrors "errors"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"deltaglider/pkg/helper/errors"
)

// Bucket-level operations have no DeltaGlider semantics of their own (no
// reference, no delta, nothing to classify); they pass straight through to
// the store's native S3 client when one is available, replacing the
// original source's `hasattr(storage_adapter, "client")` duck-typing
// (client_operations/bucket.py) with the explicit NativeClientProvider
// capability probe.

// CreateBucket creates bucket, tolerating "already exists" like the
// original source does.
func (c *Client) CreateBucket(ctx context.Context, bucket string) error {
	client, ok := c.nativeS3()
	if !ok {
		return errors.Configurationf("store has no native S3 client; CreateBucket unsupported")
	}
	_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: &bucket})
	if err == nil {
		return nil
	}
	var exists *types.BucketAlreadyExists
	var owned *types.BucketAlreadyOwnedByYou
	if stderrors.As(err, &exists) || stderrors.As(err, &owned) {
		return nil
	}
	return errors.StoreErrorf(err, "create bucket %s", bucket)
}

// DeleteBucket deletes bucket, tolerating "does not exist".
func (c *Client) DeleteBucket(ctx context.Context, bucket string) error {
	client, ok := c.nativeS3()
	if !ok {
		return errors.Configurationf("store has no native S3 client; DeleteBucket unsupported")
	}
	_, err := client.DeleteBucket(ctx, &s3.DeleteBucketInput{Bucket: &bucket})
	if err == nil {
		return nil
	}
	var noSuch *types.NoSuchBucket
	if stderrors.As(err, &noSuch) {
		return nil
	}
	return errors.StoreErrorf(err, "delete bucket %s", bucket)
}

// ListBuckets lists every bucket visible to the native client.
func (c *Client) ListBuckets(ctx context.Context) ([]string, error) {
	client, ok := c.nativeS3()
	if !ok {
		return nil, errors.Configurationf("store has no native S3 client; ListBuckets unsupported")
	}
	out, err := client.ListBuckets(ctx, &s3.ListBucketsInput{})
	if err != nil {
		return nil, errors.StoreErrorf(err, "list buckets")
	}
	names := make([]string, 0, len(out.Buckets))
	for _, b := range out.Buckets {
		if b.Name != nil {
			names = append(names, *b.Name)
		}
	}
	return names, nil
}

// PutBucketACL is a direct passthrough to the native client; DeltaGlider
// has no opinion on bucket ACLs.
func (c *Client) PutBucketACL(ctx context.Context, bucket string, acl types.BucketCannedACL) error {
	client, ok := c.nativeS3()
	if !ok {
		return errors.Configurationf("store has no native S3 client; PutBucketAcl unsupported")
	}
	_, err := client.PutBucketAcl(ctx, &s3.PutBucketAclInput{Bucket: &bucket, ACL: acl})
	if err != nil {
		return errors.StoreErrorf(err, "put bucket acl for %s", bucket)
	}
	return nil
}
