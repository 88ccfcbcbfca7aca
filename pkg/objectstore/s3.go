package objectstore

import (
	"context"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"deltaglider/pkg/helper/errors"
	"deltaglider/pkg/helper/log"
)

// S3Options configures the S3 adapter's client construction, mirroring
// pkg/config.StoreConfig.
type S3Options struct {
	Region      string
	Profile     string
	EndpointURL string
	Logger      log.Logger
}

// S3Store is the shipped Store adapter, backed by aws-sdk-go-v2's S3
// client. It also implements NativeClientProvider so the facade can reach
// S3-native operations (presign, bucket ACL passthrough) that fall outside
// this port, replacing the original source's `hasattr(adapter, "client")`
// duck-typing with an explicit capability probe (spec.md §9).
type S3Store struct {
	client *s3.Client
	logger log.Logger
}

// NewS3Store builds an S3Store from resolved options, loading AWS
// credentials the same way the teacher's ECR client does
// (config.LoadDefaultConfig with region/profile overrides).
func NewS3Store(ctx context.Context, opts S3Options) (*S3Store, error) {
	if opts.Logger == nil {
		opts.Logger = log.NewBasicLogger(log.InfoLevel)
	}

	var loadOpts []func(*config.LoadOptions) error
	if opts.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(opts.Region))
	}
	if opts.Profile != "" {
		loadOpts = append(loadOpts, config.WithSharedConfigProfile(opts.Profile))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "load AWS configuration")
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if opts.EndpointURL != "" {
			o.BaseEndpoint = aws.String(opts.EndpointURL)
			o.UsePathStyle = true
		}
	})

	return &S3Store{client: client, logger: opts.Logger}, nil
}

// NativeClient implements NativeClientProvider.
func (s *S3Store) NativeClient() (interface{}, bool) {
	return s.client, true
}

func splitFullKey(fullKey string) (bucket, key string) {
	for i := 0; i < len(fullKey); i++ {
		if fullKey[i] == '/' {
			return fullKey[:i], fullKey[i+1:]
		}
	}
	return fullKey, ""
}

func (s *S3Store) Head(ctx context.Context, fullKey string) (*ObjectMeta, error) {
	bucket, key := splitFullKey(fullKey)
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, errors.StoreErrorf(err, "head %s", fullKey)
	}

	meta := &ObjectMeta{
		Size:     aws.ToInt64(out.ContentLength),
		ETag:     aws.ToString(out.ETag),
		Metadata: out.Metadata,
	}
	if out.LastModified != nil {
		meta.LastModified = *out.LastModified
	}
	return meta, nil
}

func (s *S3Store) Get(ctx context.Context, fullKey string) (io.ReadCloser, error) {
	bucket, key := splitFullKey(fullKey)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFoundf("object %s not found", fullKey)
		}
		return nil, errors.StoreErrorf(err, "get %s", fullKey)
	}
	return out.Body, nil
}

func (s *S3Store) Put(ctx context.Context, fullKey string, body io.Reader, size int64, metadata map[string]string) error {
	bucket, key := splitFullKey(fullKey)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentLength: aws.Int64(size),
		Metadata:      metadata,
	})
	if err != nil {
		return errors.StoreErrorf(err, "put %s", fullKey)
	}
	return nil
}

func (s *S3Store) List(ctx context.Context, prefix string, opts ListOptions) (ListResult, error) {
	bucket, keyPrefix := splitFullKey(prefix)

	in := &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(keyPrefix),
	}
	if opts.MaxKeys > 0 {
		in.MaxKeys = aws.Int32(int32(opts.MaxKeys))
	}
	if opts.StartAfter != "" {
		in.StartAfter = aws.String(opts.StartAfter)
	}
	if opts.ContinuationToken != "" {
		in.ContinuationToken = aws.String(opts.ContinuationToken)
	}

	out, err := s.client.ListObjectsV2(ctx, in)
	if err != nil {
		return ListResult{}, errors.StoreErrorf(err, "list %s", prefix)
	}

	result := ListResult{
		IsTruncated:           aws.ToBool(out.IsTruncated),
		NextContinuationToken: aws.ToString(out.NextContinuationToken),
	}
	for _, obj := range out.Contents {
		summary := ObjectSummary{
			Key:  bucket + "/" + aws.ToString(obj.Key),
			Size: aws.ToInt64(obj.Size),
			ETag: aws.ToString(obj.ETag),
		}
		if obj.LastModified != nil {
			summary.LastModified = *obj.LastModified
		}
		if obj.StorageClass != "" {
			summary.StorageClass = string(obj.StorageClass)
		}
		result.Objects = append(result.Objects, summary)
	}
	return result, nil
}

func (s *S3Store) Delete(ctx context.Context, fullKey string) error {
	bucket, key := splitFullKey(fullKey)
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: aws.String(bucket), Key: aws.String(key)})
	if err != nil && !isNotFound(err) {
		return errors.StoreErrorf(err, "delete %s", fullKey)
	}
	return nil
}

func (s *S3Store) Copy(ctx context.Context, srcFullKey, dstFullKey string, metadata map[string]string) error {
	dstBucket, dstKey := splitFullKey(dstFullKey)
	in := &s3.CopyObjectInput{
		Bucket:     aws.String(dstBucket),
		Key:        aws.String(dstKey),
		CopySource: aws.String(srcFullKey),
	}
	if metadata != nil {
		in.Metadata = metadata
		in.MetadataDirective = s3types.MetadataDirectiveReplace
	}
	if _, err := s.client.CopyObject(ctx, in); err != nil {
		return errors.StoreErrorf(err, "copy %s to %s", srcFullKey, dstFullKey)
	}
	return nil
}

func isNotFound(err error) bool {
	var nf *s3types.NoSuchKey
	if errors.As(err, &nf) {
		return true
	}
	var nb *s3types.NotFound
	return errors.As(err, &nb)
}
