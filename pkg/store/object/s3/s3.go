// Package s3 implements object storage on Amazon S3 or S3-compatible services.
package s3

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/foliocms/folio/pkg/store/object"
)

// S3ObjectStore implements object.Store using Amazon S3 or S3-compatible storage.
//
// Path-Based Key Design:
//   - The object.Store key is used directly as the S3 object key, below an
//     optional bucket-wide prefix
//   - Format: "tenants/<tenantID>/public/path/to/file.png"
//   - No leading "/"
//   - The bucket mirrors the virtual folder structure, so bucket contents are
//     human-readable and folder listings map directly onto S3 delimiter
//     listings
//
// Folder Emulation:
// S3 has no directories. ListWithPrefix exposes S3's native delimiter
// grouping (CommonPrefixes) so pkg/storage can synthesize folders without
// this package knowing anything about them.
//
// Thread Safety:
// Safe for concurrent use by multiple goroutines. Concurrent writes to the
// same key are last-write-wins, per S3's consistency model.
type S3ObjectStore struct {
	client    *s3.Client
	bucket    string
	keyPrefix string // Optional prefix applied to all keys
	metrics   Metrics
}

// S3ObjectStoreConfig contains configuration for the S3 object store.
type S3ObjectStoreConfig struct {
	// Client is the configured S3 client
	Client *s3.Client

	// Bucket is the S3 bucket name. The bucket must already exist.
	Bucket string

	// KeyPrefix is an optional prefix for all object keys.
	// Example: "folio/" results in keys like "folio/tenants/t1/public/a.png".
	KeyPrefix string

	// Metrics receives per-operation observations. Nil disables metrics.
	Metrics Metrics
}

// NewS3ObjectStore creates a new S3-backed object store.
//
// This verifies bucket access with HeadBucket; the bucket must already exist.
//
// Parameters:
//   - ctx: Context for cancellation and timeouts
//   - cfg: S3 configuration
//
// Returns:
//   - *S3ObjectStore: Initialized store
//   - error: Returns error if bucket access fails or config is invalid
func NewS3ObjectStore(ctx context.Context, cfg S3ObjectStoreConfig) (*S3ObjectStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if cfg.Client == nil {
		return nil, fmt.Errorf("S3 client is required")
	}

	if cfg.Bucket == "" {
		return nil, fmt.Errorf("bucket name is required")
	}

	_, err := cfg.Client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(cfg.Bucket),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to access bucket %q: %w", cfg.Bucket, err)
	}

	metrics := cfg.Metrics
	if metrics == nil {
		metrics = noopMetrics{}
	}

	return &S3ObjectStore{
		client:    cfg.Client,
		bucket:    cfg.Bucket,
		keyPrefix: cfg.KeyPrefix,
		metrics:   metrics,
	}, nil
}

// fullKey returns the S3 object key for a store key, applying the optional
// bucket-wide prefix.
func (s *S3ObjectStore) fullKey(key string) string {
	return s.keyPrefix + key
}

// storeKey strips the bucket-wide prefix from an S3 object key.
func (s *S3ObjectStore) storeKey(s3Key string) string {
	if s.keyPrefix != "" && len(s3Key) > len(s.keyPrefix) {
		return s3Key[len(s.keyPrefix):]
	}
	return s3Key
}

// Put writes an object, overwriting any existing object at the key.
func (s *S3ObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("Put", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return object.ErrInvalidKey
	}

	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
		Body:   bytes.NewReader(data),
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}

	if _, err = s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("failed to put object %s: %w", key, err)
	}

	return nil
}

// Get reads an object and its metadata.
func (s *S3ObjectStore) Get(ctx context.Context, key string) (data []byte, info *object.ObjectInfo, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("Get", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return nil, nil, err
	}

	result, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			err = fmt.Errorf("object %s: %w", key, object.ErrObjectNotFound)
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("failed to get object %s: %w", key, err)
	}
	defer result.Body.Close()

	data, err = io.ReadAll(result.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read object body %s: %w", key, err)
	}

	info = &object.ObjectInfo{
		Key:         key,
		Size:        int64(len(data)),
		ContentType: aws.ToString(result.ContentType),
	}
	if result.LastModified != nil {
		info.LastModified = *result.LastModified
	}

	return data, info, nil
}

// GetMetadata returns an object's metadata via HeadObject.
func (s *S3ObjectStore) GetMetadata(ctx context.Context, key string) (info *object.ObjectInfo, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("GetMetadata", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	result, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		// HeadObject reports a missing key as types.NotFound, not NoSuchKey.
		var notFound *types.NotFound
		if errors.As(err, &notFound) {
			err = fmt.Errorf("object %s: %w", key, object.ErrObjectNotFound)
			return nil, err
		}
		return nil, fmt.Errorf("failed to head object %s: %w", key, err)
	}

	info = &object.ObjectInfo{
		Key:         key,
		Size:        aws.ToInt64(result.ContentLength),
		ContentType: aws.ToString(result.ContentType),
	}
	if result.LastModified != nil {
		info.LastModified = *result.LastModified
	}

	return info, nil
}

// Copy duplicates the object at srcKey to dstKey using server-side copy.
func (s *S3ObjectStore) Copy(ctx context.Context, srcKey string, dstKey string) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("Copy", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return err
	}
	if dstKey == "" {
		return object.ErrInvalidKey
	}

	_, err = s.client.CopyObject(ctx, &s3.CopyObjectInput{
		Bucket:     aws.String(s.bucket),
		CopySource: aws.String(s.bucket + "/" + s.fullKey(srcKey)),
		Key:        aws.String(s.fullKey(dstKey)),
	})
	if err != nil {
		var notFound *types.NoSuchKey
		if errors.As(err, &notFound) {
			err = fmt.Errorf("object %s: %w", srcKey, object.ErrObjectNotFound)
			return err
		}
		return fmt.Errorf("failed to copy %s to %s: %w", srcKey, dstKey, err)
	}

	return nil
}

// Delete removes a single object. S3 DeleteObject succeeds for absent keys,
// which matches the store contract's idempotent delete.
func (s *S3ObjectStore) Delete(ctx context.Context, key string) (err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("Delete", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return err
	}

	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.fullKey(key)),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}

	return nil
}

var _ object.Store = (*S3ObjectStore)(nil)
