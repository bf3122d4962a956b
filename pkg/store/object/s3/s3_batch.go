// Package s3 implements object storage on Amazon S3 or S3-compatible services.
//
// This file contains listing and batch deletion, including the delimiter
// listing that backs virtual folder emulation and the chunked DeleteObjects
// calls used by tenant teardown.
package s3

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/store/object"
)

// ListWithPrefix queries objects whose keys start with prefix.
//
// With a "/" delimiter this maps directly to S3's native delimiter listing:
// page.CommonPrefixes become Listing.CommonPrefixes and page.Contents become
// Listing.Objects. With an empty delimiter the paginator walks the entire
// subtree.
//
// Size and LastModified come from the listing itself; ContentType is not
// included in S3 list responses and is left empty. Callers that need it
// (e.g. file detail views) follow up with GetMetadata.
func (s *S3ObjectStore) ListWithPrefix(ctx context.Context, prefix string, delimiter string) (listing *object.Listing, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("ListWithPrefix", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return nil, err
	}

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.fullKey(prefix)),
	}
	if delimiter != "" {
		input.Delimiter = aws.String(delimiter)
	}

	listing = &object.Listing{}
	seenPrefixes := make(map[string]struct{})

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		if err = ctx.Err(); err != nil {
			return nil, err
		}

		page, pageErr := paginator.NextPage(ctx)
		if pageErr != nil {
			err = fmt.Errorf("failed to list objects under %q: %w", prefix, pageErr)
			return nil, err
		}

		for _, common := range page.CommonPrefixes {
			if common.Prefix == nil {
				continue
			}
			storeKey := s.storeKey(*common.Prefix)
			if _, seen := seenPrefixes[storeKey]; seen {
				continue
			}
			seenPrefixes[storeKey] = struct{}{}
			listing.CommonPrefixes = append(listing.CommonPrefixes, storeKey)
		}

		for _, obj := range page.Contents {
			if obj.Key == nil {
				continue
			}
			info := object.ObjectInfo{
				Key:  s.storeKey(*obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			listing.Objects = append(listing.Objects, info)
		}
	}

	return listing, nil
}

// DeleteAllWithPrefix removes every object under prefix regardless of depth.
//
// S3 allows at most 1000 keys per DeleteObjects request, so the listing is
// chunked. Individual key failures inside a chunk do not stop later chunks;
// they are aggregated and reported as a single partial-delete error so the
// caller can retry the prefix (the operation is idempotent).
//
// Returns the number of objects actually deleted.
func (s *S3ObjectStore) DeleteAllWithPrefix(ctx context.Context, prefix string) (deleted int, err error) {
	start := time.Now()
	defer func() { s.metrics.ObserveOperation("DeleteAllWithPrefix", time.Since(start), err) }()

	if err = ctx.Err(); err != nil {
		return 0, err
	}

	// Collect every key under the prefix first. Listing while deleting can
	// miss keys on some S3-compatible backends.
	subtree, err := s.ListWithPrefix(ctx, prefix, "")
	if err != nil {
		return 0, err
	}

	if len(subtree.Objects) == 0 {
		return 0, nil
	}

	keys := make([]string, len(subtree.Objects))
	for i, obj := range subtree.Objects {
		keys[i] = obj.Key
	}

	// S3 allows max 1000 objects per delete request
	const maxBatchSize = 1000

	var failed []string

	for i := 0; i < len(keys); i += maxBatchSize {
		if err = ctx.Err(); err != nil {
			return deleted, err
		}

		end := i + maxBatchSize
		if end > len(keys) {
			end = len(keys)
		}

		batch := keys[i:end]

		objects := make([]types.ObjectIdentifier, len(batch))
		for j, key := range batch {
			objects[j] = types.ObjectIdentifier{
				Key: aws.String(s.fullKey(key)),
			}
		}

		result, deleteErr := s.client.DeleteObjects(ctx, &s3.DeleteObjectsInput{
			Bucket: aws.String(s.bucket),
			Delete: &types.Delete{
				Objects: objects,
				Quiet:   aws.Bool(false),
			},
		})
		if deleteErr != nil {
			logger.Warn("S3 batch delete failed for %d keys under %q: %v", len(batch), prefix, deleteErr)
			failed = append(failed, batch...)
			continue
		}

		failedInBatch := make(map[string]struct{})
		for _, delErr := range result.Errors {
			if delErr.Key == nil {
				continue
			}
			key := s.storeKey(*delErr.Key)
			failedInBatch[key] = struct{}{}
			failed = append(failed, key)
		}

		deleted += len(batch) - len(failedInBatch)
	}

	if len(failed) > 0 {
		err = fmt.Errorf("%w: %d of %d keys under %q failed: %s",
			object.ErrPartialDelete, len(failed), len(keys), prefix, strings.Join(failed, ", "))
		return deleted, err
	}

	return deleted, nil
}
