//go:build integration
// +build integration

package s3

import (
	"context"
	"fmt"
	"os"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/foliocms/folio/pkg/store/object"
	objecttesting "github.com/foliocms/folio/pkg/store/object/testing"
)

// TestS3ObjectStore_Integration runs the object store conformance suite
// against a real S3-compatible service (Localstack).
//
// Prerequisites:
//   - Localstack running on localhost:4566
//   - Run with: go test -tags=integration ./pkg/store/object/s3/...
//
// To start Localstack:
//
//	docker run --rm -p 4566:4566 localstack/localstack
func TestS3ObjectStore_Integration(t *testing.T) {
	ctx := context.Background()

	endpoint := os.Getenv("LOCALSTACK_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:4566"
	}

	cfg, err := awsConfig.LoadDefaultConfig(ctx,
		awsConfig.WithRegion("us-east-1"),
		awsConfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				return aws.Endpoint{
					URL:               endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)),
		awsConfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			"test", // AccessKeyID
			"test", // SecretAccessKey
			"",     // SessionToken
		)),
	)
	if err != nil {
		t.Fatalf("Failed to load AWS config: %v", err)
	}

	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.UsePathStyle = true // Required for Localstack
	})

	suite := &objecttesting.StoreTestSuite{
		NewStore: func(t *testing.T) object.Store {
			// A fresh bucket per test keeps the suite's isolation guarantee.
			bucketName := fmt.Sprintf("folio-test-%s", sanitizeBucketName(t.Name()))

			_, err := client.CreateBucket(ctx, &s3.CreateBucketInput{
				Bucket: aws.String(bucketName),
			})
			if err != nil {
				t.Fatalf("Failed to create test bucket: %v", err)
			}

			t.Cleanup(func() {
				listResp, _ := client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
					Bucket: aws.String(bucketName),
				})
				if listResp != nil {
					for _, obj := range listResp.Contents {
						client.DeleteObject(ctx, &s3.DeleteObjectInput{
							Bucket: aws.String(bucketName),
							Key:    obj.Key,
						})
					}
				}
				client.DeleteBucket(ctx, &s3.DeleteBucketInput{
					Bucket: aws.String(bucketName),
				})
			})

			store, err := NewS3ObjectStore(ctx, S3ObjectStoreConfig{
				Client: client,
				Bucket: bucketName,
			})
			if err != nil {
				t.Fatalf("Failed to create S3 object store: %v", err)
			}

			return store
		},
	}

	suite.Run(t)
}

// sanitizeBucketName lowercases a test name into a valid S3 bucket suffix.
func sanitizeBucketName(name string) string {
	out := make([]rune, 0, len(name))
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			out = append(out, r)
		case r >= 'A' && r <= 'Z':
			out = append(out, r+('a'-'A'))
		default:
			out = append(out, '-')
		}
	}
	if len(out) > 40 {
		out = out[:40]
	}
	return string(out)
}
