package config

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	awsS3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/mitchellh/mapstructure"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/identity"
	identityMemory "github.com/foliocms/folio/pkg/identity/memory"
	"github.com/foliocms/folio/pkg/store/document"
	documentBadger "github.com/foliocms/folio/pkg/store/document/badger"
	documentMemory "github.com/foliocms/folio/pkg/store/document/memory"
	"github.com/foliocms/folio/pkg/store/object"
	objectMemory "github.com/foliocms/folio/pkg/store/object/memory"
	objectS3 "github.com/foliocms/folio/pkg/store/object/s3"
)

// CreateObjectStore creates an object store based on configuration.
//
// This factory function uses the Type field to determine which store implementation
// to create, then decodes the type-specific configuration from the corresponding
// map and passes it to the store's constructor.
//
// Supported types:
//   - "memory": Uses pkg/store/object/memory (in-memory storage, ephemeral)
//   - "s3": Uses pkg/store/object/s3 (Amazon S3 or compatible storage)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Object store configuration
//   - metrics: Optional per-operation metrics sink (nil disables)
//
// Returns:
//   - object.Store: Initialized object store
//   - error: Configuration or initialization error
func CreateObjectStore(ctx context.Context, cfg *ObjectStoreConfig, metrics objectS3.Metrics) (object.Store, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return objectMemory.NewMemoryObjectStore(), nil
	case "s3":
		return createS3ObjectStore(ctx, cfg.S3, metrics)
	default:
		return nil, fmt.Errorf("unknown object store type: %q (supported: memory, s3)", cfg.Type)
	}
}

// createS3ObjectStore creates an S3-based object store.
func createS3ObjectStore(ctx context.Context, options map[string]any, metrics objectS3.Metrics) (object.Store, error) {
	// Define the configuration struct for the S3 object store
	type S3ObjectStoreOptions struct {
		Region          string `mapstructure:"region"`
		Bucket          string `mapstructure:"bucket"`
		KeyPrefix       string `mapstructure:"key_prefix"`
		Endpoint        string `mapstructure:"endpoint"`
		AccessKeyID     string `mapstructure:"access_key_id"`
		SecretAccessKey string `mapstructure:"secret_access_key"`
		MaxRetries      int    `mapstructure:"max_retries"`
	}

	// Decode the options into the config struct
	var storeCfg S3ObjectStoreOptions
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode S3 object store config: %w", err)
	}

	// Validate required fields
	if storeCfg.Bucket == "" {
		return nil, fmt.Errorf("S3 object store: bucket is required")
	}

	if storeCfg.Region == "" {
		return nil, fmt.Errorf("S3 object store: region is required")
	}

	// ========================================================================
	// Step 1: Build AWS Config
	// ========================================================================

	var configOptions []func(*awsConfig.LoadOptions) error

	// Set region
	configOptions = append(configOptions, awsConfig.WithRegion(storeCfg.Region))

	// Set custom endpoint if provided (for MinIO, Localstack, etc.)
	if storeCfg.Endpoint != "" {
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		customResolver := aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
				return aws.Endpoint{
					URL:               storeCfg.Endpoint,
					HostnameImmutable: true,
					Source:            aws.EndpointSourceCustom,
				}, nil
			},
		)
		//nolint:staticcheck // TODO: migrate to BaseEndpoint when AWS SDK v2 stabilizes the new API
		configOptions = append(configOptions, awsConfig.WithEndpointResolverWithOptions(customResolver))
	}

	// Set credentials if provided, otherwise use default credential chain
	if storeCfg.AccessKeyID != "" && storeCfg.SecretAccessKey != "" {
		credProvider := credentials.NewStaticCredentialsProvider(
			storeCfg.AccessKeyID,
			storeCfg.SecretAccessKey,
			"", // session token (empty for static credentials)
		)
		configOptions = append(configOptions, awsConfig.WithCredentialsProvider(credProvider))
	}

	// Configure retries for better resilience against temporary S3 failures
	// Default to 10 retries if not specified (increased from AWS default of 3)
	maxRetries := storeCfg.MaxRetries
	if maxRetries == 0 {
		maxRetries = 10 // Default: 10 attempts
	}
	configOptions = append(configOptions, awsConfig.WithRetryer(func() aws.Retryer {
		return retry.NewStandard(func(o *retry.StandardOptions) {
			o.MaxAttempts = maxRetries // Retry for transient errors (502, 503, timeouts, etc.)
		})
	}))

	// Load AWS config
	cfg, err := awsConfig.LoadDefaultConfig(ctx, configOptions...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	// ========================================================================
	// Step 2: Create S3 Client
	// ========================================================================

	client := awsS3.NewFromConfig(cfg, func(o *awsS3.Options) {
		// Force path-style addressing for compatibility with MinIO/Localstack
		if storeCfg.Endpoint != "" {
			o.UsePathStyle = true
		}
	})

	// ========================================================================
	// Step 3: Create S3 Object Store
	// ========================================================================

	store, err := objectS3.NewS3ObjectStore(ctx, objectS3.S3ObjectStoreConfig{
		Client:    client,
		Bucket:    storeCfg.Bucket,
		KeyPrefix: storeCfg.KeyPrefix,
		Metrics:   metrics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create S3 object store: %w", err)
	}

	logger.Info("S3 object store initialized: bucket=%s, region=%s, prefix=%s",
		storeCfg.Bucket, storeCfg.Region, storeCfg.KeyPrefix)

	return store, nil
}

// CreateDocumentStore creates a document store based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/store/document/memory (in-memory storage, ephemeral)
//   - "badger": Uses pkg/store/document/badger (BadgerDB storage, persistent)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Document store configuration
//
// Returns:
//   - document.Store: Initialized document store
//   - error: Configuration or initialization error
func CreateDocumentStore(ctx context.Context, cfg *DocumentStoreConfig) (document.Store, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return documentMemory.NewMemoryDocumentStore(), nil
	case "badger":
		return createBadgerDocumentStore(ctx, cfg.Badger)
	default:
		return nil, fmt.Errorf("unknown document store type: %q (supported: memory, badger)", cfg.Type)
	}
}

// createBadgerDocumentStore creates a BadgerDB-based persistent document store.
func createBadgerDocumentStore(ctx context.Context, options map[string]any) (document.Store, error) {
	// Decode store-specific options
	var storeCfg documentBadger.BadgerDocumentStoreConfig
	if err := mapstructure.Decode(options, &storeCfg); err != nil {
		return nil, fmt.Errorf("failed to decode badger document store options: %w", err)
	}

	// Validate required fields
	if storeCfg.DBPath == "" && !storeCfg.InMemory {
		return nil, fmt.Errorf("badger document store: db_path is required")
	}

	store, err := documentBadger.NewBadgerDocumentStore(ctx, storeCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create badger document store: %w", err)
	}

	logger.Info("Badger document store initialized: path=%s, in_memory=%t",
		storeCfg.DBPath, storeCfg.InMemory)

	return store, nil
}

// CreateIdentityProvider creates an identity provider based on configuration.
//
// Supported types:
//   - "memory": Uses pkg/identity/memory (in-memory accounts, ephemeral)
//
// Parameters:
//   - ctx: Context for initialization operations
//   - cfg: Identity provider configuration
//
// Returns:
//   - identity.Provider: Initialized identity provider
//   - error: Configuration or initialization error
func CreateIdentityProvider(ctx context.Context, cfg *IdentityConfig) (identity.Provider, error) {
	switch cfg.Type {
	case "memory":
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return identityMemory.NewMemoryProvider(), nil
	default:
		return nil, fmt.Errorf("unknown identity provider type: %q (supported: memory)", cfg.Type)
	}
}
