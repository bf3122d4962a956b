package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestLoad(t *testing.T) {
	t.Run("MissingFileUsesDefaults", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
		require.NoError(t, err)

		require.Equal(t, "INFO", cfg.Logging.Level)
		require.Equal(t, "text", cfg.Logging.Format)
		require.Equal(t, ":8080", cfg.Server.ListenAddr)
		require.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout)
		require.Equal(t, "memory", cfg.Objects.Type)
		require.Equal(t, "memory", cfg.Documents.Type)
		require.Equal(t, "memory", cfg.Identity.Type)
		require.Equal(t, int64(1<<30), cfg.Tenants.DefaultQuotaBytes)
		require.Equal(t, 5, cfg.Tenants.DefaultMaxBlogs)
		require.Equal(t, 100, cfg.Tenants.DeletionBatchSize)
	})

	t.Run("FileOverridesDefaults", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: debug
  format: json
server:
  listen_addr: ":9090"
  shutdown_timeout: 5s
documents:
  type: badger
  badger:
    db_path: /var/lib/folio/docs
tenants:
  default_quota_bytes: 2048
  deletion_batch_size: 50
`)

		cfg, err := Load(path)
		require.NoError(t, err)

		require.Equal(t, "DEBUG", cfg.Logging.Level) // normalized
		require.Equal(t, "json", cfg.Logging.Format)
		require.Equal(t, ":9090", cfg.Server.ListenAddr)
		require.Equal(t, 5*time.Second, cfg.Server.ShutdownTimeout)
		require.Equal(t, "badger", cfg.Documents.Type)
		require.Equal(t, "/var/lib/folio/docs", cfg.Documents.Badger["db_path"])
		require.Equal(t, int64(2048), cfg.Tenants.DefaultQuotaBytes)
		require.Equal(t, 50, cfg.Tenants.DeletionBatchSize)
	})

	t.Run("MalformedFileFails", func(t *testing.T) {
		path := writeConfigFile(t, "logging: [not: valid")
		_, err := Load(path)
		require.Error(t, err)
	})

	t.Run("InvalidLogLevelFails", func(t *testing.T) {
		path := writeConfigFile(t, `
logging:
  level: verbose
`)
		_, err := Load(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "validation")
	})
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := &Config{}
		ApplyDefaults(cfg)
		return cfg
	}

	t.Run("DefaultsAreValid", func(t *testing.T) {
		require.NoError(t, Validate(base()))
	})

	t.Run("UnknownObjectStoreType", func(t *testing.T) {
		cfg := base()
		cfg.Objects.Type = "tape"
		require.Error(t, Validate(cfg))
	})

	t.Run("BadgerRequiresPath", func(t *testing.T) {
		cfg := base()
		cfg.Documents.Type = "badger"
		require.ErrorContains(t, Validate(cfg), "db_path")
	})

	t.Run("BadgerInMemoryNeedsNoPath", func(t *testing.T) {
		cfg := base()
		cfg.Documents.Type = "badger"
		cfg.Documents.Badger["in_memory"] = true
		require.NoError(t, Validate(cfg))
	})

	t.Run("S3RequiresBucketAndRegion", func(t *testing.T) {
		cfg := base()
		cfg.Objects.Type = "s3"
		require.ErrorContains(t, Validate(cfg), "bucket")

		cfg.Objects.S3["bucket"] = "folio-test"
		require.ErrorContains(t, Validate(cfg), "region")

		cfg.Objects.S3["region"] = "eu-west-1"
		require.NoError(t, Validate(cfg))
	})

	t.Run("NegativeDeletionBatchSize", func(t *testing.T) {
		cfg := base()
		cfg.Tenants.DeletionBatchSize = -1
		require.Error(t, Validate(cfg))
	})

	t.Run("UnlimitedQuotaSentinel", func(t *testing.T) {
		cfg := base()
		cfg.Tenants.DefaultQuotaBytes = -1
		require.NoError(t, Validate(cfg))
	})
}
