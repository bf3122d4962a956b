package config

import (
	"strings"
	"time"
)

// ApplyDefaults sets default values for any unspecified configuration fields.
//
// This function is called after loading configuration from file and environment
// variables to fill in any missing values with sensible defaults.
//
// Default Strategy:
//   - Zero values (0, "", false, nil) are replaced with defaults
//   - Explicit values are preserved
//   - Store-specific defaults are handled by store implementations
func ApplyDefaults(cfg *Config) {
	applyLoggingDefaults(&cfg.Logging)
	applyServerDefaults(&cfg.Server)
	applyObjectStoreDefaults(&cfg.Objects)
	applyDocumentStoreDefaults(&cfg.Documents)
	applyIdentityDefaults(&cfg.Identity)
	applyTenantsDefaults(&cfg.Tenants)
}

// applyLoggingDefaults sets logging defaults and normalizes values.
func applyLoggingDefaults(cfg *LoggingConfig) {
	if cfg.Level == "" {
		cfg.Level = "INFO"
	}
	// Normalize log level to uppercase for consistent internal representation
	cfg.Level = strings.ToUpper(cfg.Level)

	if cfg.Format == "" {
		cfg.Format = "text"
	}
	if cfg.Output == "" {
		cfg.Output = "stdout"
	}
}

// applyServerDefaults sets server defaults.
func applyServerDefaults(cfg *ServerConfig) {
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = ":8080"
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 30 * time.Second
	}
}

// applyObjectStoreDefaults sets object store defaults.
func applyObjectStoreDefaults(cfg *ObjectStoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}

	// Initialize maps if nil
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.S3 == nil {
		cfg.S3 = make(map[string]any)
	}
}

// applyDocumentStoreDefaults sets document store defaults.
func applyDocumentStoreDefaults(cfg *DocumentStoreConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}

	// Initialize maps if nil
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
	if cfg.Badger == nil {
		cfg.Badger = make(map[string]any)
	}
}

// applyIdentityDefaults sets identity provider defaults.
func applyIdentityDefaults(cfg *IdentityConfig) {
	if cfg.Type == "" {
		cfg.Type = "memory"
	}
	if cfg.Memory == nil {
		cfg.Memory = make(map[string]any)
	}
}

// applyTenantsDefaults sets tenant policy defaults.
func applyTenantsDefaults(cfg *TenantsConfig) {
	if cfg.DefaultQuotaBytes == 0 {
		cfg.DefaultQuotaBytes = 1 << 30 // 1 GiB
	}
	if cfg.DefaultMaxBlogs == 0 {
		cfg.DefaultMaxBlogs = 5
	}
	if cfg.DeletionBatchSize == 0 {
		cfg.DeletionBatchSize = 100
	}
}
