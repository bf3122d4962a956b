// Package badger implements persistent document storage on BadgerDB.
package badger

import (
	"context"
	"fmt"

	badger "github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	"github.com/foliocms/folio/pkg/store/document"
)

// BadgerDocumentStore implements document.Store using BadgerDB for persistence.
//
// This implementation provides a persistent document repository backed by
// BadgerDB, a fast embedded key-value store. It is suitable for:
//   - Production single-node deployments
//   - Systems where records must survive server restarts
//
// Storage Model:
// Every document lives under a namespaced key (see keys.go). Collection
// queries and subcollection discovery are prefix range scans, which BadgerDB
// serves efficiently from its LSM tree. Document bodies are JSON for
// debuggability and schema flexibility, following the same tradeoff the
// rest of Folio makes for stored records.
//
// Thread Safety:
// BadgerDB transactions provide isolation; no additional locking is needed.
// All operations are safe for concurrent use from multiple goroutines.
type BadgerDocumentStore struct {
	// db is the BadgerDB database handle (thread-safe, uses internal MVCC)
	db *badger.DB
}

// BadgerDocumentStoreConfig contains configuration for the badger store.
type BadgerDocumentStoreConfig struct {
	// DBPath is the directory where BadgerDB stores its files.
	// Ignored when InMemory is true.
	DBPath string `mapstructure:"db_path"`

	// InMemory runs BadgerDB without persistence. Intended for tests.
	InMemory bool `mapstructure:"in_memory"`

	// BlockCacheSizeMB sizes the block cache (default 64).
	BlockCacheSizeMB int64 `mapstructure:"block_cache_size_mb"`
}

// NewBadgerDocumentStore opens (creating if necessary) a BadgerDB-backed
// document store.
//
// Parameters:
//   - ctx: Context for cancellation (checked before opening the database)
//   - config: Store configuration
//
// Returns:
//   - *BadgerDocumentStore: Initialized store
//   - error: Returns error if the database cannot be opened
func NewBadgerDocumentStore(ctx context.Context, config BadgerDocumentStoreConfig) (*BadgerDocumentStore, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if !config.InMemory && config.DBPath == "" {
		return nil, fmt.Errorf("db_path is required for a persistent store")
	}

	opts := badger.DefaultOptions(config.DBPath)
	opts = opts.WithInMemory(config.InMemory)
	opts = opts.WithLoggingLevel(badger.WARNING) // Reduce log noise
	// Documents are small JSON blobs; compression overhead isn't worth it.
	opts = opts.WithCompression(options.None)

	blockCacheMB := config.BlockCacheSizeMB
	if blockCacheMB == 0 {
		blockCacheMB = 64
	}
	opts = opts.WithBlockCacheSize(blockCacheMB << 20)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open BadgerDB at %s: %w", config.DBPath, err)
	}

	return &BadgerDocumentStore{db: db}, nil
}

// Close flushes and closes the underlying database.
func (s *BadgerDocumentStore) Close() error {
	return s.db.Close()
}

var _ document.Store = (*BadgerDocumentStore)(nil)
