package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/foliocms/folio/pkg/store/document"
)

// docRecord is the stored representation of a document.
//
// JSON keeps the database human-inspectable and tolerates field additions
// without migration, the same tradeoff made for every stored record in Folio.
type docRecord struct {
	Data      map[string]any `json:"data"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// Get reads a single document.
func (s *BadgerDocumentStore) Get(ctx context.Context, path string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !document.IsDocumentPath(path) {
		return nil, fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	var record docRecord

	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(docKey(path))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, fmt.Errorf("document %s: %w", path, document.ErrDocumentNotFound)
		}
		return nil, fmt.Errorf("failed to read document %s: %w", path, err)
	}

	return &document.Document{
		Path:      path,
		Data:      record.Data,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

// Set writes a document, overwriting any existing document at the path.
func (s *BadgerDocumentStore) Set(ctx context.Context, path string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !document.IsDocumentPath(path) {
		return fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	encoded, err := json.Marshal(docRecord{
		Data:      data,
		UpdatedAt: time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(docKey(path), encoded)
	})
	if err != nil {
		return fmt.Errorf("failed to write document %s: %w", path, err)
	}

	return nil
}

// Delete removes a single document. Absent paths are not an error.
// Subcollections are untouched.
func (s *BadgerDocumentStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !document.IsDocumentPath(path) {
		return fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(docKey(path))
	})
	if err != nil {
		return fmt.Errorf("failed to delete document %s: %w", path, err)
	}

	return nil
}

// BatchDelete removes the given document paths using a single write batch.
//
// BadgerDB's WriteBatch groups the deletes into as few transactions as fit
// its size limits while presenting one atomic-enough flush to the caller.
// Absent paths are skipped (badger treats deleting a missing key as success).
func (s *BadgerDocumentStore) BatchDelete(ctx context.Context, paths []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(paths) > document.MaxBatchSize {
		return fmt.Errorf("%w: %d > %d", document.ErrBatchTooLarge, len(paths), document.MaxBatchSize)
	}

	for _, path := range paths {
		if !document.IsDocumentPath(path) {
			return fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
		}
	}

	wb := s.db.NewWriteBatch()
	defer wb.Cancel()

	for _, path := range paths {
		if err := wb.Delete(docKey(path)); err != nil {
			return fmt.Errorf("failed to queue delete for %s: %w", path, err)
		}
	}

	if err := wb.Flush(); err != nil {
		return fmt.Errorf("failed to flush batch delete: %w", err)
	}

	return nil
}
