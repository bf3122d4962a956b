// Package memory implements an in-memory document store.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/foliocms/folio/pkg/store/document"
)

// MemoryDocumentStore implements document.Store using in-memory storage.
//
// Designed for tests and development. Documents are stored in a flat map
// keyed by path; collection queries are prefix scans over the key set,
// mirroring how the badger implementation works so that behavior stays
// consistent between the two.
//
// Thread Safety:
// All operations are protected by a sync.RWMutex.
type MemoryDocumentStore struct {
	// documents maps document path to stored record
	documents map[string]*storedDocument

	// mu protects concurrent access to documents
	mu sync.RWMutex
}

type storedDocument struct {
	data      map[string]any
	updatedAt time.Time
}

// NewMemoryDocumentStore creates a new empty in-memory document store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{
		documents: make(map[string]*storedDocument),
	}
}

// Get reads a single document.
func (s *MemoryDocumentStore) Get(ctx context.Context, path string) (*document.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !document.IsDocumentPath(path) {
		return nil, fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.documents[path]
	if !ok {
		return nil, fmt.Errorf("document %s: %w", path, document.ErrDocumentNotFound)
	}

	return &document.Document{
		Path:      path,
		Data:      copyData(stored.data),
		UpdatedAt: stored.updatedAt,
	}, nil
}

// Set writes a document, overwriting any existing document at the path.
//
// Data is passed through a JSON round trip so that stored values match what
// the persistent implementation would return (numbers become float64).
func (s *MemoryDocumentStore) Set(ctx context.Context, path string, data map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !document.IsDocumentPath(path) {
		return fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	normalized, err := normalize(data)
	if err != nil {
		return fmt.Errorf("failed to encode document %s: %w", path, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.documents[path] = &storedDocument{
		data:      normalized,
		updatedAt: time.Now(),
	}

	return nil
}

// Delete removes a single document. Absent paths are not an error.
func (s *MemoryDocumentStore) Delete(ctx context.Context, path string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !document.IsDocumentPath(path) {
		return fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, path)

	return nil
}

// Query returns one page of documents from a collection.
func (s *MemoryDocumentStore) Query(ctx context.Context, q document.Query) (*document.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !document.IsCollectionPath(q.Collection) {
		return nil, fmt.Errorf("%w: %q", document.ErrInvalidPath, q.Collection)
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	prefix := q.Collection + "/"

	// Direct children only: a path in a nested subcollection has a further
	// "/" past the collection prefix.
	var ids []string
	for path := range s.documents {
		if !strings.HasPrefix(path, prefix) {
			continue
		}
		id := path[len(prefix):]
		if strings.Contains(id, "/") {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	result := &document.QueryResult{}
	for _, id := range ids {
		if q.StartAfter != "" && id <= q.StartAfter {
			continue
		}

		stored := s.documents[prefix+id]
		if !document.Matches(stored.data, q.Filters) {
			continue
		}

		result.Documents = append(result.Documents, document.Document{
			Path:      prefix + id,
			Data:      copyData(stored.data),
			UpdatedAt: stored.updatedAt,
		})

		if q.Limit > 0 && len(result.Documents) == q.Limit {
			result.NextCursor = id
			break
		}
	}

	return result, nil
}

// BatchDelete removes the given document paths. Absent paths are skipped.
func (s *MemoryDocumentStore) BatchDelete(ctx context.Context, paths []string) error {
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

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, path := range paths {
		delete(s.documents, path)
	}

	return nil
}

// ListCollections returns the non-empty subcollections under a document path.
func (s *MemoryDocumentStore) ListCollections(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if path != "" && !document.IsDocumentPath(path) {
		return nil, fmt.Errorf("%w: %q", document.ErrInvalidPath, path)
	}

	prefix := ""
	if path != "" {
		prefix = path + "/"
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	for docPath := range s.documents {
		if !strings.HasPrefix(docPath, prefix) {
			continue
		}
		remainder := docPath[len(prefix):]
		idx := strings.Index(remainder, "/")
		if idx < 0 {
			continue
		}
		seen[remainder[:idx]] = struct{}{}
	}

	collections := make([]string, 0, len(seen))
	for name := range seen {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	return collections, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryDocumentStore) Close() error {
	return nil
}

// Len returns the number of stored documents. Intended for tests.
func (s *MemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.documents)
}

func normalize(data map[string]any) (map[string]any, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return nil, err
	}

	var decoded map[string]any
	if err := json.Unmarshal(encoded, &decoded); err != nil {
		return nil, err
	}

	return decoded, nil
}

func copyData(data map[string]any) map[string]any {
	// Stored data came from a JSON round trip, so a re-encode cannot fail.
	copied, _ := normalize(data)
	return copied
}

var _ document.Store = (*MemoryDocumentStore)(nil)
