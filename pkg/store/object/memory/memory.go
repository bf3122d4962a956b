// Package memory implements an in-memory object store.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/foliocms/folio/pkg/store/object"
)

// MemoryObjectStore implements object.Store using in-memory storage.
//
// This implementation keeps every object in a map. It's designed for:
//   - Testing and development
//   - Ephemeral single-process deployments
//
// Characteristics:
//   - Fast: all operations are memory-speed
//   - Volatile: data lost on restart
//   - Thread-safe: protected by RWMutex
//
// Data is copied on both read and write so callers can never race the
// store's internal buffers.
type MemoryObjectStore struct {
	// objects maps key to stored object
	objects map[string]*storedObject

	// mu protects concurrent access to objects
	mu sync.RWMutex
}

type storedObject struct {
	data         []byte
	contentType  string
	lastModified time.Time
}

// NewMemoryObjectStore creates a new empty in-memory object store.
func NewMemoryObjectStore() *MemoryObjectStore {
	return &MemoryObjectStore{
		objects: make(map[string]*storedObject),
	}
}

// Put writes an object, overwriting any existing object at the key.
func (s *MemoryObjectStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if key == "" {
		return object.ErrInvalidKey
	}

	buf := make([]byte, len(data))
	copy(buf, data)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.objects[key] = &storedObject{
		data:         buf,
		contentType:  contentType,
		lastModified: time.Now(),
	}

	return nil
}

// Get reads an object and its metadata.
func (s *MemoryObjectStore) Get(ctx context.Context, key string) ([]byte, *object.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.objects[key]
	if !ok {
		return nil, nil, fmt.Errorf("object %s: %w", key, object.ErrObjectNotFound)
	}

	buf := make([]byte, len(stored.data))
	copy(buf, stored.data)

	return buf, stored.info(key), nil
}

// GetMetadata returns an object's metadata without its body.
func (s *MemoryObjectStore) GetMetadata(ctx context.Context, key string) (*object.ObjectInfo, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %s: %w", key, object.ErrObjectNotFound)
	}

	return stored.info(key), nil
}

// ListWithPrefix queries objects whose keys start with prefix.
//
// With a "/" delimiter, keys containing a further delimiter past the prefix
// are grouped into common prefixes, matching S3 delimiter-listing semantics.
func (s *MemoryObjectStore) ListWithPrefix(ctx context.Context, prefix string, delimiter string) (*object.Listing, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	listing := &object.Listing{}
	seenPrefixes := make(map[string]struct{})

	for key, stored := range s.objects {
		if !strings.HasPrefix(key, prefix) {
			continue
		}

		if delimiter != "" {
			remainder := key[len(prefix):]
			if idx := strings.Index(remainder, delimiter); idx >= 0 {
				// Grouped under a common child prefix.
				common := prefix + remainder[:idx+len(delimiter)]
				if _, seen := seenPrefixes[common]; !seen {
					seenPrefixes[common] = struct{}{}
					listing.CommonPrefixes = append(listing.CommonPrefixes, common)
				}
				continue
			}
		}

		listing.Objects = append(listing.Objects, *stored.info(key))
	}

	// Deterministic order, like S3's lexicographic listing.
	sort.Strings(listing.CommonPrefixes)
	sort.Slice(listing.Objects, func(i, j int) bool {
		return listing.Objects[i].Key < listing.Objects[j].Key
	})

	return listing, nil
}

// Copy duplicates the object at srcKey to dstKey.
func (s *MemoryObjectStore) Copy(ctx context.Context, srcKey string, dstKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dstKey == "" {
		return object.ErrInvalidKey
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	src, ok := s.objects[srcKey]
	if !ok {
		return fmt.Errorf("object %s: %w", srcKey, object.ErrObjectNotFound)
	}

	buf := make([]byte, len(src.data))
	copy(buf, src.data)

	s.objects[dstKey] = &storedObject{
		data:         buf,
		contentType:  src.contentType,
		lastModified: time.Now(),
	}

	return nil
}

// Delete removes a single object. Absent keys are not an error.
func (s *MemoryObjectStore) Delete(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.objects, key)

	return nil
}

// DeleteAllWithPrefix removes every object whose key starts with prefix.
func (s *MemoryObjectStore) DeleteAllWithPrefix(ctx context.Context, prefix string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for key := range s.objects {
		if strings.HasPrefix(key, prefix) {
			delete(s.objects, key)
			deleted++
		}
	}

	return deleted, nil
}

// Len returns the number of stored objects. Intended for tests.
func (s *MemoryObjectStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.objects)
}

func (o *storedObject) info(key string) *object.ObjectInfo {
	return &object.ObjectInfo{
		Key:          key,
		Size:         int64(len(o.data)),
		ContentType:  o.contentType,
		LastModified: o.lastModified,
	}
}

var _ object.Store = (*MemoryObjectStore)(nil)
