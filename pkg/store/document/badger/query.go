package badger

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/foliocms/folio/pkg/store/document"
)

// Query returns one page of documents from a collection.
//
// Candidates are visited by a prefix range scan in key order, which is
// document ID order, so pagination cursors are plain document IDs and the
// scan can seek directly past the cursor.
func (s *BadgerDocumentStore) Query(ctx context.Context, q document.Query) (*document.QueryResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !document.IsCollectionPath(q.Collection) {
		return nil, fmt.Errorf("%w: %q", document.ErrInvalidPath, q.Collection)
	}

	prefix := q.Collection + "/"
	keyPrefix := docKey(prefix)

	result := &document.QueryResult{}

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Seek past the cursor when resuming. The "\x00" suffix makes the
		// seek land strictly after the cursor document itself.
		start := keyPrefix
		if q.StartAfter != "" {
			start = docKey(prefix + q.StartAfter + "\x00")
		}

		for it.Seek(start); it.ValidForPrefix(keyPrefix); it.Next() {
			item := it.Item()
			path := docPath(item.Key())

			// Skip documents in nested subcollections.
			id := path[len(prefix):]
			if strings.Contains(id, "/") {
				continue
			}

			var record docRecord
			if err := item.Value(func(val []byte) error {
				return json.Unmarshal(val, &record)
			}); err != nil {
				return fmt.Errorf("failed to decode document %s: %w", path, err)
			}

			if !document.Matches(record.Data, q.Filters) {
				continue
			}

			result.Documents = append(result.Documents, document.Document{
				Path:      path,
				Data:      record.Data,
				UpdatedAt: record.UpdatedAt,
			})

			if q.Limit > 0 && len(result.Documents) == q.Limit {
				result.NextCursor = id
				return nil
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

// ListCollections returns the non-empty subcollections under a document path.
func (s *BadgerDocumentStore) ListCollections(ctx context.Context, path string) ([]string, error) {
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
	keyPrefix := docKey(prefix)

	seen := make(map[string]struct{})

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = keyPrefix
		opts.PrefetchValues = false // Keys are enough

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(keyPrefix); it.ValidForPrefix(keyPrefix); it.Next() {
			remainder := docPath(it.Item().Key())[len(prefix):]
			idx := strings.Index(remainder, "/")
			if idx < 0 {
				continue
			}
			seen[remainder[:idx]] = struct{}{}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	collections := make([]string, 0, len(seen))
	for name := range seen {
		collections = append(collections, name)
	}
	sort.Strings(collections)

	return collections, nil
}
