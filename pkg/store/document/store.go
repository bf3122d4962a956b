// Package document defines the contract for hierarchical document storage.
//
// The document store holds structured records (tenants, blogs, content,
// products, settings) organized into collections of documents, where each
// document may own nested subcollections:
//
//	users/<tenantID>
//	users/<tenantID>/blogs/<blogID>
//	users/<tenantID>/blogs/<blogID>/content/<contentID>
//
// A document path always has an even number of `/`-separated segments
// (collection/id pairs); a collection path has an odd number.
//
// Two implementations ship with Folio:
//   - badger: production persistence on BadgerDB
//   - memory: in-memory storage for tests and development
//
// Both must pass the conformance suite in pkg/store/document/testing.
package document

import (
	"context"
	"strings"
	"time"
)

// Document is a stored record.
type Document struct {
	// Path is the full document path, e.g. "users/t1/blogs/b1".
	Path string

	// Data holds the document fields. Values survive a JSON round trip, so
	// numbers read back as float64 regardless of how they were written.
	Data map[string]any

	// UpdatedAt is when the document was last written.
	UpdatedAt time.Time
}

// ID returns the final path segment (the document identifier).
func (d *Document) ID() string {
	idx := strings.LastIndex(d.Path, "/")
	if idx < 0 {
		return d.Path
	}
	return d.Path[idx+1:]
}

// FilterOp is a comparison operator usable in a query filter.
type FilterOp string

const (
	OpEqual        FilterOp = "=="
	OpNotEqual     FilterOp = "!="
	OpLess         FilterOp = "<"
	OpLessEqual    FilterOp = "<="
	OpGreater      FilterOp = ">"
	OpGreaterEqual FilterOp = ">="
)

// Filter restricts a query to documents whose field satisfies the comparison.
type Filter struct {
	Field string
	Op    FilterOp
	Value any
}

// Query describes a paginated read over one collection.
type Query struct {
	// Collection is the collection path, e.g. "users/t1/blogs".
	Collection string

	// Filters are ANDed together. Empty means all documents match.
	Filters []Filter

	// Limit caps the number of documents returned. Zero means no cap.
	Limit int

	// StartAfter is the document ID after which to resume, taken from a
	// previous QueryResult.NextCursor. Empty starts from the beginning.
	StartAfter string
}

// QueryResult is one page of query results.
type QueryResult struct {
	// Documents are the matching documents in ID order.
	Documents []Document

	// NextCursor resumes the query after the last returned document.
	// Empty when the page was not full (no more results guaranteed only
	// when fewer than Limit documents were returned).
	NextCursor string
}

// Store is the interface all document store implementations must satisfy.
//
// Idempotence:
// Delete and BatchDelete treat absent documents as success so teardown paths
// can be retried safely.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Get reads a single document.
	// Returns ErrDocumentNotFound if the path does not exist.
	Get(ctx context.Context, path string) (*Document, error)

	// Set writes a document, overwriting any existing document at the path.
	// Parent documents need not exist: "users/t1/blogs/b1" can be written
	// without "users/t1".
	Set(ctx context.Context, path string, data map[string]any) error

	// Delete removes a single document. Subcollections are NOT deleted;
	// orphaned subtrees remain readable and must be torn down explicitly.
	// Absent paths are not an error.
	Delete(ctx context.Context, path string) error

	// Query returns one page of documents from a collection. Documents in
	// nested subcollections are not included.
	Query(ctx context.Context, q Query) (*QueryResult, error)

	// BatchDelete removes the given document paths in one bounded write.
	// Absent paths are skipped. Implementations may cap the batch size;
	// callers keep batches at or below MaxBatchSize.
	BatchDelete(ctx context.Context, paths []string) error

	// ListCollections returns the names of the non-empty subcollections
	// directly under a document path ("" for the root collections).
	ListCollections(ctx context.Context, path string) ([]string, error)

	// Close releases underlying resources.
	Close() error
}

// MaxBatchSize is the largest number of paths callers should pass to a
// single BatchDelete, mirroring the write-batch limits of hosted document
// databases.
const MaxBatchSize = 500

// IsDocumentPath reports whether path has collection/id shape (even, non-zero
// segment count with no empty segments).
func IsDocumentPath(path string) bool {
	segments := strings.Split(path, "/")
	if len(segments) == 0 || len(segments)%2 != 0 {
		return false
	}
	for _, segment := range segments {
		if segment == "" {
			return false
		}
	}
	return true
}

// IsCollectionPath reports whether path has collection shape (odd segment
// count with no empty segments).
func IsCollectionPath(path string) bool {
	segments := strings.Split(path, "/")
	if len(segments)%2 != 1 {
		return false
	}
	for _, segment := range segments {
		if segment == "" {
			return false
		}
	}
	return true
}
