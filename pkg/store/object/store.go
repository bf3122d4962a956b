// Package object defines the contract for flat, key-addressed object storage.
//
// The object store holds tenant binary assets (images, uploads) under
// `/`-delimited string keys. The store itself has no concept of directories:
// folder semantics are synthesized above it by pkg/storage using the
// prefix-listing primitives defined here.
//
// Two implementations ship with Folio:
//   - s3: production storage on Amazon S3 or any S3-compatible service
//   - memory: in-memory storage for tests and development
//
// Both must pass the conformance suite in pkg/store/object/testing.
package object

import (
	"context"
	"time"
)

// ObjectInfo describes a stored object.
type ObjectInfo struct {
	// Key is the full object key, `/`-delimited, no leading slash.
	Key string

	// Size is the object size in bytes.
	Size int64

	// ContentType is the MIME type recorded at upload time.
	ContentType string

	// LastModified is when the object was last written.
	LastModified time.Time
}

// Listing is the result of a prefix query.
//
// With a "/" delimiter, CommonPrefixes holds the immediate child "directories"
// (each terminated by the delimiter) and Objects holds the immediate child
// objects. With an empty delimiter the query is recursive: CommonPrefixes is
// empty and Objects holds every object under the prefix regardless of depth.
type Listing struct {
	// CommonPrefixes are immediate child prefixes, including the trailing
	// delimiter (e.g. "tenants/t1/public/images/").
	CommonPrefixes []string

	// Objects are the matching objects.
	Objects []ObjectInfo
}

// Store is the interface all object store implementations must satisfy.
//
// Key Semantics:
// Keys are opaque `/`-delimited strings. Implementations must not interpret
// them beyond prefix matching; all hierarchy emulation lives in pkg/storage.
//
// Idempotence:
// Delete and DeleteAllWithPrefix treat absent keys as success so that
// teardown paths can be safely retried.
//
// Thread Safety:
// Implementations must be safe for concurrent use by multiple goroutines.
type Store interface {
	// Put writes an object, overwriting any existing object at the key.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get reads an object and its metadata.
	// Returns ErrObjectNotFound if the key does not exist.
	Get(ctx context.Context, key string) ([]byte, *ObjectInfo, error)

	// GetMetadata returns an object's metadata without reading its body.
	// Returns ErrObjectNotFound if the key does not exist.
	GetMetadata(ctx context.Context, key string) (*ObjectInfo, error)

	// ListWithPrefix queries objects whose keys start with prefix.
	//
	// A "/" delimiter groups results into immediate children (objects and
	// common prefixes); an empty delimiter lists the full subtree.
	ListWithPrefix(ctx context.Context, prefix string, delimiter string) (*Listing, error)

	// Copy duplicates the object at srcKey to dstKey.
	// Returns ErrObjectNotFound if srcKey does not exist.
	Copy(ctx context.Context, srcKey string, dstKey string) error

	// Delete removes a single object. Absent keys are not an error.
	Delete(ctx context.Context, key string) error

	// DeleteAllWithPrefix removes every object whose key starts with prefix,
	// regardless of depth, and returns the number of objects deleted.
	// An empty result set is success.
	DeleteAllWithPrefix(ctx context.Context, prefix string) (int, error)
}
