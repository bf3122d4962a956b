package object

import "errors"

// Standard object store errors.
//
// These give callers a consistent way to detect common failure conditions
// across implementations. Callers check them with errors.Is; implementations
// wrap them with key context:
//
//	if !exists {
//	    return fmt.Errorf("object %s: %w", key, object.ErrObjectNotFound)
//	}
var (
	// ErrObjectNotFound indicates the requested object does not exist.
	//
	// Returned by Get, GetMetadata, and Copy (for the source key).
	// Delete and DeleteAllWithPrefix never return it: absent is success.
	ErrObjectNotFound = errors.New("object not found")

	// ErrInvalidKey indicates a key is empty or otherwise malformed.
	ErrInvalidKey = errors.New("invalid object key")

	// ErrPartialDelete indicates a bulk prefix delete removed some objects
	// but failed on others. The wrapped error carries per-key detail.
	ErrPartialDelete = errors.New("partial delete")
)
