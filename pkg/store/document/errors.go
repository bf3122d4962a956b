package document

import "errors"

// Standard document store errors, checked with errors.Is and wrapped with
// path context by implementations:
//
//	if !exists {
//	    return fmt.Errorf("document %s: %w", path, document.ErrDocumentNotFound)
//	}
var (
	// ErrDocumentNotFound indicates the requested document does not exist.
	// Only Get returns it; Delete and BatchDelete treat absent as success.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrInvalidPath indicates a path is not a valid document or collection
	// path for the attempted operation.
	ErrInvalidPath = errors.New("invalid document path")

	// ErrBatchTooLarge indicates a BatchDelete call exceeded MaxBatchSize.
	ErrBatchTooLarge = errors.New("batch exceeds maximum size")
)
