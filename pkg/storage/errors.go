package storage

import (
	"errors"
	"fmt"
	"strings"
)

// Standard storage errors.
//
// These form the error taxonomy the HTTP layer maps onto status codes.
// Validation and namespace errors are returned before any store call is
// made; the rest surface store outcomes.
var (
	// ErrForbidden indicates a caller-supplied path escapes the tenant's
	// reserved namespace. Returned by the namespace guard before any store
	// call, for reads and writes alike.
	//
	// HTTP Mapping: 403 Forbidden
	ErrForbidden = errors.New("path outside tenant namespace")

	// ErrNotFound indicates the source object of an operation is missing.
	//
	// HTTP Mapping: 404 Not Found
	ErrNotFound = errors.New("not found")

	// ErrInvalidName indicates a folder or file name contains characters
	// outside the allowed set. Rejected before any store call.
	//
	// HTTP Mapping: 400 Bad Request
	ErrInvalidName = errors.New("invalid name")
)

// QuotaExceededError indicates an upload would push a tenant past its
// storage ceiling. It carries current usage so callers can show exactly
// how far over the request would land.
//
// HTTP Mapping: 507 Insufficient Storage
type QuotaExceededError struct {
	// UsedBytes is the tenant's usage at check time.
	UsedBytes int64

	// IncomingBytes is the size of the rejected upload.
	IncomingBytes int64

	// LimitBytes is the tenant's quota.
	LimitBytes int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded: %d bytes used + %d incoming > %d limit",
		e.UsedBytes, e.IncomingBytes, e.LimitBytes)
}

// ChildFailure records one failed sub-operation of a folder move or rename.
type ChildFailure struct {
	// Path is the source key of the child that failed.
	Path string

	// Err is what went wrong for this child.
	Err error
}

// PartialError aggregates child failures of a folder operation that moved
// some children and failed on others.
//
// The operation is best-effort: previously-moved children are not rolled
// back, so the source prefix is left holding exactly the children listed
// here. Callers must surface this rather than flattening it into success
// or total failure.
//
// HTTP Mapping: 207 Multi-Status
type PartialError struct {
	// Op names the operation that partially failed (e.g. "move folder").
	Op string

	// Completed is the number of children that moved successfully.
	Completed int

	// Failures lists the children left behind.
	Failures []ChildFailure
}

func (e *PartialError) Error() string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return fmt.Sprintf("%s: %d children succeeded, %d failed: %s",
		e.Op, e.Completed, len(e.Failures), strings.Join(paths, ", "))
}
