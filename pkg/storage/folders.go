// Package storage synthesizes hierarchical folders over the flat object
// store and accounts for per-tenant storage usage.
//
// The object store has no directories: a "folder" is nothing but a key
// prefix shared by zero or more objects. Every operation here is therefore
// a prefix-string computation — listing with a delimiter, copying to a
// recomputed key, deleting a prefix. The package deliberately does not
// model folders as entities with their own records, because the store
// cannot represent that and pretending otherwise would drift from the
// source of truth.
//
// Empty folders are made listable with a FolderMarker: a zero-byte object
// whose key ends in the ".placeholder" sentinel. Markers are hidden from
// listings and contribute nothing to usage accounting.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/store/object"
)

// MarkerName is the sentinel file name that makes an empty virtual folder
// listable.
const MarkerName = ".placeholder"

// FolderListing is the result of listing one level of a virtual folder.
type FolderListing struct {
	// Folders are the names (not full prefixes) of immediate child folders.
	Folders []string `json:"folders"`

	// Files are the immediate child objects, markers excluded.
	Files []object.ObjectInfo `json:"files"`
}

// Metrics receives observations about storage operations. Nil disables
// metrics; a Prometheus-backed implementation lives in pkg/metrics.
type Metrics interface {
	ObserveOperation(operation string, duration time.Duration, err error)
}

type noopMetrics struct{}

func (noopMetrics) ObserveOperation(string, time.Duration, error) {}

// Manager provides virtual folder operations over an object store.
//
// Every path argument is validated against the caller's tenant root before
// any store call; the root itself must be derived from the authenticated
// identity by the caller.
//
// Manager is stateless apart from its store handle and safe for concurrent
// use.
type Manager struct {
	store   object.Store
	metrics Metrics
}

// NewManager creates a folder manager over the given object store.
// A nil metrics sink disables metrics.
func NewManager(store object.Store, metrics Metrics) *Manager {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &Manager{store: store, metrics: metrics}
}

// List returns the immediate children of a virtual folder.
//
// This is a single delimiter listing of path+"/": common prefixes become
// child folder names, objects become files. Markers are hidden. There is no
// recursion; callers needing depth call repeatedly.
func (m *Manager) List(ctx context.Context, tenantRoot string, path string) (listing *FolderListing, err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("List", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return nil, err
	}

	raw, err := m.store.ListWithPrefix(ctx, path+"/", "/")
	if err != nil {
		return nil, fmt.Errorf("failed to list %q: %w", path, err)
	}

	listing = &FolderListing{}

	for _, common := range raw.CommonPrefixes {
		// "tenants/t1/public/images/" -> "images"
		name := strings.TrimSuffix(common[len(path)+1:], "/")
		listing.Folders = append(listing.Folders, name)
	}

	for _, obj := range raw.Objects {
		if strings.HasSuffix(obj.Key, "/"+MarkerName) {
			continue
		}
		listing.Files = append(listing.Files, obj)
	}

	return listing, nil
}

// CreateFolder makes an empty virtual folder listable by writing a marker
// at path+"/.placeholder".
//
// Folder name segments are restricted to [A-Za-z0-9_-]; the check covers
// every segment below the tenant root so a nested create cannot smuggle in
// a bad intermediate name.
func (m *Manager) CreateFolder(ctx context.Context, tenantRoot string, path string) (err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("CreateFolder", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return err
	}
	if path == tenantRoot {
		return fmt.Errorf("%w: cannot create the tenant root", ErrInvalidName)
	}

	for _, segment := range strings.Split(path[len(tenantRoot)+1:], "/") {
		if !validFolderName(segment) {
			return fmt.Errorf("%w: folder segment %q", ErrInvalidName, segment)
		}
	}

	if err = m.store.Put(ctx, path+"/"+MarkerName, nil, "application/octet-stream"); err != nil {
		return fmt.Errorf("failed to create folder %q: %w", path, err)
	}

	return nil
}

// Upload admits and stores a new object, enforcing the tenant quota first.
//
// quota.LimitBytes <= 0 means unlimited. Usage is charged across all of
// quota.Roots, not just the root being written: a tenant cannot escape the
// ceiling by spreading bytes over its trees. An empty quota.Roots falls
// back to tenantRoot alone. The quota check and the write are not atomic:
// two concurrent uploads can both pass the check and jointly exceed the
// ceiling. The quota is a soft limit.
func (m *Manager) Upload(ctx context.Context, tenantRoot string, path string, data []byte, contentType string, quota Quota) (err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("Upload", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return err
	}
	if !validFileName(baseName(path)) {
		return fmt.Errorf("%w: file name %q", ErrInvalidName, baseName(path))
	}

	if len(quota.Roots) == 0 {
		quota.Roots = []string{tenantRoot}
	}
	accountant := NewAccountant(m.store)
	if err = accountant.Enforce(ctx, quota, int64(len(data))); err != nil {
		return err
	}

	if err = m.store.Put(ctx, path, data, contentType); err != nil {
		return fmt.Errorf("failed to upload %q: %w", path, err)
	}

	return nil
}

// RenameFile gives the object at path a new name in the same folder.
func (m *Manager) RenameFile(ctx context.Context, tenantRoot string, path string, newName string) error {
	if !validFileName(newName) {
		return fmt.Errorf("%w: file name %q", ErrInvalidName, newName)
	}
	return m.MoveFile(ctx, tenantRoot, path, parentPath(path)+"/"+newName)
}

// MoveFile relocates a single object to destPath.
//
// The store has no native move: this is a copy to the new key followed by a
// delete of the old key, and the two are not atomic. If the copy succeeds
// but the delete fails, the operation is reported as failed even though a
// duplicate now exists at the destination — failing loudly beats silently
// doubling the tenant's stored (and billed) bytes. The duplicate is not
// cleaned up automatically.
func (m *Manager) MoveFile(ctx context.Context, tenantRoot string, path string, destPath string) (err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("MoveFile", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return err
	}
	if err = AssertOwned(destPath, tenantRoot); err != nil {
		return err
	}
	if path == destPath {
		return nil
	}

	if _, err = m.store.GetMetadata(ctx, path); err != nil {
		if errors.Is(err, object.ErrObjectNotFound) {
			return fmt.Errorf("%w: %q", ErrNotFound, path)
		}
		return fmt.Errorf("failed to stat %q: %w", path, err)
	}

	if err = m.store.Copy(ctx, path, destPath); err != nil {
		return fmt.Errorf("failed to copy %q to %q: %w", path, destPath, err)
	}

	if err = m.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("copied %q to %q but failed to delete source: %w", path, destPath, err)
	}

	return nil
}

// RenameFolder gives the folder at path a new name in the same parent.
func (m *Manager) RenameFolder(ctx context.Context, tenantRoot string, path string, newName string) error {
	if !validFolderName(newName) {
		return fmt.Errorf("%w: folder name %q", ErrInvalidName, newName)
	}
	return m.MoveFolder(ctx, tenantRoot, path, parentPath(path)+"/"+newName)
}

// MoveFolder relocates an entire virtual folder to destPath.
//
// The store has no recursive rename, so this lists the whole subtree under
// path and moves every child (markers included, preserving empty
// subfolders) one at a time with the same copy-then-delete used for single
// files. A child failure does not stop the remaining children, and children
// already moved are not rolled back: on any failure the result is a
// *PartialError listing exactly which children stayed behind, so callers
// can distinguish "nothing happened" from "some things happened, here is
// what".
func (m *Manager) MoveFolder(ctx context.Context, tenantRoot string, path string, destPath string) (err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("MoveFolder", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return err
	}
	if err = AssertOwned(destPath, tenantRoot); err != nil {
		return err
	}
	if path == destPath {
		return nil
	}
	if strings.HasPrefix(destPath, path+"/") {
		return fmt.Errorf("%w: cannot move a folder into itself", ErrInvalidName)
	}

	subtree, err := m.store.ListWithPrefix(ctx, path+"/", "")
	if err != nil {
		return fmt.Errorf("failed to list %q: %w", path, err)
	}
	if len(subtree.Objects) == 0 {
		return fmt.Errorf("%w: %q", ErrNotFound, path)
	}

	partial := &PartialError{Op: fmt.Sprintf("move folder %q to %q", path, destPath)}

	for _, child := range subtree.Objects {
		if ctxErr := ctx.Err(); ctxErr != nil {
			partial.Failures = append(partial.Failures, ChildFailure{Path: child.Key, Err: ctxErr})
			continue
		}

		relative := child.Key[len(path)+1:]
		target := destPath + "/" + relative

		if copyErr := m.store.Copy(ctx, child.Key, target); copyErr != nil {
			partial.Failures = append(partial.Failures, ChildFailure{Path: child.Key, Err: copyErr})
			continue
		}
		if delErr := m.store.Delete(ctx, child.Key); delErr != nil {
			partial.Failures = append(partial.Failures, ChildFailure{Path: child.Key, Err: delErr})
			continue
		}

		partial.Completed++
	}

	if len(partial.Failures) > 0 {
		logger.Warn("partial folder move %q -> %q: %d ok, %d failed",
			path, destPath, partial.Completed, len(partial.Failures))
		err = partial
		return err
	}

	return nil
}

// DeleteFile removes a single object.
func (m *Manager) DeleteFile(ctx context.Context, tenantRoot string, path string) (err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("DeleteFile", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return err
	}

	if err = m.store.Delete(ctx, path); err != nil {
		return fmt.Errorf("failed to delete %q: %w", path, err)
	}

	return nil
}

// DeleteByPrefix removes every object under path regardless of depth and
// returns how many were deleted. An already-empty prefix is success, which
// makes tenant teardown retries safe.
func (m *Manager) DeleteByPrefix(ctx context.Context, tenantRoot string, path string) (deleted int, err error) {
	start := time.Now()
	defer func() { m.metrics.ObserveOperation("DeleteByPrefix", time.Since(start), err) }()

	if err = AssertOwned(path, tenantRoot); err != nil {
		return 0, err
	}

	deleted, err = m.store.DeleteAllWithPrefix(ctx, path+"/")
	if err != nil {
		return deleted, fmt.Errorf("failed to delete prefix %q: %w", path, err)
	}

	return deleted, nil
}

// validFolderName reports whether name is usable as a folder segment.
// The charset is deliberately tight: these names become key prefixes shared
// with external upload clients.
func validFolderName(name string) bool {
	if name == "" {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-':
		default:
			return false
		}
	}
	return true
}

// validFileName additionally allows dots for extensions, but never a bare
// dot name and never the marker sentinel.
func validFileName(name string) bool {
	if name == "" || name == "." || name == ".." || name == MarkerName {
		return false
	}
	for _, r := range name {
		switch {
		case r >= 'A' && r <= 'Z':
		case r >= 'a' && r <= 'z':
		case r >= '0' && r <= '9':
		case r == '_' || r == '-' || r == '.':
		default:
			return false
		}
	}
	return true
}

// parentPath returns everything before the final segment.
func parentPath(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return ""
	}
	return path[:idx]
}

// baseName returns the final segment.
func baseName(path string) string {
	idx := strings.LastIndex(path, "/")
	if idx < 0 {
		return path
	}
	return path[idx+1:]
}
