package storage

import (
	"fmt"
	"strings"
)

// Namespace guard: every object-store path a caller supplies must stay
// inside that tenant's reserved key prefix. The tenant root is computed
// server-side from the authenticated identity and is never taken from the
// client, so confinement to it is the sole mechanism preventing cross-tenant
// reads and writes. The guard fails closed and runs before any store call,
// on reads and writes alike, and on both ends of a move/rename/copy.

// AssertOwned validates that path is confined to tenantRoot.
//
// A path is owned when it equals the root or sits strictly below it, with no
// empty, ".", or ".." segments anywhere (a ".." can never be allowed to
// re-enter the root after leaving it, so it is rejected outright).
//
// Returns ErrForbidden (wrapped with the offending path) on any violation.
func AssertOwned(path string, tenantRoot string) error {
	if tenantRoot == "" {
		return fmt.Errorf("%w: empty tenant root", ErrForbidden)
	}

	if path != tenantRoot && !strings.HasPrefix(path, tenantRoot+"/") {
		return fmt.Errorf("%w: %q", ErrForbidden, path)
	}

	for _, segment := range strings.Split(path, "/") {
		switch segment {
		case "", ".", "..":
			return fmt.Errorf("%w: %q", ErrForbidden, path)
		}
	}

	return nil
}
