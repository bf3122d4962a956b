// Package testing provides a conformance test suite for object.Store
// implementations.
//
// The suite tests the interface contract, not implementation details, making
// it reusable across implementations (memory, S3, etc.). Remote-backed
// implementations run it from integration tests gated behind build tags or
// environment checks.
package testing

import (
	"testing"

	"github.com/foliocms/folio/pkg/store/object"
)

// StoreTestSuite is a conformance test suite for object.Store implementations.
type StoreTestSuite struct {
	// NewStore is a factory that creates a fresh, empty Store for each test,
	// ensuring test isolation.
	NewStore func(t *testing.T) object.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("PutGet", suite.RunPutGetTests)
	t.Run("Listing", suite.RunListingTests)
	t.Run("Copy", suite.RunCopyTests)
	t.Run("Delete", suite.RunDeleteTests)
}
