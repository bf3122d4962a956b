// Package testing provides a conformance test suite for document.Store
// implementations.
//
// The suite tests the interface contract, not implementation details, making
// it reusable across implementations (memory, badger, etc.).
package testing

import (
	"testing"

	"github.com/foliocms/folio/pkg/store/document"
)

// StoreTestSuite is a conformance test suite for document.Store implementations.
type StoreTestSuite struct {
	// NewStore is a factory that creates a fresh, empty Store for each test,
	// ensuring test isolation. Implementations registering cleanup should do
	// so via t.Cleanup.
	NewStore func(t *testing.T) document.Store
}

// Run executes all tests in the suite.
func (suite *StoreTestSuite) Run(t *testing.T) {
	t.Run("Documents", suite.RunDocumentTests)
	t.Run("Query", suite.RunQueryTests)
	t.Run("BatchDelete", suite.RunBatchDeleteTests)
	t.Run("Collections", suite.RunCollectionTests)
}
