package memory

import (
	"testing"

	"github.com/foliocms/folio/pkg/store/document"
	documenttesting "github.com/foliocms/folio/pkg/store/document/testing"
)

func TestMemoryDocumentStore(t *testing.T) {
	suite := &documenttesting.StoreTestSuite{
		NewStore: func(t *testing.T) document.Store {
			return NewMemoryDocumentStore()
		},
	}

	suite.Run(t)
}
