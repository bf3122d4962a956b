package memory

import (
	"testing"

	"github.com/foliocms/folio/pkg/store/object"
	objecttesting "github.com/foliocms/folio/pkg/store/object/testing"
)

func TestMemoryObjectStore(t *testing.T) {
	suite := &objecttesting.StoreTestSuite{
		NewStore: func(t *testing.T) object.Store {
			return NewMemoryObjectStore()
		},
	}

	suite.Run(t)
}
