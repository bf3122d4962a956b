package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/document"
	documenttesting "github.com/foliocms/folio/pkg/store/document/testing"
)

func newTestStore(t *testing.T) document.Store {
	t.Helper()

	store, err := NewBadgerDocumentStore(context.Background(), BadgerDocumentStoreConfig{
		InMemory: true,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestBadgerDocumentStore(t *testing.T) {
	suite := &documenttesting.StoreTestSuite{
		NewStore: newTestStore,
	}

	suite.Run(t)
}

func TestBadgerDocumentStore_Persistence(t *testing.T) {
	ctx := context.Background()
	dbPath := t.TempDir()

	store, err := NewBadgerDocumentStore(ctx, BadgerDocumentStoreConfig{DBPath: dbPath})
	require.NoError(t, err)

	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"email": "a@b.c"}))
	require.NoError(t, store.Close())

	// Reopen and verify the document survived.
	store, err = NewBadgerDocumentStore(ctx, BadgerDocumentStoreConfig{DBPath: dbPath})
	require.NoError(t, err)
	defer store.Close()

	doc, err := store.Get(ctx, "users/t1")
	require.NoError(t, err)
	require.Equal(t, "a@b.c", doc.Data["email"])
}

func TestBadgerDocumentStore_RequiresPath(t *testing.T) {
	_, err := NewBadgerDocumentStore(context.Background(), BadgerDocumentStoreConfig{})
	require.Error(t, err)
}
