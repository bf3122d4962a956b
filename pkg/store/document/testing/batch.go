package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/document"
)

// RunBatchDeleteTests executes batch-delete contract tests.
func (suite *StoreTestSuite) RunBatchDeleteTests(t *testing.T) {
	t.Run("DeletesAllGiven", suite.testBatchDeletesAllGiven)
	t.Run("SkipsAbsent", suite.testBatchSkipsAbsent)
	t.Run("RejectsOversizedBatch", suite.testBatchRejectsOversized)
}

func (suite *StoreTestSuite) testBatchDeletesAllGiven(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	var paths []string
	for i := 0; i < 25; i++ {
		path := fmt.Sprintf("items/doc-%02d", i)
		require.NoError(t, store.Set(ctx, path, map[string]any{"n": i}))
		paths = append(paths, path)
	}

	require.NoError(t, store.BatchDelete(ctx, paths))

	result, err := store.Query(ctx, document.Query{Collection: "items"})
	require.NoError(t, err)
	require.Empty(t, result.Documents)
}

func (suite *StoreTestSuite) testBatchSkipsAbsent(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "items/real", map[string]any{"a": 1}))

	err := store.BatchDelete(ctx, []string{"items/real", "items/ghost"})
	require.NoError(t, err)

	_, err = store.Get(ctx, "items/real")
	require.ErrorIs(t, err, document.ErrDocumentNotFound)
}

func (suite *StoreTestSuite) testBatchRejectsOversized(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	paths := make([]string, document.MaxBatchSize+1)
	for i := range paths {
		paths[i] = fmt.Sprintf("items/doc-%d", i)
	}

	err := store.BatchDelete(ctx, paths)
	require.ErrorIs(t, err, document.ErrBatchTooLarge)
}

// RunCollectionTests executes subcollection-discovery contract tests.
func (suite *StoreTestSuite) RunCollectionTests(t *testing.T) {
	t.Run("ListsSubcollections", suite.testListsSubcollections)
	t.Run("RootCollections", suite.testRootCollections)
	t.Run("EmptyForLeafDocument", suite.testEmptyForLeafDocument)
}

func (suite *StoreTestSuite) testListsSubcollections(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1/blogs/b1", map[string]any{"a": 1}))
	require.NoError(t, store.Set(ctx, "users/t1/blogs/b1/content/c1", map[string]any{"a": 1}))
	require.NoError(t, store.Set(ctx, "users/t1/blogs/b1/products/p1", map[string]any{"a": 1}))

	collections, err := store.ListCollections(ctx, "users/t1/blogs/b1")
	require.NoError(t, err)
	require.Equal(t, []string{"content", "products"}, collections)
}

func (suite *StoreTestSuite) testRootCollections(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"a": 1}))
	require.NoError(t, store.Set(ctx, "visits/v1", map[string]any{"a": 1}))

	collections, err := store.ListCollections(ctx, "")
	require.NoError(t, err)
	require.Equal(t, []string{"users", "visits"}, collections)
}

func (suite *StoreTestSuite) testEmptyForLeafDocument(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"a": 1}))

	collections, err := store.ListCollections(ctx, "users/t1")
	require.NoError(t, err)
	require.Empty(t, collections)
}
