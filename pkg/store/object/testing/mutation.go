package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/object"
)

// RunCopyTests executes copy contract tests.
func (suite *StoreTestSuite) RunCopyTests(t *testing.T) {
	t.Run("CopyPreservesData", suite.testCopyPreservesData)
	t.Run("CopyMissingSource", suite.testCopyMissingSource)
	t.Run("CopyLeavesSource", suite.testCopyLeavesSource)
}

func (suite *StoreTestSuite) testCopyPreservesData(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "src/file.png", []byte("pixels"), "image/png"))
	require.NoError(t, store.Copy(ctx, "src/file.png", "dst/file.png"))

	data, info, err := store.Get(ctx, "dst/file.png")
	require.NoError(t, err)
	require.Equal(t, []byte("pixels"), data)
	require.Equal(t, int64(6), info.Size)
	require.Equal(t, "image/png", info.ContentType)
}

func (suite *StoreTestSuite) testCopyMissingSource(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	err := store.Copy(ctx, "missing/src", "any/dst")
	require.ErrorIs(t, err, object.ErrObjectNotFound)
}

func (suite *StoreTestSuite) testCopyLeavesSource(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "a", []byte("x"), ""))
	require.NoError(t, store.Copy(ctx, "a", "b"))

	_, err := store.GetMetadata(ctx, "a")
	require.NoError(t, err)
	_, err = store.GetMetadata(ctx, "b")
	require.NoError(t, err)
}

// RunDeleteTests executes delete contract tests.
func (suite *StoreTestSuite) RunDeleteTests(t *testing.T) {
	t.Run("DeleteRemovesObject", suite.testDeleteRemovesObject)
	t.Run("DeleteMissingIsSuccess", suite.testDeleteMissingIsSuccess)
	t.Run("DeleteAllWithPrefix", suite.testDeleteAllWithPrefix)
	t.Run("DeleteAllEmptyPrefixIsSuccess", suite.testDeleteAllEmptyPrefixIsSuccess)
	t.Run("DeleteAllScopedToPrefix", suite.testDeleteAllScopedToPrefix)
}

func (suite *StoreTestSuite) testDeleteRemovesObject(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "victim", []byte("x"), ""))
	require.NoError(t, store.Delete(ctx, "victim"))

	_, err := store.GetMetadata(ctx, "victim")
	require.ErrorIs(t, err, object.ErrObjectNotFound)
}

func (suite *StoreTestSuite) testDeleteMissingIsSuccess(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Delete(ctx, "never/existed"))
}

func (suite *StoreTestSuite) testDeleteAllWithPrefix(t *testing.T) {
	store := suite.NewStore(t)
	seedListing(t, store)
	ctx := context.Background()

	deleted, err := store.DeleteAllWithPrefix(ctx, "tenants/t1/")
	require.NoError(t, err)
	require.Equal(t, 5, deleted)

	listing, err := store.ListWithPrefix(ctx, "tenants/t1/", "")
	require.NoError(t, err)
	require.Empty(t, listing.Objects)
}

func (suite *StoreTestSuite) testDeleteAllEmptyPrefixIsSuccess(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	deleted, err := store.DeleteAllWithPrefix(ctx, "tenants/ghost/")
	require.NoError(t, err)
	require.Zero(t, deleted)
}

func (suite *StoreTestSuite) testDeleteAllScopedToPrefix(t *testing.T) {
	store := suite.NewStore(t)
	seedListing(t, store)
	ctx := context.Background()

	_, err := store.DeleteAllWithPrefix(ctx, "tenants/t1/")
	require.NoError(t, err)

	// The other tenant's data must survive.
	info, err := store.GetMetadata(ctx, "tenants/t2/public/other.txt")
	require.NoError(t, err)
	require.Equal(t, int64(50), info.Size)
}
