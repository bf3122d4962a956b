package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/object"
)

// RunPutGetTests executes write/read contract tests.
func (suite *StoreTestSuite) RunPutGetTests(t *testing.T) {
	t.Run("PutThenGet", suite.testPutThenGet)
	t.Run("PutOverwrites", suite.testPutOverwrites)
	t.Run("GetMetadata", suite.testGetMetadata)
	t.Run("GetMissing", suite.testGetMissing)
	t.Run("PutEmptyKey", suite.testPutEmptyKey)
	t.Run("ZeroByteObject", suite.testZeroByteObject)
}

func (suite *StoreTestSuite) testPutThenGet(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "tenants/t1/public/a.png", []byte("png-bytes"), "image/png")
	require.NoError(t, err)

	data, info, err := store.Get(ctx, "tenants/t1/public/a.png")
	require.NoError(t, err)
	require.Equal(t, []byte("png-bytes"), data)
	require.Equal(t, "tenants/t1/public/a.png", info.Key)
	require.Equal(t, int64(9), info.Size)
	require.Equal(t, "image/png", info.ContentType)
}

func (suite *StoreTestSuite) testPutOverwrites(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "k", []byte("first"), "text/plain"))
	require.NoError(t, store.Put(ctx, "k", []byte("second!"), "text/plain"))

	data, info, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("second!"), data)
	require.Equal(t, int64(7), info.Size)
}

func (suite *StoreTestSuite) testGetMetadata(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "meta/file.jpg", make([]byte, 2048), "image/jpeg"))

	info, err := store.GetMetadata(ctx, "meta/file.jpg")
	require.NoError(t, err)
	require.Equal(t, "meta/file.jpg", info.Key)
	require.Equal(t, int64(2048), info.Size)
	require.Equal(t, "image/jpeg", info.ContentType)
	require.False(t, info.LastModified.IsZero())
}

func (suite *StoreTestSuite) testGetMissing(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	_, _, err := store.Get(ctx, "does/not/exist")
	require.ErrorIs(t, err, object.ErrObjectNotFound)

	_, err = store.GetMetadata(ctx, "does/not/exist")
	require.ErrorIs(t, err, object.ErrObjectNotFound)
}

func (suite *StoreTestSuite) testPutEmptyKey(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	err := store.Put(ctx, "", []byte("x"), "")
	require.Error(t, err)
}

func (suite *StoreTestSuite) testZeroByteObject(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, "folder/.placeholder", nil, "application/octet-stream"))

	info, err := store.GetMetadata(ctx, "folder/.placeholder")
	require.NoError(t, err)
	require.Equal(t, int64(0), info.Size)
}
