package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/document"
)

// RunDocumentTests executes single-document contract tests.
func (suite *StoreTestSuite) RunDocumentTests(t *testing.T) {
	t.Run("SetThenGet", suite.testSetThenGet)
	t.Run("SetOverwrites", suite.testSetOverwrites)
	t.Run("GetMissing", suite.testGetMissing)
	t.Run("NestedPathWithoutParent", suite.testNestedPathWithoutParent)
	t.Run("DeleteIsIdempotent", suite.testDeleteIsIdempotent)
	t.Run("DeleteLeavesSubcollections", suite.testDeleteLeavesSubcollections)
	t.Run("InvalidPaths", suite.testInvalidPaths)
}

func (suite *StoreTestSuite) testSetThenGet(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	err := store.Set(ctx, "users/t1", map[string]any{
		"email":      "owner@example.com",
		"quotaBytes": 1048576,
	})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "users/t1")
	require.NoError(t, err)
	require.Equal(t, "users/t1", doc.Path)
	require.Equal(t, "t1", doc.ID())
	require.Equal(t, "owner@example.com", doc.Data["email"])
	// Numbers come back as float64 after the JSON round trip.
	require.Equal(t, float64(1048576), doc.Data["quotaBytes"])
	require.False(t, doc.UpdatedAt.IsZero())
}

func (suite *StoreTestSuite) testSetOverwrites(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"name": "first"}))
	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"name": "second"}))

	doc, err := store.Get(ctx, "users/t1")
	require.NoError(t, err)
	require.Equal(t, "second", doc.Data["name"])
	require.Len(t, doc.Data, 1)
}

func (suite *StoreTestSuite) testGetMissing(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	_, err := store.Get(ctx, "users/nobody")
	require.ErrorIs(t, err, document.ErrDocumentNotFound)
}

func (suite *StoreTestSuite) testNestedPathWithoutParent(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	// Deep documents do not require their parents to exist.
	err := store.Set(ctx, "users/t1/blogs/b1/content/c1", map[string]any{"title": "hello"})
	require.NoError(t, err)

	doc, err := store.Get(ctx, "users/t1/blogs/b1/content/c1")
	require.NoError(t, err)
	require.Equal(t, "hello", doc.Data["title"])

	_, err = store.Get(ctx, "users/t1")
	require.ErrorIs(t, err, document.ErrDocumentNotFound)
}

func (suite *StoreTestSuite) testDeleteIsIdempotent(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"a": 1}))
	require.NoError(t, store.Delete(ctx, "users/t1"))
	require.NoError(t, store.Delete(ctx, "users/t1"))

	_, err := store.Get(ctx, "users/t1")
	require.ErrorIs(t, err, document.ErrDocumentNotFound)
}

func (suite *StoreTestSuite) testDeleteLeavesSubcollections(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1", map[string]any{"a": 1}))
	require.NoError(t, store.Set(ctx, "users/t1/blogs/b1", map[string]any{"name": "blog"}))

	require.NoError(t, store.Delete(ctx, "users/t1"))

	// The nested document survives as an orphan.
	doc, err := store.Get(ctx, "users/t1/blogs/b1")
	require.NoError(t, err)
	require.Equal(t, "blog", doc.Data["name"])
}

func (suite *StoreTestSuite) testInvalidPaths(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	for _, path := range []string{"", "users", "users/t1/blogs", "users//x", "/users/t1"} {
		require.ErrorIs(t, store.Set(ctx, path, map[string]any{"a": 1}), document.ErrInvalidPath, "path %q", path)

		_, err := store.Get(ctx, path)
		require.ErrorIs(t, err, document.ErrInvalidPath, "path %q", path)
	}
}
