package testing

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/document"
)

// RunQueryTests executes collection-query contract tests.
func (suite *StoreTestSuite) RunQueryTests(t *testing.T) {
	t.Run("ReturnsDirectChildrenOnly", suite.testQueryDirectChildrenOnly)
	t.Run("OrderedByID", suite.testQueryOrderedByID)
	t.Run("Pagination", suite.testQueryPagination)
	t.Run("Filters", suite.testQueryFilters)
	t.Run("EmptyCollection", suite.testQueryEmptyCollection)
}

func (suite *StoreTestSuite) testQueryDirectChildrenOnly(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "users/t1/blogs/b1", map[string]any{"name": "one"}))
	require.NoError(t, store.Set(ctx, "users/t1/blogs/b2", map[string]any{"name": "two"}))
	require.NoError(t, store.Set(ctx, "users/t1/blogs/b1/content/c1", map[string]any{"title": "nested"}))

	result, err := store.Query(ctx, document.Query{Collection: "users/t1/blogs"})
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)
	for _, doc := range result.Documents {
		require.NotContains(t, doc.Data, "title")
	}
}

func (suite *StoreTestSuite) testQueryOrderedByID(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	for _, id := range []string{"c", "a", "b"} {
		require.NoError(t, store.Set(ctx, "items/"+id, map[string]any{"id": id}))
	}

	result, err := store.Query(ctx, document.Query{Collection: "items"})
	require.NoError(t, err)
	require.Len(t, result.Documents, 3)
	require.Equal(t, "a", result.Documents[0].ID())
	require.Equal(t, "b", result.Documents[1].ID())
	require.Equal(t, "c", result.Documents[2].ID())
}

func (suite *StoreTestSuite) testQueryPagination(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	for i := 0; i < 10; i++ {
		id := fmt.Sprintf("doc-%02d", i)
		require.NoError(t, store.Set(ctx, "items/"+id, map[string]any{"n": i}))
	}

	var collected []string
	cursor := ""
	pages := 0

	for {
		result, err := store.Query(ctx, document.Query{
			Collection: "items",
			Limit:      4,
			StartAfter: cursor,
		})
		require.NoError(t, err)

		for _, doc := range result.Documents {
			collected = append(collected, doc.ID())
		}

		pages++
		require.LessOrEqual(t, pages, 4, "pagination did not terminate")

		if len(result.Documents) < 4 {
			break
		}
		cursor = result.NextCursor
		require.NotEmpty(t, cursor)
	}

	require.Len(t, collected, 10)
	// No duplicates across pages.
	seen := make(map[string]struct{})
	for _, id := range collected {
		_, dup := seen[id]
		require.False(t, dup, "duplicate %s", id)
		seen[id] = struct{}{}
	}
}

func (suite *StoreTestSuite) testQueryFilters(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "visits/v1", map[string]any{"userId": "t1", "count": 5}))
	require.NoError(t, store.Set(ctx, "visits/v2", map[string]any{"userId": "t2", "count": 10}))
	require.NoError(t, store.Set(ctx, "visits/v3", map[string]any{"userId": "t1", "count": 20}))

	result, err := store.Query(ctx, document.Query{
		Collection: "visits",
		Filters: []document.Filter{
			{Field: "userId", Op: document.OpEqual, Value: "t1"},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 2)

	result, err = store.Query(ctx, document.Query{
		Collection: "visits",
		Filters: []document.Filter{
			{Field: "userId", Op: document.OpEqual, Value: "t1"},
			{Field: "count", Op: document.OpGreater, Value: 10},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Documents, 1)
	require.Equal(t, "v3", result.Documents[0].ID())

	// A filter on a missing field matches nothing.
	result, err = store.Query(ctx, document.Query{
		Collection: "visits",
		Filters: []document.Filter{
			{Field: "ghost", Op: document.OpEqual, Value: "x"},
		},
	})
	require.NoError(t, err)
	require.Empty(t, result.Documents)
}

func (suite *StoreTestSuite) testQueryEmptyCollection(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	result, err := store.Query(ctx, document.Query{Collection: "nothing/here/yet"})
	require.NoError(t, err)
	require.Empty(t, result.Documents)
	require.Empty(t, result.NextCursor)
}
