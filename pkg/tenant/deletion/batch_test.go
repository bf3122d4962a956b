package deletion

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/document"
	docmemory "github.com/foliocms/folio/pkg/store/document/memory"
	"github.com/foliocms/folio/pkg/tenant"
)

func TestDeleteCollection(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptiesCollectionLargerThanOneBatch", func(t *testing.T) {
		docs := docmemory.NewMemoryDocumentStore()
		for i := 0; i < 25; i++ {
			require.NoError(t, docs.Set(ctx, fmt.Sprintf("posts/p%02d", i), map[string]any{"n": i}))
		}

		deleted, err := DeleteCollection(ctx, docs, "posts", 10)
		require.NoError(t, err)
		require.Equal(t, 25, deleted)

		result, err := docs.Query(ctx, document.Query{Collection: "posts"})
		require.NoError(t, err)
		require.Empty(t, result.Documents)
	})

	t.Run("EmptyCollectionIsSuccess", func(t *testing.T) {
		docs := docmemory.NewMemoryDocumentStore()

		deleted, err := DeleteCollection(ctx, docs, "posts", 10)
		require.NoError(t, err)
		require.Zero(t, deleted)
	})

	t.Run("DoesNotTouchSiblingCollections", func(t *testing.T) {
		docs := docmemory.NewMemoryDocumentStore()
		require.NoError(t, docs.Set(ctx, "posts/p1", map[string]any{"a": 1}))
		require.NoError(t, docs.Set(ctx, "drafts/d1", map[string]any{"a": 1}))

		_, err := DeleteCollection(ctx, docs, "posts", 10)
		require.NoError(t, err)

		_, err = docs.Get(ctx, "drafts/d1")
		require.NoError(t, err)
	})

	t.Run("ZeroBatchSizeFallsBackToDefault", func(t *testing.T) {
		docs := docmemory.NewMemoryDocumentStore()
		require.NoError(t, docs.Set(ctx, "posts/p1", map[string]any{"a": 1}))

		deleted, err := DeleteCollection(ctx, docs, "posts", 0)
		require.NoError(t, err)
		require.Equal(t, 1, deleted)
	})

	t.Run("StopsWhenContextCancelled", func(t *testing.T) {
		docs := docmemory.NewMemoryDocumentStore()
		require.NoError(t, docs.Set(ctx, "posts/p1", map[string]any{"a": 1}))

		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := DeleteCollection(cancelled, docs, "posts", 10)
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestDeleteBlogTree(t *testing.T) {
	ctx := context.Background()
	docs := docmemory.NewMemoryDocumentStore()

	blog := tenant.BlogPath("t1", "b1")
	require.NoError(t, docs.Set(ctx, blog, map[string]any{"name": "doomed"}))
	require.NoError(t, docs.Set(ctx, blog+"/"+tenant.ContentCollection+"/c1", map[string]any{"title": "post"}))
	require.NoError(t, docs.Set(ctx, blog+"/"+tenant.ProductsCollection+"/p1", map[string]any{"name": "widget"}))

	sibling := tenant.BlogPath("t1", "b2")
	require.NoError(t, docs.Set(ctx, sibling, map[string]any{"name": "kept"}))

	require.NoError(t, DeleteBlogTree(ctx, docs, "t1", "b1", 10))

	require.Equal(t, 1, docs.Len())
	_, err := docs.Get(ctx, sibling)
	require.NoError(t, err)
}

func TestDeleteMatching(t *testing.T) {
	ctx := context.Background()
	docs := docmemory.NewMemoryDocumentStore()

	require.NoError(t, docs.Set(ctx, "visits/v1", map[string]any{"userId": "alice"}))
	require.NoError(t, docs.Set(ctx, "visits/v2", map[string]any{"userId": "bob"}))
	require.NoError(t, docs.Set(ctx, "visits/v3", map[string]any{"userId": "alice"}))

	deleted, err := DeleteMatching(ctx, docs, "visits", []document.Filter{
		{Field: "userId", Op: document.OpEqual, Value: "alice"},
	}, 10)
	require.NoError(t, err)
	require.Equal(t, 2, deleted)

	// Other owners' records survive.
	_, err = docs.Get(ctx, "visits/v2")
	require.NoError(t, err)
}
