package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/store/object"
)

// RunListingTests executes prefix-listing contract tests.
func (suite *StoreTestSuite) RunListingTests(t *testing.T) {
	t.Run("DelimiterGroupsChildren", suite.testDelimiterGroupsChildren)
	t.Run("RecursiveListsSubtree", suite.testRecursiveListsSubtree)
	t.Run("PrefixScoping", suite.testPrefixScoping)
	t.Run("EmptyPrefix", suite.testEmptyPrefixListing)
}

// seed writes a small tenant-shaped keyspace used by the listing tests.
func seedListing(t *testing.T, store object.Store) {
	t.Helper()
	ctx := context.Background()

	objects := map[string]int{
		"tenants/t1/public/readme.txt":        11,
		"tenants/t1/public/images/a.png":      100,
		"tenants/t1/public/images/b.png":      200,
		"tenants/t1/public/images/deep/c.png": 300,
		"tenants/t1/public/docs/manual.pdf":   400,
		"tenants/t2/public/other.txt":         50,
	}
	for key, size := range objects {
		require.NoError(t, store.Put(ctx, key, make([]byte, size), "application/octet-stream"))
	}
}

func (suite *StoreTestSuite) testDelimiterGroupsChildren(t *testing.T) {
	store := suite.NewStore(t)
	seedListing(t, store)
	ctx := context.Background()

	listing, err := store.ListWithPrefix(ctx, "tenants/t1/public/", "/")
	require.NoError(t, err)

	require.ElementsMatch(t,
		[]string{"tenants/t1/public/images/", "tenants/t1/public/docs/"},
		listing.CommonPrefixes)

	require.Len(t, listing.Objects, 1)
	require.Equal(t, "tenants/t1/public/readme.txt", listing.Objects[0].Key)
	require.Equal(t, int64(11), listing.Objects[0].Size)
}

func (suite *StoreTestSuite) testRecursiveListsSubtree(t *testing.T) {
	store := suite.NewStore(t)
	seedListing(t, store)
	ctx := context.Background()

	listing, err := store.ListWithPrefix(ctx, "tenants/t1/public/images/", "")
	require.NoError(t, err)

	require.Empty(t, listing.CommonPrefixes)

	keys := make([]string, len(listing.Objects))
	for i, obj := range listing.Objects {
		keys[i] = obj.Key
	}
	require.ElementsMatch(t, []string{
		"tenants/t1/public/images/a.png",
		"tenants/t1/public/images/b.png",
		"tenants/t1/public/images/deep/c.png",
	}, keys)
}

func (suite *StoreTestSuite) testPrefixScoping(t *testing.T) {
	store := suite.NewStore(t)
	seedListing(t, store)
	ctx := context.Background()

	// A tenant's listing must never see another tenant's keys.
	listing, err := store.ListWithPrefix(ctx, "tenants/t1/", "")
	require.NoError(t, err)
	for _, obj := range listing.Objects {
		require.NotContains(t, obj.Key, "tenants/t2/")
	}
}

func (suite *StoreTestSuite) testEmptyPrefixListing(t *testing.T) {
	store := suite.NewStore(t)
	ctx := context.Background()

	listing, err := store.ListWithPrefix(ctx, "tenants/empty/", "/")
	require.NoError(t, err)
	require.Empty(t, listing.CommonPrefixes)
	require.Empty(t, listing.Objects)
}
