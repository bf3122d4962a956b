package storage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAssertOwned(t *testing.T) {
	const root = "tenants/t1/public"

	t.Run("AllowsRootItself", func(t *testing.T) {
		require.NoError(t, AssertOwned(root, root))
	})

	t.Run("AllowsNestedPaths", func(t *testing.T) {
		require.NoError(t, AssertOwned(root+"/images/cat.png", root))
		require.NoError(t, AssertOwned(root+"/a/b/c/d", root))
	})

	t.Run("RejectsOtherTenants", func(t *testing.T) {
		require.ErrorIs(t, AssertOwned("tenants/t2/public/x", root), ErrForbidden)
	})

	t.Run("RejectsPrefixTricks", func(t *testing.T) {
		// "tenants/t1/public-evil" shares a string prefix but is not below
		// the root.
		require.ErrorIs(t, AssertOwned("tenants/t1/public-evil/x", root), ErrForbidden)
		require.ErrorIs(t, AssertOwned("tenants/t1/publicx", root), ErrForbidden)
	})

	t.Run("RejectsTraversal", func(t *testing.T) {
		require.ErrorIs(t, AssertOwned(root+"/../t2/public/x", root), ErrForbidden)
		require.ErrorIs(t, AssertOwned(root+"/images/../../secret", root), ErrForbidden)
		require.ErrorIs(t, AssertOwned(root+"/./x", root), ErrForbidden)
	})

	t.Run("RejectsEmptySegments", func(t *testing.T) {
		require.ErrorIs(t, AssertOwned(root+"//x", root), ErrForbidden)
		require.ErrorIs(t, AssertOwned(root+"/x/", root), ErrForbidden)
	})

	t.Run("RejectsEmptyInput", func(t *testing.T) {
		require.ErrorIs(t, AssertOwned("", root), ErrForbidden)
		require.ErrorIs(t, AssertOwned("anything", ""), ErrForbidden)
	})
}
