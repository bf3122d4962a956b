package tenant

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	docmemory "github.com/foliocms/folio/pkg/store/document/memory"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	return NewRepository(docmemory.NewMemoryDocumentStore())
}

func TestTenantRecords(t *testing.T) {
	ctx := context.Background()

	t.Run("RoundTrip", func(t *testing.T) {
		repo := newTestRepository(t)
		created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)

		require.NoError(t, repo.CreateTenant(ctx, Tenant{
			ID:         "t1",
			Email:      "t1@example.com",
			QuotaBytes: 1 << 30,
			MaxBlogs:   3,
			CreatedAt:  created,
		}))

		got, err := repo.GetTenant(ctx, "t1")
		require.NoError(t, err)
		require.Equal(t, "t1@example.com", got.Email)
		require.Equal(t, int64(1<<30), got.QuotaBytes)
		require.Equal(t, 3, got.MaxBlogs)
		require.Equal(t, "user", got.Role) // defaulted
		require.True(t, created.Equal(got.CreatedAt))
	})

	t.Run("MissingTenant", func(t *testing.T) {
		repo := newTestRepository(t)
		_, err := repo.GetTenant(ctx, "absent")
		require.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("RequiresID", func(t *testing.T) {
		repo := newTestRepository(t)
		require.Error(t, repo.CreateTenant(ctx, Tenant{Email: "x@example.com"}))
	})

	t.Run("UpdateRejectsMissingTenant", func(t *testing.T) {
		repo := newTestRepository(t)
		err := repo.UpdateTenant(ctx, Tenant{ID: "absent"})
		require.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("UpdateChangesQuota", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateTenant(ctx, Tenant{ID: "t1"}))

		got, err := repo.GetTenant(ctx, "t1")
		require.NoError(t, err)
		got.QuotaBytes = 4096
		require.NoError(t, repo.UpdateTenant(ctx, *got))

		got, err = repo.GetTenant(ctx, "t1")
		require.NoError(t, err)
		require.Equal(t, int64(4096), got.QuotaBytes)
	})
}

func TestBlogs(t *testing.T) {
	ctx := context.Background()

	t.Run("FirstBlogBecomesDefault", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateTenant(ctx, Tenant{ID: "t1"}))

		first, err := repo.CreateBlog(ctx, "t1", Blog{Name: "first"})
		require.NoError(t, err)
		require.NotEmpty(t, first.ID)
		require.True(t, first.IsDefault)

		second, err := repo.CreateBlog(ctx, "t1", Blog{Name: "second"})
		require.NoError(t, err)
		require.False(t, second.IsDefault)
	})

	t.Run("MaxBlogsIsEnforced", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateTenant(ctx, Tenant{ID: "t1", MaxBlogs: 2}))

		_, err := repo.CreateBlog(ctx, "t1", Blog{Name: "one"})
		require.NoError(t, err)
		_, err = repo.CreateBlog(ctx, "t1", Blog{Name: "two"})
		require.NoError(t, err)

		_, err = repo.CreateBlog(ctx, "t1", Blog{Name: "three"})
		require.ErrorIs(t, err, ErrBlogLimitReached)
	})

	t.Run("CreateRequiresTenant", func(t *testing.T) {
		repo := newTestRepository(t)
		_, err := repo.CreateBlog(ctx, "absent", Blog{Name: "orphan"})
		require.ErrorIs(t, err, ErrTenantNotFound)
	})

	t.Run("SetDefaultMovesTheFlag", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateTenant(ctx, Tenant{ID: "t1"}))

		first, err := repo.CreateBlog(ctx, "t1", Blog{Name: "first"})
		require.NoError(t, err)
		second, err := repo.CreateBlog(ctx, "t1", Blog{Name: "second"})
		require.NoError(t, err)

		require.NoError(t, repo.SetDefaultBlog(ctx, "t1", second.ID))

		blogs, err := repo.ListBlogs(ctx, "t1")
		require.NoError(t, err)
		defaults := 0
		for _, b := range blogs {
			if b.IsDefault {
				defaults++
				require.Equal(t, second.ID, b.ID)
			}
		}
		require.Equal(t, 1, defaults)

		// The old default must have been cleared.
		got, err := repo.GetBlog(ctx, "t1", first.ID)
		require.NoError(t, err)
		require.False(t, got.IsDefault)
	})

	t.Run("SetDefaultRejectsMissingBlog", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateTenant(ctx, Tenant{ID: "t1"}))
		require.ErrorIs(t, repo.SetDefaultBlog(ctx, "t1", "absent"), ErrBlogNotFound)
	})

	t.Run("DeleteBlogIsIdempotent", func(t *testing.T) {
		repo := newTestRepository(t)
		require.NoError(t, repo.CreateTenant(ctx, Tenant{ID: "t1"}))
		blog, err := repo.CreateBlog(ctx, "t1", Blog{Name: "doomed"})
		require.NoError(t, err)

		require.NoError(t, repo.DeleteBlog(ctx, "t1", blog.ID))
		require.NoError(t, repo.DeleteBlog(ctx, "t1", blog.ID))

		_, err = repo.GetBlog(ctx, "t1", blog.ID)
		require.ErrorIs(t, err, ErrBlogNotFound)
	})
}

func TestSettings(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepository(t)

	require.NoError(t, repo.SaveSettings(ctx, "t1", SettingsDocSite, map[string]any{
		"theme": "dark",
		"title": "My Site",
	}))

	got, err := repo.GetSettings(ctx, "t1", SettingsDocSite)
	require.NoError(t, err)
	require.Equal(t, "dark", got["theme"])

	// Each named document is independent.
	_, err = repo.GetSettings(ctx, "t1", SettingsDocApp)
	require.Error(t, err)
}
