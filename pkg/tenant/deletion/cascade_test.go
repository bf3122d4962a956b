package deletion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/identity"
	idmemory "github.com/foliocms/folio/pkg/identity/memory"
	"github.com/foliocms/folio/pkg/storage"
	"github.com/foliocms/folio/pkg/store/document"
	docmemory "github.com/foliocms/folio/pkg/store/document/memory"
	"github.com/foliocms/folio/pkg/store/object"
	objmemory "github.com/foliocms/folio/pkg/store/object/memory"
	"github.com/foliocms/folio/pkg/tenant"
)

// fixture assembles the three stores with a fully populated tenant.
type fixture struct {
	docs     *docmemory.MemoryDocumentStore
	objects  *objmemory.MemoryObjectStore
	accounts *idmemory.MemoryProvider
}

func newFixture(t *testing.T, tenantID string) *fixture {
	t.Helper()
	ctx := context.Background()

	f := &fixture{
		docs:     docmemory.NewMemoryDocumentStore(),
		objects:  objmemory.NewMemoryObjectStore(),
		accounts: idmemory.NewMemoryProvider(),
	}

	require.NoError(t, f.accounts.CreateAccount(ctx, identity.Account{
		ID:    tenantID,
		Email: tenantID + "@example.com",
	}))

	require.NoError(t, f.docs.Set(ctx, tenant.TenantPath(tenantID), map[string]any{
		"id":    tenantID,
		"email": tenantID + "@example.com",
	}))

	// Two blogs: one with 3 content items and 1 product, one empty.
	blog1 := tenant.BlogPath(tenantID, "b1")
	require.NoError(t, f.docs.Set(ctx, blog1, map[string]any{"name": "first"}))
	for _, id := range []string{"c1", "c2", "c3"} {
		require.NoError(t, f.docs.Set(ctx, blog1+"/"+tenant.ContentCollection+"/"+id, map[string]any{"title": id}))
	}
	require.NoError(t, f.docs.Set(ctx, blog1+"/"+tenant.ProductsCollection+"/p1", map[string]any{"name": "widget"}))
	require.NoError(t, f.docs.Set(ctx, tenant.BlogPath(tenantID, "b2"), map[string]any{"name": "second"}))

	settings := tenant.SettingsPath(tenantID)
	require.NoError(t, f.docs.Set(ctx, settings+"/"+tenant.SettingsDocSite, map[string]any{"theme": "dark"}))
	require.NoError(t, f.docs.Set(ctx, settings+"/"+tenant.SettingsDocApp, map[string]any{"locale": "en"}))

	require.NoError(t, f.docs.Set(ctx, tenant.VisitsCollection+"/v1", map[string]any{tenant.OwnerField: tenantID}))
	require.NoError(t, f.docs.Set(ctx, tenant.PageviewsCollection+"/pv1", map[string]any{tenant.OwnerField: tenantID}))

	require.NoError(t, f.objects.Put(ctx, tenant.PublicRoot(tenantID)+"/logo.png", make([]byte, 2048), "image/png"))

	return f
}

func (f *fixture) orchestrator() *Orchestrator {
	return NewOrchestrator(OrchestratorConfig{
		Documents: f.docs,
		Objects:   f.objects,
		Identity:  f.accounts,
	})
}

func TestCascade(t *testing.T) {
	ctx := context.Background()

	t.Run("FullRunDeletesEverything", func(t *testing.T) {
		f := newFixture(t, "t1")
		// Another tenant's analytics must survive the cascade.
		require.NoError(t, f.docs.Set(ctx, tenant.VisitsCollection+"/v2", map[string]any{tenant.OwnerField: "t2"}))

		report, err := f.orchestrator().Delete(ctx, "admin", "t1")
		require.NoError(t, err)

		require.True(t, report.BlogsDeleted)
		require.True(t, report.SettingsDeleted)
		require.True(t, report.AppSettingsDeleted)
		require.True(t, report.AnalyticsDeleted)
		require.True(t, report.MainRecordDeleted)
		require.True(t, report.StorageDeleted)
		require.True(t, report.AuthDeleted)
		require.Empty(t, report.Errors)
		require.False(t, report.Partial)

		used, err := storage.NewAccountant(f.objects).ComputeUsage(ctx, tenant.PublicRoot("t1"))
		require.NoError(t, err)
		require.Zero(t, used)

		_, err = f.accounts.GetAccount(ctx, "t1")
		require.ErrorIs(t, err, identity.ErrAccountNotFound)

		_, err = f.docs.Get(ctx, tenant.VisitsCollection+"/v2")
		require.NoError(t, err)

		require.Equal(t, 1, f.docs.Len()) // only t2's visit remains
	})

	t.Run("SelfDeletionRejectedBeforeAnyStoreCall", func(t *testing.T) {
		docs := &countingDocStore{Store: docmemory.NewMemoryDocumentStore()}
		objects := &countingObjectStore{Store: objmemory.NewMemoryObjectStore()}
		accounts := &countingProvider{Provider: idmemory.NewMemoryProvider()}

		o := NewOrchestrator(OrchestratorConfig{Documents: docs, Objects: objects, Identity: accounts})

		report, err := o.Delete(context.Background(), "t1", "t1")
		require.ErrorIs(t, err, ErrSelfDeletion)
		require.Nil(t, report)
		require.Zero(t, docs.calls)
		require.Zero(t, objects.calls)
		require.Zero(t, accounts.calls)
	})

	t.Run("StorageFailureIsPartialButIdentityStillDeleted", func(t *testing.T) {
		f := newFixture(t, "t1")
		broken := &brokenPrefixDelete{Store: f.objects}

		o := NewOrchestrator(OrchestratorConfig{
			Documents: f.docs,
			Objects:   broken,
			Identity:  f.accounts,
		})

		report, err := o.Delete(ctx, "admin", "t1")
		require.NoError(t, err)

		require.False(t, report.StorageDeleted)
		require.True(t, report.AuthDeleted)
		require.True(t, report.Partial)
		require.Len(t, report.Errors, 1)
		require.Contains(t, report.Errors[0], "storage")

		_, err = f.accounts.GetAccount(ctx, "t1")
		require.ErrorIs(t, err, identity.ErrAccountNotFound)
	})

	t.Run("RetryingPartialRunConverges", func(t *testing.T) {
		f := newFixture(t, "t1")
		broken := &brokenPrefixDelete{Store: f.objects}

		o := NewOrchestrator(OrchestratorConfig{Documents: f.docs, Objects: broken, Identity: f.accounts})
		report, err := o.Delete(ctx, "admin", "t1")
		require.NoError(t, err)
		require.True(t, report.Partial)

		// Retry with the store healthy again. The identity record is gone,
		// but the surviving objects count as residual data.
		report, err = f.orchestrator().Delete(ctx, "admin", "t1")
		require.NoError(t, err)
		require.False(t, report.Partial)
		require.Empty(t, report.Errors)
		require.True(t, report.StorageDeleted)
		require.NotEmpty(t, report.Warnings)
		require.Zero(t, f.objects.Len())
	})

	t.Run("DeepResidualDocumentsBlockNotFound", func(t *testing.T) {
		f := newFixture(t, "t1")
		_, err := f.orchestrator().Delete(ctx, "admin", "t1")
		require.NoError(t, err)

		// A writer racing the teardown left a document deep under a blog
		// whose own record is already gone. A direct query of the blogs
		// collection cannot see it, but it is still residual data and the
		// tenant must not resolve as nonexistent.
		orphan := tenant.BlogPath("t1", "b9") + "/" + tenant.ContentCollection + "/orphan"
		require.NoError(t, f.docs.Set(ctx, orphan, map[string]any{"title": "orphan"}))

		report, err := f.orchestrator().Delete(ctx, "admin", "t1")
		require.NoError(t, err)
		require.NotEmpty(t, report.Warnings)
		require.False(t, report.Partial)
	})

	t.Run("FullyDeletedTenantIsNotFound", func(t *testing.T) {
		f := newFixture(t, "t1")
		_, err := f.orchestrator().Delete(ctx, "admin", "t1")
		require.NoError(t, err)

		_, err = f.orchestrator().Delete(ctx, "admin", "t1")
		require.ErrorIs(t, err, ErrNothingToDelete)
	})

	t.Run("UnknownTenantIsNotFound", func(t *testing.T) {
		f := newFixture(t, "t1")
		_, err := f.orchestrator().Delete(ctx, "admin", "nobody")
		require.ErrorIs(t, err, ErrNothingToDelete)
	})

	t.Run("BlogsStageSpansMultipleBatches", func(t *testing.T) {
		f := newFixture(t, "t1")
		blog := tenant.BlogPath("t1", "b1")
		for i := 0; i < 12; i++ {
			path := blog + "/" + tenant.ContentCollection + "/extra" + string(rune('a'+i))
			require.NoError(t, f.docs.Set(ctx, path, map[string]any{"i": i}))
		}

		o := NewOrchestrator(OrchestratorConfig{
			Documents: f.docs,
			Objects:   f.objects,
			Identity:  f.accounts,
			BatchSize: 5,
		})

		report, err := o.Delete(ctx, "admin", "t1")
		require.NoError(t, err)
		require.True(t, report.BlogsDeleted)
		require.Zero(t, f.docs.Len())
	})
}

// ============================================================================
// Instrumented fakes
// ============================================================================

type countingDocStore struct {
	document.Store
	calls int
}

func (s *countingDocStore) Get(ctx context.Context, path string) (*document.Document, error) {
	s.calls++
	return s.Store.Get(ctx, path)
}

func (s *countingDocStore) Query(ctx context.Context, q document.Query) (*document.QueryResult, error) {
	s.calls++
	return s.Store.Query(ctx, q)
}

func (s *countingDocStore) Delete(ctx context.Context, path string) error {
	s.calls++
	return s.Store.Delete(ctx, path)
}

func (s *countingDocStore) BatchDelete(ctx context.Context, paths []string) error {
	s.calls++
	return s.Store.BatchDelete(ctx, paths)
}

type countingObjectStore struct {
	object.Store
	calls int
}

func (s *countingObjectStore) ListWithPrefix(ctx context.Context, prefix, delimiter string) (*object.Listing, error) {
	s.calls++
	return s.Store.ListWithPrefix(ctx, prefix, delimiter)
}

func (s *countingObjectStore) DeleteAllWithPrefix(ctx context.Context, prefix string) (int, error) {
	s.calls++
	return s.Store.DeleteAllWithPrefix(ctx, prefix)
}

type countingProvider struct {
	identity.Provider
	calls int
}

func (p *countingProvider) GetAccount(ctx context.Context, id string) (*identity.Account, error) {
	p.calls++
	return p.Provider.GetAccount(ctx, id)
}

func (p *countingProvider) DeleteAccount(ctx context.Context, id string) error {
	p.calls++
	return p.Provider.DeleteAccount(ctx, id)
}

// brokenPrefixDelete fails every prefix delete while leaving reads intact.
type brokenPrefixDelete struct {
	object.Store
}

func (s *brokenPrefixDelete) DeleteAllWithPrefix(ctx context.Context, prefix string) (int, error) {
	return 0, errors.New("simulated outage")
}
