package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/foliocms/folio/pkg/identity"
	idmemory "github.com/foliocms/folio/pkg/identity/memory"
	"github.com/foliocms/folio/pkg/storage"
	docmemory "github.com/foliocms/folio/pkg/store/document/memory"
	objmemory "github.com/foliocms/folio/pkg/store/object/memory"
	"github.com/foliocms/folio/pkg/tenant"
	"github.com/foliocms/folio/pkg/tenant/deletion"
)

type testEnv struct {
	server   *Server
	docs     *docmemory.MemoryDocumentStore
	objects  *objmemory.MemoryObjectStore
	accounts *idmemory.MemoryProvider
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	docs := docmemory.NewMemoryDocumentStore()
	objects := objmemory.NewMemoryObjectStore()
	accounts := idmemory.NewMemoryProvider()

	services := Services{
		Storage: storage.NewManager(objects, nil),
		Quota:   storage.NewAccountant(objects),
		Tenants: tenant.NewRepository(docs),
		Deletion: deletion.NewOrchestrator(deletion.OrchestratorConfig{
			Documents: docs,
			Objects:   objects,
			Identity:  accounts,
		}),
		Documents: docs,
		TenantDefaults: Defaults{
			QuotaBytes: 1 << 20, // 1 MiB
			MaxBlogs:   2,
		},
	}

	server := NewServer(Config{
		ListenAddr:      ":0",
		ShutdownTimeout: time.Second,
	}, services)

	return &testEnv{server: server, docs: docs, objects: objects, accounts: accounts}
}

// do issues a request as the given actor and returns the recorded response.
func (e *testEnv) do(t *testing.T, actor, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if actor != "" {
		req.Header.Set(actorHeader, actor)
	}

	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)
	return rec
}

// reqBody is shorthand for JSON request payloads.
type reqBody = map[string]any

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFileRoutes(t *testing.T) {
	root := tenant.PublicRoot("t1")

	t.Run("MissingActorIsUnauthorized", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "", http.MethodGet, "/api/v1/files", nil)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("CreateFolderThenListShowsIt", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/folder", reqBody{"path": root + "/images"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, "t1", http.MethodGet, "/api/v1/files?path="+root, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `"images"`)
	})

	t.Run("ForeignPathIsForbidden", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/folder",
			reqBody{"path": tenant.PublicRoot("t2") + "/intrusion"})
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("BadFolderNameIsBadRequest", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/folder",
			reqBody{"path": root + "/bad name!"})
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("UploadThenQuotaReflectsUsage", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/upload", reqBody{
			"path":        root + "/a.bin",
			"contentType": "application/octet-stream",
			"data":        make([]byte, 2048),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, "t1", http.MethodGet, "/api/v1/quota", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.EqualValues(t, 2048, body["used_bytes"])
		require.EqualValues(t, 1<<20, body["limit_bytes"])
	})

	t.Run("QuotaExhaustionIs507", func(t *testing.T) {
		env := newTestEnv(t)

		// Default test quota is 1 MiB; this payload exceeds it.
		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/upload", reqBody{
			"path": root + "/big.bin",
			"data": make([]byte, 1<<20+1),
		})
		require.Equal(t, http.StatusInsufficientStorage, rec.Code)
		body := decodeBody(t, rec)
		require.EqualValues(t, 1<<20, body["limitBytes"])
	})

	t.Run("QuotaChargedAcrossBothRoots", func(t *testing.T) {
		env := newTestEnv(t)
		private := tenant.StorageRoots("t1")[1]

		// Fill most of the 1 MiB quota from the private tree.
		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/upload", reqBody{
			"path": private + "/big.bin",
			"data": make([]byte, 900<<10),
		})
		require.Equal(t, http.StatusOK, rec.Code)

		// The public tree is empty, but admission sees the combined usage:
		// 900 KiB + 200 KiB over a 1 MiB quota must be denied.
		rec = env.do(t, "t1", http.MethodPost, "/api/v1/files/upload", reqBody{
			"path": root + "/spill.bin",
			"data": make([]byte, 200<<10),
		})
		require.Equal(t, http.StatusInsufficientStorage, rec.Code)
		body := decodeBody(t, rec)
		require.EqualValues(t, 900<<10, body["usedBytes"])

		// What admission denied, reporting agrees is near the limit.
		rec = env.do(t, "t1", http.MethodGet, "/api/v1/quota", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body = decodeBody(t, rec)
		require.EqualValues(t, 900<<10, body["used_bytes"])
	})

	t.Run("MoveMissingSourceIs404", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "t1", http.MethodPost, "/api/v1/files/move", reqBody{
			"path":     root + "/absent.txt",
			"destPath": root + "/dest.txt",
		})
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("DeletePrefixIsIdempotent", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "t1", http.MethodDelete, "/api/v1/files/prefix?path="+root+"/nothing", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.EqualValues(t, 0, body["deleted"])
	})
}

func TestTenantRoutes(t *testing.T) {
	t.Run("CreateAndGet", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.do(t, "admin", http.MethodPost, "/api/v1/tenants", reqBody{
			"id":    "t1",
			"email": "t1@example.com",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		require.EqualValues(t, 1<<20, body["quotaBytes"]) // configured default
		require.EqualValues(t, 2, body["maxBlogs"])

		rec = env.do(t, "admin", http.MethodGet, "/api/v1/tenants/t1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("UnlimitedQuotaSentinel", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "admin", http.MethodPost, "/api/v1/tenants", reqBody{
			"id":         "t1",
			"email":      "t1@example.com",
			"quotaBytes": -1,
		})
		require.Equal(t, http.StatusCreated, rec.Code)
		body := decodeBody(t, rec)
		require.EqualValues(t, 0, body["quotaBytes"]) // stored as unlimited
	})

	t.Run("DeleteCleanRunIs200", func(t *testing.T) {
		env := newTestEnv(t)
		ctx := context.Background()

		require.NoError(t, env.accounts.CreateAccount(ctx, identity.Account{ID: "t1"}))
		rec := env.do(t, "admin", http.MethodPost, "/api/v1/tenants", reqBody{
			"id": "t1", "email": "t1@example.com",
		})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = env.do(t, "admin", http.MethodDelete, "/api/v1/tenants/t1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		require.Equal(t, false, body["partial"])
		require.Equal(t, true, body["authDeleted"])
	})

	t.Run("SelfDeletionIs400", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "t1", http.MethodDelete, "/api/v1/tenants/t1", nil)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("DeleteMissingTenantIs404", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, "admin", http.MethodDelete, "/api/v1/tenants/ghost", nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestBlogRoutes(t *testing.T) {
	seedTenant := func(t *testing.T, env *testEnv) {
		rec := env.do(t, "admin", http.MethodPost, "/api/v1/tenants", reqBody{
			"id": "t1", "email": "t1@example.com",
		})
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	t.Run("CreateListDelete", func(t *testing.T) {
		env := newTestEnv(t)
		seedTenant(t, env)

		rec := env.do(t, "t1", http.MethodPost, "/api/v1/blogs", reqBody{"name": "my blog"})
		require.Equal(t, http.StatusCreated, rec.Code)
		created := decodeBody(t, rec)
		require.Equal(t, true, created["isDefault"])
		blogID := created["id"].(string)

		rec = env.do(t, "t1", http.MethodGet, "/api/v1/blogs", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, "t1", http.MethodDelete, "/api/v1/blogs/"+blogID, nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = env.do(t, "t1", http.MethodGet, "/api/v1/blogs/"+blogID, nil)
		require.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("BlogLimitIs409", func(t *testing.T) {
		env := newTestEnv(t)
		seedTenant(t, env) // MaxBlogs = 2

		for _, name := range []string{"one", "two"} {
			rec := env.do(t, "t1", http.MethodPost, "/api/v1/blogs", reqBody{"name": name})
			require.Equal(t, http.StatusCreated, rec.Code)
		}

		rec := env.do(t, "t1", http.MethodPost, "/api/v1/blogs", reqBody{"name": "three"})
		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("SetDefault", func(t *testing.T) {
		env := newTestEnv(t)
		seedTenant(t, env)

		rec := env.do(t, "t1", http.MethodPost, "/api/v1/blogs", reqBody{"name": "one"})
		require.Equal(t, http.StatusCreated, rec.Code)
		rec = env.do(t, "t1", http.MethodPost, "/api/v1/blogs", reqBody{"name": "two"})
		require.Equal(t, http.StatusCreated, rec.Code)
		second := decodeBody(t, rec)["id"].(string)

		rec = env.do(t, "t1", http.MethodPatch, "/api/v1/blogs/"+second+"/default", nil)
		require.Equal(t, http.StatusOK, rec.Code)
	})
}
