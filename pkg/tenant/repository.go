package tenant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/foliocms/folio/pkg/store/document"
)

// Repository provides tenant and blog CRUD over the document store.
//
// The repository only manages records; cascading teardown across stores
// lives in pkg/tenant/deletion, and asset storage in pkg/storage.
type Repository struct {
	docs document.Store
}

// NewRepository creates a repository over the given document store.
func NewRepository(docs document.Store) *Repository {
	return &Repository{docs: docs}
}

// CreateTenant writes a new tenant record. The ID must be the identifier
// issued by the identity provider.
func (r *Repository) CreateTenant(ctx context.Context, t Tenant) error {
	if t.ID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	if t.Role == "" {
		t.Role = "user"
	}

	data, err := encodeRecord(t)
	if err != nil {
		return fmt.Errorf("failed to encode tenant %s: %w", t.ID, err)
	}

	return r.docs.Set(ctx, TenantPath(t.ID), data)
}

// GetTenant reads a tenant record.
func (r *Repository) GetTenant(ctx context.Context, tenantID string) (*Tenant, error) {
	doc, err := r.docs.Get(ctx, TenantPath(tenantID))
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return nil, fmt.Errorf("tenant %s: %w", tenantID, ErrTenantNotFound)
		}
		return nil, err
	}

	var t Tenant
	if err := decodeRecord(doc.Data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode tenant %s: %w", tenantID, err)
	}

	return &t, nil
}

// UpdateTenant overwrites a tenant record. Intended for the administrator
// role (quota and blog-limit changes).
func (r *Repository) UpdateTenant(ctx context.Context, t Tenant) error {
	if _, err := r.GetTenant(ctx, t.ID); err != nil {
		return err
	}

	data, err := encodeRecord(t)
	if err != nil {
		return fmt.Errorf("failed to encode tenant %s: %w", t.ID, err)
	}

	return r.docs.Set(ctx, TenantPath(t.ID), data)
}

// CreateBlog adds a blog to a tenant.
//
// The tenant's first blog becomes the default automatically. MaxBlogs, when
// set on the tenant record, caps how many blogs can exist.
//
// Returns the created blog with its generated ID filled in.
func (r *Repository) CreateBlog(ctx context.Context, tenantID string, blog Blog) (*Blog, error) {
	t, err := r.GetTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	existing, err := r.ListBlogs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if t.MaxBlogs > 0 && len(existing) >= t.MaxBlogs {
		return nil, fmt.Errorf("tenant %s has %d of %d blogs: %w",
			tenantID, len(existing), t.MaxBlogs, ErrBlogLimitReached)
	}

	blog.ID = uuid.NewString()
	blog.TenantID = tenantID
	blog.IsDefault = len(existing) == 0
	if blog.Status == "" {
		blog.Status = "active"
	}
	if blog.CreatedAt.IsZero() {
		blog.CreatedAt = time.Now()
	}

	data, err := encodeRecord(blog)
	if err != nil {
		return nil, fmt.Errorf("failed to encode blog: %w", err)
	}

	if err := r.docs.Set(ctx, BlogPath(tenantID, blog.ID), data); err != nil {
		return nil, err
	}

	return &blog, nil
}

// GetBlog reads one blog.
func (r *Repository) GetBlog(ctx context.Context, tenantID, blogID string) (*Blog, error) {
	doc, err := r.docs.Get(ctx, BlogPath(tenantID, blogID))
	if err != nil {
		if errors.Is(err, document.ErrDocumentNotFound) {
			return nil, fmt.Errorf("blog %s: %w", blogID, ErrBlogNotFound)
		}
		return nil, err
	}

	var blog Blog
	if err := decodeRecord(doc.Data, &blog); err != nil {
		return nil, fmt.Errorf("failed to decode blog %s: %w", blogID, err)
	}

	return &blog, nil
}

// ListBlogs returns every blog a tenant owns, paging through the collection.
func (r *Repository) ListBlogs(ctx context.Context, tenantID string) ([]Blog, error) {
	var blogs []Blog

	cursor := ""
	for {
		result, err := r.docs.Query(ctx, document.Query{
			Collection: BlogsPath(tenantID),
			Limit:      100,
			StartAfter: cursor,
		})
		if err != nil {
			return nil, err
		}

		for _, doc := range result.Documents {
			var blog Blog
			if err := decodeRecord(doc.Data, &blog); err != nil {
				return nil, fmt.Errorf("failed to decode blog %s: %w", doc.ID(), err)
			}
			blogs = append(blogs, blog)
		}

		if len(result.Documents) < 100 {
			return blogs, nil
		}
		cursor = result.NextCursor
	}
}

// SetDefaultBlog makes blogID the tenant's default, clearing the flag on
// whichever blog held it before so that at most one default exists.
func (r *Repository) SetDefaultBlog(ctx context.Context, tenantID, blogID string) error {
	target, err := r.GetBlog(ctx, tenantID, blogID)
	if err != nil {
		return err
	}
	if target.IsDefault {
		return nil
	}

	blogs, err := r.ListBlogs(ctx, tenantID)
	if err != nil {
		return err
	}

	// Clear the previous default first: a crash between the two writes
	// leaves zero defaults rather than two.
	for _, blog := range blogs {
		if !blog.IsDefault || blog.ID == blogID {
			continue
		}
		blog.IsDefault = false
		if err := r.writeBlog(ctx, tenantID, blog); err != nil {
			return err
		}
	}

	target.IsDefault = true
	return r.writeBlog(ctx, tenantID, *target)
}

// DeleteBlog removes a blog record. Its content and product subcollections
// are NOT removed here; callers that need full teardown use
// deletion.DeleteBlogTree.
func (r *Repository) DeleteBlog(ctx context.Context, tenantID, blogID string) error {
	return r.docs.Delete(ctx, BlogPath(tenantID, blogID))
}

// SaveSettings writes one named settings document for a tenant.
func (r *Repository) SaveSettings(ctx context.Context, tenantID, name string, settings map[string]any) error {
	return r.docs.Set(ctx, SettingsPath(tenantID)+"/"+name, settings)
}

// GetSettings reads one named settings document.
func (r *Repository) GetSettings(ctx context.Context, tenantID, name string) (map[string]any, error) {
	doc, err := r.docs.Get(ctx, SettingsPath(tenantID)+"/"+name)
	if err != nil {
		return nil, err
	}
	return doc.Data, nil
}

func (r *Repository) writeBlog(ctx context.Context, tenantID string, blog Blog) error {
	data, err := encodeRecord(blog)
	if err != nil {
		return fmt.Errorf("failed to encode blog %s: %w", blog.ID, err)
	}
	return r.docs.Set(ctx, BlogPath(tenantID, blog.ID), data)
}

// encodeRecord converts a typed record to the document store's map form via
// its JSON representation, so stored field names follow the json tags.
func encodeRecord(v any) (map[string]any, error) {
	encoded, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}

	var data map[string]any
	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, err
	}

	return data, nil
}

// decodeRecord converts document data back into a typed record. Timestamps
// come back from the store as RFC 3339 strings, hence the decode hook.
func decodeRecord(data map[string]any, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: mapstructure.StringToTimeHookFunc(time.RFC3339Nano),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(data)
}
