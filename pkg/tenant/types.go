// Package tenant holds the tenant domain records and their repository over
// the document store.
//
// Document layout:
//
//	users/<tenantID>                               Tenant
//	users/<tenantID>/blogs/<blogID>                Blog
//	users/<tenantID>/blogs/<blogID>/content/<id>   Content
//	users/<tenantID>/blogs/<blogID>/products/<id>  Product
//	users/<tenantID>/settings/<name>               settings documents
//	visits/<id>, pageviews/<id>                    shared analytics records
//	                                               (filtered by userId)
//
// Object-store layout: every tenant owns two storage roots,
// tenants/<tenantID>/public and tenants/<tenantID>/private. All asset keys
// live below one of them.
package tenant

import (
	"errors"
	"time"
)

// Collection and field names shared across the repository and the deletion
// orchestrator.
const (
	UsersCollection     = "users"
	BlogsCollection     = "blogs"
	ContentCollection   = "content"
	ProductsCollection  = "products"
	SettingsCollection  = "settings"
	VisitsCollection    = "visits"
	PageviewsCollection = "pageviews"

	// OwnerField marks the tenant in shared analytics collections.
	OwnerField = "userId"

	// SettingsDocSite and SettingsDocApp are the two well-known documents
	// in a tenant's settings collection: site-level presentation settings
	// and application preferences.
	SettingsDocSite = "site"
	SettingsDocApp  = "app"
)

// Tenant is an account owning blogs and a storage quota.
type Tenant struct {
	// ID is the opaque identifier issued by the identity provider.
	ID string `json:"id" mapstructure:"id"`

	// Email mirrors the identity provider's primary email.
	Email string `json:"email" mapstructure:"email"`

	// QuotaBytes is the storage ceiling. 0 means unlimited.
	QuotaBytes int64 `json:"quotaBytes" mapstructure:"quotaBytes"`

	// MaxBlogs caps how many blogs the tenant may create. 0 means unlimited.
	MaxBlogs int `json:"maxBlogs" mapstructure:"maxBlogs"`

	// Role is the tenant's access role ("user", "admin").
	Role string `json:"role" mapstructure:"role"`

	CreatedAt time.Time `json:"createdAt" mapstructure:"createdAt"`
}

// Blog is a named content site belonging to one tenant.
type Blog struct {
	ID          string `json:"id" mapstructure:"id"`
	TenantID    string `json:"tenantId" mapstructure:"tenantId"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description" mapstructure:"description"`

	// Status is "active" or "archived".
	Status string `json:"status" mapstructure:"status"`

	// IsDefault marks the tenant's default blog. At most one blog per
	// tenant carries it; the first blog created gets it automatically.
	IsDefault bool `json:"isDefault" mapstructure:"isDefault"`

	CreatedAt time.Time `json:"createdAt" mapstructure:"createdAt"`
}

// Content is a content record in a blog. The structured fields are
// free-form; only the asset references matter to the storage subsystem.
type Content struct {
	ID        string         `json:"id" mapstructure:"id"`
	Title     string         `json:"title" mapstructure:"title"`
	Fields    map[string]any `json:"fields" mapstructure:"fields"`
	ImageURLs []string       `json:"imageUrls" mapstructure:"imageUrls"`
	CreatedAt time.Time      `json:"createdAt" mapstructure:"createdAt"`
}

// Product is a product record in a blog.
type Product struct {
	ID        string         `json:"id" mapstructure:"id"`
	Name      string         `json:"name" mapstructure:"name"`
	Fields    map[string]any `json:"fields" mapstructure:"fields"`
	ImageURLs []string       `json:"imageUrls" mapstructure:"imageUrls"`
	CreatedAt time.Time      `json:"createdAt" mapstructure:"createdAt"`
}

// Standard tenant repository errors.
var (
	// ErrTenantNotFound indicates no tenant document exists for the ID.
	ErrTenantNotFound = errors.New("tenant not found")

	// ErrBlogNotFound indicates no blog document exists for the ID.
	ErrBlogNotFound = errors.New("blog not found")

	// ErrBlogLimitReached indicates the tenant is at its MaxBlogs ceiling.
	ErrBlogLimitReached = errors.New("blog limit reached")
)

// TenantPath returns the document path of a tenant record.
func TenantPath(tenantID string) string {
	return UsersCollection + "/" + tenantID
}

// BlogsPath returns the collection path of a tenant's blogs.
func BlogsPath(tenantID string) string {
	return TenantPath(tenantID) + "/" + BlogsCollection
}

// BlogPath returns the document path of one blog.
func BlogPath(tenantID, blogID string) string {
	return BlogsPath(tenantID) + "/" + blogID
}

// SettingsPath returns the collection path of a tenant's settings.
func SettingsPath(tenantID string) string {
	return TenantPath(tenantID) + "/" + SettingsCollection
}

// StorageRoots returns the object-store roots a tenant owns. Everything the
// tenant stores lives under one of these prefixes, and tenant teardown
// deletes exactly these subtrees.
func StorageRoots(tenantID string) []string {
	return []string{
		"tenants/" + tenantID + "/public",
		"tenants/" + tenantID + "/private",
	}
}

// PublicRoot returns the tenant's public storage root.
func PublicRoot(tenantID string) string {
	return StorageRoots(tenantID)[0]
}
