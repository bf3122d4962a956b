package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foliocms/folio/pkg/tenant"
)

type createTenantRequest struct {
	ID    string `json:"id" binding:"required"`
	Email string `json:"email" binding:"required,email"`

	// QuotaBytes overrides the configured default when non-zero.
	// -1 means unlimited.
	QuotaBytes int64 `json:"quotaBytes"`

	// MaxBlogs overrides the configured default when non-zero.
	// -1 means unlimited.
	MaxBlogs int `json:"maxBlogs"`
}

// handleCreateTenant serves POST /api/v1/tenants
func (s *Server) handleCreateTenant(c *gin.Context) {
	var req createTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	t := tenant.Tenant{
		ID:         req.ID,
		Email:      req.Email,
		QuotaBytes: resolveLimit64(req.QuotaBytes, s.services.TenantDefaults.QuotaBytes),
		MaxBlogs:   resolveLimit(req.MaxBlogs, s.services.TenantDefaults.MaxBlogs),
	}

	if err := s.services.Tenants.CreateTenant(c.Request.Context(), t); err != nil {
		writeError(c, err)
		return
	}

	created, err := s.services.Tenants.GetTenant(c.Request.Context(), req.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

// handleGetTenant serves GET /api/v1/tenants/:id
func (s *Server) handleGetTenant(c *gin.Context) {
	t, err := s.services.Tenants.GetTenant(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, t)
}

// handleDeleteTenant serves DELETE /api/v1/tenants/:id
//
// Responses follow the deletion contract: 200 for a clean run, 207 with
// the report body when any stage failed, 400 for self-deletion, 404 when
// the tenant is already fully gone.
func (s *Server) handleDeleteTenant(c *gin.Context) {
	report, err := s.services.Deletion.Delete(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	status := http.StatusOK
	if report.Partial {
		status = http.StatusMultiStatus
	}
	c.JSON(status, report)
}

// resolveLimit64 maps the request sentinel values onto stored limits:
// 0 picks the default, -1 stores 0 ("unlimited" in the tenant record).
func resolveLimit64(requested, fallback int64) int64 {
	switch {
	case requested < 0:
		return 0
	case requested == 0:
		return maxInt64Zero(fallback)
	default:
		return requested
	}
}

func resolveLimit(requested, fallback int) int {
	switch {
	case requested < 0:
		return 0
	case requested == 0:
		if fallback < 0 {
			return 0
		}
		return fallback
	default:
		return requested
	}
}

func maxInt64Zero(v int64) int64 {
	if v < 0 {
		return 0
	}
	return v
}
