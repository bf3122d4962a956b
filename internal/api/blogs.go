package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foliocms/folio/pkg/tenant"
	"github.com/foliocms/folio/pkg/tenant/deletion"
)

type createBlogRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// handleCreateBlog serves POST /api/v1/blogs
//
// The blog is created under the actor's tenant. The first blog becomes the
// default; the tenant's blog ceiling maps to 409 when reached.
func (s *Server) handleCreateBlog(c *gin.Context) {
	var req createBlogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	blog, err := s.services.Tenants.CreateBlog(c.Request.Context(), actor(c), tenant.Blog{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, blog)
}

// handleListBlogs serves GET /api/v1/blogs
func (s *Server) handleListBlogs(c *gin.Context) {
	blogs, err := s.services.Tenants.ListBlogs(c.Request.Context(), actor(c))
	if err != nil {
		writeError(c, err)
		return
	}

	if blogs == nil {
		blogs = []tenant.Blog{}
	}
	c.JSON(http.StatusOK, blogs)
}

// handleGetBlog serves GET /api/v1/blogs/:id
func (s *Server) handleGetBlog(c *gin.Context) {
	blog, err := s.services.Tenants.GetBlog(c.Request.Context(), actor(c), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, blog)
}

// handleSetDefaultBlog serves PATCH /api/v1/blogs/:id/default
func (s *Server) handleSetDefaultBlog(c *gin.Context) {
	if err := s.services.Tenants.SetDefaultBlog(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "isDefault": true})
}

// handleDeleteBlog serves DELETE /api/v1/blogs/:id
//
// Removes the blog together with its content and products.
func (s *Server) handleDeleteBlog(c *gin.Context) {
	if _, err := s.services.Tenants.GetBlog(c.Request.Context(), actor(c), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	if err := deletion.DeleteBlogTree(c.Request.Context(), s.services.Documents, actor(c), c.Param("id"), 0); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"id": c.Param("id")})
}
