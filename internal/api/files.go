package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/foliocms/folio/pkg/storage"
	"github.com/foliocms/folio/pkg/tenant"
)

// rootFor picks the storage root a path belongs to. Paths under the
// private root resolve there; everything else is checked against the
// public root, and the namespace guard rejects paths outside both.
func rootFor(actorID, path string) string {
	roots := tenant.StorageRoots(actorID)
	private := roots[1]
	if path == private || strings.HasPrefix(path, private+"/") {
		return private
	}
	return roots[0]
}

// handleListFiles serves GET /api/v1/files?path=
func (s *Server) handleListFiles(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		path = tenant.PublicRoot(actor(c))
	}

	listing, err := s.services.Storage.List(c.Request.Context(), rootFor(actor(c), path), path)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, listing)
}

type folderRequest struct {
	Path string `json:"path" binding:"required"`
}

// handleCreateFolder serves POST /api/v1/files/folder
func (s *Server) handleCreateFolder(c *gin.Context) {
	var req folderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.services.Storage.CreateFolder(c.Request.Context(), rootFor(actor(c), req.Path), req.Path); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": req.Path})
}

type uploadRequest struct {
	Path        string `json:"path" binding:"required"`
	ContentType string `json:"contentType"`

	// Data is base64-encoded file content.
	Data []byte `json:"data" binding:"required"`
}

// handleUpload serves POST /api/v1/files/upload
//
// The tenant's quota is enforced against combined usage of both storage
// roots before the write; exhaustion maps to 507 Insufficient Storage.
func (s *Server) handleUpload(c *gin.Context) {
	var req uploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quota, err := s.quotaFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	err = s.services.Storage.Upload(
		c.Request.Context(),
		rootFor(actor(c), req.Path),
		req.Path,
		req.Data,
		req.ContentType,
		quota,
	)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": req.Path, "size": len(req.Data)})
}

type renameRequest struct {
	Path    string `json:"path" binding:"required"`
	NewName string `json:"newName" binding:"required"`
	Folder  bool   `json:"folder"`
}

// handleRename serves POST /api/v1/files/rename for both files and folders.
// Folder renames may succeed partially; the 207 response lists which
// children failed and stayed at the source.
func (s *Server) handleRename(c *gin.Context) {
	var req renameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	root := rootFor(actor(c), req.Path)
	var err error
	if req.Folder {
		err = s.services.Storage.RenameFolder(c.Request.Context(), root, req.Path, req.NewName)
	} else {
		err = s.services.Storage.RenameFile(c.Request.Context(), root, req.Path, req.NewName)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": req.Path, "newName": req.NewName})
}

type moveRequest struct {
	Path     string `json:"path" binding:"required"`
	DestPath string `json:"destPath" binding:"required"`
	Folder   bool   `json:"folder"`
}

// handleMove serves POST /api/v1/files/move for both files and folders.
func (s *Server) handleMove(c *gin.Context) {
	var req moveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	root := rootFor(actor(c), req.Path)
	var err error
	if req.Folder {
		err = s.services.Storage.MoveFolder(c.Request.Context(), root, req.Path, req.DestPath)
	} else {
		err = s.services.Storage.MoveFile(c.Request.Context(), root, req.Path, req.DestPath)
	}
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": req.Path, "destPath": req.DestPath})
}

// handleDeleteFile serves DELETE /api/v1/files?path=
func (s *Server) handleDeleteFile(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	if err := s.services.Storage.DeleteFile(c.Request.Context(), rootFor(actor(c), path), path); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path})
}

// handleDeletePrefix serves DELETE /api/v1/files/prefix?path=
//
// Deleting an absent subtree is success with zero deletions.
func (s *Server) handleDeletePrefix(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "path is required"})
		return
	}

	deleted, err := s.services.Storage.DeleteByPrefix(c.Request.Context(), rootFor(actor(c), path), path)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path, "deleted": deleted})
}

// handleQuota serves GET /api/v1/quota
//
// Usage is recomputed on read across both of the tenant's storage roots,
// the same sum the upload admission check reads.
func (s *Server) handleQuota(c *gin.Context) {
	quota, err := s.quotaFor(c)
	if err != nil {
		writeError(c, err)
		return
	}

	info, err := s.services.Quota.Usage(c.Request.Context(), quota)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, info)
}

// quotaFor returns the actor's quota: the stored limit (or the configured
// default for actors without a tenant record) charged across both of the
// actor's storage roots.
func (s *Server) quotaFor(c *gin.Context) (storage.Quota, error) {
	quota := storage.Quota{Roots: tenant.StorageRoots(actor(c))}

	t, err := s.services.Tenants.GetTenant(c.Request.Context(), actor(c))
	switch {
	case err == nil:
		quota.LimitBytes = t.QuotaBytes
	case isNotFound(err):
		quota.LimitBytes = s.services.TenantDefaults.QuotaBytes
	default:
		return storage.Quota{}, err
	}

	return quota, nil
}
