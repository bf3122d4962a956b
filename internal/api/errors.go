package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/storage"
	"github.com/foliocms/folio/pkg/store/document"
	"github.com/foliocms/folio/pkg/store/object"
	"github.com/foliocms/folio/pkg/tenant"
	"github.com/foliocms/folio/pkg/tenant/deletion"
)

// isNotFound reports whether err denotes a missing tenant record.
func isNotFound(err error) bool {
	return errors.Is(err, tenant.ErrTenantNotFound)
}

// writeError maps a domain error onto the HTTP status contract:
//
//	403 namespace guard rejection
//	404 missing source object/document/tenant
//	400 malformed input, self-deletion
//	507 quota exhausted (with usage detail)
//	207 partial multi-child failure (with per-child detail)
//	409 blog limit reached
//	500 everything else
func writeError(c *gin.Context, err error) {
	var quotaErr *storage.QuotaExceededError
	var partialErr *storage.PartialError

	switch {
	case errors.Is(err, storage.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})

	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, object.ErrObjectNotFound),
		errors.Is(err, document.ErrDocumentNotFound),
		errors.Is(err, tenant.ErrTenantNotFound),
		errors.Is(err, tenant.ErrBlogNotFound),
		errors.Is(err, deletion.ErrNothingToDelete):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})

	case errors.Is(err, storage.ErrInvalidName),
		errors.Is(err, deletion.ErrSelfDeletion):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.As(err, &quotaErr):
		c.JSON(http.StatusInsufficientStorage, gin.H{
			"error":         quotaErr.Error(),
			"usedBytes":     quotaErr.UsedBytes,
			"incomingBytes": quotaErr.IncomingBytes,
			"limitBytes":    quotaErr.LimitBytes,
		})

	case errors.As(err, &partialErr):
		failures := make([]gin.H, len(partialErr.Failures))
		for i, f := range partialErr.Failures {
			failures[i] = gin.H{"path": f.Path, "error": f.Err.Error()}
		}
		c.JSON(http.StatusMultiStatus, gin.H{
			"error":     partialErr.Error(),
			"completed": partialErr.Completed,
			"failures":  failures,
		})

	case errors.Is(err, tenant.ErrBlogLimitReached):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})

	default:
		logger.Error("request failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
