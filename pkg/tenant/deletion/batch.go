// Package deletion implements tenant teardown across the document store,
// the object store, and the identity provider.
//
// The two pieces are the batch pagination deleter, which empties
// arbitrarily large collections page by page, and the cascading
// orchestrator, which sequences the full multi-store teardown and reports
// per-stage outcomes.
package deletion

import (
	"context"
	"fmt"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/store/document"
	"github.com/foliocms/folio/pkg/tenant"
)

// DefaultBatchSize is the page size used when a caller passes zero. It
// stays well under document.MaxBatchSize so one page always fits one batch
// write.
const DefaultBatchSize = 100

// DeleteCollection empties a document collection in bounded pages.
//
// Each iteration queries up to batchSize documents and deletes them with a
// single batch write, looping until a query comes back empty. The loop is
// explicitly iterative: each page strictly reduces the remaining document
// count and the query limit caps per-iteration work, so termination follows
// even while the loop never holds more than one page in memory.
//
// The ctx check at the top of each iteration doubles as the cooperative
// yield between batches, so a huge collection cannot pin later stages
// behind an unbounded run once the context is done.
//
// Already-empty collections are success. Returns the number of documents
// deleted.
func DeleteCollection(ctx context.Context, docs document.Store, collection string, batchSize int) (int, error) {
	return deleteMatching(ctx, docs, collection, nil, batchSize)
}

// DeleteMatching empties the subset of a collection matched by filters, in
// bounded pages. Used for shared collections where only one tenant's
// records may be removed.
func DeleteMatching(ctx context.Context, docs document.Store, collection string, filters []document.Filter, batchSize int) (int, error) {
	return deleteMatching(ctx, docs, collection, filters, batchSize)
}

// DeleteBlogTree removes one blog document together with its content and
// products subcollections. Subcollections go first so a crash mid-way never
// leaves content under a blog that no longer exists.
func DeleteBlogTree(ctx context.Context, docs document.Store, tenantID, blogID string, batchSize int) error {
	blogPath := tenant.BlogPath(tenantID, blogID)

	if _, err := DeleteCollection(ctx, docs, blogPath+"/"+tenant.ContentCollection, batchSize); err != nil {
		return fmt.Errorf("failed to delete content of blog %s: %w", blogID, err)
	}
	if _, err := DeleteCollection(ctx, docs, blogPath+"/"+tenant.ProductsCollection, batchSize); err != nil {
		return fmt.Errorf("failed to delete products of blog %s: %w", blogID, err)
	}
	if err := docs.Delete(ctx, blogPath); err != nil {
		return fmt.Errorf("failed to delete blog %s: %w", blogID, err)
	}
	return nil
}

func deleteMatching(ctx context.Context, docs document.Store, collection string, filters []document.Filter, batchSize int) (int, error) {
	if batchSize <= 0 || batchSize > document.MaxBatchSize {
		batchSize = DefaultBatchSize
	}

	total := 0

	for {
		// Yield point between batches.
		if err := ctx.Err(); err != nil {
			return total, err
		}

		result, err := docs.Query(ctx, document.Query{
			Collection: collection,
			Filters:    filters,
			Limit:      batchSize,
		})
		if err != nil {
			return total, fmt.Errorf("failed to query %q: %w", collection, err)
		}

		if len(result.Documents) == 0 {
			return total, nil
		}

		paths := make([]string, len(result.Documents))
		for i, doc := range result.Documents {
			paths[i] = doc.Path
		}

		if err := docs.BatchDelete(ctx, paths); err != nil {
			return total, fmt.Errorf("failed to delete batch from %q: %w", collection, err)
		}

		total += len(paths)
		logger.Debug("deleted %d documents from %q (%d so far)", len(paths), collection, total)
	}
}
