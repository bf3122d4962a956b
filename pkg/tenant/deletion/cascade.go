package deletion

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/foliocms/folio/internal/logger"
	"github.com/foliocms/folio/pkg/identity"
	"github.com/foliocms/folio/pkg/store/document"
	"github.com/foliocms/folio/pkg/store/object"
	"github.com/foliocms/folio/pkg/tenant"
)

// ============================================================================
// Errors
// ============================================================================

var (
	// ErrSelfDeletion is returned when an actor attempts to delete their
	// own tenant. The check happens before any store is touched.
	ErrSelfDeletion = errors.New("cannot delete own tenant")

	// ErrNothingToDelete is returned when the target's identity record is
	// already gone and no residual data exists in any store.
	ErrNothingToDelete = errors.New("tenant does not exist")
)

// ============================================================================
// Report
// ============================================================================

// DeletionReport records the outcome of one cascading deletion run. Each
// boolean is true when the corresponding stage completed without error;
// Errors collects one message per failed stage and Partial is set when any
// stage failed.
//
// A partial report is still a finished run: every stage was attempted, and
// re-running the deletion retries only the work that is still there.
type DeletionReport struct {
	TenantID string `json:"tenantId"`

	BlogsDeleted       bool `json:"blogsDeleted"`
	SettingsDeleted    bool `json:"settingsDeleted"`
	AppSettingsDeleted bool `json:"appSettingsDeleted"`
	AnalyticsDeleted   bool `json:"analyticsDeleted"`
	MainRecordDeleted  bool `json:"mainRecordDeleted"`
	StorageDeleted     bool `json:"storageDeleted"`
	AuthDeleted        bool `json:"authDeleted"`

	Errors  []string `json:"errors,omitempty"`
	Partial bool     `json:"partial"`

	// Warnings carries non-fatal observations, such as an identity record
	// that was already gone while residual data remained.
	Warnings []string `json:"warnings,omitempty"`

	Duration time.Duration `json:"duration"`
}

// ============================================================================
// Orchestrator
// ============================================================================

// Metrics receives observations about deletion runs. Implementations must
// be safe for concurrent use.
type Metrics interface {
	// ObserveRun records one completed cascade with its duration and
	// whether any stage failed.
	ObserveRun(duration time.Duration, partial bool)
}

type noopMetrics struct{}

func (noopMetrics) ObserveRun(time.Duration, bool) {}

// Orchestrator runs the cascading tenant deletion across the document
// store, the object store, and the identity provider.
type Orchestrator struct {
	docs      document.Store
	objects   object.Store
	accounts  identity.Provider
	batchSize int
	metrics   Metrics
}

// OrchestratorConfig carries the stores the cascade tears down.
type OrchestratorConfig struct {
	Documents document.Store
	Objects   object.Store
	Identity  identity.Provider

	// BatchSize is the page size for collection teardown. Zero means
	// DefaultBatchSize.
	BatchSize int

	// Metrics is optional.
	Metrics Metrics
}

// NewOrchestrator creates a deletion orchestrator.
func NewOrchestrator(cfg OrchestratorConfig) *Orchestrator {
	m := cfg.Metrics
	if m == nil {
		m = noopMetrics{}
	}
	return &Orchestrator{
		docs:      cfg.Documents,
		objects:   cfg.Objects,
		accounts:  cfg.Identity,
		batchSize: cfg.BatchSize,
		metrics:   m,
	}
}

// stage is one step of the cascade. Stages run in declaration order and
// every stage runs regardless of earlier failures; done points at the
// report boolean the stage owns.
type stage struct {
	name string
	run  func(ctx context.Context) error
	done *bool
}

// Delete tears down the tenant identified by targetID on behalf of actorID.
//
// The self-deletion guard runs before anything else: actorID == targetID
// fails with ErrSelfDeletion without touching any store. If the target's
// identity record is already gone and no residual data remains in the
// document or object store, Delete returns ErrNothingToDelete.
//
// Otherwise all seven stages run in order, each unconditionally: a failed
// stage is recorded in the report and the cascade moves on, so one broken
// store never shields the others from cleanup. Identity revocation is the
// last stage, so an account is only removed after every data stage has at
// least been attempted. Every stage is idempotent, which makes re-running a
// partial deletion the recovery path: completed stages find nothing to do
// and succeed again.
//
// The returned error is non-nil only when the cascade could not start;
// per-stage failures live in the report.
func (o *Orchestrator) Delete(ctx context.Context, actorID, targetID string) (*DeletionReport, error) {
	if actorID == targetID {
		return nil, ErrSelfDeletion
	}

	report := &DeletionReport{TenantID: targetID}
	start := time.Now()

	if resolved, err := o.resolveTarget(ctx, targetID, report); err != nil {
		return nil, err
	} else if !resolved {
		return nil, ErrNothingToDelete
	}

	stages := []stage{
		{"blogs", func(ctx context.Context) error { return o.deleteBlogs(ctx, targetID) }, &report.BlogsDeleted},
		{"settings", func(ctx context.Context) error {
			return o.deleteSettingsDoc(ctx, targetID, tenant.SettingsDocSite)
		}, &report.SettingsDeleted},
		{"app settings", func(ctx context.Context) error {
			return o.deleteSettingsDoc(ctx, targetID, tenant.SettingsDocApp)
		}, &report.AppSettingsDeleted},
		{"analytics", func(ctx context.Context) error { return o.deleteAnalytics(ctx, targetID) }, &report.AnalyticsDeleted},
		{"main record", func(ctx context.Context) error { return o.deleteMainRecord(ctx, targetID) }, &report.MainRecordDeleted},
		{"storage", func(ctx context.Context) error { return o.deleteStorage(ctx, targetID) }, &report.StorageDeleted},
		// Identity goes last: the account must outlive its data teardown.
		{"identity", func(ctx context.Context) error { return o.deleteIdentity(ctx, targetID) }, &report.AuthDeleted},
	}

	for _, s := range stages {
		if err := s.run(ctx); err != nil {
			logger.Error("tenant %s: %s stage failed: %v", targetID, s.name, err)
			report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", s.name, err))
			continue
		}
		*s.done = true
	}

	report.Partial = len(report.Errors) > 0
	report.Duration = time.Since(start)
	o.metrics.ObserveRun(report.Duration, report.Partial)

	if report.Partial {
		logger.Warn("tenant %s deleted partially: %d stage(s) failed", targetID, len(report.Errors))
	} else {
		logger.Info("tenant %s deleted in %s", targetID, report.Duration)
	}

	return report, nil
}

// resolveTarget decides whether there is anything to delete. A missing
// identity record alone is not enough to bail out: earlier partial runs can
// leave documents or objects behind after the account is gone, and those
// are exactly what a re-run must reap. Only when identity, main record, and
// storage are all absent does the target count as nonexistent.
func (o *Orchestrator) resolveTarget(ctx context.Context, targetID string, report *DeletionReport) (bool, error) {
	_, err := o.accounts.GetAccount(ctx, targetID)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, identity.ErrAccountNotFound) {
		return false, fmt.Errorf("failed to resolve tenant %s: %w", targetID, err)
	}

	if _, err := o.docs.Get(ctx, tenant.TenantPath(targetID)); err == nil {
		report.Warnings = append(report.Warnings, "identity record already gone; reaping residual data")
		return true, nil
	} else if !errors.Is(err, document.ErrDocumentNotFound) {
		return false, fmt.Errorf("failed to resolve tenant %s: %w", targetID, err)
	}

	// Partial runs can strand subcollections after the main record is gone,
	// including documents nested below a half-deleted blog. A non-empty
	// subcollection anywhere under the tenant document is residual data.
	collections, err := o.docs.ListCollections(ctx, tenant.TenantPath(targetID))
	if err != nil {
		return false, fmt.Errorf("failed to resolve tenant %s: %w", targetID, err)
	}
	if len(collections) > 0 {
		report.Warnings = append(report.Warnings, "identity record already gone; reaping residual data")
		return true, nil
	}

	for _, root := range tenant.StorageRoots(targetID) {
		listing, err := o.objects.ListWithPrefix(ctx, root+"/", "")
		if err != nil {
			return false, fmt.Errorf("failed to resolve tenant %s: %w", targetID, err)
		}
		if len(listing.Objects) > 0 {
			report.Warnings = append(report.Warnings, "identity record already gone; reaping residual data")
			return true, nil
		}
	}

	return false, nil
}

// ============================================================================
// Stages
// ============================================================================

// deleteBlogs removes every blog with its content and products
// subcollections. Each blog's subcollections are emptied before the blog
// document itself goes, so a crash mid-stage never leaves orphaned content
// under a deleted blog.
func (o *Orchestrator) deleteBlogs(ctx context.Context, tenantID string) error {
	for {
		result, err := o.docs.Query(ctx, document.Query{
			Collection: tenant.BlogsPath(tenantID),
			Limit:      o.batchSizeOrDefault(),
		})
		if err != nil {
			return fmt.Errorf("failed to list blogs: %w", err)
		}
		if len(result.Documents) == 0 {
			return nil
		}

		for _, doc := range result.Documents {
			if err := DeleteBlogTree(ctx, o.docs, tenantID, doc.ID(), o.batchSize); err != nil {
				return err
			}
		}
	}
}

// deleteSettingsDoc removes one named settings document. Absent documents
// are success: Store.Delete is idempotent.
func (o *Orchestrator) deleteSettingsDoc(ctx context.Context, tenantID, name string) error {
	if err := o.docs.Delete(ctx, tenant.SettingsPath(tenantID)+"/"+name); err != nil {
		return fmt.Errorf("failed to delete %s settings: %w", name, err)
	}
	return nil
}

// deleteAnalytics removes the tenant's records from the shared visits and
// pageviews collections. These collections are not tenant-scoped, so the
// teardown filters by the owner field instead of deleting by prefix.
func (o *Orchestrator) deleteAnalytics(ctx context.Context, tenantID string) error {
	owned := []document.Filter{{
		Field: tenant.OwnerField,
		Op:    document.OpEqual,
		Value: tenantID,
	}}

	for _, collection := range []string{tenant.VisitsCollection, tenant.PageviewsCollection} {
		if _, err := DeleteMatching(ctx, o.docs, collection, owned, o.batchSize); err != nil {
			return fmt.Errorf("failed to delete %s records: %w", collection, err)
		}
	}
	return nil
}

func (o *Orchestrator) deleteMainRecord(ctx context.Context, tenantID string) error {
	if err := o.docs.Delete(ctx, tenant.TenantPath(tenantID)); err != nil {
		return fmt.Errorf("failed to delete tenant record: %w", err)
	}
	return nil
}

// deleteStorage empties both of the tenant's object-store roots. A partial
// prefix delete fails the stage; the next run picks up the survivors.
func (o *Orchestrator) deleteStorage(ctx context.Context, tenantID string) error {
	for _, root := range tenant.StorageRoots(tenantID) {
		deleted, err := o.objects.DeleteAllWithPrefix(ctx, root+"/")
		if err != nil {
			return fmt.Errorf("failed to delete storage under %s: %w", root, err)
		}
		if deleted > 0 {
			logger.Debug("tenant %s: deleted %d objects under %s", tenantID, deleted, root)
		}
	}
	return nil
}

// deleteIdentity revokes the account. An already-missing account is
// success, which is what makes re-running a partial deletion converge.
func (o *Orchestrator) deleteIdentity(ctx context.Context, tenantID string) error {
	if err := o.accounts.DeleteAccount(ctx, tenantID); err != nil && !errors.Is(err, identity.ErrAccountNotFound) {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

func (o *Orchestrator) batchSizeOrDefault() int {
	if o.batchSize <= 0 || o.batchSize > document.MaxBatchSize {
		return DefaultBatchSize
	}
	return o.batchSize
}
