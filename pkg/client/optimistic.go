package client

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// EditStatus tracks a pending local mutation through reconciliation.
type EditStatus int

const (
	EditPending EditStatus = iota
	EditConfirmed
	EditReconciling
	EditFailed
)

// OptimisticEdit records one in-flight removal: the target id, the
// pre-mutation snapshot for rollback, and where the edit stands.
type OptimisticEdit struct {
	ID       string
	Snapshot []SiteSummary
	Status   EditStatus
}

// RemoveOutcome is the single terminal UI state of a removal. Every
// invocation of Remove reaches exactly one of these; the list is
// never left in the unconfirmed optimistic state.
type RemoveOutcome int

const (
	// RemoveSucceeded: the deletion was confirmed, or reconciliation
	// proved it happened despite the error.
	RemoveSucceeded RemoveOutcome = iota
	// RemoveFailedRestored: the deletion did not happen; the row was
	// restored from the authoritative list.
	RemoveFailedRestored
	// RemoveFailedResynced: the reconciliation fetch itself failed;
	// the list was refreshed from scratch.
	RemoveFailedResynced
)

// SiteList owns the rendered list state for the director's sites page
// and applies the optimistic removal protocol to deletions. A timeout
// on DELETE does not say whether the server applied it, so an error
// never rolls back blindly: the authoritative list decides.
type SiteList struct {
	client       *Client
	reloadPolicy RetryPolicy
	logger       *zap.Logger

	mu       sync.Mutex
	sites    []SiteSummary
	lastEdit *OptimisticEdit

	// schedule runs the post-success background refresh; replaced in
	// tests to run inline.
	schedule func(func())
}

// NewSiteList builds the controller. The reload policy applies to
// full refreshes, which happen right after navigation and may hit a
// cold backend.
func NewSiteList(c *Client, reloadPolicy RetryPolicy, logger *zap.Logger) *SiteList {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SiteList{
		client:       c,
		reloadPolicy: reloadPolicy,
		logger:       logger,
		schedule:     func(fn func()) { go fn() },
	}
}

// Load refreshes the list from the authoritative source.
func (l *SiteList) Load(ctx context.Context) error {
	sites, err := l.client.sites(ctx, l.reloadPolicy)
	if err != nil {
		return err
	}
	l.mu.Lock()
	l.sites = sites
	l.mu.Unlock()
	return nil
}

// Sites returns a copy of the rendered list.
func (l *SiteList) Sites() []SiteSummary {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]SiteSummary, len(l.sites))
	copy(out, l.sites)
	return out
}

// Filter returns the rendered sites matching the query by name,
// case-insensitively.
func (l *SiteList) Filter(query string) []SiteSummary {
	return FilterSites(l.Sites(), query)
}

// LastEdit exposes the most recent removal's reconciliation record.
func (l *SiteList) LastEdit() *OptimisticEdit {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastEdit
}

// Remove deletes a site optimistically: the row disappears before the
// server confirms. On an ambiguous error the authoritative list is
// re-fetched to decide whether the deletion in fact happened.
func (l *SiteList) Remove(ctx context.Context, id string) (RemoveOutcome, error) {
	l.mu.Lock()
	snapshot := make([]SiteSummary, len(l.sites))
	copy(snapshot, l.sites)
	edit := &OptimisticEdit{ID: id, Snapshot: snapshot, Status: EditPending}
	l.lastEdit = edit
	l.sites = withoutSite(l.sites, id)
	l.mu.Unlock()

	err := l.client.DeleteSite(ctx, id)
	if err == nil {
		l.setStatus(edit, EditConfirmed)
		l.schedule(func() {
			// best-effort; the optimistic state already reflects intent
			if refreshErr := l.Load(context.Background()); refreshErr != nil {
				l.logger.Debug("background refresh after delete failed", zap.Error(refreshErr))
			}
		})
		return RemoveSucceeded, nil
	}

	// The response was lost, but the server may have applied the
	// delete before the failure. Ask the authoritative list.
	l.setStatus(edit, EditReconciling)
	authoritative, listErr := l.client.Sites(ctx)
	if listErr != nil {
		l.setStatus(edit, EditFailed)
		if reloadErr := l.Load(ctx); reloadErr != nil {
			l.logger.Warn("full resync after failed reconciliation also failed", zap.Error(reloadErr))
		}
		return RemoveFailedResynced, err
	}

	l.mu.Lock()
	l.sites = authoritative
	l.mu.Unlock()

	if containsSite(authoritative, id) {
		l.setStatus(edit, EditFailed)
		return RemoveFailedRestored, err
	}

	// the deletion in fact occurred despite the error
	l.setStatus(edit, EditConfirmed)
	return RemoveSucceeded, nil
}

func (l *SiteList) setStatus(edit *OptimisticEdit, status EditStatus) {
	l.mu.Lock()
	edit.Status = status
	l.mu.Unlock()
}

func withoutSite(sites []SiteSummary, id string) []SiteSummary {
	out := make([]SiteSummary, 0, len(sites))
	for _, site := range sites {
		if site.ID != id {
			out = append(out, site)
		}
	}
	return out
}

func containsSite(sites []SiteSummary, id string) bool {
	for _, site := range sites {
		if site.ID == id {
			return true
		}
	}
	return false
}
