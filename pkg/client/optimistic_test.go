package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sitesBackend is a minimal director API: it serves the current site
// set and lets tests shape how DELETE behaves.
type sitesBackend struct {
	mu       sync.Mutex
	sites    []SiteSummary
	onDelete func(b *sitesBackend, id string, w http.ResponseWriter)
	failList bool
}

func (b *sitesBackend) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/director/sites/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			b.mu.Lock()
			defer b.mu.Unlock()
			if b.failList {
				dropConnection(w)
				return
			}
			json.NewEncoder(w).Encode(b.sites)
		case http.MethodDelete:
			id := r.URL.Path[len("/director/sites/"):]
			b.onDelete(b, id, w)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	return mux
}

func (b *sitesBackend) drop(id string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sites = withoutSite(b.sites, id)
}

func twoSites() []SiteSummary {
	return []SiteSummary{
		{ID: "1", Name: "Alpha", WorkersCount: 4},
		{ID: "5", Name: "Echo", WorkersCount: 2},
	}
}

func newSiteListForTest(t *testing.T, backend *sitesBackend) (*SiteList, func()) {
	t.Helper()
	srv := httptest.NewServer(backend.handler())
	c := New(srv.URL, &MemoryTokenStore{})
	list := NewSiteList(c, RetryPolicy{}, nil)
	list.schedule = func(fn func()) { fn() }
	require.NoError(t, list.Load(context.Background()))
	return list, srv.Close
}

func TestRemoveConfirmedSuccess(t *testing.T) {
	backend := &sitesBackend{
		sites: twoSites(),
		onDelete: func(b *sitesBackend, id string, w http.ResponseWriter) {
			b.drop(id)
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		},
	}
	list, closeSrv := newSiteListForTest(t, backend)
	defer closeSrv()

	outcome, err := list.Remove(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, RemoveSucceeded, outcome)
	assert.Equal(t, EditConfirmed, list.LastEdit().Status)
	assert.False(t, containsSite(list.Sites(), "5"))
}

func TestRemoveAmbiguousErrorButDeletionHappened(t *testing.T) {
	backend := &sitesBackend{
		sites: twoSites(),
		onDelete: func(b *sitesBackend, id string, w http.ResponseWriter) {
			// the server applies the delete, then the response is lost
			b.drop(id)
			dropConnection(w)
		},
	}
	list, closeSrv := newSiteListForTest(t, backend)
	defer closeSrv()

	outcome, err := list.Remove(context.Background(), "5")
	require.NoError(t, err)
	assert.Equal(t, RemoveSucceeded, outcome, "the authoritative list proves the deletion occurred")
	assert.Equal(t, EditConfirmed, list.LastEdit().Status)
	assert.False(t, containsSite(list.Sites(), "5"))
}

func TestRemoveAmbiguousErrorAndDeletionDidNotHappen(t *testing.T) {
	backend := &sitesBackend{
		sites: twoSites(),
		onDelete: func(b *sitesBackend, id string, w http.ResponseWriter) {
			// the request is lost before the server applies anything
			dropConnection(w)
		},
	}
	list, closeSrv := newSiteListForTest(t, backend)
	defer closeSrv()

	outcome, err := list.Remove(context.Background(), "5")
	require.Error(t, err)
	assert.Equal(t, RemoveFailedRestored, outcome)
	assert.Equal(t, EditFailed, list.LastEdit().Status)
	assert.True(t, containsSite(list.Sites(), "5"), "the optimistically removed row is restored")
}

func TestRemoveServerErrorReconciles(t *testing.T) {
	backend := &sitesBackend{
		sites: twoSites(),
		onDelete: func(b *sitesBackend, id string, w http.ResponseWriter) {
			w.WriteHeader(http.StatusInternalServerError)
			w.Write([]byte(`{"detail":"constraint violation"}`))
		},
	}
	list, closeSrv := newSiteListForTest(t, backend)
	defer closeSrv()

	outcome, err := list.Remove(context.Background(), "5")
	require.Error(t, err)
	assert.Equal(t, RemoveFailedRestored, outcome)
	assert.True(t, containsSite(list.Sites(), "5"))
}

func TestRemoveReconciliationFetchFails(t *testing.T) {
	backend := &sitesBackend{
		sites: twoSites(),
		onDelete: func(b *sitesBackend, id string, w http.ResponseWriter) {
			b.mu.Lock()
			b.failList = true
			b.mu.Unlock()
			dropConnection(w)
		},
	}
	list, closeSrv := newSiteListForTest(t, backend)
	defer closeSrv()

	outcome, err := list.Remove(context.Background(), "5")
	require.Error(t, err)
	assert.Equal(t, RemoveFailedResynced, outcome)
	assert.Equal(t, EditFailed, list.LastEdit().Status)
}

func TestRemoveReachesExactlyOneTerminalState(t *testing.T) {
	backend := &sitesBackend{
		sites: twoSites(),
		onDelete: func(b *sitesBackend, id string, w http.ResponseWriter) {
			b.drop(id)
			json.NewEncoder(w).Encode(map[string]bool{"ok": true})
		},
	}
	list, closeSrv := newSiteListForTest(t, backend)
	defer closeSrv()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	_, err := list.Remove(ctx, "1")
	require.NoError(t, err)

	status := list.LastEdit().Status
	assert.True(t, status == EditConfirmed || status == EditFailed,
		"no invocation leaves the list in the unconfirmed optimistic state")
}
