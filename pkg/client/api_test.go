package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFilterSites(t *testing.T) {
	sites := []SiteSummary{
		{ID: "1", Name: "Alpha"},
		{ID: "2", Name: "Beta"},
	}

	filtered := FilterSites(sites, "alp")
	require.Len(t, filtered, 1)
	assert.Equal(t, "1", filtered[0].ID)

	assert.Len(t, FilterSites(sites, "A"), 2, "matches Alpha and Beta case-insensitively")
	assert.Empty(t, FilterSites(sites, "gamma"))
	assert.Equal(t, sites, FilterSites(sites, ""))
}

func TestLoginStoresToken(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "fresh-token"})
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	c := New(srv.URL, store)

	require.NoError(t, c.Login(context.Background(), "dana@example.com", "pw"))
	assert.Equal(t, "dana@example.com", body["email"])

	token, present := store.Get()
	require.True(t, present)
	assert.Equal(t, "fresh-token", token)
}

func TestLoginWithPhoneIdentifier(t *testing.T) {
	var body map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		json.NewEncoder(w).Encode(map[string]string{"access_token": "t"})
	}))
	defer srv.Close()

	c := New(srv.URL, &MemoryTokenStore{})
	require.NoError(t, c.Login(context.Background(), "0501234567", "pw"))
	assert.Equal(t, "0501234567", body["phone"])
	assert.Empty(t, body["email"])
}

func TestLoginFailureDoesNotStoreToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid credentials"}`))
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	c := New(srv.URL, store)

	err := c.Login(context.Background(), "dana@example.com", "wrong")
	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "invalid credentials", httpErr.Detail)

	_, present := store.Get()
	assert.False(t, present)
}

func TestSiteInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/public/sites/s-1/info", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":   "s-1",
			"name": "Harbor Cafe",
			"shifts": []map[string]any{
				{"day": "sunday", "start": "08:00", "end": "16:00", "capacity": 2},
			},
		})
	}))
	defer srv.Close()

	c := New(srv.URL, &MemoryTokenStore{})
	info, err := c.SiteInfo(context.Background(), "s-1")
	require.NoError(t, err)
	assert.Equal(t, "Harbor Cafe", info.Name)
	require.Len(t, info.Shifts, 1)
	assert.Equal(t, "sunday", info.Shifts[0].Day)
}
