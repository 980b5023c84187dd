package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joey603/sidour-avoda/internal/domain"
)

func quickRetry() RetryPolicy {
	return RetryPolicy{
		AttemptTimeout: time.Second,
		TotalDeadline:  2 * time.Second,
		InitialBackoff: 10 * time.Millisecond,
		MaxBackoff:     20 * time.Millisecond,
	}
}

func TestResolveIdentityWithoutTokenSkipsNetwork(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	resolver := NewSessionResolver(New(srv.URL, &MemoryTokenStore{}), quickRetry(), nil)

	identity, err := resolver.ResolveIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
	assert.Equal(t, int32(0), calls.Load(), "absent credential must not hit the network")
}

func TestResolveIdentityExpiredTokenClearedLocally(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	expired := signToken(t, jwt.MapClaims{"role": "worker", "exp": time.Now().Add(-time.Hour).Unix()})
	require.NoError(t, store.Set(expired))

	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	identity, err := resolver.ResolveIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)
	assert.Equal(t, int32(0), calls.Load())

	_, present := store.Get()
	assert.False(t, present, "a token judged expired is cleared")
}

func TestResolveIdentitySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/me", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]any{
			"id":            "u-1",
			"full_name":     "Dana Director",
			"role":          "director",
			"director_code": "AB12CD34",
		})
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	require.NoError(t, store.Set("opaque-token"))

	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	identity, err := resolver.ResolveIdentity(context.Background())
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, "Dana Director", identity.FullName)
	assert.Equal(t, domain.RoleDirector, identity.Role)
	assert.Equal(t, "AB12CD34", identity.DirectorCode)
}

func TestResolveIdentityUnauthorized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	require.NoError(t, store.Set("rejected"))

	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	identity, err := resolver.ResolveIdentity(context.Background())
	require.NoError(t, err)
	assert.Nil(t, identity)

	_, present := store.Get()
	assert.False(t, present)
}

func TestResolveIdentityTransientFailureKeepsToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	addr := srv.URL
	srv.Close()

	store := &MemoryTokenStore{}
	require.NoError(t, store.Set("still-good"))

	policy := RetryPolicy{
		AttemptTimeout: 100 * time.Millisecond,
		TotalDeadline:  200 * time.Millisecond,
		InitialBackoff: 20 * time.Millisecond,
	}
	resolver := NewSessionResolver(New(addr, store), policy, nil)

	identity, err := resolver.ResolveIdentity(context.Background())
	assert.Nil(t, identity)
	require.Error(t, err)

	token, present := store.Get()
	assert.True(t, present, "a transient failure must not log the user out")
	assert.Equal(t, "still-good", token)
}

func TestGuardForRedirectsToLoginWhenAbsent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()

	resolver := NewSessionResolver(New(srv.URL, &MemoryTokenStore{}), quickRetry(), nil)

	result := resolver.GuardFor(context.Background(), domain.RoleDirector, "/director/sites")
	assert.Equal(t, GuardRedirectLogin, result.Action)
	assert.Equal(t, "/login/director", result.Path)
	assert.Equal(t, "/director/sites", result.ReturnTo, "original path preserved as return target")
	assert.Nil(t, result.Identity)
}

func TestGuardForRedirectsHomeOnRoleMismatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "u-2", "full_name": "Wally Worker", "role": "worker"})
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	require.NoError(t, store.Set("worker-token"))

	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	result := resolver.GuardFor(context.Background(), domain.RoleDirector, "/director/sites")
	assert.Equal(t, GuardRedirectHome, result.Action)
	assert.Equal(t, "/worker", result.Path, "redirect to the home of the role the identity actually has")
	require.NotNil(t, result.Identity)
	assert.Equal(t, domain.RoleWorker, result.Identity.Role)
}

func TestGuardForRendersOnMatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "u-3", "full_name": "Dana", "role": "director"})
	}))
	defer srv.Close()

	store := &MemoryTokenStore{}
	require.NoError(t, store.Set("director-token"))

	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	result := resolver.GuardFor(context.Background(), domain.RoleDirector, "/director/sites")
	assert.Equal(t, GuardRender, result.Action)
	require.NotNil(t, result.Identity)
	assert.Equal(t, "Dana", result.Identity.FullName)
}

func TestLoginAsRejectsRoleMismatch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "worker-token"})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "u-4", "full_name": "Wally", "role": "worker"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryTokenStore{}
	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	identity, err := resolver.LoginAs(context.Background(), "wally@example.com", "pw", domain.RoleDirector)
	assert.Nil(t, identity, "worker credentials never become a director session")

	var mismatch *RoleMismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, domain.RoleWorker, mismatch.Actual)
	assert.Equal(t, domain.RoleDirector, mismatch.Required)
}

func TestLoginAsSuccess(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/auth/login", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"access_token": "director-token"})
	})
	mux.HandleFunc("/me", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{"id": "u-5", "full_name": "Dana", "role": "director", "director_code": "ZZ99"})
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	store := &MemoryTokenStore{}
	resolver := NewSessionResolver(New(srv.URL, store), quickRetry(), nil)

	identity, err := resolver.LoginAs(context.Background(), "dana@example.com", "pw", domain.RoleDirector)
	require.NoError(t, err)
	require.NotNil(t, identity)
	assert.Equal(t, "ZZ99", identity.DirectorCode)

	token, present := store.Get()
	assert.True(t, present)
	assert.Equal(t, "director-token", token)
}
