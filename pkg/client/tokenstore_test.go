package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileTokenStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token")
	store, err := NewFileTokenStore(path)
	require.NoError(t, err)

	_, present := store.Get()
	assert.False(t, present, "fresh profile has no credential")

	require.NoError(t, store.Set("bearer-abc"))

	// a second store at the same path sees the persisted value
	reopened, err := NewFileTokenStore(path)
	require.NoError(t, err)
	token, present := reopened.Get()
	require.True(t, present)
	assert.Equal(t, "bearer-abc", token)

	require.NoError(t, store.Clear())
	_, present = reopened.Get()
	assert.False(t, present)

	// clearing an already absent credential is not an error
	require.NoError(t, store.Clear())
}
