package auth

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/basewire/basewire-go/pkg/basewire"
)

func TestFileStore_SaveLoadClear(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "credential.json")
	store := NewFileStore(path)

	// Missing file is not an error.
	cred, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)

	saved := &Credential{
		Token: makeToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
		Record: &basewire.Record{
			ID:             "usr1",
			CollectionName: "users",
			Data:           map[string]any{"email": "ann@example.com"},
		},
	}
	require.NoError(t, store.Save(saved))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, saved.Token, loaded.Token)
	require.NotNil(t, loaded.Record)
	assert.Equal(t, "usr1", loaded.Record.ID)
	assert.Equal(t, "ann@example.com", loaded.Record.GetString("email"))

	require.NoError(t, store.Clear())

	cred, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)

	// Clearing twice is fine.
	require.NoError(t, store.Clear())
}

func TestFileStore_CorruptFile(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credential.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStore(path).Load()
	require.Error(t, err)
}

func TestNoopStore(t *testing.T) {
	t.Parallel()

	store := NoopStore{}

	cred, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, store.Save(&Credential{Token: "x"}))

	// Nothing sticks.
	cred, err = store.Load()
	require.NoError(t, err)
	assert.Nil(t, cred)

	require.NoError(t, store.Clear())
}

func TestNewSession_RestoresPersistedCredential(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credential.json")
	store := NewFileStore(path)

	cred := &Credential{
		Token: makeToken(t, jwt.MapClaims{"exp": time.Now().Add(time.Hour).Unix()}),
	}
	require.NoError(t, store.Save(cred))

	session, err := NewSession(NewFileStore(path))
	require.NoError(t, err)

	assert.Equal(t, StateAuthenticated, session.State())
	assert.Equal(t, cred.Token, session.Token())
}

func TestNewSession_RestoresExpiredCredential(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "credential.json")
	store := NewFileStore(path)

	cred := &Credential{
		Token: makeToken(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()}),
	}
	require.NoError(t, store.Save(cred))

	session, err := NewSession(NewFileStore(path))
	require.NoError(t, err)

	// The token is still held so a refresh can present it, but the session
	// starts out expired.
	assert.Equal(t, StateExpired, session.State())
	assert.Equal(t, cred.Token, session.Token())
	assert.False(t, session.IsValid())
}
