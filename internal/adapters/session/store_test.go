package session

import (
	"context"
	"errors"
	"testing"

	filestore "github.com/bnema/skilllink-cli/internal/adapters/secrets/file"
	"github.com/bnema/skilllink-cli/internal/domain"
	portmocks "github.com/bnema/skilllink-cli/internal/ports/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadReturnsEmptySessionWhenNothingPersisted(t *testing.T) {
	t.Parallel()

	store := NewStore(filestore.NewStore(t.TempDir()))

	current, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, current.Authenticated())
	assert.False(t, current.CanRefresh())
}

func TestStoreSetTokensPersistsAcrossInstances(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	first := NewStore(filestore.NewStore(root))
	require.NoError(t, first.SetTokens(context.Background(), domain.Session{AccessToken: "abc", RefreshToken: "valid-refresh"}))

	second := NewStore(filestore.NewStore(root))
	access, err := second.AccessToken(context.Background())
	require.NoError(t, err)
	refresh, err := second.RefreshToken(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "abc", access)
	assert.Equal(t, "valid-refresh", refresh)
}

func TestStoreSetAccessTokenKeepsRefreshToken(t *testing.T) {
	t.Parallel()

	store := NewStore(filestore.NewStore(t.TempDir()))
	require.NoError(t, store.SetTokens(context.Background(), domain.Session{AccessToken: "expired", RefreshToken: "valid-refresh"}))

	require.NoError(t, store.SetAccessToken(context.Background(), "new"))

	current, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Session{AccessToken: "new", RefreshToken: "valid-refresh"}, current)
}

func TestStoreClearTokensRemovesBothKeys(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	store := NewStore(filestore.NewStore(root))
	require.NoError(t, store.SetTokens(context.Background(), domain.Session{AccessToken: "abc", RefreshToken: "def"}))

	require.NoError(t, store.ClearTokens(context.Background()))

	reloaded := NewStore(filestore.NewStore(root))
	current, err := reloaded.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Session{}, current)
}

func TestStoreWatchersSeeEveryChangeUntilCancelled(t *testing.T) {
	t.Parallel()

	store := NewStore(filestore.NewStore(t.TempDir()))
	var seen []string
	cancel := store.Watch(func(current domain.Session) {
		seen = append(seen, current.AccessToken)
	})

	require.NoError(t, store.SetTokens(context.Background(), domain.Session{AccessToken: "t1", RefreshToken: "r1"}))
	require.NoError(t, store.SetAccessToken(context.Background(), "t2"))
	require.NoError(t, store.ClearTokens(context.Background()))
	cancel()
	require.NoError(t, store.SetTokens(context.Background(), domain.Session{AccessToken: "t3"}))

	assert.Equal(t, []string{"t1", "t2", ""}, seen)
}

func TestStoreLoadPropagatesBackendFailures(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)
	secrets.EXPECT().Get(mock.Anything, AccessTokenKey).Return("", errors.New("gpg agent locked")).Once()

	store := NewStore(secrets)
	_, err := store.Load(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "load skilllink/token")
}

func TestStoreClearTokensStillResetsCacheWhenDeleteFails(t *testing.T) {
	t.Parallel()

	secrets := portmocks.NewMockSecretStore(t)
	secrets.EXPECT().Put(mock.Anything, AccessTokenKey, "abc").Return(nil).Once()
	secrets.EXPECT().Put(mock.Anything, RefreshTokenKey, "def").Return(nil).Once()
	secrets.EXPECT().Delete(mock.Anything, AccessTokenKey).Return(errors.New("read-only fs")).Once()
	secrets.EXPECT().Delete(mock.Anything, RefreshTokenKey).Return(nil).Once()

	store := NewStore(secrets)
	require.NoError(t, store.SetTokens(context.Background(), domain.Session{AccessToken: "abc", RefreshToken: "def"}))

	err := store.ClearTokens(context.Background())
	require.Error(t, err)

	current, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.False(t, current.Authenticated())
}
