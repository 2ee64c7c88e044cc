package pass

import (
	"context"
	"errors"
	"testing"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStorePutUsesPassInsert(t *testing.T) {
	t.Parallel()

	called := false
	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			called = true
			assert.Equal(t, context.Background(), ctx)
			assert.Equal(t, []string{"insert", "-m", "-f", "skilllink/token"}, args)
			assert.Equal(t, "access-abc\n", input)
			return "", "", nil
		},
	}

	err := store.Put(context.Background(), "skilllink/token", "access-abc")
	require.NoError(t, err)
	assert.True(t, called)
}

func TestStoreGetUsesPassShowAndTrimsTrailingNewline(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"show", "skilllink/refreshToken"}, args)
			assert.Empty(t, input)
			return "refresh-xyz\n", "", nil
		},
	}

	value, err := store.Get(context.Background(), "skilllink/refreshToken")
	require.NoError(t, err)
	assert.Equal(t, "refresh-xyz", value)
}

func TestStoreGetMapsMissingEntryToSecretNotFound(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: skilllink/token is not in the password store.", errors.New("exit status 1")
		},
	}

	_, err := store.Get(context.Background(), "skilllink/token")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrSecretNotFound)
}

func TestStoreDeleteUsesPassRemove(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			assert.Equal(t, []string{"rm", "-f", "skilllink/token"}, args)
			assert.Empty(t, input)
			return "", "", nil
		},
	}

	require.NoError(t, store.Delete(context.Background(), "skilllink/token"))
}

func TestStoreDeleteIgnoresMissingEntry(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "Error: skilllink/token is not in the password store.", errors.New("exit status 1")
		},
	}

	require.NoError(t, store.Delete(context.Background(), "skilllink/token"))
}

func TestStoreGetReturnsClearError(t *testing.T) {
	t.Parallel()

	store := &Store{
		run: func(ctx context.Context, input string, args ...string) (string, string, error) {
			return "", "gpg: decryption failed", errors.New("exit status 2")
		},
	}

	_, err := store.Get(context.Background(), "skilllink/token")
	require.Error(t, err)
	assert.ErrorContains(t, err, "pass get")
	assert.ErrorContains(t, err, "skilllink/token")
	assert.ErrorContains(t, err, "decryption failed")
	assert.NotErrorIs(t, err, domain.ErrSecretNotFound)
}
