package toml

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bnema/skilllink-cli/internal/config"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T, path string) *Repository {
	t.Helper()

	cfg := viper.New()
	cfg.Set(config.KeyPreferencesPath, path)

	repo, err := NewRepository(cfg)
	require.NoError(t, err)
	return repo
}

func TestRepositoryRoundTrip(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "preferences.toml"))
	prefs := domain.Preferences{
		Theme:     domain.ThemeLight,
		LastEmail: "client@skilllink.test",
		UpdatedAt: time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC),
	}

	require.NoError(t, repo.Save(context.Background(), prefs))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, prefs, got)
}

func TestRepositoryMissingFileReturnsZeroPreferences(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "missing", "preferences.toml"))

	got, err := repo.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Preferences{}, got)
}

func TestRepositoryUnknownThemeIsUnset(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	require.NoError(t, os.WriteFile(path, []byte(strings.Join([]string{
		"version = 1",
		"",
		"[ui]",
		"theme = \"solarized\"",
		"",
	}, "\n")), 0o600))

	got, err := newTestRepository(t, path).Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.Theme(""), got.Theme)
}

func TestRepositorySaveCreatesDirectoryAndEnforcesPermissions(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "preferences.toml")
	repo := newTestRepository(t, path)

	require.NoError(t, repo.Save(context.Background(), domain.Preferences{Theme: domain.ThemeDark}))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "version = 1")
	assert.Contains(t, string(data), "theme = 'dark'")
}

func TestRepositoryDefaultsUnderConfigDir(t *testing.T) {
	configHome := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", configHome)

	repo, err := NewRepository(nil)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(configHome, "skilllink", "preferences.toml"), repo.Path())
}

func TestRepositoryMalformedTOMLReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	require.NoError(t, os.WriteFile(path, []byte("ui = ["), 0o600))

	_, err := newTestRepository(t, path).Get(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "decode preferences file")
}

func TestRepositoryFutureSchemaVersionReturnsError(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	require.NoError(t, os.WriteFile(path, []byte("version = 999\n"), 0o600))

	_, err := newTestRepository(t, path).Get(context.Background())
	require.Error(t, err)
	assert.ErrorContains(t, err, "unsupported preferences schema version")
}

func TestRepositorySaveCanceledContextReturnsContextError(t *testing.T) {
	t.Parallel()

	repo := newTestRepository(t, filepath.Join(t.TempDir(), "preferences.toml"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := repo.Save(ctx, domain.Preferences{Theme: domain.ThemeDark})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRepositoryConcurrentSavesAcrossInstances(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "preferences.toml")
	repoA := newTestRepository(t, path)
	repoB := newTestRepository(t, path)

	const perRepoWrites = 50
	start := make(chan struct{})
	errCh := make(chan error, perRepoWrites*2)
	var wg sync.WaitGroup
	wg.Add(2)

	write := func(repo *Repository, theme domain.Theme) {
		defer wg.Done()
		<-start
		for i := 0; i < perRepoWrites; i++ {
			errCh <- repo.Save(context.Background(), domain.Preferences{Theme: theme})
		}
	}
	go write(repoA, domain.ThemeDark)
	go write(repoB, domain.ThemeLight)

	close(start)
	wg.Wait()
	close(errCh)

	for err := range errCh {
		require.NoError(t, err)
	}

	got, err := repoA.Get(context.Background())
	require.NoError(t, err)
	assert.Contains(t, []domain.Theme{domain.ThemeDark, domain.ThemeLight}, got.Theme)
}
