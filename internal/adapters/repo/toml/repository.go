package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/bnema/skilllink-cli/internal/config"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
)

const (
	preferencesFileMode = 0o600
	preferencesDirMode  = 0o700
	tempFilePattern     = ".preferences-*.toml.tmp"
)

// Repository keeps UI preferences in a small TOML file, separate from the
// session secrets.
type Repository struct {
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

var _ ports.PreferencesRepository = (*Repository)(nil)

// NewRepository resolves the file from the preferences.path key of cfg.
func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	path := cfg.GetString(config.KeyPreferencesPath)
	if path == "" {
		dir, err := config.Dir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(dir, "preferences.toml")
	}

	return NewRepositoryAt(path)
}

func NewRepositoryAt(path string) (*Repository, error) {
	if path == "" {
		return nil, errors.New("preferences path is empty")
	}

	path, err := normalizePath(path)
	if err != nil {
		return nil, err
	}

	return &Repository{path: path, mu: lockForPath(path)}, nil
}

func (r *Repository) Path() string {
	return r.path
}

// Get returns the stored preferences. A missing file yields zero values and
// an unknown theme is treated as unset.
func (r *Repository) Get(ctx context.Context) (domain.Preferences, error) {
	if err := ctx.Err(); err != nil {
		return domain.Preferences{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	file, err := r.readSchema()
	if err != nil {
		return domain.Preferences{}, err
	}

	return fromSchema(file), nil
}

func (r *Repository) Save(ctx context.Context, prefs domain.Preferences) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	file.UI.Theme = string(prefs.Theme)
	file.UI.UpdatedAt = formatTime(prefs.UpdatedAt)
	file.Session.LastEmail = prefs.LastEmail

	if err := ctx.Err(); err != nil {
		return err
	}

	return r.writeSchema(file)
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			file := fileSchema{}
			file.applyDefaults()
			return file, nil
		}
		return fileSchema{}, fmt.Errorf("read preferences file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode preferences file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), preferencesDirMode); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode preferences file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp preferences file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp preferences file: %w", err)
	}

	if err := tempFile.Chmod(preferencesFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp preferences file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp preferences file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace preferences file: %w", err)
	}

	cleanup = false
	return nil
}

func fromSchema(file fileSchema) domain.Preferences {
	prefs := domain.Preferences{
		LastEmail: file.Session.LastEmail,
		UpdatedAt: parseTime(file.UI.UpdatedAt),
	}
	if theme, err := domain.ParseTheme(file.UI.Theme); err == nil {
		prefs.Theme = theme
	}

	return prefs
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve preferences path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}

func parseTime(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}

	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}

	return parsed
}

func formatTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}

	return value.UTC().Format(time.RFC3339)
}
