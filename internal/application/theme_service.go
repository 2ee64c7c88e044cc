package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

// ThemeService resolves the active theme: the stored preference when set,
// otherwise whatever detect reports for the terminal.
type ThemeService struct {
	repo   ports.PreferencesRepository
	detect func() domain.Theme
	clock  ports.Clock

	mu      sync.Mutex
	current domain.Theme
}

func NewThemeService(repo ports.PreferencesRepository, detect func() domain.Theme, clock ports.Clock) *ThemeService {
	if detect == nil {
		detect = func() domain.Theme { return domain.ThemeDark }
	}
	if clock == nil {
		clock = ports.SystemClock{}
	}

	return &ThemeService{repo: repo, detect: detect, clock: clock}
}

func (s *ThemeService) Current(ctx context.Context) (domain.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current != "" {
		return s.current, nil
	}

	prefs, err := s.repo.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("load theme preference: %w", err)
	}

	s.current = prefs.Theme
	if s.current == "" {
		s.current = s.detect()
	}
	return s.current, nil
}

func (s *ThemeService) Set(ctx context.Context, theme domain.Theme) error {
	theme, err := domain.ParseTheme(string(theme))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.saveLocked(ctx, theme)
}

func (s *ThemeService) Toggle(ctx context.Context) (domain.Theme, error) {
	current, err := s.Current(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := current.Toggle()
	if err := s.saveLocked(ctx, next); err != nil {
		return "", err
	}
	return next, nil
}

func (s *ThemeService) saveLocked(ctx context.Context, theme domain.Theme) error {
	prefs, err := s.repo.Get(ctx)
	if err != nil {
		return fmt.Errorf("load theme preference: %w", err)
	}

	prefs.Theme = theme
	prefs.UpdatedAt = s.clock.Now()
	if err := s.repo.Save(ctx, prefs); err != nil {
		return fmt.Errorf("save theme preference: %w", err)
	}

	s.current = theme
	return nil
}
