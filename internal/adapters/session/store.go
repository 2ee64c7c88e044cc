package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

const (
	AccessTokenKey  = "skilllink/token"
	RefreshTokenKey = "skilllink/refreshToken"
)

// Store is the process-wide session. It caches the persisted tokens after
// the first load and tells watchers about every change.
type Store struct {
	secrets ports.SecretStore

	mu      sync.RWMutex
	current domain.Session
	loaded  bool

	watchMu  sync.Mutex
	watchers map[int]func(domain.Session)
	nextID   int
}

var (
	_ ports.SessionStore   = (*Store)(nil)
	_ ports.SessionWatcher = (*Store)(nil)
)

func NewStore(secrets ports.SecretStore) *Store {
	return &Store{
		secrets:  secrets,
		watchers: map[int]func(domain.Session){},
	}
}

func (s *Store) Load(ctx context.Context) (domain.Session, error) {
	s.mu.RLock()
	if s.loaded {
		current := s.current
		s.mu.RUnlock()
		return current, nil
	}
	s.mu.RUnlock()

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loaded {
		return s.current, nil
	}

	access, err := s.read(ctx, AccessTokenKey)
	if err != nil {
		return domain.Session{}, err
	}
	refresh, err := s.read(ctx, RefreshTokenKey)
	if err != nil {
		return domain.Session{}, err
	}

	s.current = domain.Session{AccessToken: access, RefreshToken: refresh}
	s.loaded = true
	return s.current, nil
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return current.AccessToken, nil
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	current, err := s.Load(ctx)
	if err != nil {
		return "", err
	}
	return current.RefreshToken, nil
}

func (s *Store) SetTokens(ctx context.Context, next domain.Session) error {
	s.mu.Lock()
	if err := s.write(ctx, AccessTokenKey, next.AccessToken); err != nil {
		s.mu.Unlock()
		return err
	}
	if err := s.write(ctx, RefreshTokenKey, next.RefreshToken); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current = next
	s.loaded = true
	s.mu.Unlock()

	s.notify(next)
	return nil
}

func (s *Store) SetAccessToken(ctx context.Context, accessToken string) error {
	if _, err := s.Load(ctx); err != nil {
		return err
	}

	s.mu.Lock()
	if err := s.write(ctx, AccessTokenKey, accessToken); err != nil {
		s.mu.Unlock()
		return err
	}
	s.current.AccessToken = accessToken
	next := s.current
	s.mu.Unlock()

	s.notify(next)
	return nil
}

func (s *Store) ClearTokens(ctx context.Context) error {
	s.mu.Lock()
	var errs error
	for _, key := range []string{AccessTokenKey, RefreshTokenKey} {
		if err := s.secrets.Delete(ctx, key); err != nil {
			errs = errors.Join(errs, fmt.Errorf("clear %s: %w", key, err))
		}
	}
	s.current = domain.Session{}
	s.loaded = true
	s.mu.Unlock()

	s.notify(domain.Session{})
	return errs
}

// Watch registers fn for every session change. Calls happen on the
// goroutine that mutated the session, after the store lock is released.
func (s *Store) Watch(fn func(domain.Session)) func() {
	s.watchMu.Lock()
	defer s.watchMu.Unlock()

	id := s.nextID
	s.nextID++
	s.watchers[id] = fn

	return func() {
		s.watchMu.Lock()
		defer s.watchMu.Unlock()
		delete(s.watchers, id)
	}
}

func (s *Store) notify(current domain.Session) {
	s.watchMu.Lock()
	ids := make([]int, 0, len(s.watchers))
	for id := range s.watchers {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	fns := make([]func(domain.Session), 0, len(ids))
	for _, id := range ids {
		fns = append(fns, s.watchers[id])
	}
	s.watchMu.Unlock()

	for _, fn := range fns {
		fn(current)
	}
}

func (s *Store) read(ctx context.Context, key string) (string, error) {
	value, err := s.secrets.Get(ctx, key)
	if err != nil {
		if errors.Is(err, domain.ErrSecretNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return value, nil
}

func (s *Store) write(ctx context.Context, key, value string) error {
	if value == "" {
		if err := s.secrets.Delete(ctx, key); err != nil {
			return fmt.Errorf("clear %s: %w", key, err)
		}
		return nil
	}
	if err := s.secrets.Put(ctx, key, value); err != nil {
		return fmt.Errorf("store %s: %w", key, err)
	}
	return nil
}
