package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/logging"
	"github.com/bnema/skilllink-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// SessionService owns login and logout. Together with the gateway refresh
// path it is the only writer of the stored tokens.
type SessionService struct {
	auth    ports.AuthAPI
	session ports.SessionStore
	prefs   ports.PreferencesRepository
	clock   ports.Clock
	logger  logrus.FieldLogger

	mu   sync.RWMutex
	user *domain.User
}

func NewSessionService(auth ports.AuthAPI, session ports.SessionStore, prefs ports.PreferencesRepository, clock ports.Clock, logger logrus.FieldLogger) *SessionService {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if logger == nil {
		logger = logging.Discard()
	}

	return &SessionService{
		auth:    auth,
		session: session,
		prefs:   prefs,
		clock:   clock,
		logger:  logger,
	}
}

func (s *SessionService) Login(ctx context.Context, email, password string) (domain.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return domain.User{}, errors.New("email and password are required")
	}

	result, err := s.auth.Login(ctx, email, password)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.establish(ctx, result); err != nil {
		return domain.User{}, err
	}

	s.rememberEmail(ctx, email)
	return result.User, nil
}

// Register creates an account. The server usually withholds tokens until the
// email is verified, in which case no session is stored.
func (s *SessionService) Register(ctx context.Context, input domain.RegisterInput) (domain.User, error) {
	if _, err := domain.ParseRole(string(input.Role)); err != nil {
		return domain.User{}, err
	}

	result, err := s.auth.Register(ctx, input)
	if err != nil {
		return domain.User{}, err
	}
	if result.AccessToken != "" {
		if err := s.establish(ctx, result); err != nil {
			return domain.User{}, err
		}
	}

	s.rememberEmail(ctx, input.Email)
	return result.User, nil
}

func (s *SessionService) VerifyEmail(ctx context.Context, userID, code string) (domain.User, error) {
	result, err := s.auth.VerifyEmail(ctx, userID, strings.TrimSpace(code))
	if err != nil {
		return domain.User{}, err
	}
	if err := s.establish(ctx, result); err != nil {
		return domain.User{}, err
	}

	return result.User, nil
}

func (s *SessionService) ResendVerification(ctx context.Context, userID string) error {
	return s.auth.ResendVerification(ctx, userID)
}

// Logout tells the server on a best effort basis and always clears the
// local session.
func (s *SessionService) Logout(ctx context.Context) error {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		s.logger.WithError(err).Warn("read session before logout")
	}
	if token != "" {
		if err := s.auth.Logout(ctx); err != nil {
			s.logger.WithError(err).Info("server logout failed, clearing local session anyway")
		}
	}

	s.setUser(nil)
	if err := s.session.ClearTokens(ctx); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// Rehydrate resolves the user behind a stored token. A token the server no
// longer accepts is cleared.
func (s *SessionService) Rehydrate(ctx context.Context) (domain.User, error) {
	token, err := s.session.AccessToken(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if token == "" {
		s.setUser(nil)
		return domain.User{}, domain.ErrNoSession
	}

	user, err := s.auth.Me(ctx)
	if err != nil {
		s.setUser(nil)
		if errors.Is(err, context.Canceled) {
			return domain.User{}, err
		}
		if clearErr := s.session.ClearTokens(ctx); clearErr != nil {
			return domain.User{}, errors.Join(err, fmt.Errorf("clear session: %w", clearErr))
		}
		return domain.User{}, err
	}

	s.setUser(&user)
	return user, nil
}

func (s *SessionService) CurrentUser() (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.user == nil {
		return domain.User{}, false
	}
	return *s.user, true
}

// LastEmail is the address of the most recent successful login.
func (s *SessionService) LastEmail(ctx context.Context) string {
	if s.prefs == nil {
		return ""
	}

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("read preferences")
		return ""
	}
	return prefs.LastEmail
}

func (s *SessionService) establish(ctx context.Context, result domain.AuthResult) error {
	if !result.Session().Authenticated() {
		return errors.New("server returned no access token")
	}
	if err := s.session.SetTokens(ctx, result.Session()); err != nil {
		return fmt.Errorf("store session: %w", err)
	}

	user := result.User
	s.setUser(&user)
	return nil
}

func (s *SessionService) setUser(user *domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.user = user
}

func (s *SessionService) rememberEmail(ctx context.Context, email string) {
	if s.prefs == nil || email == "" {
		return
	}

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		s.logger.WithError(err).Debug("read preferences")
		return
	}
	prefs.LastEmail = email
	prefs.UpdatedAt = s.clock.Now()
	if err := s.prefs.Save(ctx, prefs); err != nil {
		s.logger.WithError(err).Debug("remember login email")
	}
}
