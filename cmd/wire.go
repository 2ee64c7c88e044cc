package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/bnema/skilllink-cli/internal/adapters/api"
	"github.com/bnema/skilllink-cli/internal/adapters/realtime"
	"github.com/bnema/skilllink-cli/internal/adapters/render/dashboard"
	"github.com/bnema/skilllink-cli/internal/adapters/render/style"
	"github.com/bnema/skilllink-cli/internal/adapters/render/toast"
	tomlrepo "github.com/bnema/skilllink-cli/internal/adapters/repo/toml"
	chainstore "github.com/bnema/skilllink-cli/internal/adapters/secrets/chain"
	filestore "github.com/bnema/skilllink-cli/internal/adapters/secrets/file"
	"github.com/bnema/skilllink-cli/internal/adapters/session"
	"github.com/bnema/skilllink-cli/internal/application"
	"github.com/bnema/skilllink-cli/internal/config"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/logging"
	"github.com/bnema/skilllink-cli/internal/obs"
	"github.com/bnema/skilllink-cli/internal/ports"
	"github.com/charmbracelet/lipgloss"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

type app struct {
	cfg       config.Config
	logger    *logrus.Logger
	secrets   ports.SecretStore
	session   *session.Store
	notifier  *toast.Notifier
	registry  *prometheus.Registry
	client    *api.Client
	sessions  *application.SessionService
	themes    *application.ThemeService
	dashboard *application.DashboardService

	dashboardRenderer func(application.Dashboard, dashboard.RenderOptions) (string, error)
	detectTheme       func() domain.Theme
	now               func() time.Time
	wired             bool
}

func newApp() *app {
	return &app{
		dashboardRenderer: dashboard.Render,
		detectTheme:       detectTerminalTheme,
		now:               time.Now,
	}
}

// wire builds every adapter from configuration. stderr receives logs and
// toasts.
func (a *app) wire(v *viper.Viper, stderr io.Writer) error {
	if a.wired {
		return nil
	}

	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load(v)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, stderr)
	if err != nil {
		return err
	}

	secrets, err := newSecretStore(cfg.Secrets, logger)
	if err != nil {
		return fmt.Errorf("wire secret store: %w", err)
	}

	prefs, err := tomlrepo.NewRepository(v)
	if err != nil {
		return fmt.Errorf("wire preferences repository: %w", err)
	}

	store := session.NewStore(secrets)
	themes := application.NewThemeService(prefs, a.detectTheme, ports.SystemClock{})
	notifier := toast.New(toast.WithWriter(stderr))

	registry := prometheus.NewRegistry()
	gateway := api.NewGateway(cfg.APIURL, store,
		api.WithLogger(logger),
		api.WithNotifier(notifier),
		api.WithTimeout(cfg.HTTP.Timeout),
		api.WithRateLimit(cfg.HTTP.RateLimit, cfg.HTTP.Burst),
		api.WithMetrics(obs.NewGatewayMetrics(registry)),
		api.WithSessionEnded(func() {
			logger.Info("session ended, run `sl login` to sign in again")
		}),
	)
	client := api.NewClient(gateway)

	a.cfg = cfg
	a.logger = logger
	a.secrets = secrets
	a.session = store
	a.notifier = notifier
	a.registry = registry
	a.client = client
	a.themes = themes
	a.sessions = application.NewSessionService(client.Auth, store, prefs, ports.SystemClock{}, logger)
	a.dashboard = application.NewDashboardService(client.Users, client.Tasks, client.Bids, client.Payments, client.Notifications, logger)
	a.wired = true

	notifier.SetTheme(a.theme(context.Background()))

	return nil
}

func newSecretStore(cfg config.SecretsConfig, logger logrus.FieldLogger) (ports.SecretStore, error) {
	switch cfg.Backend {
	case config.SecretsBackendFile:
		return filestore.NewStore(cfg.Dir), nil
	case config.SecretsBackendChain:
		store, err := chainstore.NewPassFirstWithFileFallback(cfg.Dir)
		if err != nil {
			return nil, err
		}
		logger.WithField("dir", cfg.Dir).Debug("using pass with file fallback for secrets")
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported secrets backend %q", cfg.Backend)
	}
}

// newManager builds a realtime channel bound to the stored session.
func (a *app) newManager() (*realtime.Manager, error) {
	channel, err := realtime.NewChannel(a.cfg.SocketURL, realtime.WithChannelLogger(a.logger.WithField("component", "realtime")))
	if err != nil {
		return nil, err
	}
	return realtime.NewManager(channel, a.session, a.session, a.logger), nil
}

// styles resolves the active theme, falling back to the terminal default
// when preferences cannot be read.
func (a *app) styles(ctx context.Context) style.Styles {
	return style.For(a.theme(ctx))
}

func (a *app) theme(ctx context.Context) domain.Theme {
	theme, err := a.themes.Current(ctx)
	if err != nil {
		a.logger.WithError(err).Debug("resolve theme")
		return a.detectTheme()
	}
	return theme
}

// currentUser resolves the logged in user through the session service.
func (a *app) currentUser(ctx context.Context) (domain.User, error) {
	user, err := a.sessions.Rehydrate(ctx)
	if errors.Is(err, domain.ErrNoSession) {
		return domain.User{}, errNotLoggedIn
	}
	return user, err
}

func detectTerminalTheme() domain.Theme {
	if lipgloss.HasDarkBackground() {
		return domain.ThemeDark
	}
	return domain.ThemeLight
}

var errNotLoggedIn = errors.New("not logged in, run `sl login` first")
