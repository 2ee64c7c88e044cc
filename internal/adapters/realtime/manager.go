package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/logging"
	"github.com/bnema/skilllink-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

// Manager owns the Channel for the current session. It connects when an
// access token exists, reconnects when the token changes and closes the
// channel when the token is cleared. Nothing else opens connections.
type Manager struct {
	channel *Channel
	session ports.SessionStore
	watcher ports.SessionWatcher
	logger  logrus.FieldLogger

	mu      sync.Mutex
	applied string
	pending string
	wake    chan struct{}
	stop    context.CancelFunc
	done    chan struct{}
	unwatch func()
}

func NewManager(channel *Channel, session ports.SessionStore, watcher ports.SessionWatcher, logger logrus.FieldLogger) *Manager {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Manager{
		channel: channel,
		session: session,
		watcher: watcher,
		logger:  logger,
		wake:    make(chan struct{}, 1),
	}
}

func (m *Manager) Channel() *Channel {
	return m.channel
}

// Start connects with the stored token, if any, and follows later session
// changes until Stop. Token changes are applied on a dedicated goroutine so
// the code path that rotated the token is never blocked on a handshake.
func (m *Manager) Start(ctx context.Context) error {
	// Watch first so a session change during the first handshake is applied
	// by run once it starts.
	m.unwatch = m.watcher.Watch(func(current domain.Session) {
		m.mu.Lock()
		m.pending = current.AccessToken
		m.mu.Unlock()

		select {
		case m.wake <- struct{}{}:
		default:
		}
	})

	token, err := m.session.AccessToken(ctx)
	if err != nil {
		m.unwatch()
		m.unwatch = nil
		return err
	}

	runCtx, stop := context.WithCancel(context.WithoutCancel(ctx))
	m.mu.Lock()
	m.stop = stop
	m.done = make(chan struct{})
	m.mu.Unlock()

	var connectErr error
	if token != "" {
		connectErr = m.apply(ctx, token)
	}

	go m.run(runCtx)
	return connectErr
}

func (m *Manager) run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			return
		case <-m.wake:
			m.mu.Lock()
			token := m.pending
			m.mu.Unlock()

			if err := m.apply(ctx, token); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.WithError(err).Warn("realtime session update failed")
			}
		}
	}
}

// Reconnect re-establishes the connection with the current token, for use
// after a transport drop.
func (m *Manager) Reconnect(ctx context.Context) error {
	token, err := m.session.AccessToken(ctx)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.applied = ""
	m.mu.Unlock()

	return m.apply(ctx, token)
}

func (m *Manager) apply(ctx context.Context, token string) error {
	m.mu.Lock()
	if token == m.applied && (token == "" || m.channel.State() != domain.ChannelDisconnected) {
		m.mu.Unlock()
		return nil
	}
	m.applied = token
	m.mu.Unlock()

	if token == "" {
		m.logger.Debug("session cleared, closing realtime channel")
		return m.channel.Close()
	}

	rooms := m.channel.Rooms()
	if err := m.channel.Connect(ctx, token); err != nil {
		return err
	}
	for _, room := range rooms {
		if err := m.channel.JoinRoom(ctx, room); err != nil {
			return err
		}
	}
	return nil
}

// Stop stops following the session and closes the channel.
func (m *Manager) Stop() error {
	if m.unwatch != nil {
		m.unwatch()
	}

	m.mu.Lock()
	stop, done := m.stop, m.done
	m.mu.Unlock()
	if stop != nil {
		stop()
		<-done
	}

	return m.channel.Close()
}
