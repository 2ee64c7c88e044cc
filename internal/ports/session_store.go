package ports

import (
	"context"

	"github.com/bnema/skilllink-cli/internal/domain"
)

// SessionStore is the only path to the persisted access and refresh tokens.
type SessionStore interface {
	Load(ctx context.Context) (domain.Session, error)
	AccessToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) (string, error)
	SetTokens(ctx context.Context, session domain.Session) error
	SetAccessToken(ctx context.Context, accessToken string) error
	ClearTokens(ctx context.Context) error
}

// SessionWatcher reports every session mutation after it is persisted.
type SessionWatcher interface {
	Watch(fn func(domain.Session)) (cancel func())
}
