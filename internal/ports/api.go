package ports

import (
	"context"

	"github.com/bnema/skilllink-cli/internal/domain"
)

type AuthAPI interface {
	Register(ctx context.Context, input domain.RegisterInput) (domain.AuthResult, error)
	VerifyEmail(ctx context.Context, userID, code string) (domain.AuthResult, error)
	ResendVerification(ctx context.Context, userID string) error
	Login(ctx context.Context, email, password string) (domain.AuthResult, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (domain.User, error)
}

type UserAPI interface {
	Profile(ctx context.Context) (domain.User, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

type TaskAPI interface {
	List(ctx context.Context, filter domain.TaskFilter) (domain.TaskPage, error)
	Mine(ctx context.Context) ([]domain.Task, error)
}

type BidAPI interface {
	Mine(ctx context.Context) ([]domain.Bid, error)
}

type PaymentAPI interface {
	History(ctx context.Context) ([]domain.Payment, error)
}

type NotificationAPI interface {
	List(ctx context.Context, page, limit int) (domain.NotificationPage, error)
}
