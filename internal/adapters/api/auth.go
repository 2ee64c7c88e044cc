package api

import (
	"context"
	"net/http"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

// AuthService covers the credential endpoints. Credential exchanges never
// carry a bearer token, so a 401 there means bad credentials and does not go
// through the refresh path.
type AuthService struct {
	gateway *Gateway
}

var _ ports.AuthAPI = (*AuthService)(nil)

func (s *AuthService) Register(ctx context.Context, input domain.RegisterInput) (domain.AuthResult, error) {
	var result domain.AuthResult
	err := fetch(ctx, s.gateway, Request{Method: http.MethodPost, Path: "/api/auth/register", Body: input, SkipAuth: true}, &result)
	return result, err
}

func (s *AuthService) VerifyEmail(ctx context.Context, userID, code string) (domain.AuthResult, error) {
	var result domain.AuthResult
	err := fetch(ctx, s.gateway, Request{
		Method:   http.MethodPost,
		Path:     "/api/auth/verify-email",
		Body:     map[string]string{"userId": userID, "code": code},
		SkipAuth: true,
	}, &result)
	return result, err
}

func (s *AuthService) ResendVerification(ctx context.Context, userID string) error {
	return fetch(ctx, s.gateway, Request{
		Method:   http.MethodPost,
		Path:     "/api/auth/resend-verification",
		Body:     map[string]string{"userId": userID},
		SkipAuth: true,
	}, nil)
}

func (s *AuthService) Login(ctx context.Context, email, password string) (domain.AuthResult, error) {
	var result domain.AuthResult
	err := fetch(ctx, s.gateway, Request{
		Method:   http.MethodPost,
		Path:     "/api/auth/login",
		Body:     map[string]string{"email": email, "password": password},
		SkipAuth: true,
	}, &result)
	return result, err
}

func (s *AuthService) Logout(ctx context.Context) error {
	return fetch(ctx, s.gateway, Request{Method: http.MethodPost, Path: "/api/auth/logout"}, nil)
}

func (s *AuthService) Me(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := fetch(ctx, s.gateway, get("/api/auth/me"), &user)
	return user, err
}
