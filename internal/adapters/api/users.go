package api

import (
	"context"
	"net/http"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

type UserService struct {
	gateway *Gateway
}

var _ ports.UserAPI = (*UserService)(nil)

func (s *UserService) Profile(ctx context.Context) (domain.User, error) {
	var user domain.User
	err := fetch(ctx, s.gateway, get("/api/users/profile"), &user)
	return user, err
}

func (s *UserService) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.User, error) {
	var user domain.User
	err := fetch(ctx, s.gateway, Request{Method: http.MethodPut, Path: "/api/users/profile", Body: update}, &user)
	return user, err
}

func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	var users []domain.User
	err := fetch(ctx, s.gateway, get("/api/users"), &users)
	return users, err
}
