package api

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

type NotificationService struct {
	gateway *Gateway
}

var _ ports.NotificationAPI = (*NotificationService)(nil)

func (s *NotificationService) List(ctx context.Context, page, limit int) (domain.NotificationPage, error) {
	req := get("/api/notifications")
	req.Query = url.Values{}
	if page > 0 {
		req.Query.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		req.Query.Set("limit", strconv.Itoa(limit))
	}

	var result domain.NotificationPage
	err := fetch(ctx, s.gateway, req, &result)
	return result, err
}

func (s *NotificationService) MarkRead(ctx context.Context, notificationID string) error {
	return fetch(ctx, s.gateway, Request{Method: http.MethodPatch, Path: "/api/notifications/" + pathID(notificationID) + "/read"}, nil)
}

func (s *NotificationService) MarkAllRead(ctx context.Context) error {
	return fetch(ctx, s.gateway, Request{Method: http.MethodPatch, Path: "/api/notifications/mark-all-read"}, nil)
}
