package api

import (
	"context"
	"net/http"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

type PaymentService struct {
	gateway *Gateway
}

var _ ports.PaymentAPI = (*PaymentService)(nil)

func (s *PaymentService) CreateIntent(ctx context.Context, taskID, milestoneID string) (domain.PaymentIntent, error) {
	var intent domain.PaymentIntent
	err := fetch(ctx, s.gateway, Request{
		Method: http.MethodPost,
		Path:   "/api/payments/create-intent",
		Body:   map[string]string{"taskId": taskID, "milestoneId": milestoneID},
	}, &intent)
	return intent, err
}

func (s *PaymentService) History(ctx context.Context) ([]domain.Payment, error) {
	var payments []domain.Payment
	err := fetch(ctx, s.gateway, get("/api/payments/history"), &payments)
	return payments, err
}
