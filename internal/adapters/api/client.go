package api

import (
	"context"
	"net/http"
	"net/url"
)

// Client bundles the typed services sharing one Gateway.
type Client struct {
	Gateway       *Gateway
	Auth          *AuthService
	Users         *UserService
	Tasks         *TaskService
	Bids          *BidService
	Messages      *MessageService
	Payments      *PaymentService
	Notifications *NotificationService
}

func NewClient(gateway *Gateway) *Client {
	return &Client{
		Gateway:       gateway,
		Auth:          &AuthService{gateway: gateway},
		Users:         &UserService{gateway: gateway},
		Tasks:         &TaskService{gateway: gateway},
		Bids:          &BidService{gateway: gateway},
		Messages:      &MessageService{gateway: gateway},
		Payments:      &PaymentService{gateway: gateway},
		Notifications: &NotificationService{gateway: gateway},
	}
}

// fetch sends req and decodes the envelope data into out when out is non-nil.
func fetch(ctx context.Context, gateway *Gateway, req Request, out any) error {
	resp, err := gateway.Send(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.DecodeData(out)
}

func get(path string) Request {
	return Request{Method: http.MethodGet, Path: path}
}

func pathID(id string) string {
	return url.PathEscape(id)
}
