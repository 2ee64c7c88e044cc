package api

import (
	"context"
	"net/http"

	"github.com/bnema/skilllink-cli/internal/domain"
)

type MessageService struct {
	gateway *Gateway
}

func (s *MessageService) History(ctx context.Context, taskID string) ([]domain.Message, error) {
	var messages []domain.Message
	err := fetch(ctx, s.gateway, get("/api/messages/task/"+pathID(taskID)), &messages)
	return messages, err
}

func (s *MessageService) Send(ctx context.Context, taskID, content string) (domain.Message, error) {
	var message domain.Message
	err := fetch(ctx, s.gateway, Request{
		Method: http.MethodPost,
		Path:   "/api/messages/task/" + pathID(taskID),
		Body:   map[string]string{"content": content},
	}, &message)
	return message, err
}

func (s *MessageService) MarkRead(ctx context.Context, messageID string) error {
	return fetch(ctx, s.gateway, Request{Method: http.MethodPatch, Path: "/api/messages/" + pathID(messageID) + "/read"}, nil)
}
