package api

import (
	"context"
	"net/http"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

type BidService struct {
	gateway *Gateway
}

var _ ports.BidAPI = (*BidService)(nil)

func (s *BidService) ForTask(ctx context.Context, taskID string) ([]domain.Bid, error) {
	var bids []domain.Bid
	err := fetch(ctx, s.gateway, get("/api/bids/task/"+pathID(taskID)), &bids)
	return bids, err
}

func (s *BidService) Submit(ctx context.Context, taskID string, input domain.BidInput) (domain.Bid, error) {
	var bid domain.Bid
	err := fetch(ctx, s.gateway, Request{Method: http.MethodPost, Path: "/api/bids/task/" + pathID(taskID), Body: input}, &bid)
	return bid, err
}

func (s *BidService) Accept(ctx context.Context, bidID string) (domain.Bid, error) {
	var bid domain.Bid
	err := fetch(ctx, s.gateway, Request{Method: http.MethodPost, Path: "/api/bids/" + pathID(bidID) + "/accept"}, &bid)
	return bid, err
}

func (s *BidService) Mine(ctx context.Context) ([]domain.Bid, error) {
	var bids []domain.Bid
	err := fetch(ctx, s.gateway, get("/api/bids/my/bids"), &bids)
	return bids, err
}
