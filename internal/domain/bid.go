package domain

import "time"

type Bid struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	FreelancerID string    `json:"freelancerId"`
	Proposal     string    `json:"proposal"`
	Amount       float64   `json:"amount"`
	Timeline     string    `json:"timeline,omitempty"`
	Status       string    `json:"status,omitempty"`
	Freelancer   *User     `json:"freelancer,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

type BidInput struct {
	Proposal string  `json:"proposal"`
	Amount   float64 `json:"amount"`
	Timeline string  `json:"timeline,omitempty"`
}
