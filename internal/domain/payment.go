package domain

import "time"

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
	PaymentStatusFailed    PaymentStatus = "FAILED"
	PaymentStatusRefunded  PaymentStatus = "REFUNDED"
)

type Payment struct {
	ID          string        `json:"id"`
	TaskID      string        `json:"taskId"`
	MilestoneID string        `json:"milestoneId,omitempty"`
	Amount      float64       `json:"amount"`
	Status      PaymentStatus `json:"status"`
	CreatedAt   time.Time     `json:"createdAt"`
}

type PaymentIntent struct {
	ClientSecret string  `json:"clientSecret"`
	PaymentID    string  `json:"paymentId,omitempty"`
	Amount       float64 `json:"amount,omitempty"`
}
