package domain

import (
	"fmt"
	"strings"
	"time"
)

type TaskStatus string

const (
	TaskStatusOpen       TaskStatus = "OPEN"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusCompleted  TaskStatus = "COMPLETED"
	TaskStatusCancelled  TaskStatus = "CANCELLED"
)

func ParseTaskStatus(raw string) (TaskStatus, error) {
	status := TaskStatus(strings.ToUpper(strings.TrimSpace(raw)))
	switch status {
	case TaskStatusOpen, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return status, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidTaskState, raw)
	}
}

func (s TaskStatus) Label() string {
	return strings.ReplaceAll(string(s), "_", " ")
}

type Task struct {
	ID           string     `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Category     string     `json:"category,omitempty"`
	Budget       float64    `json:"budget"`
	Deadline     time.Time  `json:"deadline"`
	Status       TaskStatus `json:"status"`
	ClientID     string     `json:"clientId,omitempty"`
	FreelancerID string     `json:"freelancerId,omitempty"`
	Attachments  []string   `json:"attachments,omitempty"`
	Bids         []Bid      `json:"bids,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
}

type TaskFilter struct {
	Search    string
	MinBudget float64
	MaxBudget float64
	Status    TaskStatus
	Page      int
	Limit     int
}

type TaskInput struct {
	Title       string     `json:"title,omitempty"`
	Description string     `json:"description,omitempty"`
	Category    string     `json:"category,omitempty"`
	Budget      float64    `json:"budget,omitempty"`
	Deadline    string     `json:"deadline,omitempty"`
	Status      TaskStatus `json:"status,omitempty"`
}

// Attachment is a file uploaded alongside a new task.
type Attachment struct {
	Name    string
	Content []byte
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"totalPages"`
}

type TaskPage struct {
	Tasks      []Task     `json:"tasks"`
	Pagination Pagination `json:"pagination"`
}
