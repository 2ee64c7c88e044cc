package domain

import "time"

type Message struct {
	ID        string     `json:"id"`
	TaskID    string     `json:"taskId"`
	SenderID  string     `json:"senderId"`
	Content   string     `json:"content"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	Sender    *User      `json:"sender,omitempty"`
}

// SenderLabel prefers the embedded sender name over the raw id.
func (m Message) SenderLabel() string {
	if m.Sender != nil && m.Sender.Name != "" {
		return m.Sender.Name
	}
	return m.SenderID
}
