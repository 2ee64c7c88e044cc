package domain

import (
	"strconv"
	"time"
)

const badgeCap = 9

type Notification struct {
	ID        string     `json:"id"`
	Type      string     `json:"type"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
}

func (n Notification) Unread() bool {
	return n.ReadAt == nil
}

type NotificationPage struct {
	Notifications []Notification `json:"notifications"`
	Pagination    Pagination     `json:"pagination"`
}

func UnreadCount(notifications []Notification) int {
	count := 0
	for _, n := range notifications {
		if n.Unread() {
			count++
		}
	}
	return count
}

// BadgeLabel renders an unread count the way the navigation badge does.
func BadgeLabel(unread int) string {
	switch {
	case unread <= 0:
		return ""
	case unread > badgeCap:
		return strconv.Itoa(badgeCap) + "+"
	default:
		return strconv.Itoa(unread)
	}
}
