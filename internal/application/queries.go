package application

import "github.com/bnema/skilllink-cli/internal/domain"

// RecentLimit bounds each recent list shown on the dashboard.
const RecentLimit = 5

// NotificationPeek is how many notifications the badge considers.
const NotificationPeek = 10

// Dashboard is the per-role overview. Exactly one of the stats pointers is
// set, matching User.Role.
type Dashboard struct {
	User       domain.User             `json:"user"`
	Client     *domain.ClientStats     `json:"client,omitempty"`
	Freelancer *domain.FreelancerStats `json:"freelancer,omitempty"`
	Admin      *domain.AdminStats      `json:"admin,omitempty"`

	RecentTasks    []domain.Task    `json:"recentTasks,omitempty"`
	RecentBids     []domain.Bid     `json:"recentBids,omitempty"`
	RecentPayments []domain.Payment `json:"recentPayments,omitempty"`
	RecentUsers    []domain.User    `json:"recentUsers,omitempty"`

	Notifications []domain.Notification `json:"notifications,omitempty"`
	Unread        int                   `json:"unread"`
}

func (d Dashboard) Badge() string {
	return domain.BadgeLabel(d.Unread)
}

func recent[T any](items []T) []T {
	if len(items) > RecentLimit {
		return items[:RecentLimit]
	}
	return items
}
