package domain

import (
	"fmt"
	"math"
)

// PlatformFeeRate is the share of completed payments kept by the platform.
const PlatformFeeRate = 0.10

// AdminTaskSampleSize bounds the task page the admin overview aggregates.
const AdminTaskSampleSize = 100

type ClientStats struct {
	TotalTasks      int     `json:"totalTasks"`
	ActiveTasks     int     `json:"activeTasks"`
	CompletedTasks  int     `json:"completedTasks"`
	TotalSpent      float64 `json:"totalSpent"`
	PendingPayments int     `json:"pendingPayments"`
}

type FreelancerStats struct {
	TotalBids      int     `json:"totalBids"`
	ActiveTasks    int     `json:"activeTasks"`
	TotalEarned    float64 `json:"totalEarned"`
	AcceptanceRate float64 `json:"acceptanceRate"`
}

type AdminStats struct {
	TotalUsers      int     `json:"totalUsers"`
	Clients         int     `json:"clients"`
	Freelancers     int     `json:"freelancers"`
	TotalTasks      int     `json:"totalTasks"`
	OpenTasks       int     `json:"openTasks"`
	InProgressTasks int     `json:"inProgressTasks"`
	CompletedTasks  int     `json:"completedTasks"`
	TotalRevenue    float64 `json:"totalRevenue"`
	TotalPaid       float64 `json:"totalPaid"`
}

func NewClientStats(tasks []Task, payments []Payment) ClientStats {
	return ClientStats{
		TotalTasks:      len(tasks),
		ActiveTasks:     countTasks(tasks, TaskStatusInProgress),
		CompletedTasks:  countTasks(tasks, TaskStatusCompleted),
		TotalSpent:      completedTotal(payments),
		PendingPayments: countPayments(payments, PaymentStatusPending),
	}
}

func NewFreelancerStats(bids []Bid, tasks []Task, payments []Payment) FreelancerStats {
	active := countTasks(tasks, TaskStatusInProgress)

	stats := FreelancerStats{
		TotalBids:   len(bids),
		ActiveTasks: active,
		TotalEarned: completedTotal(payments),
	}
	if len(bids) > 0 {
		stats.AcceptanceRate = math.Round(float64(active)/float64(len(bids))*1000) / 10
	}

	return stats
}

func NewAdminStats(users []User, tasks []Task, payments []Payment) AdminStats {
	stats := AdminStats{
		TotalUsers:      len(users),
		TotalTasks:      len(tasks),
		OpenTasks:       countTasks(tasks, TaskStatusOpen),
		InProgressTasks: countTasks(tasks, TaskStatusInProgress),
		CompletedTasks:  countTasks(tasks, TaskStatusCompleted),
		TotalPaid:       completedTotal(payments),
	}
	for _, user := range users {
		switch user.Role {
		case RoleClient:
			stats.Clients++
		case RoleFreelancer:
			stats.Freelancers++
		}
	}
	stats.TotalRevenue = stats.TotalPaid * PlatformFeeRate

	return stats
}

func countTasks(tasks []Task, status TaskStatus) int {
	count := 0
	for _, task := range tasks {
		if task.Status == status {
			count++
		}
	}
	return count
}

func countPayments(payments []Payment, status PaymentStatus) int {
	count := 0
	for _, payment := range payments {
		if payment.Status == status {
			count++
		}
	}
	return count
}

func completedTotal(payments []Payment) float64 {
	total := 0.0
	for _, payment := range payments {
		if payment.Status == PaymentStatusCompleted {
			total += payment.Amount
		}
	}
	return total
}

// CompactAmount formats a currency amount as $950, $1.2k or $3.4M.
func CompactAmount(v float64) string {
	switch {
	case v < 1_000:
		return fmt.Sprintf("$%.0f", v)
	case v < 1_000_000:
		return fmt.Sprintf("$%.1fk", v/1_000)
	default:
		return fmt.Sprintf("$%.1fM", v/1_000_000)
	}
}
