package dashboard

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/bnema/skilllink-cli/internal/adapters/render/style"
	"github.com/bnema/skilllink-cli/internal/application"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type RenderOptions struct {
	Theme domain.Theme
	Now   time.Time
}

type stat struct {
	label string
	value string
}

func renderView(d application.Dashboard, opts RenderOptions, s style.Styles) string {
	lines := []string{
		s.Title.Render(fmt.Sprintf("Welcome back, %s", displayName(d.User))),
		s.Header.Render(headerLine(d)),
	}

	switch {
	case d.Client != nil:
		lines = append(lines, s.Section.Render(statGrid(clientStats(*d.Client), s)))
		lines = append(lines, s.Section.Render(completionLine(d.Client.CompletedTasks, d.Client.TotalTasks, s)))
		lines = append(lines, s.Section.Render(taskList("Recent tasks", d.RecentTasks, opts, s)))
		lines = append(lines, s.Section.Render(paymentList(d.RecentPayments, s)))
	case d.Freelancer != nil:
		lines = append(lines, s.Section.Render(statGrid(freelancerStats(*d.Freelancer), s)))
		lines = append(lines, s.Section.Render(acceptanceLine(d.Freelancer.AcceptanceRate, s)))
		lines = append(lines, s.Section.Render(bidList(d.RecentBids, s)))
		lines = append(lines, s.Section.Render(taskList("Active work", d.RecentTasks, opts, s)))
	case d.Admin != nil:
		lines = append(lines, s.Section.Render(statGrid(adminStats(*d.Admin), s)))
		lines = append(lines, s.Section.Render(userList(d.RecentUsers, s)))
		lines = append(lines, s.Section.Render(taskList("Latest tasks", d.RecentTasks, opts, s)))
	default:
		lines = append(lines, s.Empty.Render("No dashboard data available."))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func displayName(user domain.User) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	if user.Email != "" {
		return user.Email
	}
	return "there"
}

func headerLine(d application.Dashboard) string {
	line := fmt.Sprintf("%s dashboard", d.User.Role.Label())
	if badge := d.Badge(); badge != "" {
		line += fmt.Sprintf(" · %s unread notifications", badge)
	}
	return line
}

func clientStats(stats domain.ClientStats) []stat {
	return []stat{
		{"Total tasks", fmt.Sprint(stats.TotalTasks)},
		{"Active", fmt.Sprint(stats.ActiveTasks)},
		{"Completed", fmt.Sprint(stats.CompletedTasks)},
		{"Total spent", domain.CompactAmount(stats.TotalSpent)},
		{"Pending payments", fmt.Sprint(stats.PendingPayments)},
	}
}

func freelancerStats(stats domain.FreelancerStats) []stat {
	return []stat{
		{"Total bids", fmt.Sprint(stats.TotalBids)},
		{"Active tasks", fmt.Sprint(stats.ActiveTasks)},
		{"Total earned", domain.CompactAmount(stats.TotalEarned)},
		{"Acceptance", fmt.Sprintf("%.1f%%", stats.AcceptanceRate)},
	}
}

func adminStats(stats domain.AdminStats) []stat {
	return []stat{
		{"Users", fmt.Sprintf("%d (%d clients, %d freelancers)", stats.TotalUsers, stats.Clients, stats.Freelancers)},
		{"Tasks", fmt.Sprintf("%d (%d open, %d in progress, %d completed)", stats.TotalTasks, stats.OpenTasks, stats.InProgressTasks, stats.CompletedTasks)},
		{"Total paid", domain.CompactAmount(stats.TotalPaid)},
		{"Revenue", domain.CompactAmount(stats.TotalRevenue)},
	}
}

func statGrid(stats []stat, s style.Styles) string {
	cards := make([]string, 0, len(stats))
	for _, st := range stats {
		cards = append(cards, s.Card.Render(lipgloss.JoinVertical(
			lipgloss.Left,
			s.Label.Render(st.label),
			s.Value.Render(st.value),
		)))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cards...)
}

func completionLine(completed, total int, s style.Styles) string {
	percent := 0.0
	if total > 0 {
		percent = float64(completed) / float64(total) * 100
	}
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.Label.Render("completion: "),
		renderProgressBar(percent, barWidth, s),
		" ",
		s.Detail.Render(fmt.Sprintf("%.0f%%", percent)),
	)
}

func acceptanceLine(rate float64, s style.Styles) string {
	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.Label.Render("acceptance: "),
		renderProgressBar(rate, barWidth, s),
		" ",
		s.Detail.Render(fmt.Sprintf("%.1f%%", rate)),
	)
}

func taskList(title string, tasks []domain.Task, opts RenderOptions, s style.Styles) string {
	lines := []string{s.Value.Render(title)}
	if len(tasks) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.Empty.Render("No tasks yet."))...)
	}

	for _, task := range tasks {
		line := fmt.Sprintf("%s  %s  %s", s.Detail.Render(task.Title), s.TaskStatus(task.Status), s.Label.Render(domain.CompactAmount(task.Budget)))
		if due := formatDeadline(task.Deadline, opts.Now); due != "" {
			line += "  " + s.Label.Render(due)
		}
		lines = append(lines, line)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func paymentList(payments []domain.Payment, s style.Styles) string {
	lines := []string{s.Value.Render("Recent payments")}
	if len(payments) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.Empty.Render("No payments yet."))...)
	}

	for _, payment := range payments {
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			s.Detail.Render(domain.CompactAmount(payment.Amount)),
			s.PaymentStatus(payment.Status),
			s.Label.Render("task "+payment.TaskID),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func bidList(bids []domain.Bid, s style.Styles) string {
	lines := []string{s.Value.Render("Recent bids")}
	if len(bids) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.Empty.Render("No bids yet."))...)
	}

	for _, bid := range bids {
		status := bid.Status
		if status == "" {
			status = "PENDING"
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			s.Detail.Render(domain.CompactAmount(bid.Amount)),
			s.Info.Render(status),
			s.Label.Render("task "+bid.TaskID),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func userList(users []domain.User, s style.Styles) string {
	lines := []string{s.Value.Render("Recent users")}
	if len(users) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.Empty.Render("No users yet."))...)
	}

	for _, user := range users {
		lines = append(lines, fmt.Sprintf("%s  %s  %s",
			s.Detail.Render(displayName(user)),
			s.Label.Render(user.Email),
			s.Info.Render(user.Role.Label()),
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func renderProgressBar(percent float64, width int, s style.Styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.Header.Render("["),
		s.Info.Render(strings.Repeat("=", filled)),
		s.Empty.Render(strings.Repeat("-", width-filled)),
		s.Header.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatDeadline(deadline, now time.Time) string {
	if deadline.IsZero() {
		return ""
	}
	if now.IsZero() {
		return "due " + deadline.Format("02 Jan 2006")
	}
	if deadline.Before(now) {
		return "overdue"
	}

	days := int(math.Ceil(deadline.Sub(now).Hours() / 24))
	switch days {
	case 0, 1:
		return "due in 1 day"
	default:
		return fmt.Sprintf("due in %d days", days)
	}
}
