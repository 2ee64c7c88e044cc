// Package listing renders API resources as styled terminal text for the
// text output mode of the CLI.
package listing

import (
	"fmt"
	"strings"
	"time"

	"github.com/bnema/skilllink-cli/internal/adapters/render/style"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const timeLayout = "02 Jan 15:04"

func Tasks(page domain.TaskPage, s style.Styles) string {
	if len(page.Tasks) == 0 {
		return s.Empty.Render("No tasks found.")
	}

	lines := make([]string, 0, len(page.Tasks)+1)
	for _, task := range page.Tasks {
		lines = append(lines, taskRow(task, s))
	}
	if p := page.Pagination; p.TotalPages > 0 {
		lines = append(lines, s.Header.Render(fmt.Sprintf("page %d of %d · %d tasks", p.Page, p.TotalPages, p.Total)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func TaskRows(tasks []domain.Task, s style.Styles) string {
	return Tasks(domain.TaskPage{Tasks: tasks}, s)
}

func taskRow(task domain.Task, s style.Styles) string {
	return fmt.Sprintf("%s  %s  %s  %s",
		s.Label.Render(task.ID),
		s.Detail.Render(task.Title),
		s.TaskStatus(task.Status),
		s.Value.Render(domain.CompactAmount(task.Budget)),
	)
}

func Task(task domain.Task, s style.Styles) string {
	lines := []string{
		s.Title.Render(task.Title),
		fmt.Sprintf("%s %s   %s %s", s.Label.Render("status"), s.TaskStatus(task.Status), s.Label.Render("budget"), s.Value.Render(fmt.Sprintf("$%.2f", task.Budget))),
	}
	if task.Category != "" {
		lines = append(lines, field("category", task.Category, s))
	}
	if !task.Deadline.IsZero() {
		lines = append(lines, field("deadline", task.Deadline.Format("02 Jan 2006"), s))
	}
	if task.Description != "" {
		lines = append(lines, s.Section.Render(s.Detail.Render(task.Description)))
	}
	if len(task.Attachments) > 0 {
		lines = append(lines, field("attachments", strings.Join(task.Attachments, ", "), s))
	}
	if len(task.Bids) > 0 {
		lines = append(lines, s.Section.Render(Bids(task.Bids, s)))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func Bids(bids []domain.Bid, s style.Styles) string {
	if len(bids) == 0 {
		return s.Empty.Render("No bids yet.")
	}

	lines := make([]string, 0, len(bids))
	for _, bid := range bids {
		who := bid.FreelancerID
		if bid.Freelancer != nil && bid.Freelancer.Name != "" {
			who = bid.Freelancer.Name
		}
		status := bid.Status
		if status == "" {
			status = "PENDING"
		}
		row := fmt.Sprintf("%s  %s  %s  %s",
			s.Label.Render(bid.ID),
			s.Value.Render(fmt.Sprintf("$%.2f", bid.Amount)),
			s.Detail.Render(who),
			s.Info.Render(status),
		)
		if bid.Timeline != "" {
			row += "  " + s.Label.Render(bid.Timeline)
		}
		lines = append(lines, row)
		if bid.Proposal != "" {
			lines = append(lines, "    "+s.Detail.Render(bid.Proposal))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// ChatLine renders one message; selfID marks the caller's own messages.
func ChatLine(message domain.Message, selfID string, s style.Styles) string {
	who := s.Peer.Render(message.SenderLabel())
	if selfID != "" && message.SenderID == selfID {
		who = s.Self.Render("you")
	}

	stamp := ""
	if !message.CreatedAt.IsZero() {
		stamp = s.Header.Render(message.CreatedAt.Local().Format(timeLayout)) + " "
	}
	return stamp + who + s.Label.Render(": ") + s.Detail.Render(message.Content)
}

func Messages(messages []domain.Message, selfID string, s style.Styles) string {
	if len(messages) == 0 {
		return s.Empty.Render("No messages yet.")
	}

	lines := make([]string, 0, len(messages))
	for _, message := range messages {
		lines = append(lines, ChatLine(message, selfID, s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func Notifications(page domain.NotificationPage, s style.Styles) string {
	unread := domain.UnreadCount(page.Notifications)
	header := "Notifications"
	if badge := domain.BadgeLabel(unread); badge != "" {
		header += " " + s.Badge.Render("("+badge+")")
	}

	lines := []string{s.Title.Render(header)}
	if len(page.Notifications) == 0 {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, s.Empty.Render("No notifications"))...)
	}

	for _, n := range page.Notifications {
		marker := " "
		title := s.Detail.Render(n.Title)
		if n.Unread() {
			marker = s.Badge.Render("•")
			title = s.Value.Render(n.Title)
		}
		row := fmt.Sprintf("%s %s  %s", marker, s.Label.Render(n.ID), title)
		if n.Message != "" {
			row += "  " + s.Detail.Render(n.Message)
		}
		if !n.CreatedAt.IsZero() {
			row += "  " + s.Header.Render(n.CreatedAt.Local().Format(timeLayout))
		}
		lines = append(lines, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func Payments(payments []domain.Payment, s style.Styles) string {
	if len(payments) == 0 {
		return s.Empty.Render("No payments yet.")
	}

	lines := make([]string, 0, len(payments))
	for _, p := range payments {
		row := fmt.Sprintf("%s  %s  %s  %s",
			s.Label.Render(p.ID),
			s.Value.Render(fmt.Sprintf("$%.2f", p.Amount)),
			s.PaymentStatus(p.Status),
			s.Detail.Render("task "+p.TaskID),
		)
		if !p.CreatedAt.IsZero() {
			row += "  " + s.Header.Render(p.CreatedAt.Local().Format(timeLayout))
		}
		lines = append(lines, row)
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func Users(users []domain.User, s style.Styles) string {
	if len(users) == 0 {
		return s.Empty.Render("No users found.")
	}

	lines := make([]string, 0, len(users))
	for _, u := range users {
		verified := s.Warning.Render("unverified")
		if u.IsVerified {
			verified = s.Success.Render("verified")
		}
		lines = append(lines, fmt.Sprintf("%s  %s  %s  %s  %s",
			s.Label.Render(u.ID),
			s.Detail.Render(u.Name),
			s.Label.Render(u.Email),
			s.Info.Render(u.Role.Label()),
			verified,
		))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func Profile(user domain.User, s style.Styles) string {
	lines := []string{
		s.Title.Render(user.Name),
		field("email", user.Email, s),
		field("role", user.Role.Label(), s),
		field("id", user.ID, s),
	}
	if user.Bio != "" {
		lines = append(lines, field("bio", user.Bio, s))
	}
	if len(user.Skills) > 0 {
		lines = append(lines, field("skills", strings.Join(user.Skills, ", "), s))
	}
	if len(user.PortfolioLinks) > 0 {
		lines = append(lines, field("portfolio", strings.Join(user.PortfolioLinks, ", "), s))
	}
	if !user.IsVerified {
		lines = append(lines, s.Warning.Render("email not verified"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// Session describes the stored tokens without printing them.
func Session(session domain.Session, claims *domain.TokenClaims, now time.Time, s style.Styles) string {
	if !session.Authenticated() {
		return s.Empty.Render("Not logged in.")
	}

	lines := []string{s.Title.Render("Session")}
	lines = append(lines, field("refresh token", presence(session.CanRefresh()), s))
	if claims == nil {
		return lipgloss.JoinVertical(lipgloss.Left, append(lines, field("access token", "opaque", s))...)
	}

	if claims.Subject != "" {
		lines = append(lines, field("user id", claims.Subject, s))
	}
	switch {
	case claims.ExpiresAt.IsZero():
		lines = append(lines, field("expires", "never", s))
	case !claims.ExpiresAt.After(now):
		lines = append(lines, s.Label.Render("expires ")+s.Danger.Render("expired "+claims.ExpiresAt.Local().Format(timeLayout)))
	default:
		remaining := claims.ExpiresAt.Sub(now).Round(time.Second)
		lines = append(lines, field("expires", fmt.Sprintf("in %s (%s)", remaining, claims.ExpiresAt.Local().Format(timeLayout)), s))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func presence(ok bool) string {
	if ok {
		return "stored"
	}
	return "missing"
}

func field(label, value string, s style.Styles) string {
	return s.Label.Render(label+" ") + s.Detail.Render(value)
}
