package style

import (
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

type palette struct {
	accent  string
	text    string
	muted   string
	faint   string
	success string
	warning string
	danger  string
	info    string
}

var (
	darkPalette = palette{
		accent:  "39",
		text:    "252",
		muted:   "245",
		faint:   "241",
		success: "114",
		warning: "221",
		danger:  "203",
		info:    "159",
	}
	lightPalette = palette{
		accent:  "25",
		text:    "235",
		muted:   "240",
		faint:   "246",
		success: "28",
		warning: "130",
		danger:  "160",
		info:    "31",
	}
)

// Styles is the set of lipgloss styles every renderer draws with.
type Styles struct {
	Theme domain.Theme

	Title   lipgloss.Style
	Header  lipgloss.Style
	Label   lipgloss.Style
	Value   lipgloss.Style
	Detail  lipgloss.Style
	Empty   lipgloss.Style
	Section lipgloss.Style
	Card    lipgloss.Style
	Badge   lipgloss.Style
	Success lipgloss.Style
	Warning lipgloss.Style
	Danger  lipgloss.Style
	Info    lipgloss.Style
	Self    lipgloss.Style
	Peer    lipgloss.Style
}

func For(theme domain.Theme) Styles {
	p := darkPalette
	if theme == domain.ThemeLight {
		p = lightPalette
	}

	return Styles{
		Theme:   theme,
		Title:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.faint)),
		Label:   lipgloss.NewStyle().Foreground(lipgloss.Color(p.muted)),
		Value:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.text)),
		Detail:  lipgloss.NewStyle().Foreground(lipgloss.Color(p.text)),
		Empty:   lipgloss.NewStyle().Faint(true),
		Section: lipgloss.NewStyle().MarginTop(1),
		Card: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(p.faint)).
			Padding(0, 1),
		Badge:   lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.danger)),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color(p.success)),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color(p.warning)),
		Danger:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.danger)),
		Info:    lipgloss.NewStyle().Foreground(lipgloss.Color(p.info)),
		Self:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.accent)),
		Peer:    lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(p.success)),
	}
}

// TaskStatus colors a task status the way the web badges do.
func (s Styles) TaskStatus(status domain.TaskStatus) string {
	label := status.Label()
	switch status {
	case domain.TaskStatusOpen:
		return s.Success.Render(label)
	case domain.TaskStatusInProgress:
		return s.Info.Render(label)
	case domain.TaskStatusCompleted:
		return s.Label.Render(label)
	case domain.TaskStatusCancelled:
		return s.Danger.Render(label)
	default:
		return s.Detail.Render(label)
	}
}

func (s Styles) PaymentStatus(status domain.PaymentStatus) string {
	label := string(status)
	switch status {
	case domain.PaymentStatusCompleted:
		return s.Success.Render(label)
	case domain.PaymentStatusPending:
		return s.Warning.Render(label)
	case domain.PaymentStatusFailed, domain.PaymentStatusRefunded:
		return s.Danger.Render(label)
	default:
		return s.Detail.Render(label)
	}
}
