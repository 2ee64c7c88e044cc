package toast

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/bnema/skilllink-cli/internal/adapters/render/style"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/ports"
)

// Notifier prints toast messages as single lines, stderr by default.
type Notifier struct {
	mu     sync.Mutex
	out    io.Writer
	styles style.Styles
	quiet  bool
}

var _ ports.Notifier = (*Notifier)(nil)

type Option func(*Notifier)

func WithWriter(out io.Writer) Option {
	return func(n *Notifier) {
		if out != nil {
			n.out = out
		}
	}
}

func WithTheme(theme domain.Theme) Option {
	return func(n *Notifier) {
		n.styles = style.For(theme)
	}
}

// Quiet suppresses success toasts; errors are always shown.
func Quiet(quiet bool) Option {
	return func(n *Notifier) {
		n.quiet = quiet
	}
}

func New(opts ...Option) *Notifier {
	n := &Notifier{out: os.Stderr, styles: style.For(domain.ThemeDark)}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// SetTheme switches the palette once the preferred theme is known.
func (n *Notifier) SetTheme(theme domain.Theme) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.styles = style.For(theme)
}

func (n *Notifier) Error(message string) {
	n.print(false, message)
}

func (n *Notifier) Success(message string) {
	if n.quiet {
		return
	}
	n.print(true, message)
}

func (n *Notifier) print(success bool, message string) {
	if message == "" {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	icon := n.styles.Danger.Render("✗")
	if success {
		icon = n.styles.Success.Render("✓")
	}
	_, _ = fmt.Fprintf(n.out, "%s %s\n", icon, n.styles.Detail.Render(message))
}
