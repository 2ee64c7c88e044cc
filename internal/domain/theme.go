package domain

import (
	"fmt"
	"strings"
	"time"
)

type Theme string

const (
	ThemeDark  Theme = "dark"
	ThemeLight Theme = "light"
)

func ParseTheme(raw string) (Theme, error) {
	theme := Theme(strings.ToLower(strings.TrimSpace(raw)))
	switch theme {
	case ThemeDark, ThemeLight:
		return theme, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidTheme, raw)
	}
}

func (t Theme) Toggle() Theme {
	if t == ThemeDark {
		return ThemeLight
	}
	return ThemeDark
}

func (t Theme) IsDark() bool {
	return t == ThemeDark
}

// Preferences are local UI settings. An empty Theme means none was chosen.
type Preferences struct {
	Theme     Theme
	LastEmail string
	UpdatedAt time.Time
}
