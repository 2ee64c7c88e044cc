package domain

import (
	"fmt"
	"strings"
	"time"
)

type Role string

const (
	RoleClient     Role = "CLIENT"
	RoleFreelancer Role = "FREELANCER"
	RoleAdmin      Role = "ADMIN"
)

func ParseRole(raw string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(raw)))
	switch role {
	case RoleClient, RoleFreelancer, RoleAdmin:
		return role, nil
	default:
		return "", fmt.Errorf("%w %q", ErrInvalidRole, raw)
	}
}

func (r Role) Label() string {
	switch r {
	case RoleClient:
		return "Client"
	case RoleFreelancer:
		return "Freelancer"
	case RoleAdmin:
		return "Admin"
	case "":
		return "Unknown"
	default:
		return string(r)
	}
}

type User struct {
	ID                string    `json:"id"`
	Email             string    `json:"email"`
	Name              string    `json:"name"`
	Role              Role      `json:"role"`
	Bio               string    `json:"bio,omitempty"`
	Skills            []string  `json:"skills,omitempty"`
	PortfolioLinks    []string  `json:"portfolioLinks,omitempty"`
	ProfileVisibility string    `json:"profileVisibility,omitempty"`
	IsVerified        bool      `json:"isVerified"`
	CreatedAt         time.Time `json:"createdAt,omitempty"`
}

type RegisterInput struct {
	Email    string   `json:"email"`
	Password string   `json:"password"`
	Name     string   `json:"name"`
	Role     Role     `json:"role"`
	Bio      string   `json:"bio,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

type ProfileUpdate struct {
	Name              string   `json:"name,omitempty"`
	Bio               string   `json:"bio,omitempty"`
	Skills            []string `json:"skills,omitempty"`
	PortfolioLinks    []string `json:"portfolioLinks,omitempty"`
	ProfileVisibility string   `json:"profileVisibility,omitempty"`
}

// SplitList turns a comma separated form value into trimmed non-empty items.
func SplitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	items := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}
