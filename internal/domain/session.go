package domain

import "strings"

type Session struct {
	AccessToken  string
	RefreshToken string
}

func (s Session) Authenticated() bool {
	return strings.TrimSpace(s.AccessToken) != ""
}

func (s Session) CanRefresh() bool {
	return strings.TrimSpace(s.RefreshToken) != ""
}

// AuthResult is what login, registration and email verification return.
type AuthResult struct {
	User         User   `json:"user"`
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

func (r AuthResult) Session() Session {
	return Session{AccessToken: r.AccessToken, RefreshToken: r.RefreshToken}
}
