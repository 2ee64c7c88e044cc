package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/bnema/skilllink-cli/internal/domain"
)

// Error is returned for every response with status >= 400.
type Error struct {
	StatusCode int
	Message    string
	Method     string
	Path       string
	Body       []byte

	// SessionEnded is set on a 401 whose refresh failed and cleared the tokens.
	SessionEnded bool
}

func newError(req Request, resp *Response) *Error {
	return &Error{
		StatusCode: resp.StatusCode,
		Message:    envelopeMessage(resp.Body),
		Method:     req.Method,
		Path:       req.Path,
		Body:       resp.Body,
	}
}

func (e *Error) Error() string {
	message := e.Message
	if message == "" {
		message = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, message)
}

func (e *Error) Unwrap() error {
	if e.SessionEnded {
		return domain.ErrSessionEnded
	}
	return nil
}

// UserMessage is what the notifier shows: the server message or the fallback.
func (e *Error) UserMessage() string {
	if e.Message != "" {
		return e.Message
	}
	return FallbackMessage
}

func StatusCode(err error) int {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}

func IsNotFound(err error) bool {
	return StatusCode(err) == http.StatusNotFound
}

func envelopeMessage(body []byte) string {
	var env struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &env); err != nil {
		return ""
	}
	return strings.TrimSpace(env.Message)
}
