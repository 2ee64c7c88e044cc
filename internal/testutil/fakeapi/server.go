// Package fakeapi is an in-process SkillLink backend for tests. It speaks
// the same routes and {success, message, data} envelope as the real server
// and records every call it receives.
package fakeapi

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
)

const (
	Password         = "secret"
	VerificationCode = "123456"

	ClientID     = "u-client"
	FreelancerID = "u-free"
	AdminID      = "u-admin"
)

type Call struct {
	Method        string
	Path          string
	Query         url.Values
	Authorization string
	RequestID     string
	ContentType   string
	Body          []byte
}

type grant struct {
	access string
	userID string
}

type override struct {
	status int
	body   any
	times  int
}

type Server struct {
	*httptest.Server

	mu            sync.Mutex
	calls         []Call
	sessions      map[string]string
	refreshTokens map[string]grant
	rotate        bool
	refreshStatus int
	refreshGate   chan struct{}
	overrides     map[string]*override
	nextID        int

	users         []domain.User
	tasks         []domain.Task
	bids          []domain.Bid
	messages      []domain.Message
	payments      []domain.Payment
	notifications []domain.Notification

	socket *socketHub
}

// New starts a backend seeded with one user per role and closes it with t.
func New(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		sessions:      map[string]string{},
		refreshTokens: map[string]grant{},
		overrides:     map[string]*override{},
		users: []domain.User{
			{ID: ClientID, Email: "client@skilllink.test", Name: "Casey Client", Role: domain.RoleClient, IsVerified: true},
			{ID: FreelancerID, Email: "free@skilllink.test", Name: "Frankie Freelancer", Role: domain.RoleFreelancer, IsVerified: true, Skills: []string{"go"}},
			{ID: AdminID, Email: "admin@skilllink.test", Name: "Ari Admin", Role: domain.RoleAdmin, IsVerified: true},
		},
		socket: newSocketHub(),
	}
	s.Server = httptest.NewServer(s.routes())
	t.Cleanup(s.Close)

	return s
}

func (s *Server) Close() {
	s.socket.closeAll()
	s.Server.Close()
}

// Authorize makes token a valid access token for userID.
func (s *Server) Authorize(token, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = userID
}

func (s *Server) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// AllowRefresh makes refreshToken exchangeable for nextAccess, bound to
// userID. An empty nextAccess mints a fresh token on every exchange.
func (s *Server) AllowRefresh(refreshToken, nextAccess, userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshTokens[refreshToken] = grant{access: nextAccess, userID: userID}
}

// RotateRefreshTokens makes refresh responses carry a new refresh token.
func (s *Server) RotateRefreshTokens(rotate bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rotate = rotate
}

// FailRefresh makes every refresh call answer status.
func (s *Server) FailRefresh(status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshStatus = status
}

// HoldRefresh blocks refresh calls until the returned func is called.
func (s *Server) HoldRefresh() (release func()) {
	gate := make(chan struct{})
	s.mu.Lock()
	s.refreshGate = gate
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { close(gate) })
	}
}

// Respond overrides the next times answers for method and path.
func (s *Server) Respond(method, path string, status int, body any, times int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overrides[method+" "+path] = &override{status: status, body: body, times: times}
}

func (s *Server) Calls() []Call {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Call(nil), s.calls...)
}

func (s *Server) CallsTo(method, path string) []Call {
	var matched []Call
	for _, c := range s.Calls() {
		if c.Method == method && c.Path == path {
			matched = append(matched, c)
		}
	}
	return matched
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(s.record)
	r.Use(s.overridden)

	r.Get("/socket.io/", s.serveSocket)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", s.register)
			r.Post("/verify-email", s.verifyEmail)
			r.Post("/resend-verification", s.resendVerification)
			r.Post("/login", s.login)
			r.Post("/refresh", s.refresh)
			r.With(s.authenticated).Post("/logout", s.logout)
			r.With(s.authenticated).Get("/me", s.me)
		})

		r.Group(func(r chi.Router) {
			r.Use(s.authenticated)

			r.Get("/users/profile", s.profile)
			r.Put("/users/profile", s.updateProfile)
			r.Get("/users", s.listUsers)

			r.Get("/tasks", s.listTasks)
			r.Post("/tasks", s.createTask)
			r.Get("/tasks/my/tasks", s.myTasks)
			r.Get("/tasks/{id}", s.getTask)
			r.Put("/tasks/{id}", s.updateTask)
			r.Delete("/tasks/{id}", s.deleteTask)

			r.Get("/bids/task/{taskId}", s.taskBids)
			r.Post("/bids/task/{taskId}", s.submitBid)
			r.Post("/bids/{bidId}/accept", s.acceptBid)
			r.Get("/bids/my/bids", s.myBids)

			r.Get("/messages/task/{taskId}", s.taskMessages)
			r.Post("/messages/task/{taskId}", s.postMessage)
			r.Patch("/messages/{id}/read", s.readMessage)

			r.Post("/payments/create-intent", s.createIntent)
			r.Get("/payments/history", s.paymentHistory)

			r.Get("/notifications", s.listNotifications)
			r.Patch("/notifications/mark-all-read", s.readAllNotifications)
			r.Patch("/notifications/{id}/read", s.readNotification)
		})
	})

	return r
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			body, _ = io.ReadAll(r.Body)
			_ = r.Body.Close()
			r.Body = io.NopCloser(bytes.NewReader(body))
		}

		s.mu.Lock()
		s.calls = append(s.calls, Call{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         r.URL.Query(),
			Authorization: r.Header.Get("Authorization"),
			RequestID:     r.Header.Get("X-Request-ID"),
			ContentType:   r.Header.Get("Content-Type"),
			Body:          body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) overridden(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		o, ok := s.overrides[r.Method+" "+r.URL.Path]
		if ok {
			o.times--
			if o.times <= 0 {
				delete(s.overrides, r.Method+" "+r.URL.Path)
			}
		}
		s.mu.Unlock()

		if !ok {
			next.ServeHTTP(w, r)
			return
		}
		render.Status(r, o.status)
		render.JSON(w, r, o.body)
	})
}

func (s *Server) authenticated(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if _, ok := s.userForToken(token); !ok || token == "" {
			replyError(w, r, http.StatusUnauthorized, "Invalid or expired token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) userForToken(token string) (domain.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	userID, ok := s.sessions[token]
	if !ok {
		return domain.User{}, false
	}
	for _, user := range s.users {
		if user.ID == userID {
			return user, true
		}
	}
	return domain.User{}, false
}

func (s *Server) currentUser(r *http.Request) domain.User {
	user, _ := s.userForToken(strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer "))
	return user
}

// issue mints a token pair for userID. Callers hold s.mu.
func (s *Server) issue(userID string) (string, string) {
	s.nextID++
	access := fmt.Sprintf("access-%d", s.nextID)
	refresh := fmt.Sprintf("refresh-%d", s.nextID)
	s.sessions[access] = userID
	s.refreshTokens[refresh] = grant{userID: userID}
	return access, refresh
}

func (s *Server) newID(prefix string) string {
	s.nextID++
	return fmt.Sprintf("%s-%d", prefix, s.nextID)
}

func reply(w http.ResponseWriter, r *http.Request, status int, data any) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"success": true, "data": data})
}

func replyError(w http.ResponseWriter, r *http.Request, status int, message string) {
	render.Status(r, status)
	render.JSON(w, r, map[string]any{"success": false, "message": message})
}

func (s *Server) AddUser(user domain.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users = append(s.users, user)
}

func (s *Server) AddTask(task domain.Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, task)
}

func (s *Server) AddBid(bid domain.Bid) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bids = append(s.bids, bid)
}

func (s *Server) AddMessage(message domain.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.messages = append(s.messages, message)
}

func (s *Server) AddPayment(payment domain.Payment) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.payments = append(s.payments, payment)
}

func (s *Server) AddNotification(notification domain.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.notifications = append(s.notifications, notification)
}

func (s *Server) Tasks() []domain.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Task(nil), s.tasks...)
}

func (s *Server) Messages() []domain.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Message(nil), s.messages...)
}

func (s *Server) Notifications() []domain.Notification {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Notification(nil), s.notifications...)
}
