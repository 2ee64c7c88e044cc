package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	filestore "github.com/bnema/skilllink-cli/internal/adapters/secrets/file"
	"github.com/bnema/skilllink-cli/internal/adapters/session"
	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/testutil/fakeapi"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const clientEmail = "client@skilllink.test"

type cliEnv struct {
	t      *testing.T
	home   string
	server *fakeapi.Server
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()

	home := t.TempDir()
	server := fakeapi.New(t)
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", home)
	t.Setenv("SKILLLINK_API_URL", server.URL)
	t.Setenv("SKILLLINK_SECRETS_BACKEND", "file")
	t.Setenv("SKILLLINK_LOG_LEVEL", "warn")

	return &cliEnv{t: t, home: home, server: server}
}

func (e *cliEnv) run(args ...string) (string, string, error) {
	return e.runWithInput("", args...)
}

func (e *cliEnv) runWithInput(stdin string, args ...string) (string, string, error) {
	e.t.Helper()

	app := newApp()
	app.detectTheme = func() domain.Theme { return domain.ThemeDark }

	root := newRootCmdFor(app)
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetIn(strings.NewReader(stdin))
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}

func (e *cliEnv) login() {
	e.t.Helper()
	_, _, err := e.run("login", "--email", clientEmail, "--password", fakeapi.Password)
	require.NoError(e.t, err)
}

func (e *cliEnv) sessionStore() *session.Store {
	return session.NewStore(filestore.NewStore(filepath.Join(e.home, "skilllink", "secrets")))
}

func TestVersionNeedsNoConfig(t *testing.T) {
	t.Setenv("SKILLLINK_API_URL", "not a url")

	root := newRootCmdFor(newApp())
	stdout := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetArgs([]string{"version"})

	require.NoError(t, root.Execute())
	assert.Equal(t, "dev\n", stdout.String())
}

func TestLoginWhoamiLogout(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("login", "--email", clientEmail, "--password", fakeapi.Password)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Logged in as Casey Client (Client)")

	stored, err := env.sessionStore().Load(context.Background())
	require.NoError(t, err)
	assert.True(t, stored.Authenticated())
	assert.True(t, stored.CanRefresh())

	stdout, _, err = env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Casey Client")

	_, stderr, err := env.run("logout")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Logged out")
	assert.Len(t, env.server.CallsTo(http.MethodPost, "/api/auth/logout"), 1)

	_, _, err = env.run("whoami")
	require.Error(t, err)
	assert.ErrorIs(t, err, errNotLoggedIn)
}

func TestLoginPromptsWithRememberedEmail(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	_, _, err := env.run("logout")
	require.NoError(t, err)

	stdout, stderr, err := env.runWithInput("\n"+fakeapi.Password+"\n", "login")
	require.NoError(t, err)
	assert.Contains(t, stderr, "Email ["+clientEmail+"]")
	assert.Contains(t, stdout, "Logged in as Casey Client")
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("login", "--email", clientEmail, "--password", "wrong")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid credentials")

	stdout, _, err := env.run("session")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Not logged in.")
}

func TestRegisterThenVerify(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("register",
		"--email", "nia@skilllink.test",
		"--name", "Nia New",
		"--role", "client",
		"--password", "pw",
		"--skills", "design, copy",
		"-o", "json",
	)
	require.NoError(t, err)

	var registered domain.User
	require.NoError(t, json.Unmarshal([]byte(stdout), &registered))
	assert.Equal(t, domain.RoleClient, registered.Role)
	assert.Equal(t, []string{"design", "copy"}, registered.Skills)
	require.NotEmpty(t, registered.ID)

	stored, err := env.sessionStore().Load(context.Background())
	require.NoError(t, err)
	assert.False(t, stored.Authenticated())

	stdout, _, err = env.run("verify", "--user", registered.ID, "--code", fakeapi.VerificationCode)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Email verified, logged in as Nia New")

	stdout, _, err = env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Nia New")
}

func TestRegisterRejectsUnknownRole(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("register", "--email", "x@skilllink.test", "--name", "X", "--role", "boss", "--password", "pw")
	require.ErrorIs(t, err, domain.ErrInvalidRole)
	assert.Empty(t, env.server.CallsTo(http.MethodPost, "/api/auth/register"))
}

func TestWhoamiRefreshesExpiredAccessToken(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, env.sessionStore().SetTokens(context.Background(), domain.Session{AccessToken: "stale", RefreshToken: "r-1"}))
	env.server.AllowRefresh("r-1", "fresh", fakeapi.ClientID)

	stdout, _, err := env.run("whoami")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Casey Client")

	stored, err := env.sessionStore().Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fresh", stored.AccessToken)
	assert.Len(t, env.server.CallsTo(http.MethodPost, "/api/auth/refresh"), 1)
}

func TestWhoamiEndsSessionWhenRefreshFails(t *testing.T) {
	env := newCLIEnv(t)
	require.NoError(t, env.sessionStore().SetTokens(context.Background(), domain.Session{AccessToken: "stale", RefreshToken: "r-unknown"}))

	_, _, err := env.run("whoami")
	require.Error(t, err)

	stored, err := env.sessionStore().Load(context.Background())
	require.NoError(t, err)
	assert.False(t, stored.Authenticated())
	assert.False(t, stored.CanRefresh())
}

func TestSessionDescribesTokensWithoutPrintingThem(t *testing.T) {
	env := newCLIEnv(t)

	expires := time.Now().Add(15 * time.Minute)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   fakeapi.ClientID,
		ExpiresAt: jwt.NewNumericDate(expires),
	}).SignedString([]byte("test-key"))
	require.NoError(t, err)
	require.NoError(t, env.sessionStore().SetTokens(context.Background(), domain.Session{AccessToken: token, RefreshToken: "r-1"}))

	stdout, _, err := env.run("session")
	require.NoError(t, err)
	assert.Contains(t, stdout, "refresh token stored")
	assert.Contains(t, stdout, "user id "+fakeapi.ClientID)
	assert.NotContains(t, stdout, token)
	assert.NotContains(t, stdout, "r-1")

	stdout, _, err = env.run("session", "-o", "json")
	require.NoError(t, err)

	var view sessionView
	require.NoError(t, json.Unmarshal([]byte(stdout), &view))
	assert.True(t, view.Authenticated)
	assert.True(t, view.HasRefreshToken)
	assert.Equal(t, fakeapi.ClientID, view.Subject)
	require.NotNil(t, view.ExpiresAt)
	assert.WithinDuration(t, expires, *view.ExpiresAt, time.Second)
}

func TestSessionWithOpaqueToken(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	stdout, _, err := env.run("session")
	require.NoError(t, err)
	assert.Contains(t, stdout, "access token opaque")
	assert.NotContains(t, stdout, "access-")
}

func seedTasks(server *fakeapi.Server) {
	server.AddTask(domain.Task{ID: "t-1", Title: "Build API", Description: "Go service", Budget: 500, Status: domain.TaskStatusOpen, ClientID: fakeapi.ClientID})
	server.AddTask(domain.Task{ID: "t-2", Title: "Design logo", Budget: 150, Status: domain.TaskStatusOpen, ClientID: fakeapi.ClientID})
}

func TestTasksListOutputs(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	seedTasks(env.server)

	t.Run("text", func(t *testing.T) {
		stdout, _, err := env.run("tasks", "list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Build API")
		assert.Contains(t, stdout, "Design logo")
		assert.Contains(t, stdout, "page 1 of 1 · 2 tasks")
	})

	t.Run("json with filters", func(t *testing.T) {
		stdout, _, err := env.run("tasks", "list", "--search", "api", "--status", "open", "-o", "json")
		require.NoError(t, err)

		var page domain.TaskPage
		require.NoError(t, json.Unmarshal([]byte(stdout), &page))
		require.Len(t, page.Tasks, 1)
		assert.Equal(t, "t-1", page.Tasks[0].ID)

		calls := env.server.CallsTo(http.MethodGet, "/api/tasks")
		require.NotEmpty(t, calls)
		last := calls[len(calls)-1]
		assert.Equal(t, "api", last.Query.Get("search"))
		assert.Equal(t, "OPEN", last.Query.Get("status"))
	})

	t.Run("yaml", func(t *testing.T) {
		stdout, _, err := env.run("tasks", "list", "-o", "yaml")
		require.NoError(t, err)

		var decoded map[string]any
		require.NoError(t, yaml.Unmarshal([]byte(stdout), &decoded))
		tasks, ok := decoded["tasks"].([]any)
		require.True(t, ok)
		assert.Len(t, tasks, 2)
	})

	t.Run("invalid status", func(t *testing.T) {
		_, _, err := env.run("tasks", "list", "--status", "bogus")
		require.ErrorIs(t, err, domain.ErrInvalidTaskState)
	})
}

func TestUnsupportedOutputFormat(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("tasks", "list", "-o", "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestTasksCreateWithAttachment(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	brief := filepath.Join(t.TempDir(), "brief.txt")
	require.NoError(t, os.WriteFile(brief, []byte("scope"), 0o600))

	stdout, stderr, err := env.run("tasks", "create",
		"--title", "New site",
		"--description", "Landing page",
		"--budget", "900",
		"--deadline", "2030-01-02",
		"--attach", brief,
		"-o", "json",
	)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Task created")

	var created domain.Task
	require.NoError(t, json.Unmarshal([]byte(stdout), &created))
	assert.Equal(t, "New site", created.Title)
	assert.Equal(t, []string{"brief.txt"}, created.Attachments)
	assert.Equal(t, 2030, created.Deadline.Year())

	calls := env.server.CallsTo(http.MethodPost, "/api/tasks")
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0].ContentType, "multipart/form-data"))
}

func TestTasksCreateRejectsBadDeadline(t *testing.T) {
	env := newCLIEnv(t)
	env.login()

	_, _, err := env.run("tasks", "create", "--title", "x", "--description", "y", "--budget", "10", "--deadline", "soon")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid deadline")
	assert.Empty(t, env.server.CallsTo(http.MethodPost, "/api/tasks"))
}

func TestMessagesSendAndList(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	seedTasks(env.server)

	_, _, err := env.run("messages", "send", "t-1", "hello", "there")
	require.NoError(t, err)

	messages := env.server.Messages()
	require.NotEmpty(t, messages)
	assert.Equal(t, "hello there", messages[len(messages)-1].Content)

	stdout, _, err := env.run("messages", "list", "t-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "you: hello there")
}

func TestChatPrintsHistoryAndSendsLines(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	seedTasks(env.server)
	env.server.AddMessage(domain.Message{
		ID:        "m-1",
		TaskID:    "t-1",
		SenderID:  fakeapi.FreelancerID,
		Content:   "first message",
		CreatedAt: time.Now().Add(-time.Minute),
	})

	stdout, _, err := env.runWithInput("hi from chat\n", "chat", "t-1")
	require.NoError(t, err)
	assert.Contains(t, stdout, "first message")

	require.Eventually(t, func() bool {
		for _, message := range env.server.Messages() {
			if message.Content == "hi from chat" && message.TaskID == "t-1" {
				return true
			}
		}
		return false
	}, 2*time.Second, 10*time.Millisecond)
}

func TestNotifications(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	env.server.AddNotification(domain.Notification{ID: "n-1", Type: "BID", Title: "New bid", Message: "Frankie bid $400", CreatedAt: time.Now()})
	env.server.AddNotification(domain.Notification{ID: "n-2", Type: "MESSAGE", Title: "New message", CreatedAt: time.Now()})

	stdout, _, err := env.run("notifications")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Notifications (2)")
	assert.Contains(t, stdout, "New bid")

	_, _, err = env.run("notifications", "read-all")
	require.NoError(t, err)
	for _, n := range env.server.Notifications() {
		assert.False(t, n.Unread(), n.ID)
	}
}

func TestDashboard(t *testing.T) {
	env := newCLIEnv(t)
	env.login()
	seedTasks(env.server)

	stdout, _, err := env.run("dashboard", "-o", "json")
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &decoded))
	assert.Contains(t, decoded, "client")
	user, ok := decoded["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Casey Client", user["name"])

	stdout, _, err = env.run("dashboard")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Welcome back, Casey Client")
}

func TestDashboardRequiresLogin(t *testing.T) {
	env := newCLIEnv(t)

	_, _, err := env.run("dashboard")
	require.ErrorIs(t, err, errNotLoggedIn)
}

func TestThemeCommands(t *testing.T) {
	env := newCLIEnv(t)

	stdout, _, err := env.run("theme")
	require.NoError(t, err)
	assert.Equal(t, "theme: dark\n", stdout)

	stdout, _, err = env.run("theme", "set", "light")
	require.NoError(t, err)
	assert.Equal(t, "theme: light\n", stdout)

	stdout, _, err = env.run("theme", "toggle", "-o", "json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"theme":"dark"}`, stdout)

	raw, err := os.ReadFile(filepath.Join(env.home, "skilllink", "preferences.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "theme = 'dark'")

	_, _, err = env.run("theme", "set", "neon")
	require.ErrorIs(t, err, domain.ErrInvalidTheme)
}
