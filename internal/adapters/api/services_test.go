package api

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/testutil/fakeapi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClientFixture(t *testing.T, userID string) (*Client, gatewayFixture) {
	t.Helper()

	f := newGatewayFixture(t, "token-"+userID, "")
	f.server.Authorize("token-"+userID, userID)
	return NewClient(f.gateway), f
}

func TestAuthServiceRegistrationAndVerification(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)
	ctx := context.Background()

	registered, err := client.Auth.Register(ctx, domain.RegisterInput{
		Email:    "new@skilllink.test",
		Password: fakeapi.Password,
		Name:     "New Person",
		Role:     domain.RoleFreelancer,
	})
	require.NoError(t, err)
	require.NotEmpty(t, registered.User.ID)
	assert.Empty(t, registered.AccessToken)

	require.NoError(t, client.Auth.ResendVerification(ctx, registered.User.ID))

	verified, err := client.Auth.VerifyEmail(ctx, registered.User.ID, fakeapi.VerificationCode)
	require.NoError(t, err)
	assert.True(t, verified.User.IsVerified)
	assert.NotEmpty(t, verified.AccessToken)
	assert.NotEmpty(t, verified.RefreshToken)

	verifyCalls := f.server.CallsTo(http.MethodPost, "/api/auth/verify-email")
	require.Len(t, verifyCalls, 1)
	assert.JSONEq(t, `{"userId":"`+registered.User.ID+`","code":"123456"}`, string(verifyCalls[0].Body))
}

func TestAuthServiceLoginMeLogout(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)
	ctx := context.Background()

	result, err := client.Auth.Login(ctx, "free@skilllink.test", fakeapi.Password)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.FreelancerID, result.User.ID)
	assert.Equal(t, domain.RoleFreelancer, result.User.Role)

	require.NoError(t, f.session.SetTokens(ctx, result.Session()))

	me, err := client.Auth.Me(ctx)
	require.NoError(t, err)
	assert.Equal(t, fakeapi.FreelancerID, me.ID)

	require.NoError(t, client.Auth.Logout(ctx))
	logoutCalls := f.server.CallsTo(http.MethodPost, "/api/auth/logout")
	require.Len(t, logoutCalls, 1)
	assert.Equal(t, "Bearer "+result.AccessToken, logoutCalls[0].Authorization)
}

func TestUserServiceProfileAndList(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.AdminID)
	ctx := context.Background()

	profile, err := client.Users.Profile(ctx)
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, profile.Role)

	updated, err := client.Users.UpdateProfile(ctx, domain.ProfileUpdate{Bio: "Runs the place", Skills: []string{"ops", "go"}})
	require.NoError(t, err)
	assert.Equal(t, "Runs the place", updated.Bio)
	assert.Equal(t, []string{"ops", "go"}, updated.Skills)

	calls := f.server.CallsTo(http.MethodPut, "/api/users/profile")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"bio":"Runs the place","skills":["ops","go"]}`, string(calls[0].Body))

	users, err := client.Users.List(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestTaskServiceListSendsFilters(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.FreelancerID)
	f.server.AddTask(domain.Task{ID: "t-1", Title: "Build a Go CLI", Budget: 500, Status: domain.TaskStatusOpen})
	f.server.AddTask(domain.Task{ID: "t-2", Title: "Logo design", Budget: 80, Status: domain.TaskStatusOpen})
	f.server.AddTask(domain.Task{ID: "t-3", Title: "Go microservice", Budget: 2000, Status: domain.TaskStatusCompleted})

	page, err := client.Tasks.List(context.Background(), domain.TaskFilter{
		Search:    "go",
		MinBudget: 100,
		MaxBudget: 1000.5,
		Status:    domain.TaskStatusOpen,
		Page:      1,
		Limit:     10,
	})
	require.NoError(t, err)
	require.Len(t, page.Tasks, 1)
	assert.Equal(t, "t-1", page.Tasks[0].ID)
	assert.Equal(t, 1, page.Pagination.Total)

	calls := f.server.CallsTo(http.MethodGet, "/api/tasks")
	require.Len(t, calls, 1)
	assert.Equal(t, "go", calls[0].Query.Get("search"))
	assert.Equal(t, "100", calls[0].Query.Get("minBudget"))
	assert.Equal(t, "1000.5", calls[0].Query.Get("maxBudget"))
	assert.Equal(t, "OPEN", calls[0].Query.Get("status"))
	assert.Equal(t, "1", calls[0].Query.Get("page"))
	assert.Equal(t, "10", calls[0].Query.Get("limit"))
}

func TestTaskServiceListOmitsZeroFilters(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.FreelancerID)

	_, err := client.Tasks.List(context.Background(), domain.TaskFilter{})
	require.NoError(t, err)

	calls := f.server.CallsTo(http.MethodGet, "/api/tasks")
	require.Len(t, calls, 1)
	assert.Empty(t, calls[0].Query)
}

func TestTaskServiceCreateUsesJSONWithoutAttachments(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)

	task, err := client.Tasks.Create(context.Background(), domain.TaskInput{
		Title:       "Write docs",
		Description: "Usage guide",
		Budget:      150,
		Deadline:    "2026-12-01",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Write docs", task.Title)
	assert.Equal(t, fakeapi.ClientID, task.ClientID)
	assert.Equal(t, time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC), task.Deadline)

	calls := f.server.CallsTo(http.MethodPost, "/api/tasks")
	require.Len(t, calls, 1)
	assert.Equal(t, "application/json", calls[0].ContentType)
}

func TestTaskServiceCreateUsesMultipartWithAttachments(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)

	task, err := client.Tasks.Create(context.Background(), domain.TaskInput{Title: "Brand kit", Budget: 300}, []domain.Attachment{
		{Name: "brief.pdf", Content: []byte("%PDF-1.4")},
		{Name: "logo.png", Content: []byte{0x89, 'P', 'N', 'G'}},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"brief.pdf", "logo.png"}, task.Attachments)
	assert.Equal(t, 300.0, task.Budget)

	calls := f.server.CallsTo(http.MethodPost, "/api/tasks")
	require.Len(t, calls, 1)
	assert.True(t, strings.HasPrefix(calls[0].ContentType, "multipart/form-data; boundary="))
}

func TestTaskServiceGetUpdateDeleteMine(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)
	f.server.AddTask(domain.Task{ID: "t-9", Title: "Old", Budget: 10, Status: domain.TaskStatusOpen, ClientID: fakeapi.ClientID})
	ctx := context.Background()

	got, err := client.Tasks.Get(ctx, "t-9")
	require.NoError(t, err)
	assert.Equal(t, "Old", got.Title)

	updated, err := client.Tasks.Update(ctx, "t-9", domain.TaskInput{Title: "New"})
	require.NoError(t, err)
	assert.Equal(t, "New", updated.Title)

	mine, err := client.Tasks.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	require.NoError(t, client.Tasks.Delete(ctx, "t-9"))
	assert.Empty(t, f.server.Tasks())
	assert.Len(t, f.server.CallsTo(http.MethodDelete, "/api/tasks/t-9"), 1)
}

func TestBidServiceRoutes(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.FreelancerID)
	f.server.AddTask(domain.Task{ID: "t-1", Title: "Build", Budget: 500, Status: domain.TaskStatusOpen, ClientID: fakeapi.ClientID})
	ctx := context.Background()

	bid, err := client.Bids.Submit(ctx, "t-1", domain.BidInput{Proposal: "I can do it", Amount: 450, Timeline: "1 week"})
	require.NoError(t, err)
	assert.Equal(t, "t-1", bid.TaskID)

	bids, err := client.Bids.ForTask(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, bids, 1)

	mine, err := client.Bids.Mine(ctx)
	require.NoError(t, err)
	require.Len(t, mine, 1)

	accepted, err := client.Bids.Accept(ctx, bid.ID)
	require.NoError(t, err)
	assert.Equal(t, "ACCEPTED", accepted.Status)

	submitCalls := f.server.CallsTo(http.MethodPost, "/api/bids/task/t-1")
	require.Len(t, submitCalls, 1)
	assert.JSONEq(t, `{"proposal":"I can do it","amount":450,"timeline":"1 week"}`, string(submitCalls[0].Body))
	assert.Len(t, f.server.CallsTo(http.MethodPost, "/api/bids/"+bid.ID+"/accept"), 1)
}

func TestMessageServiceRoutes(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)
	ctx := context.Background()

	sent, err := client.Messages.Send(ctx, "t-1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "hello", sent.Content)
	assert.Equal(t, "Casey Client", sent.SenderLabel())

	history, err := client.Messages.History(ctx, "t-1")
	require.NoError(t, err)
	require.Len(t, history, 1)

	require.NoError(t, client.Messages.MarkRead(ctx, sent.ID))
	require.NotNil(t, f.server.Messages()[0].ReadAt)

	calls := f.server.CallsTo(http.MethodPost, "/api/messages/task/t-1")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"content":"hello"}`, string(calls[0].Body))
}

func TestPaymentServiceRoutes(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)
	f.server.AddTask(domain.Task{ID: "t-1", Title: "Build", Budget: 500})
	ctx := context.Background()

	intent, err := client.Payments.CreateIntent(ctx, "t-1", "ms-1")
	require.NoError(t, err)
	assert.NotEmpty(t, intent.ClientSecret)
	assert.Equal(t, 500.0, intent.Amount)

	history, err := client.Payments.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.PaymentStatusPending, history[0].Status)

	calls := f.server.CallsTo(http.MethodPost, "/api/payments/create-intent")
	require.Len(t, calls, 1)
	assert.JSONEq(t, `{"taskId":"t-1","milestoneId":"ms-1"}`, string(calls[0].Body))
}

func TestNotificationServiceRoutes(t *testing.T) {
	t.Parallel()

	client, f := newClientFixture(t, fakeapi.ClientID)
	for _, id := range []string{"n-1", "n-2", "n-3"} {
		f.server.AddNotification(domain.Notification{ID: id, Type: "BID", Title: "New bid", Message: "Someone bid"})
	}
	ctx := context.Background()

	page, err := client.Notifications.List(ctx, 1, 2)
	require.NoError(t, err)
	require.Len(t, page.Notifications, 2)
	assert.Equal(t, 3, page.Pagination.Total)

	calls := f.server.CallsTo(http.MethodGet, "/api/notifications")
	require.Len(t, calls, 1)
	assert.Equal(t, "1", calls[0].Query.Get("page"))
	assert.Equal(t, "2", calls[0].Query.Get("limit"))

	require.NoError(t, client.Notifications.MarkRead(ctx, "n-2"))
	assert.Equal(t, 2, domain.UnreadCount(f.server.Notifications()))

	require.NoError(t, client.Notifications.MarkAllRead(ctx))
	assert.Zero(t, domain.UnreadCount(f.server.Notifications()))
	assert.Len(t, f.server.CallsTo(http.MethodPatch, "/api/notifications/mark-all-read"), 1)
}
