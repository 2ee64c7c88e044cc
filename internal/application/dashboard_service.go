package application

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/bnema/skilllink-cli/internal/domain"
	"github.com/bnema/skilllink-cli/internal/logging"
	"github.com/bnema/skilllink-cli/internal/ports"
	"github.com/sirupsen/logrus"
)

type DashboardService struct {
	users         ports.UserAPI
	tasks         ports.TaskAPI
	bids          ports.BidAPI
	payments      ports.PaymentAPI
	notifications ports.NotificationAPI
	logger        logrus.FieldLogger
}

func NewDashboardService(users ports.UserAPI, tasks ports.TaskAPI, bids ports.BidAPI, payments ports.PaymentAPI, notifications ports.NotificationAPI, logger logrus.FieldLogger) *DashboardService {
	if logger == nil {
		logger = logging.Discard()
	}

	return &DashboardService{
		users:         users,
		tasks:         tasks,
		bids:          bids,
		payments:      payments,
		notifications: notifications,
		logger:        logger,
	}
}

// Load fetches everything the role's overview needs concurrently and fails
// if any of those requests fails. The notification badge is best effort.
func (s *DashboardService) Load(ctx context.Context, user domain.User) (Dashboard, error) {
	dashboard := Dashboard{User: user}

	var (
		tasks    []domain.Task
		bids     []domain.Bid
		payments []domain.Payment
		users    []domain.User
		page     domain.NotificationPage
		notesErr error
	)

	var fetches []func(context.Context) error
	switch user.Role {
	case domain.RoleClient:
		fetches = append(fetches, s.myTasks(&tasks), s.paymentHistory(&payments))
	case domain.RoleFreelancer:
		fetches = append(fetches, s.myBids(&bids), s.myTasks(&tasks), s.paymentHistory(&payments))
	case domain.RoleAdmin:
		fetches = append(fetches, s.allUsers(&users), s.taskSample(&tasks), s.paymentHistory(&payments))
	default:
		return Dashboard{}, fmt.Errorf("%w %q", domain.ErrInvalidRole, user.Role)
	}

	errs := make([]error, len(fetches))
	var wg sync.WaitGroup
	for i, fetch := range fetches {
		i, fetch := i, fetch
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs[i] = fetch(ctx)
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		page, notesErr = s.notifications.List(ctx, 1, NotificationPeek)
	}()
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return Dashboard{}, err
	}
	if notesErr != nil {
		s.logger.WithError(notesErr).Warn("fetch notifications")
	} else {
		dashboard.Notifications = page.Notifications
		dashboard.Unread = domain.UnreadCount(page.Notifications)
	}

	dashboard.RecentTasks = recent(tasks)
	dashboard.RecentPayments = recent(payments)
	switch user.Role {
	case domain.RoleClient:
		stats := domain.NewClientStats(tasks, payments)
		dashboard.Client = &stats
	case domain.RoleFreelancer:
		stats := domain.NewFreelancerStats(bids, tasks, payments)
		dashboard.Freelancer = &stats
		dashboard.RecentBids = recent(bids)
	case domain.RoleAdmin:
		stats := domain.NewAdminStats(users, tasks, payments)
		dashboard.Admin = &stats
		dashboard.RecentUsers = recent(users)
	}

	return dashboard, nil
}

func (s *DashboardService) myTasks(out *[]domain.Task) func(context.Context) error {
	return func(ctx context.Context) error {
		tasks, err := s.tasks.Mine(ctx)
		if err != nil {
			return fmt.Errorf("fetch my tasks: %w", err)
		}
		*out = tasks
		return nil
	}
}

func (s *DashboardService) taskSample(out *[]domain.Task) func(context.Context) error {
	return func(ctx context.Context) error {
		page, err := s.tasks.List(ctx, domain.TaskFilter{Page: 1, Limit: domain.AdminTaskSampleSize})
		if err != nil {
			return fmt.Errorf("fetch tasks: %w", err)
		}
		*out = page.Tasks
		return nil
	}
}

func (s *DashboardService) myBids(out *[]domain.Bid) func(context.Context) error {
	return func(ctx context.Context) error {
		bids, err := s.bids.Mine(ctx)
		if err != nil {
			return fmt.Errorf("fetch my bids: %w", err)
		}
		*out = bids
		return nil
	}
}

func (s *DashboardService) paymentHistory(out *[]domain.Payment) func(context.Context) error {
	return func(ctx context.Context) error {
		payments, err := s.payments.History(ctx)
		if err != nil {
			return fmt.Errorf("fetch payment history: %w", err)
		}
		*out = payments
		return nil
	}
}

func (s *DashboardService) allUsers(out *[]domain.User) func(context.Context) error {
	return func(ctx context.Context) error {
		users, err := s.users.List(ctx)
		if err != nil {
			return fmt.Errorf("fetch users: %w", err)
		}
		*out = users
		return nil
	}
}
