// Package expiry emits in-app alerts for pharmaceutical items approaching
// their expiry date.
package expiry

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/onco-erp/onco/internal/inventory"
	"github.com/onco-erp/onco/internal/notifications"
	"github.com/onco-erp/onco/internal/users"
)

// ItemSource lists items that carry expiry tracking settings.
type ItemSource interface {
	ListExpiryTracked(ctx context.Context) ([]inventory.Item, error)
}

// Directory resolves role membership.
type Directory interface {
	ListByRole(ctx context.Context, role string) ([]users.User, error)
}

// NotificationWriter persists notification entries.
type NotificationWriter interface {
	Insert(ctx context.Context, log notifications.Log) (notifications.Log, error)
}

// Config wires the scheduler collaborators.
type Config struct {
	Items         ItemSource
	Users         Directory
	Notifications NotificationWriter
	Logger        *slog.Logger
	// Role receives the alerts. Defaults to users.RoleSystemManager.
	Role string
	// Location determines which calendar day counts as today. Defaults to UTC.
	Location *time.Location
	Clock    func() time.Time
}

// Summary describes a single scheduler pass.
type Summary struct {
	Items         int
	Fired         int
	Skipped       int
	Notifications int
	Failures      int
	// Err is set when the pass aborted before every item was inspected.
	Err error
}

// Scheduler performs the daily expiry check.
type Scheduler struct {
	items         ItemSource
	users         Directory
	notifications NotificationWriter
	logger        *slog.Logger
	role          string
	location      *time.Location
	clock         func() time.Time
}

// NewScheduler constructs a scheduler.
func NewScheduler(cfg Config) *Scheduler {
	s := &Scheduler{
		items:         cfg.Items,
		users:         cfg.Users,
		notifications: cfg.Notifications,
		logger:        cfg.Logger,
		role:          cfg.Role,
		location:      cfg.Location,
		clock:         cfg.Clock,
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.role == "" {
		s.role = users.RoleSystemManager
	}
	if s.location == nil {
		s.location = time.UTC
	}
	if s.clock == nil {
		s.clock = time.Now
	}
	return s
}

// Run inspects every tracked item once and notifies the configured role for
// items whose reminder day is today. Failures are logged and reported in the
// summary, never returned.
func (s *Scheduler) Run(ctx context.Context) (summary Summary) {
	logger := s.logger.With(slog.String("job", "expiry_reminders"))
	defer func() {
		if rec := recover(); rec != nil {
			summary.Err = fmt.Errorf("expiry reminders: panic: %v", rec)
			logger.Error("expiry reminder scheduler error", slog.Any("error", rec), slog.String("stack", string(debug.Stack())))
		}
	}()

	items, err := s.items.ListExpiryTracked(ctx)
	if err != nil {
		summary.Err = fmt.Errorf("expiry reminders: list items: %w", err)
		logger.Error("expiry reminder scheduler error", slog.Any("error", summary.Err))
		return summary
	}
	summary.Items = len(items)
	if len(items) == 0 {
		logger.Info("no pharmaceutical items with expiry dates found")
		return summary
	}

	today := civilDate(s.clock(), s.location)
	for _, item := range items {
		if !item.Tracked() {
			summary.Skipped++
			continue
		}
		days, ok := inventory.ReminderDays(item.Reminder)
		if !ok {
			summary.Skipped++
			continue
		}
		expiry := civilDate(*item.ExpiryDate, nil)
		if !inventory.ReminderDate(expiry, days).Equal(today) {
			continue
		}
		summary.Fired++
		sent, err := s.notify(ctx, item, expiry, today)
		summary.Notifications += sent
		if err != nil {
			summary.Failures++
			logger.Error("failed to send expiry notification",
				slog.String("item", item.Code),
				slog.String("item_name", item.ItemName),
				slog.Any("error", err))
			continue
		}
		logger.Info("notification sent for item", slog.String("item", item.Code), slog.Int("recipients", sent))
	}

	logger.Info("expiry reminders sent",
		slog.Int("notifications", summary.Notifications),
		slog.Int("items", summary.Items),
		slog.Int("fired", summary.Fired),
		slog.Int("skipped", summary.Skipped),
		slog.Int("failures", summary.Failures))
	return summary
}

// notify writes one notification per enabled member of the role and returns
// how many were written. The first failed write stops the fan-out for item.
func (s *Scheduler) notify(ctx context.Context, item inventory.Item, expiry, today time.Time) (int, error) {
	tmpl, err := buildTemplate(item, expiry, today)
	if err != nil {
		return 0, err
	}
	recipients, err := s.users.ListByRole(ctx, s.role)
	if err != nil {
		return 0, fmt.Errorf("list %s users: %w", s.role, err)
	}
	sent := 0
	for _, user := range recipients {
		if !user.IsActive {
			continue
		}
		if _, err := s.notifications.Insert(ctx, tmpl.CopyFor(user.Email)); err != nil {
			return sent, fmt.Errorf("notify %s: %w", user.Email, err)
		}
		sent++
	}
	return sent, nil
}
