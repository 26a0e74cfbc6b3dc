package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/hibiken/asynq"

	"github.com/onco-erp/onco/internal/expiry"
	jobmetrics "github.com/onco-erp/onco/internal/jobs"
)

// ExpiryRunner performs one expiry reminder pass.
type ExpiryRunner interface {
	Run(ctx context.Context) expiry.Summary
}

// ExpiryRemindersJob adapts the expiry scheduler to an Asynq handler.
type ExpiryRemindersJob struct {
	Runner  ExpiryRunner
	Logger  *slog.Logger
	// Metrics may be nil, in which case runs are not recorded.
	Metrics *jobmetrics.Metrics
}

// NewExpiryRemindersJob wires dependencies for the expiry reminder handler.
func NewExpiryRemindersJob(runner ExpiryRunner, logger *slog.Logger, metrics *jobmetrics.Metrics) *ExpiryRemindersJob {
	return &ExpiryRemindersJob{Runner: runner, Logger: logger, Metrics: metrics}
}

// Handle runs the scheduler. It never asks Asynq to retry: a failed pass is
// logged and picked up again by the next daily run.
func (j *ExpiryRemindersJob) Handle(ctx context.Context, t *asynq.Task) error {
	if j == nil || j.Runner == nil {
		return errors.New("expiry reminders: handler not configured")
	}
	var payload ExpiryRemindersPayload
	if len(t.Payload()) > 0 {
		if err := json.Unmarshal(t.Payload(), &payload); err != nil {
			j.logger().Warn("expiry reminders: invalid payload", slog.Any("error", err))
		}
	}
	if payload.Source == "" {
		payload.Source = "cron"
	}

	tracker := j.Metrics.Track(TaskExpiryReminders)
	summary := j.Runner.Run(ctx)
	_ = tracker.End(summary.Err)
	j.Metrics.AddNotifications(TaskExpiryReminders, summary.Notifications)

	j.logger().Info("expiry reminders finished",
		slog.String("source", payload.Source),
		slog.Int("notifications", summary.Notifications),
		slog.Int("failures", summary.Failures))
	return nil
}

func (j *ExpiryRemindersJob) logger() *slog.Logger {
	if j.Logger != nil {
		return j.Logger
	}
	return slog.Default()
}
