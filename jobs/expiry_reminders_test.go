package jobs

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/onco-erp/onco/internal/expiry"
	jobmetrics "github.com/onco-erp/onco/internal/jobs"
)

type stubRunner struct {
	summary expiry.Summary
	calls   int
}

func (s *stubRunner) Run(context.Context) expiry.Summary {
	s.calls++
	return s.summary
}

func newTestJob(runner ExpiryRunner) *ExpiryRemindersJob {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewExpiryRemindersJob(runner, logger, jobmetrics.NewMetrics(prometheus.NewRegistry()))
}

func TestExpiryRemindersJobRunsScheduler(t *testing.T) {
	runner := &stubRunner{summary: expiry.Summary{Items: 2, Fired: 1, Notifications: 3}}
	task, err := NewExpiryRemindersTask("cli")
	require.NoError(t, err)
	require.Equal(t, TaskExpiryReminders, task.Type())

	require.NoError(t, newTestJob(runner).Handle(context.Background(), task))
	require.Equal(t, 1, runner.calls)
}

func TestExpiryRemindersJobNeverFails(t *testing.T) {
	runner := &stubRunner{summary: expiry.Summary{Err: errors.New("db down")}}
	job := newTestJob(runner)

	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskExpiryReminders, []byte("{not json"))))
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskExpiryReminders, nil)))
	require.Equal(t, 2, runner.calls)
}

func TestExpiryRemindersJobRequiresRunner(t *testing.T) {
	var job *ExpiryRemindersJob
	require.Error(t, job.Handle(context.Background(), asynq.NewTask(TaskExpiryReminders, nil)))
}

func TestExpiryRemindersJobWithoutMetrics(t *testing.T) {
	runner := &stubRunner{summary: expiry.Summary{Notifications: 1}}
	job := NewExpiryRemindersJob(runner, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
	require.NoError(t, job.Handle(context.Background(), asynq.NewTask(TaskExpiryReminders, nil)))
	require.Equal(t, 1, runner.calls)
}
