package jobs

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskExpiryReminders triggers the daily pharmaceutical expiry check.
	TaskExpiryReminders = "inventory:expiry_reminders"
)

// ExpiryRemindersPayload carries scheduling metadata.
type ExpiryRemindersPayload struct {
	RequestedAt time.Time `json:"requested_at,omitempty"`
	Source      string    `json:"source,omitempty"`
}

// NewExpiryRemindersTask constructs an Asynq task for the expiry check.
func NewExpiryRemindersTask(source string) (*asynq.Task, error) {
	body, err := json.Marshal(ExpiryRemindersPayload{Source: source})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskExpiryReminders, body, asynq.Queue(QueueDefault), asynq.MaxRetry(0)), nil
}
