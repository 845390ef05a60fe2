package tasks

import (
	"encoding/json"
	"fmt"
	"time"

	"voicedesk/models"

	"github.com/hibiken/asynq"
)

// Task type names for the three post-booking sync units.
const (
	TypeNotificationSync = "sync:notification"
	TypeCalendarSync     = "sync:calendar"
	TypeCRMSync          = "sync:crm"
)

// NewSyncTask builds one sync task. Retries live inside the runner, so the
// queue itself never re-runs a task.
func NewSyncTask(taskType string, payload models.SyncPayload) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	opts := []asynq.Option{asynq.MaxRetry(0)}
	return asynq.NewTask(taskType, b), opts, nil
}

// AsynqSyncScheduler submits the three sync tasks for a booking operation to
// the shared queue. It satisfies the booking service's SyncScheduler contract.
type AsynqSyncScheduler struct {
	Client *asynq.Client
}

func NewAsynqSyncScheduler(redisOpts asynq.RedisClientOpt) *AsynqSyncScheduler {
	return &AsynqSyncScheduler{Client: asynq.NewClient(redisOpts)}
}

// ScheduleSync enqueues notification, calendar, and CRM sync for the booking.
// The three units are independent; enqueueing continues past a failure and the
// first error is reported after all three were attempted.
func (s *AsynqSyncScheduler) ScheduleSync(bookingID, op string, triggeredAt time.Time) error {
	payload := models.SyncPayload{
		BookingID:   bookingID,
		Op:          op,
		TriggeredAt: triggeredAt,
	}

	var firstErr error
	for _, taskType := range []string{TypeNotificationSync, TypeCalendarSync, TypeCRMSync} {
		task, opts, err := NewSyncTask(taskType, payload)
		if err == nil {
			_, err = s.Client.Enqueue(task, opts...)
		}
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("failed to enqueue %s for booking %s: %w", taskType, bookingID, err)
		}
	}
	return firstErr
}
