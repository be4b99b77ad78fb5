package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"appointly/models"

	"github.com/hibiken/asynq"
)

const TypeSendReminder = "reminder:send"

// reminderRetention keeps finished reminder tasks inspectable for a day.
const reminderRetention = 24 * time.Hour

func NewReminderTask(payload models.ReminderPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeSendReminder, b)
	opts := []asynq.Option{
		asynq.ProcessAt(fireAt),
		asynq.MaxRetry(3),
		asynq.Retention(reminderRetention),
	}
	return task, opts, nil
}

// ParseReminderPayload decodes a reminder task body.
func ParseReminderPayload(task *asynq.Task) (models.ReminderPayload, error) {
	var p models.ReminderPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		return p, fmt.Errorf("invalid reminder payload: %w", err)
	}
	return p, nil
}

// Enqueuer is the part of *asynq.Client used to schedule tasks.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

// AsynqReminderScheduler enqueues booking reminders on the reminder queue.
type AsynqReminderScheduler struct {
	Client Enqueuer
}

func NewAsynqReminderScheduler(client Enqueuer) *AsynqReminderScheduler {
	return &AsynqReminderScheduler{Client: client}
}

// ScheduleReminder enqueues a reminder for booking to fire at at.
func (s *AsynqReminderScheduler) ScheduleReminder(ctx context.Context, booking models.Booking, at time.Time) error {
	task, opts, err := NewReminderTask(models.ReminderPayload{
		BookingID: booking.ID,
		UserID:    booking.UserID,
		Date:      booking.Date,
		StartTime: booking.StartTime,
		FireDate:  at.UTC().Format(time.RFC3339),
	}, at)
	if err != nil {
		return err
	}
	if _, err := s.Client.EnqueueContext(ctx, task, opts...); err != nil {
		return fmt.Errorf("failed to enqueue reminder for booking %s: %w", booking.ID, err)
	}
	return nil
}
