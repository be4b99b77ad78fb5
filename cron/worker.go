package cron

import (
	"context"
	"errors"
	"time"

	schedulerRepo "appointly/database/repository/scheduler"
	"appointly/models"
	"appointly/services/notification"
	"appointly/services/tasks"
	"appointly/utils"

	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

// BookingReader is the slice of the repository the reminder worker needs.
type BookingReader interface {
	GetBookingByID(ctx context.Context, bookingID string) (*models.Booking, error)
}

// ReminderWorker consumes reminder tasks from the reminder queue.
type ReminderWorker struct {
	srv    *asynq.Server
	mux    *asynq.ServeMux
	logger *zap.Logger
}

// NewReminderWorker wires the reminder handler onto an asynq server.
func NewReminderWorker(bookings BookingReader, notifSvc notification.NotificationService, logger *zap.Logger) *ReminderWorker {
	addr, password, db := utils.RedisQueueAddr()
	srv := asynq.NewServer(
		asynq.RedisClientOpt{Addr: addr, Password: password, DB: db},
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
			Logger: logger.Sugar(),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeSendReminder, HandleReminderTask(bookings, notifSvc, logger))
	return &ReminderWorker{srv: srv, mux: mux, logger: logger}
}

// Start runs the worker in the background, retrying start-up with backoff.
func (w *ReminderWorker) Start() {
	go func() {
		w.logger.Info("[ReminderWorker] starting async worker")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			err := w.srv.Start(w.mux)
			if err == nil {
				return
			}
			w.logger.Error("[ReminderWorker] failed to start worker",
				zap.Int("attempt", attempts), zap.Int("maxAttempts", maxAttempts), zap.Error(err))
			if attempts == maxAttempts {
				w.logger.Error("[ReminderWorker] max retry attempts reached, reminders disabled")
				return
			}
			time.Sleep(time.Duration(attempts*2) * time.Second)
		}
	}()
}

// Shutdown stops fetching tasks and waits for in-flight handlers.
func (w *ReminderWorker) Shutdown() {
	w.srv.Shutdown()
}

// HandleReminderTask notifies the client only while the booking is still
// CONFIRMED for the slot the reminder was scheduled for.
func HandleReminderTask(bookings BookingReader, notifSvc notification.NotificationService, logger *zap.Logger) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		p, err := tasks.ParseReminderPayload(task)
		if err != nil {
			logger.Error("[ReminderHandler] invalid payload", zap.Error(err))
			return errors.Join(err, asynq.SkipRetry)
		}

		b, err := bookings.GetBookingByID(ctx, p.BookingID)
		if errors.Is(err, schedulerRepo.ErrNotFound) {
			logger.Warn("[ReminderHandler] booking vanished", zap.String("bookingID", p.BookingID))
			return nil
		}
		if err != nil {
			return err
		}
		if b.Status != models.BookingStatusConfirmed {
			logger.Info("[ReminderHandler] skipping reminder",
				zap.String("bookingID", b.ID), zap.String("status", string(b.Status)))
			return nil
		}
		if b.Date != p.Date || b.StartTime != p.StartTime {
			logger.Info("[ReminderHandler] skipping stale reminder for rescheduled booking",
				zap.String("bookingID", b.ID))
			return nil
		}

		if err := notifSvc.SendUserNotification(ctx, notification.BookingReminder(*b, time.Now())); err != nil {
			logger.Error("[ReminderHandler] failed to send notification", zap.String("bookingID", b.ID), zap.Error(err))
			return err
		}
		return nil
	}
}
