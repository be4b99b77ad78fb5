package notification

import (
	"context"
	"fmt"
	"time"

	"appointly/models"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const TypeBookingReminder = "booking_reminder"

// NotificationService delivers messages to users.
type NotificationService interface {
	SendUserNotification(ctx context.Context, n models.Notification) error
}

// LogNotificationService writes notifications to the structured log. Delivery
// channels (push, e-mail) plug in behind NotificationService.
type LogNotificationService struct {
	Logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) *LogNotificationService {
	return &LogNotificationService{Logger: logger}
}

func (s *LogNotificationService) SendUserNotification(ctx context.Context, n models.Notification) error {
	if n.UserID == "" {
		return fmt.Errorf("SendUserNotification: notification %s has no recipient", n.ID)
	}
	s.Logger.Info("notification sent",
		zap.String("notificationID", n.ID),
		zap.String("userID", n.UserID),
		zap.String("type", n.Type),
		zap.String("title", n.Title),
		zap.String("message", n.Message),
	)
	return nil
}

// BookingReminder builds the reminder sent ahead of a confirmed booking.
func BookingReminder(b models.Booking, now time.Time) models.Notification {
	return models.Notification{
		ID:      uuid.New().String(),
		UserID:  b.UserID,
		Type:    TypeBookingReminder,
		Title:   "Upcoming appointment",
		Message: fmt.Sprintf("Booking %s starts on %s at %s.", b.BookingNumber, b.Date, b.StartTime),
		Data: map[string]any{
			"bookingId":     b.ID,
			"bookingNumber": b.BookingNumber,
			"providerId":    b.ProviderID,
		},
		CreatedAt: now,
	}
}
