package models

import "time"

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingStatusPending   BookingStatus = "PENDING"
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCompleted BookingStatus = "COMPLETED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusNoShow    BookingStatus = "NO_SHOW"
)

// ActiveBookingStatuses occupy provider time.
var ActiveBookingStatuses = []BookingStatus{BookingStatusPending, BookingStatusConfirmed}

// IsActive reports whether a booking in this status still holds its slot.
func (s BookingStatus) IsActive() bool {
	return s == BookingStatusPending || s == BookingStatusConfirmed
}

// IsTerminal reports whether no further action is allowed.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingStatusCompleted || s == BookingStatusCancelled || s == BookingStatusNoShow
}

// Valid reports whether s is a known status.
func (s BookingStatus) Valid() bool {
	return s.IsActive() || s.IsTerminal()
}

// Booking is a client's reservation of a provider for one service.
type Booking struct {
	ID                 string        `bson:"id" json:"id"`
	BookingNumber      string        `bson:"bookingNumber" json:"bookingNumber"`
	ProviderID         string        `bson:"providerId" json:"providerId"`
	ServiceID          string        `bson:"serviceId" json:"serviceId"`
	UserID             string        `bson:"userId" json:"userId"`
	Date               string        `bson:"date" json:"date"`           // "2006-01-02"
	StartTime          string        `bson:"startTime" json:"startTime"` // "HH:mm"
	EndTime            string        `bson:"endTime" json:"endTime"`     // derived from service duration
	Status             BookingStatus `bson:"status" json:"status"`
	Active             bool          `bson:"active" json:"-"` // mirrors Status.IsActive for the partial unique index
	Notes              string        `bson:"notes,omitempty" json:"notes,omitempty"`
	CancellationReason string        `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	CreatedAt          time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt          time.Time     `bson:"updatedAt" json:"updatedAt"`
	ConfirmedAt        *time.Time    `bson:"confirmedAt,omitempty" json:"confirmedAt,omitempty"`
	CompletedAt        *time.Time    `bson:"completedAt,omitempty" json:"completedAt,omitempty"`
	CancelledAt        *time.Time    `bson:"cancelledAt,omitempty" json:"cancelledAt,omitempty"`
}

// BookingFilter narrows a booking listing. Empty fields are ignored.
type BookingFilter struct {
	ProviderID string
	UserID     string
	Statuses   []BookingStatus
	DateFrom   string
	DateTo     string
	Limit      int
}

// BookingStats aggregates a provider's bookings by status.
type BookingStats struct {
	ProviderID string                `json:"providerId"`
	From       string                `json:"from,omitempty"`
	To         string                `json:"to,omitempty"`
	Total      int                   `json:"total"`
	ByStatus   map[BookingStatus]int `json:"byStatus"`
}

// CreateBookingInput carries a client's booking request. EndTime is never accepted.
type CreateBookingInput struct {
	UserID     string `json:"-"`
	ServiceID  string `json:"serviceId" binding:"required"`
	ProviderID string `json:"providerId" binding:"required"`
	Date       string `json:"date" binding:"required"`
	StartTime  string `json:"startTime" binding:"required"`
	Notes      string `json:"notes,omitempty"`
}

// RescheduleBookingRequest moves a booking to a new date and start time.
type RescheduleBookingRequest struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
}

// CancelBookingRequest carries the optional cancellation reason.
type CancelBookingRequest struct {
	Reason string `json:"reason"`
}
