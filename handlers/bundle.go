package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers and the secrets the router needs.
type HandlerBundle struct {
	JWTSecret         []byte
	MaxRequestsPerMin int

	Health gin.HandlerFunc

	// Availability and schedule endpoints
	GetSlots             gin.HandlerFunc
	GetWeeklySchedule    gin.HandlerFunc
	UpdateWeeklySchedule gin.HandlerFunc
	CreateOverride       gin.HandlerFunc
	ListOverrides        gin.HandlerFunc
	DeleteOverride       gin.HandlerFunc
	GetStats             gin.HandlerFunc

	// Booking endpoints
	CreateBooking     gin.HandlerFunc
	ListBookings      gin.HandlerFunc
	GetBooking        gin.HandlerFunc
	RescheduleBooking gin.HandlerFunc
	ConfirmBooking    gin.HandlerFunc
	CompleteBooking   gin.HandlerFunc
	NoShowBooking     gin.HandlerFunc
	CancelBooking     gin.HandlerFunc
}

// NewHandlerBundle wires a SchedulingHandler into a bundle.
func NewHandlerBundle(h *SchedulingHandler, health gin.HandlerFunc, jwtSecret []byte, maxRequestsPerMin int) *HandlerBundle {
	return &HandlerBundle{
		JWTSecret:         jwtSecret,
		MaxRequestsPerMin: maxRequestsPerMin,
		Health:            health,

		GetSlots:             h.GetSlotsHandler,
		GetWeeklySchedule:    h.GetWeeklyScheduleHandler,
		UpdateWeeklySchedule: h.UpdateWeeklyScheduleHandler,
		CreateOverride:       h.CreateOverrideHandler,
		ListOverrides:        h.ListOverridesHandler,
		DeleteOverride:       h.DeleteOverrideHandler,
		GetStats:             h.GetStatsHandler,

		CreateBooking:     h.CreateBookingHandler,
		ListBookings:      h.ListBookingsHandler,
		GetBooking:        h.GetBookingHandler,
		RescheduleBooking: h.RescheduleBookingHandler,
		ConfirmBooking:    h.ConfirmBookingHandler,
		CompleteBooking:   h.CompleteBookingHandler,
		NoShowBooking:     h.NoShowBookingHandler,
		CancelBooking:     h.CancelBookingHandler,
	}
}
