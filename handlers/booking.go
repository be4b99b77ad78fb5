package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"appointly/models"
	"appointly/services/booking"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SchedulingHandler exposes the booking engine over HTTP.
type SchedulingHandler struct {
	Service booking.SchedulingService
}

func NewSchedulingHandler(service booking.SchedulingService) *SchedulingHandler {
	return &SchedulingHandler{Service: service}
}

// CreateBookingHandler books a slot for the authenticated client.
func (h *SchedulingHandler) CreateBookingHandler(c *gin.Context) {
	who, ok := currentActor(c)
	if !ok {
		return
	}

	var input models.CreateBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, "Invalid booking payload", err)
		return
	}
	input.UserID = who.ID

	created, err := h.Service.CreateBooking(c.Request.Context(), input)
	if err != nil {
		respondError(c, "create booking", err)
		return
	}

	getLogger(c).Info("Booking created",
		zap.String("bookingID", created.ID),
		zap.String("bookingNumber", created.BookingNumber),
		zap.String("providerID", created.ProviderID))
	c.JSON(http.StatusCreated, gin.H{"booking": created})
}

func (h *SchedulingHandler) GetBookingHandler(c *gin.Context) {
	who, ok := currentActor(c)
	if !ok {
		return
	}
	b, ok := h.authorizedBooking(c, who, who.canSeeBooking)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": b})
}

// ListBookingsHandler lists bookings. Clients and providers only ever see
// their own; admins may filter by providerId and userId.
func (h *SchedulingHandler) ListBookingsHandler(c *gin.Context) {
	who, ok := currentActor(c)
	if !ok {
		return
	}

	filter := models.BookingFilter{
		DateFrom: c.Query("from"),
		DateTo:   c.Query("to"),
	}
	switch who.Role {
	case utils.RoleUser:
		filter.UserID = who.ID
	case utils.RoleProvider:
		filter.ProviderID = who.ID
	default:
		filter.ProviderID = c.Query("providerId")
		filter.UserID = c.Query("userId")
	}

	if raw := c.Query("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			filter.Statuses = append(filter.Statuses, models.BookingStatus(strings.ToUpper(strings.TrimSpace(s))))
		}
	}
	if raw := c.Query("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(c, "limit must be an integer", err)
			return
		}
		filter.Limit = limit
	}

	bookings, err := h.Service.ListBookings(c.Request.Context(), filter)
	if err != nil {
		respondError(c, "list bookings", err)
		return
	}
	if bookings == nil {
		bookings = []models.Booking{}
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings, "count": len(bookings)})
}

func (h *SchedulingHandler) RescheduleBookingHandler(c *gin.Context) {
	who, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.RescheduleBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid reschedule payload", err)
		return
	}
	if _, ok := h.authorizedBooking(c, who, who.canSeeBooking); !ok {
		return
	}

	updated, err := h.Service.RescheduleBooking(c.Request.Context(), c.Param("bookingID"), req.Date, req.StartTime)
	if err != nil {
		respondError(c, "reschedule booking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

func (h *SchedulingHandler) ConfirmBookingHandler(c *gin.Context) {
	h.providerTransition(c, "confirm booking", h.Service.ConfirmBooking)
}

func (h *SchedulingHandler) CompleteBookingHandler(c *gin.Context) {
	h.providerTransition(c, "complete booking", h.Service.CompleteBooking)
}

func (h *SchedulingHandler) NoShowBookingHandler(c *gin.Context) {
	h.providerTransition(c, "mark no-show", h.Service.MarkNoShow)
}

// CancelBookingHandler cancels on behalf of the client or the provider.
// The body is optional.
func (h *SchedulingHandler) CancelBookingHandler(c *gin.Context) {
	who, ok := currentActor(c)
	if !ok {
		return
	}

	var req models.CancelBookingRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, "Invalid cancel payload", err)
			return
		}
	}
	if _, ok := h.authorizedBooking(c, who, who.canSeeBooking); !ok {
		return
	}

	cancelled, err := h.Service.CancelBooking(c.Request.Context(), c.Param("bookingID"), req.Reason)
	if err != nil {
		respondError(c, "cancel booking", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"booking": cancelled})
}

func (h *SchedulingHandler) providerTransition(c *gin.Context, action string, apply func(context.Context, string) (*models.Booking, error)) {
	who, ok := currentActor(c)
	if !ok {
		return
	}
	allowed := func(b *models.Booking) bool { return who.canManageProvider(b.ProviderID) }
	if _, ok := h.authorizedBooking(c, who, allowed); !ok {
		return
	}

	updated, err := apply(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, action, err)
		return
	}
	getLogger(c).Info("Booking status changed",
		zap.String("bookingID", updated.ID),
		zap.String("status", string(updated.Status)),
		zap.String("actor", who.ID))
	c.JSON(http.StatusOK, gin.H{"booking": updated})
}

// authorizedBooking loads :bookingID and checks it against allowed, writing
// the error response itself when it returns false.
func (h *SchedulingHandler) authorizedBooking(c *gin.Context, who actor, allowed func(*models.Booking) bool) (*models.Booking, bool) {
	b, err := h.Service.GetBooking(c.Request.Context(), c.Param("bookingID"))
	if err != nil {
		respondError(c, "load booking", err)
		return nil, false
	}
	if !allowed(b) {
		getLogger(c).Warn("Booking access denied", zap.String("bookingID", b.ID), zap.String("actor", who.ID))
		forbidden(c)
		return nil, false
	}
	return b, true
}
