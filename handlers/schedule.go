package handlers

import (
	"net/http"

	"appointly/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GetSlotsHandler returns the slot grid for a date, or only the bookable
// start times when view=starts.
func (h *SchedulingHandler) GetSlotsHandler(c *gin.Context) {
	providerID := c.Param("providerID")
	serviceID := c.Param("serviceID")
	date := c.Query("date")
	if date == "" {
		badRequest(c, "date query parameter is required", nil)
		return
	}

	switch view := c.DefaultQuery("view", "full"); view {
	case "full":
		slots, err := h.Service.GetAvailableSlots(c.Request.Context(), providerID, serviceID, date)
		if err != nil {
			respondError(c, "get available slots", err)
			return
		}
		if slots == nil {
			slots = []models.Slot{}
		}
		c.JSON(http.StatusOK, models.AvailableSlotsResult{
			ProviderID: providerID,
			ServiceID:  serviceID,
			Date:       date,
			Slots:      slots,
		})
	case "starts":
		starts, err := h.Service.GetAvailableStartTimes(c.Request.Context(), providerID, serviceID, date)
		if err != nil {
			respondError(c, "get available start times", err)
			return
		}
		if starts == nil {
			starts = []string{}
		}
		c.JSON(http.StatusOK, gin.H{
			"providerId": providerID,
			"serviceId":  serviceID,
			"date":       date,
			"startTimes": starts,
		})
	default:
		badRequest(c, "view must be 'full' or 'starts'", nil)
	}
}

func (h *SchedulingHandler) GetWeeklyScheduleHandler(c *gin.Context) {
	entries, err := h.Service.GetWeeklySchedule(c.Request.Context(), c.Param("providerID"))
	if err != nil {
		respondError(c, "get weekly schedule", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// UpdateWeeklyScheduleHandler replaces the provider's whole week.
func (h *SchedulingHandler) UpdateWeeklyScheduleHandler(c *gin.Context) {
	providerID, ok := h.managedProvider(c)
	if !ok {
		return
	}

	var req models.WeeklyScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid weekly schedule payload", err)
		return
	}

	entries, err := h.Service.UpdateWeeklySchedule(c.Request.Context(), providerID, req.Entries)
	if err != nil {
		respondError(c, "update weekly schedule", err)
		return
	}
	getLogger(c).Info("Weekly schedule replaced", zap.String("providerID", providerID))
	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

func (h *SchedulingHandler) CreateOverrideHandler(c *gin.Context) {
	providerID, ok := h.managedProvider(c)
	if !ok {
		return
	}

	var req models.CreateOverrideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid override payload", err)
		return
	}

	override, err := h.Service.CreateOverride(c.Request.Context(), providerID, req)
	if err != nil {
		respondError(c, "create override", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"override": override})
}

func (h *SchedulingHandler) ListOverridesHandler(c *gin.Context) {
	overrides, err := h.Service.ListOverrides(c.Request.Context(), c.Param("providerID"), c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, "list overrides", err)
		return
	}
	if overrides == nil {
		overrides = []models.ScheduleOverride{}
	}
	c.JSON(http.StatusOK, gin.H{"overrides": overrides})
}

func (h *SchedulingHandler) DeleteOverrideHandler(c *gin.Context) {
	who, ok := currentActor(c)
	if !ok {
		return
	}
	overrideID := c.Param("overrideID")

	override, err := h.Service.GetOverride(c.Request.Context(), overrideID)
	if err != nil {
		respondError(c, "load override", err)
		return
	}
	if !who.canManageProvider(override.ProviderID) {
		forbidden(c)
		return
	}

	if err := h.Service.DeleteOverride(c.Request.Context(), overrideID); err != nil {
		respondError(c, "delete override", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *SchedulingHandler) GetStatsHandler(c *gin.Context) {
	providerID, ok := h.managedProvider(c)
	if !ok {
		return
	}

	stats, err := h.Service.GetBookingStats(c.Request.Context(), providerID, c.Query("from"), c.Query("to"))
	if err != nil {
		respondError(c, "get booking stats", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

// managedProvider returns :providerID if the caller may manage it.
func (h *SchedulingHandler) managedProvider(c *gin.Context) (string, bool) {
	who, ok := currentActor(c)
	if !ok {
		return "", false
	}
	providerID := c.Param("providerID")
	if !who.canManageProvider(providerID) {
		forbidden(c)
		return "", false
	}
	return providerID, true
}
