package handlers

import (
	"net/http"

	"appointly/middleware"
	"appointly/models"
	"appointly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger returns the request-scoped logger set by middleware.RequestLogger.
func getLogger(c *gin.Context) *zap.Logger {
	if l, ok := c.Get("logger"); ok {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	return zap.L()
}

type actor struct {
	ID   string
	Role string
}

func (a actor) isAdmin() bool { return a.Role == utils.RoleAdmin }

// currentActor reads the identity set by middleware.JWTAuthMiddleware.
func currentActor(c *gin.Context) (actor, bool) {
	id := c.GetString(middleware.ActorIDKey)
	if id == "" {
		utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Not authenticated", "")
		return actor{}, false
	}
	return actor{ID: id, Role: c.GetString(middleware.ActorRoleKey)}, true
}

// canManageProvider reports whether the actor may change providerID's schedule
// or act on its bookings as the provider.
func (a actor) canManageProvider(providerID string) bool {
	return a.isAdmin() || (a.Role == utils.RoleProvider && a.ID == providerID)
}

// canSeeBooking is true for the booking's client, its provider and admins.
func (a actor) canSeeBooking(b *models.Booking) bool {
	if a.canManageProvider(b.ProviderID) {
		return true
	}
	return a.Role == utils.RoleUser && a.ID == b.UserID
}

func forbidden(c *gin.Context) {
	utils.JSONError(c, http.StatusForbidden, "forbidden", "You are not allowed to access this resource", "")
}
