package routes

import (
	"time"

	"appointly/handlers"
	"appointly/middleware"
	"appointly/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterProviderRoutes registers availability and schedule endpoints.
// Reads are public so clients can browse before signing in.
func RegisterProviderRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/providers/:providerID")
	{
		api.GET("/services/:serviceID/slots", hb.GetSlots)
		api.GET("/schedule", hb.GetWeeklySchedule)
		api.GET("/overrides", hb.ListOverrides)

		// Schedule management is for the provider itself or an admin.
		protected := api.Group("")
		protected.Use(middleware.JWTAuthMiddleware(hb.JWTSecret), middleware.RequireRole(utils.RoleProvider, utils.RoleAdmin))
		protected.PUT("/schedule", hb.UpdateWeeklySchedule)
		protected.POST("/overrides", hb.CreateOverride)
		protected.GET("/stats", hb.GetStats)
	}

	overrides := r.Group("/api/overrides")
	{
		overrides.Use(middleware.JWTAuthMiddleware(hb.JWTSecret), middleware.RequireRole(utils.RoleProvider, utils.RoleAdmin))
		overrides.DELETE("/:overrideID", hb.DeleteOverride)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking engine.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/bookings")
	{
		bookingGroup.Use(middleware.JWTAuthMiddleware(hb.JWTSecret))
		bookingGroup.POST("", middleware.RequireRole(utils.RoleUser), hb.CreateBooking)
		bookingGroup.GET("", hb.ListBookings)
		bookingGroup.GET("/:bookingID", hb.GetBooking)
		bookingGroup.PUT("/:bookingID/reschedule", hb.RescheduleBooking)
		bookingGroup.POST("/:bookingID/cancel", hb.CancelBooking)

		providerOnly := bookingGroup.Group("")
		providerOnly.Use(middleware.RequireRole(utils.RoleProvider, utils.RoleAdmin))
		providerOnly.POST("/:bookingID/confirm", hb.ConfirmBooking)
		providerOnly.POST("/:bookingID/complete", hb.CompleteBooking)
		providerOnly.POST("/:bookingID/no-show", hb.NoShowBooking)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.Health)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(hb.MaxRequestsPerMin))

	RegisterHealthRoute(r, hb)
	RegisterProviderRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
}
