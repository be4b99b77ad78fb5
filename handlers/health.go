package handlers

import (
	"net/http"

	"appointly/utils"

	"github.com/gin-gonic/gin"
)

// HealthHandler reports the latest dependency snapshot. It answers 503 when
// any dependency is down.
func HealthHandler(monitor *utils.HealthMonitor) gin.HandlerFunc {
	return func(c *gin.Context) {
		status := monitor.Status()
		if status.CheckedAt.IsZero() {
			status = monitor.Check(c.Request.Context())
		}

		healthy := status.Store
		for _, ok := range status.Redis {
			healthy = healthy && ok
		}

		code := http.StatusOK
		state := "ok"
		if !healthy {
			code = http.StatusServiceUnavailable
			state = "degraded"
		}
		c.JSON(code, gin.H{"status": state, "checks": status})
	}
}
