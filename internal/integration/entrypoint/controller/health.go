// Package controller implements HTTP handlers for the API endpoints.
package controller

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker reports whether a dependency is reachable.
type HealthChecker func() bool

// HealthController handles health check endpoints.
type HealthController struct {
	dbHealthChecker    HealthChecker
	redisHealthChecker HealthChecker
}

// HealthResponse represents the health check response.
// Redis is "disabled" when the service runs without a lock store.
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	Redis     string `json:"redis"`
	Timestamp string `json:"timestamp"`
}

// NewHealthController creates a new health controller instance.
// redisHealthChecker may be nil.
func NewHealthController(dbHealthChecker, redisHealthChecker HealthChecker) *HealthController {
	return &HealthController{
		dbHealthChecker:    dbHealthChecker,
		redisHealthChecker: redisHealthChecker,
	}
}

// Check handles GET /health requests.
// It answers 503 when the database is unreachable.
func (h *HealthController) Check(c *gin.Context) {
	status := http.StatusOK
	response := HealthResponse{
		Status:    "ok",
		Database:  "connected",
		Redis:     "disabled",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if h.dbHealthChecker == nil || !h.dbHealthChecker() {
		status = http.StatusServiceUnavailable
		response.Status = "degraded"
		response.Database = "disconnected"
	}

	if h.redisHealthChecker != nil {
		response.Redis = "connected"
		if !h.redisHealthChecker() {
			response.Redis = "disconnected"
			response.Status = "degraded"
		}
	}

	c.JSON(status, response)
}
