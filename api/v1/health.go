package v1

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/taskizy-api/lib/cache"
	"gorm.io/gorm"
)

// HealthController reports the state of the API's backing services
type HealthController struct {
	db        *gorm.DB
	blacklist cache.TokenBlacklist
}

// NewHealthController creates a new health controller
func NewHealthController(db *gorm.DB, blacklist cache.TokenBlacklist) *HealthController {
	return &HealthController{db: db, blacklist: blacklist}
}

// HealthCheck handles the health check endpoint
func (hc *HealthController) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := gin.H{}
	healthy := true

	if sqlDB, err := hc.db.DB(); err != nil || sqlDB.PingContext(ctx) != nil {
		checks["database"] = "unavailable"
		healthy = false
	} else {
		checks["database"] = "ok"
	}

	if err := hc.blacklist.Ping(ctx); err != nil {
		checks["cache"] = "unavailable"
		healthy = false
	} else {
		checks["cache"] = "ok"
	}

	status, code := "ok", http.StatusOK
	if !healthy {
		status, code = "degraded", http.StatusServiceUnavailable
	}

	c.JSON(code, gin.H{
		"status":    status,
		"service":   "taskizy-api",
		"version":   "1.0.0",
		"checks":    checks,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}
