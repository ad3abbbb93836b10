package handler

import (
	"runtime"
	"time"

	"github.com/dealerlink/backend/internal/infrastructure/persistence"
	"github.com/gin-gonic/gin"
)

// SystemHandler handles system-related API endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler
func NewSystemHandler(db *persistence.Database) *SystemHandler {
	return &SystemHandler{
		db:        db,
		startTime: time.Now(),
	}
}

// RegisterRoutes registers all system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	system := rg.Group("/system")
	{
		system.GET("/ping", h.Ping)
		system.GET("/info", h.GetSystemInfo)
		system.GET("/health", h.Health)
	}
}

// PingResponse represents the ping response
type PingResponse struct {
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
}

// Ping is a liveness check
func (h *SystemHandler) Ping(c *gin.Context) {
	h.Success(c, PingResponse{
		Message:   "pong",
		Timestamp: time.Now().Format(time.RFC3339),
	})
}

// SystemInfoResponse represents the system information response
type SystemInfoResponse struct {
	Name      string `json:"name"`
	Version   string `json:"version"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// GetSystemInfo returns basic build and uptime information
func (h *SystemHandler) GetSystemInfo(c *gin.Context) {
	h.Success(c, SystemInfoResponse{
		Name:      "DealerLink Settlement API",
		Version:   "1.0.0",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	})
}

// HealthResponse represents the readiness check response
type HealthResponse struct {
	Status   string                      `json:"status"`
	Database persistence.ConnectionStats `json:"database"`
}

// Health is a readiness check that verifies database connectivity
func (h *SystemHandler) Health(c *gin.Context) {
	if err := h.db.Ping(); err != nil {
		h.InternalError(c, "Database is unreachable")
		return
	}

	stats, err := h.db.Stats()
	if err != nil {
		h.InternalError(c, "Failed to read database stats")
		return
	}

	h.Success(c, HealthResponse{Status: "ok", Database: stats})
}
