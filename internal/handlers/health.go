package handlers

import (
	"github.com/formpulse/backend/internal/models"
	"github.com/formpulse/backend/internal/services"
	"github.com/gin-gonic/gin"
)

// HealthHandler provides enhanced health check endpoints.
type HealthHandler struct {
	events *services.EventService
}

func NewHealthHandler(events *services.EventService) *HealthHandler {
	return &HealthHandler{events: events}
}

// CheckHealth returns the health status of all subsystems.
func (h *HealthHandler) CheckHealth(c *gin.Context) {
	overall := "healthy"

	// Database check
	dbStatus := "ok"
	sqlDB, err := models.GetDB().DB()
	if err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	} else if err := sqlDB.Ping(); err != nil {
		dbStatus = "error: " + err.Error()
		overall = "unhealthy"
	}

	// Queue mode
	taskQueue := services.GetTaskQueue()
	queueMode := "sync"
	if taskQueue != nil && taskQueue.IsAsync() {
		queueMode = "async (Redis)"
	}

	// Items awaiting a batch window
	var unsetCount int64
	models.GetDB().Model(&models.FeedbackItem{}).
		Where("analyzed_marker = ?", models.MarkerUnset).
		Count(&unsetCount)

	sseClients := 0
	if h.events != nil {
		sseClients = h.events.ClientCount()
	}

	c.JSON(200, gin.H{
		"status":  overall,
		"service": "formpulse",
		"components": gin.H{
			"database":      dbStatus,
			"queue_mode":    queueMode,
			"sse_clients":   sseClients,
			"pending_items": unsetCount,
		},
	})
}
