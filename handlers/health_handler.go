package handlers

import (
	"net/http"
	"runtime"
	"time"

	"suggestion-board-backend/cache"
	"suggestion-board-backend/database"

	"github.com/gin-gonic/gin"
)

// SystemInfo contains basic system metrics and information
type SystemInfo struct {
	Status       string           `json:"status"`
	Version      string           `json:"version"`
	Uptime       string           `json:"uptime"`
	StartTime    time.Time        `json:"start_time"`
	CurrentTime  time.Time        `json:"current_time"`
	GoVersion    string           `json:"go_version"`
	NumGoroutine int              `json:"num_goroutine"`
	NumCPU       int              `json:"num_cpu"`
	DBStatus     string           `json:"db_status"`
	RedisStatus  string           `json:"redis_status"`
	QueueStats   map[string]int64 `json:"queue_stats,omitempty"`
}

var (
	startTime = time.Now()
	version   = "0.1.0"
)

// HealthCheck provides the basic liveness endpoint
func (h *Handlers) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().Format(time.RFC3339),
	})
}

// SystemStatus provides detailed system state for operators
func (h *Handlers) SystemStatus(c *gin.Context) {
	dbStatus := "ok"
	sqlDB, err := database.DB.DB()
	if err != nil || sqlDB.Ping() != nil {
		dbStatus = "error"
	}

	redisStatus := "ok"
	client, err := cache.GetClient()
	if err != nil {
		redisStatus = "unavailable"
	} else if client.Ping(c.Request.Context()).Err() != nil {
		redisStatus = "error"
	}

	info := SystemInfo{
		Status:       "ok",
		Version:      version,
		Uptime:       time.Since(startTime).String(),
		StartTime:    startTime,
		CurrentTime:  time.Now(),
		GoVersion:    runtime.Version(),
		NumGoroutine: runtime.NumGoroutine(),
		NumCPU:       runtime.NumCPU(),
		DBStatus:     dbStatus,
		RedisStatus:  redisStatus,
		QueueStats:   h.events.Stats(),
	}

	c.JSON(http.StatusOK, info)
}

// RetryDeadLetters requeues failed board events. Admin only.
func (h *Handlers) RetryDeadLetters(c *gin.Context) {
	if err := h.events.RetryDeadLetters(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "dead letters requeued"})
}
