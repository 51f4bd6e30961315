package handlers

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/distillate-labs/dieseldesk/internal/services"
)

// HealthChecker reports whether one backing service is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// SystemStats is a point-in-time host resource snapshot.
type SystemStats struct {
	MemoryUsedPercent float64 `json:"memory_used_percent"`
	MemoryTotalGB     float64 `json:"memory_total_gb"`
	CPUPercent        float64 `json:"cpu_percent"`
	Goroutines        int     `json:"goroutines"`
}

// HealthResponse is the /health payload.
type HealthResponse struct {
	Status    string                  `json:"status"`
	Timestamp time.Time               `json:"timestamp"`
	Version   string                  `json:"version"`
	Services  map[string]string       `json:"services"`
	System    *SystemStats            `json:"system,omitempty"`
	Refresh   *services.RefreshResult `json:"last_refresh,omitempty"`
}

// HealthHandler serves liveness plus a snapshot of backing services and
// host resources.
type HealthHandler struct {
	db        HealthChecker
	redis     HealthChecker
	collector *services.CollectorService
	startedAt time.Time
}

// NewHealthHandler creates the handler. redis and collector may be nil.
func NewHealthHandler(db, redis HealthChecker, collector *services.CollectorService) *HealthHandler {
	return &HealthHandler{
		db:        db,
		redis:     redis,
		collector: collector,
		startedAt: time.Now(),
	}
}

// Check reports overall service health. Any unreachable dependency
// degrades the status and the HTTP code.
func (h *HealthHandler) Check(c *gin.Context) {
	ctx := c.Request.Context()
	response := HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Version:   "1.0.0",
		Services:  map[string]string{},
	}

	if h.db != nil {
		response.Services["database"] = "ok"
		if err := h.db.HealthCheck(ctx); err != nil {
			response.Services["database"] = "error"
			response.Status = "degraded"
		}
	}
	if h.redis != nil {
		response.Services["redis"] = "ok"
		if err := h.redis.HealthCheck(ctx); err != nil {
			response.Services["redis"] = "error"
			response.Status = "degraded"
		}
	}

	response.System = collectSystemStats(ctx)
	if h.collector != nil {
		response.Refresh = h.collector.LastRefresh()
	}

	statusCode := http.StatusOK
	if response.Status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}
	c.JSON(statusCode, response)
}

// Live is a bare liveness probe.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive", "uptime": time.Since(h.startedAt).String()})
}

func collectSystemStats(ctx context.Context) *SystemStats {
	stats := &SystemStats{Goroutines: runtime.NumGoroutine()}

	if memInfo, err := mem.VirtualMemoryWithContext(ctx); err == nil {
		stats.MemoryUsedPercent = memInfo.UsedPercent
		stats.MemoryTotalGB = float64(memInfo.Total) / (1024 * 1024 * 1024)
	}
	if percents, err := cpu.PercentWithContext(ctx, 0, false); err == nil && len(percents) > 0 {
		stats.CPUPercent = percents[0]
	}
	return stats
}
