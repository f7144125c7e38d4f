package handler

import (
	"net/http"
	"runtime"
	"time"

	"bizgifts-bot/internal/repository"
	"bizgifts-bot/pkg/response"
)

// AdminHandler exposes operator-facing statistics over HTTP.
// Routes using it must sit behind the ops-key middleware.
type AdminHandler struct {
	connections repository.ConnectionRepository
	dbType      string
	startTime   time.Time
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(connections repository.ConnectionRepository, dbType string) *AdminHandler {
	return &AdminHandler{
		connections: connections,
		dbType:      dbType,
		startTime:   time.Now(),
	}
}

// GetStats handles GET /api/v1/admin/stats
func (h *AdminHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	stats := make(map[string]interface{})

	stats["uptime_seconds"] = int64(time.Since(h.startTime).Seconds())
	stats["uptime_human"] = time.Since(h.startTime).Round(time.Second).String()
	stats["server_time"] = time.Now().Format(time.RFC3339)
	stats["registry_backend"] = h.dbType

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	stats["memory"] = map[string]interface{}{
		"alloc_mb":   float64(memStats.Alloc) / 1024 / 1024,
		"sys_mb":     float64(memStats.Sys) / 1024 / 1024,
		"num_gc":     memStats.NumGC,
		"goroutines": runtime.NumGoroutine(),
	}

	if h.connections != nil {
		count, err := h.connections.Count(ctx)
		if err == nil {
			stats["connections"] = map[string]interface{}{
				"total":  count,
				"status": "ok",
			}
		} else {
			stats["connections"] = map[string]interface{}{
				"status": "error",
				"error":  err.Error(),
			}
		}
	} else {
		stats["connections"] = map[string]interface{}{
			"status": "not_configured",
		}
	}

	response.OK(w, stats)
}
