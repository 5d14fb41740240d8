package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// GetHealth probes the database and reports basic liveness. A failing probe
// answers 503 so orchestrators restart the process.
func (h *Handler) GetHealth(c *gin.Context) {
	var one int
	if err := h.db.QueryRow("SELECT 1").Scan(&one); err != nil {
		slog.Error("Health check database probe failed", "error", err)
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "unhealthy",
			"error":  "database unreachable",
		})
		return
	}

	health := gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	if count, err := h.vehicleRepo.GetVehicleCount(); err == nil {
		health["vehicles"] = count
	}

	c.JSON(http.StatusOK, health)
}

// GetMetrics reports fleet counts and poll statistics as JSON.
func (h *Handler) GetMetrics(c *gin.Context) {
	snapshot := h.recorder.Snapshot()

	response := gin.H{
		"uptime_sec":     snapshot.UptimeSec,
		"poll_total":     snapshot.PollTotal,
		"poll_success":   snapshot.PollSuccess,
		"poll_failed":    snapshot.PollFailed,
		"latency_min_ms": snapshot.LatencyMinMs,
		"latency_avg_ms": snapshot.LatencyAvgMs,
		"latency_max_ms": snapshot.LatencyMaxMs,
	}

	if count, err := h.vehicleRepo.GetGuildCount(); err == nil {
		response["guilds"] = count
	} else {
		slog.Error("Database error", "operation", "get_guild_count", "error", err)
	}
	if count, err := h.vehicleRepo.GetVehicleCount(); err == nil {
		response["vehicles"] = count
	} else {
		slog.Error("Database error", "operation", "get_vehicle_count", "error", err)
	}
	if count, err := h.subRepo.GetSubscriptionCount(); err == nil {
		response["subscriptions"] = count
	} else {
		slog.Error("Database error", "operation", "get_subscription_count", "error", err)
	}

	c.JSON(http.StatusOK, response)
}

// GetRoot serves basic service information.
func (h *Handler) GetRoot(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"service":     "Fleetwatch",
		"version":     h.version,
		"description": "Vehicle status monitoring over RSS feeds with Discord notifications",
		"endpoints": gin.H{
			"health":     "/healthz",
			"metrics":    "/metrics",
			"prometheus": "/metrics/prometheus",
		},
	})
}
