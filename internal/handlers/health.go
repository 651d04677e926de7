package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

type HealthHandler struct {
	provider string
	redis    *redis.Client
}

// NewHealthHandler reports liveness. rdb may be nil when stage events are disabled.
func NewHealthHandler(provider string, rdb *redis.Client) *HealthHandler {
	return &HealthHandler{provider: provider, redis: rdb}
}

func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	resp := map[string]interface{}{
		"status":   "ok",
		"provider": h.provider,
	}

	if h.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.redis.Ping(ctx).Err(); err != nil {
			// Events are best-effort, so a dead Redis degrades rather than fails.
			resp["status"] = "degraded"
			resp["redis"] = "unreachable"
		} else {
			resp["redis"] = "ok"
		}
	}

	writeJSON(w, http.StatusOK, resp)
}
