package health

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/openpair/coderoom/internal/infrastructure/json"
	"github.com/openpair/coderoom/internal/infrastructure/ws"
)

var (
	startTime       = time.Now()
	healthy   int32 = 1 // 1: healthy, 0 = unhealthy
)

// SetUnhealthy flips the readiness flag, used during graceful shutdown so
// load balancers stop routing new connections here.
func SetUnhealthy() {
	atomic.StoreInt32(&healthy, 0)
}

type Handler struct {
	registry *ws.Registry
}

func NewHandler(registry *ws.Registry) *Handler {
	return &Handler{registry: registry}
}

// GetHealth godoc
// @Summary      Health check
// @Description  Returns the health status of the API, including uptime and live room counts
// @Tags         health
// @Produce      json
// @Success      200 {object} healthResponse "Service is healthy"
// @Failure      503 {object} healthResponse "Service is unhealthy"
// @Router       /health [get]
// @Router       /healthz [get]
// @Router       /ready [get]
// @Router       /live [get]
func (h *Handler) GetHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(startTime).Round(time.Second).String(),
	}
	if h.registry != nil {
		resp.Rooms = h.registry.RoomCount()
		resp.Participants = h.registry.ParticipantCount()
	}

	if atomic.LoadInt32(&healthy) == 0 {
		resp.Status = "unhealthy"
		json.Write(w, http.StatusServiceUnavailable, resp)
		return
	}

	json.Write(w, http.StatusOK, resp)
}
