package rooms

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/openpair/coderoom/internal/domain"
	"github.com/openpair/coderoom/internal/infrastructure/configs"
	"github.com/openpair/coderoom/internal/infrastructure/json"
	"github.com/openpair/coderoom/internal/infrastructure/logging"
	"github.com/openpair/coderoom/internal/infrastructure/ws"
)

type Handler struct {
	registry *ws.Registry
	core     *ws.Core
	upgrader *websocket.Upgrader
	logger   logging.Logger
	room     configs.RoomConfig
	audit    domain.PresenceAuditRepository // nil when the audit trail is not configured
}

func NewHandler(registry *ws.Registry, core *ws.Core, upgrader *websocket.Upgrader, logger logging.Logger, room configs.RoomConfig, audit domain.PresenceAuditRepository) *Handler {
	return &Handler{
		registry: registry,
		core:     core,
		upgrader: upgrader,
		logger:   logger,
		room:     room,
		audit:    audit,
	}
}

// AttachHandler godoc
// @Summary      Open the realtime connection
// @Description  Upgrades to a WebSocket carrying the room protocol. The client is expected to send a join event as its first frame; membership, code sync, and chat all travel on this connection.
// @Tags         rooms
// @Success      101 "Switching Protocols"
// @Failure      400 {object} json.ErrorResponse "Upgrade failed"
// @Router       /ws [get]
func (h *Handler) AttachHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn(logging.Realtime, logging.Membership, "websocket upgrade failed", map[logging.ExtraKey]any{
			logging.ErrorMessage: err.Error(),
		})
		return
	}

	// The code buffer is the largest thing a frame can carry; the envelope
	// and chat payloads fit in the slack.
	if h.room.MaxCodeBytes > 0 {
		conn.SetReadLimit(int64(h.room.MaxCodeBytes) + 4096)
	}

	client := ws.NewClient(conn, uuid.NewString(), h.room.SendBuffer)

	go client.WriteMessage()
	go client.ReadMessage(h.core)
}

// GetMembersHandler godoc
// @Summary      List room members
// @Description  Returns the current member list of a room, deduplicated by display name. Unknown rooms yield an empty list.
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Success      200 {object} membersResponse "Member list"
// @Failure      400 {object} json.ErrorResponse "Invalid room ID"
// @Router       /rooms/{roomId}/members [get]
func (h *Handler) GetMembersHandler(w http.ResponseWriter, r *http.Request) {
	roomID := chi.URLParam(r, "roomId")
	if roomID == "" {
		json.WriteValidationError(w, errors.New("room ID is missing"))
		return
	}
	if err := domain.ValidateRoomID(roomID); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	members := ws.DedupParticipants(h.registry.Participants(roomID))

	json.Write(w, http.StatusOK, membersResponse{
		RoomID:  roomID,
		Members: members,
	})
}

// GetPresenceHandler godoc
// @Summary      Room presence history
// @Description  Returns recent membership transitions for a room from the audit trail, newest first. Available only when the audit store is configured.
// @Tags         rooms
// @Produce      json
// @Param        roomId path string true "Room ID"
// @Param        limit query int false "Maximum entries to return (default 50)"
// @Success      200 {object} presenceResponse "Presence events"
// @Failure      400 {object} json.ErrorResponse "Invalid room ID"
// @Failure      404 {object} json.ErrorResponse "Audit trail not configured"
// @Router       /rooms/{roomId}/presence [get]
func (h *Handler) GetPresenceHandler(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		json.WriteError(w, http.StatusNotFound, "presence audit trail is not configured")
		return
	}

	roomID := chi.URLParam(r, "roomId")
	if err := domain.ValidateRoomID(roomID); err != nil {
		json.WriteValidationError(w, err)
		return
	}

	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 500 {
			json.WriteError(w, http.StatusBadRequest, "limit must be between 1 and 500")
			return
		}
		limit = n
	}

	events, err := h.audit.GetByRoomID(r.Context(), roomID, limit)
	if err != nil {
		h.logger.Error(logging.Mongo, logging.ExternalService, "presence history query failed", map[logging.ExtraKey]any{
			logging.RoomID:       roomID,
			logging.ErrorMessage: err.Error(),
		})
		json.WriteInternalError(w, err)
		return
	}

	json.Write(w, http.StatusOK, presenceResponse{
		RoomID: roomID,
		Events: events,
	})
}
