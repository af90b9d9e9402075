package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type PresenceEventType string

const (
	EventMemberJoined PresenceEventType = "member_joined"
	EventMemberLeft   PresenceEventType = "member_left"
	EventRoomOpened   PresenceEventType = "room_opened"
	EventRoomClosed   PresenceEventType = "room_closed"
)

// PresenceAuditLog records a membership transition. Code and chat payloads
// are never audited; the server stays a pure relay for room content.
type PresenceAuditLog struct {
	ID        string            `bson:"_id" json:"id"`
	RoomID    string            `bson:"room_id" json:"roomId"`
	EventType PresenceEventType `bson:"event_type" json:"eventType"`
	Timestamp time.Time         `bson:"timestamp" json:"timestamp"`
	Metadata  map[string]any    `bson:"metadata,omitempty" json:"metadata,omitempty"`
}

type PresenceAuditRepository interface {
	Log(ctx context.Context, log *PresenceAuditLog) error
	GetByRoomID(ctx context.Context, roomID string, limit int) ([]PresenceAuditLog, error)
	GetByEventType(ctx context.Context, eventType PresenceEventType, from, to time.Time) ([]PresenceAuditLog, error)
	DeleteOlderThan(ctx context.Context, before time.Time) error
	EnsureIndexes(ctx context.Context) error
}

func NewMemberJoinedLog(roomID, username string, memberCount int) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventMemberJoined,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"username":     username,
			"member_count": memberCount,
		},
	}
}

func NewMemberLeftLog(roomID, username string, memberCount int) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventMemberLeft,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"username":     username,
			"member_count": memberCount,
		},
	}
}

func NewRoomOpenedLog(roomID string) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomOpened,
		Timestamp: time.Now(),
		Metadata:  map[string]any{},
	}
}

func NewRoomClosedLog(roomID string) *PresenceAuditLog {
	return &PresenceAuditLog{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		EventType: EventRoomClosed,
		Timestamp: time.Now(),
		Metadata:  map[string]any{},
	}
}
