package events

import (
	"context"
	"encoding/json"
	"log"

	"github.com/openpair/coderoom/internal/infrastructure/messaging"
)

// PresencePublisher pushes membership transitions onto the presence
// exchange. Publishing is best-effort: the room protocol never depends on
// the bus being up.
type PresencePublisher struct {
	rabbitmq *messaging.RabbitMQ
}

func NewPresencePublisher(rabbitmq *messaging.RabbitMQ) *PresencePublisher {
	return &PresencePublisher{
		rabbitmq: rabbitmq,
	}
}

func (p *PresencePublisher) publish(ctx context.Context, key string, data messaging.PresenceEventData) {
	body, err := json.Marshal(data)
	if err != nil {
		log.Printf("failed to encode presence event %s: %v", key, err)
		return
	}
	if err := p.rabbitmq.PublishMessage(ctx, key, body); err != nil {
		log.Printf("failed to publish presence event %s: %v", key, err)
	}
}

func (p *PresencePublisher) MemberJoined(ctx context.Context, roomID, username string, memberCount int) {
	p.publish(ctx, messaging.KeyMemberJoined, messaging.PresenceEventData{
		RoomID:      roomID,
		Username:    username,
		MemberCount: memberCount,
	})
}

func (p *PresencePublisher) MemberLeft(ctx context.Context, roomID, username string, memberCount int) {
	p.publish(ctx, messaging.KeyMemberLeft, messaging.PresenceEventData{
		RoomID:      roomID,
		Username:    username,
		MemberCount: memberCount,
	})
}

func (p *PresencePublisher) RoomOpened(ctx context.Context, roomID string) {
	p.publish(ctx, messaging.KeyRoomOpened, messaging.PresenceEventData{RoomID: roomID})
}

func (p *PresencePublisher) RoomClosed(ctx context.Context, roomID string) {
	p.publish(ctx, messaging.KeyRoomClosed, messaging.PresenceEventData{RoomID: roomID})
}
