package events

import (
	"context"
	"encoding/json"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/openpair/coderoom/internal/domain"
	"github.com/openpair/coderoom/internal/infrastructure/messaging"
)

// PresenceConsumer drains the presence queue into the audit-log store. It is
// the only component that persists anything about rooms; code and chat never
// pass through here.
type PresenceConsumer struct {
	rabbitmq *messaging.RabbitMQ
	audit    domain.PresenceAuditRepository
}

func NewPresenceConsumer(rabbitmq *messaging.RabbitMQ, audit domain.PresenceAuditRepository) *PresenceConsumer {
	return &PresenceConsumer{
		rabbitmq: rabbitmq,
		audit:    audit,
	}
}

func (c *PresenceConsumer) Listen() error {
	return c.rabbitmq.ConsumeMessages(messaging.PresenceQueue, func(ctx context.Context, msg amqp.Delivery) error {
		var data messaging.PresenceEventData
		if err := json.Unmarshal(msg.Body, &data); err != nil {
			log.Printf("failed to unmarshal presence event: %v", err)
			return err
		}

		var entry *domain.PresenceAuditLog
		switch msg.RoutingKey {
		case messaging.KeyMemberJoined:
			entry = domain.NewMemberJoinedLog(data.RoomID, data.Username, data.MemberCount)
		case messaging.KeyMemberLeft:
			entry = domain.NewMemberLeftLog(data.RoomID, data.Username, data.MemberCount)
		case messaging.KeyRoomOpened:
			entry = domain.NewRoomOpenedLog(data.RoomID)
		case messaging.KeyRoomClosed:
			entry = domain.NewRoomClosedLog(data.RoomID)
		default:
			log.Printf("presence event with unknown routing key %q dropped", msg.RoutingKey)
			return nil
		}

		return c.audit.Log(ctx, entry)
	})
}
