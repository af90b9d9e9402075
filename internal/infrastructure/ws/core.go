package ws

import (
	"context"
	"log"

	"github.com/openpair/coderoom/internal/infrastructure/metrics"
)

// Envelope pairs an inbound event with the connection it arrived on.
type Envelope struct {
	Sender *Client
	Event  Inbound
}

// PresenceRecorder receives membership transitions for the audit trail.
// Implementations must not block the caller for long; the core invokes them
// off the reactor goroutine.
type PresenceRecorder interface {
	MemberJoined(ctx context.Context, roomID, username string, memberCount int)
	MemberLeft(ctx context.Context, roomID, username string, memberCount int)
	RoomOpened(ctx context.Context, roomID string)
	RoomClosed(ctx context.Context, roomID string)
}

// Core is the reactor for the realtime protocol. A single goroutine consumes
// inbound events and disconnects, so membership mutations for a room never
// interleave mid-update and presence events keep registry order.
type Core struct {
	registry   *Registry
	unregister chan *Client
	inbound    chan Envelope
	recorder   PresenceRecorder
	realtime   *metrics.Realtime
	maxChat    int
}

type CoreOption func(*Core)

func WithRecorder(rec PresenceRecorder) CoreOption {
	return func(c *Core) { c.recorder = rec }
}

func WithMetrics(m *metrics.Realtime) CoreOption {
	return func(c *Core) { c.realtime = m }
}

// WithChatLimit caps chat message length in bytes. Zero means unlimited.
func WithChatLimit(n int) CoreOption {
	return func(c *Core) { c.maxChat = n }
}

func NewCore(registry *Registry, opts ...CoreOption) *Core {
	c := &Core{
		registry:   registry,
		unregister: make(chan *Client),
		inbound:    make(chan Envelope, 256),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Core) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case cl := <-c.unregister:
			c.handleDisconnect(cl)
			close(cl.Message)

		case env := <-c.inbound:
			c.dispatch(env)
		}
	}
}

// dispatch routes one event to its handler. The switch is exhaustive over
// the Inbound variants; DecodeFrame guarantees nothing else arrives.
func (c *Core) dispatch(env Envelope) {
	switch ev := env.Event.(type) {
	case JoinEvent:
		c.handleJoin(env.Sender, ev)
	case LeaveRoomEvent:
		c.handleLeave(env.Sender, ev)
	case CodeChangeEvent:
		c.handleCodeChange(env.Sender, ev)
	case GetCodeEvent:
		c.handleGetCode(env.Sender, ev)
	case SendCodeEvent:
		c.handleSendCode(env.Sender, ev)
	case SendMessageEvent:
		c.handleChat(env.Sender, ev)
	default:
		log.Printf("ws unhandled event %T (client %s)", ev, env.Sender.ID)
	}
}

func (c *Core) Unregister() chan<- *Client {
	return c.unregister
}

func (c *Core) Inbound() chan<- Envelope {
	return c.inbound
}

// deliver queues msg for cl, metering drops.
func (c *Core) deliver(cl *Client, msg *Message) {
	if cl.trySend(msg) {
		return
	}
	log.Printf("client %s buffer full, dropping message", cl.ID)
	if c.realtime != nil {
		c.realtime.DroppedMessages.Inc()
	}
}

func (c *Core) updateGauges() {
	if c.realtime == nil {
		return
	}
	c.realtime.RoomsActive.Set(float64(c.registry.RoomCount()))
	c.realtime.ParticipantsActive.Set(float64(c.registry.ParticipantCount()))
}
