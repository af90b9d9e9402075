package ws

import (
	"context"
	"log"

	"github.com/openpair/coderoom/internal/domain"
)

// handleJoin admits the sender into a room and announces it. The joined
// event goes to every member, newcomer included: existing members render the
// "X joined" notice, the newcomer takes the member list for its panel.
func (c *Core) handleJoin(cl *Client, ev JoinEvent) {
	if err := domain.ValidateRoomID(ev.RoomID); err != nil {
		c.deliver(cl, NewError(err.Error()))
		return
	}
	if err := domain.ValidateUsername(ev.Username); err != nil {
		c.deliver(cl, NewError(err.Error()))
		return
	}

	username := domain.NormalizeUsername(ev.Username)

	// Hopping rooms is a departure first, so the old room hears a
	// disconnected announcement before the new one hears the join.
	if prev, ok := c.registry.Get(cl.ID); ok && prev.RoomID != ev.RoomID {
		c.removeAndAnnounce(cl)
	}

	members, opened := c.registry.Join(cl, ev.RoomID, username)
	payload := NewJoined(memberPayloads(DedupByName(members)), username, cl.ID)

	for _, m := range members {
		c.deliver(m, payload)
	}

	log.Printf("client %s (%s) joined room %s", cl.ID, username, ev.RoomID)
	c.updateGauges()

	if c.recorder != nil {
		roomID, count := ev.RoomID, len(members)
		go func() {
			ctx := context.Background()
			if opened {
				c.recorder.RoomOpened(ctx, roomID)
			}
			c.recorder.MemberJoined(ctx, roomID, username, count)
		}()
	}
}

// handleLeave is the voluntary exit. The connection itself stays open; the
// transport-drop path in handleDisconnect finds nothing to remove and
// no-ops.
func (c *Core) handleLeave(cl *Client, _ LeaveRoomEvent) {
	c.removeAndAnnounce(cl)
}

// handleDisconnect is the transport-drop path, also reached after a
// voluntary leave when the socket finally closes.
func (c *Core) handleDisconnect(cl *Client) {
	c.removeAndAnnounce(cl)
}

func (c *Core) removeAndAnnounce(cl *Client) {
	gone, remaining, ok := c.registry.Leave(cl.ID)
	if !ok {
		// Already removed; leaving twice is not an error.
		return
	}

	payload := NewDisconnected(gone.ID, gone.Username)
	for _, m := range remaining {
		c.deliver(m, payload)
	}

	log.Printf("client %s (%s) left room %s", gone.ID, gone.Username, gone.RoomID)
	c.updateGauges()

	if c.recorder != nil {
		roomID, username, count := gone.RoomID, gone.Username, len(remaining)
		go func() {
			ctx := context.Background()
			c.recorder.MemberLeft(ctx, roomID, username, count)
			if count == 0 {
				c.recorder.RoomClosed(ctx, roomID)
			}
		}()
	}
}

func memberPayloads(members []*Client) []MemberPayload {
	out := make([]MemberPayload, 0, len(members))
	for _, m := range members {
		out = append(out, MemberPayload{
			SocketID: m.ID,
			Username: m.Username,
		})
	}
	return out
}
