package ws

// handleChat relays a message to every member of the room, sender included:
// the sender re-renders from the broadcast so it sees the same ordering as
// everyone else. Nothing is persisted.
func (c *Core) handleChat(cl *Client, ev SendMessageEvent) {
	if c.maxChat > 0 && len(ev.Message) > c.maxChat {
		c.deliver(cl, NewError("message too long"))
		return
	}

	username := ev.Username
	if username == "" {
		username = cl.Username
	}

	payload := NewChatMessage(username, ev.Message)

	for _, m := range c.registry.MembersOf(ev.RoomID) {
		c.deliver(m, payload)
	}

	if c.realtime != nil {
		c.realtime.ChatMessages.Inc()
	}
}
