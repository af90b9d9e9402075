package ws

// Code synchronization. The server never stores a buffer: code-change is a
// relay to everyone but the sender, and the late-joiner bootstrap borrows
// the buffer from the room elder. Concurrent editors can diverge under
// last-writer-wins; that is a documented property of the protocol, not a
// defect to patch here.

// handleCodeChange fans the new buffer out to every other member of the
// room. The sender already has it; echoing it back would clobber in-flight
// local edits.
func (c *Core) handleCodeChange(cl *Client, ev CodeChangeEvent) {
	payload := NewCodeChange(ev.Code)

	for _, m := range c.registry.MembersOf(ev.RoomID) {
		if m.ID == cl.ID {
			continue
		}
		c.deliver(m, payload)
	}

	if c.realtime != nil {
		c.realtime.CodeBroadcasts.Inc()
	}
}

// handleGetCode starts the bootstrap handshake for a late joiner: the
// longest-tenured other participant is asked to push its buffer to the
// requester. A room with nobody else in it has nothing to sync.
func (c *Core) handleGetCode(cl *Client, ev GetCodeEvent) {
	elder := c.registry.Elder(ev.RoomID, cl.ID)
	if elder == nil {
		return
	}

	c.deliver(elder, NewCodeRequest(cl.ID))

	if c.realtime != nil {
		c.realtime.BootstrapRequests.Inc()
	}
}

// handleSendCode completes the handshake: the pushed buffer is relayed to
// exactly the one target connection, never broadcast.
func (c *Core) handleSendCode(_ *Client, ev SendCodeEvent) {
	target, ok := c.registry.Get(ev.SocketID)
	if !ok {
		// Target disconnected between request and push; drop silently.
		return
	}
	c.deliver(target, NewCodeSync(ev.Code, ev.SocketID))
}
