package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// Client is one connected participant. RoomID and Username stay empty until
// the join event admits it to a room.
type Client struct {
	conn     *connWrapper
	Message  chan *Message
	ID       string `json:"socketId"`
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	JoinedAt time.Time
}

func NewClient(conn *websocket.Conn, id string, buffer int) *Client {
	if buffer <= 0 {
		buffer = 64
	}
	return &Client{
		conn:    newConnWrapper(conn),
		Message: make(chan *Message, buffer), // buffered to avoid dead-locks on slow clients
		ID:      id,
	}
}

// trySend queues msg without blocking. A full queue means the client is too
// slow; the message is dropped rather than stalling the room.
func (c *Client) trySend(msg *Message) bool {
	select {
	case c.Message <- msg:
		return true
	default:
		return false
	}
}

// ReadMessage pumps inbound frames into the core until the transport drops.
func (c *Client) ReadMessage(core *Core) {
	defer func() {
		core.Unregister() <- c
		_ = c.conn.Close()
	}()

	for {
		_, raw, err := c.conn.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("ws read error (client %s): %v", c.ID, err)
			}
			break
		}

		ev, err := DecodeFrame(raw)
		if err != nil {
			log.Printf("ws bad frame (client %s): %v", c.ID, err)
			c.trySend(NewError("unrecognized event"))
			continue
		}

		core.Inbound() <- Envelope{Sender: c, Event: ev}
	}
}

func (c *Client) WriteMessage() {
	defer func() {
		_ = c.conn.Close()
	}()

	for msg := range c.Message {
		if err := c.conn.WriteJSON(msg); err != nil {
			log.Printf("ws write error (client %s): %v", c.ID, err)
			break
		}
	}
}
