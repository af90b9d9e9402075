package ws

import (
	"encoding/json"
	"errors"
	"fmt"
)

var ErrUnknownEvent = errors.New("unknown event")

// Message is the outbound envelope written to clients.
type Message struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// frame is the inbound envelope. Data stays raw until the event name picks
// the payload type.
type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Inbound is the closed set of client-originated events. Every type below is
// a variant; the core's dispatch switch covers all of them.
type Inbound interface {
	inbound()
}

type JoinEvent struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
}

type CodeChangeEvent struct {
	RoomID string `json:"roomId"`
	Code   string `json:"code"`
}

type GetCodeEvent struct {
	RoomID string `json:"roomId"`
}

// SendCodeEvent is the bootstrap push: a participant answering a server
// request to hand its buffer to one target connection.
type SendCodeEvent struct {
	Code     string `json:"code"`
	SocketID string `json:"socketId"`
}

type SendMessageEvent struct {
	RoomID   string `json:"roomId"`
	Username string `json:"username"`
	Message  string `json:"message"`
}

type LeaveRoomEvent struct {
	RoomID string `json:"roomId"`
}

func (JoinEvent) inbound()        {}
func (CodeChangeEvent) inbound()  {}
func (GetCodeEvent) inbound()     {}
func (SendCodeEvent) inbound()    {}
func (SendMessageEvent) inbound() {}
func (LeaveRoomEvent) inbound()   {}

// DecodeFrame parses a raw client frame into its typed variant.
func DecodeFrame(raw []byte) (Inbound, error) {
	var f frame
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("malformed frame: %w", err)
	}

	var (
		ev  Inbound
		err error
	)

	switch f.Event {
	case EventJoin:
		var e JoinEvent
		err = json.Unmarshal(f.Data, &e)
		ev = e
	case EventCodeChange:
		var e CodeChangeEvent
		err = json.Unmarshal(f.Data, &e)
		ev = e
	case EventGetCode:
		var e GetCodeEvent
		err = json.Unmarshal(f.Data, &e)
		ev = e
	case EventSendCode:
		var e SendCodeEvent
		err = json.Unmarshal(f.Data, &e)
		ev = e
	case EventSendMessage:
		var e SendMessageEvent
		err = json.Unmarshal(f.Data, &e)
		ev = e
	case EventLeaveRoom:
		var e LeaveRoomEvent
		err = json.Unmarshal(f.Data, &e)
		ev = e
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, f.Event)
	}

	if err != nil {
		return nil, fmt.Errorf("malformed %q payload: %w", f.Event, err)
	}
	return ev, nil
}

// Payload structs

type MemberPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

type JoinedPayload struct {
	Clients  []MemberPayload `json:"clients"`
	Username string          `json:"username"`
	SocketID string          `json:"socketId"`
}

type DisconnectedPayload struct {
	SocketID string `json:"socketId"`
	Username string `json:"username"`
}

type CodeChangePayload struct {
	Code string `json:"code"`
}

type SendCodePayload struct {
	Code     string `json:"code,omitempty"`
	SocketID string `json:"socketId"`
}

type ChatPayload struct {
	Username string `json:"username"`
	Message  string `json:"message"`
}

type ErrorPayload struct {
	Message string `json:"message"`
}

func NewJoined(members []MemberPayload, username, socketID string) *Message {
	return &Message{
		Event: EventJoined,
		Data: JoinedPayload{
			Clients:  members,
			Username: username,
			SocketID: socketID,
		},
	}
}

func NewDisconnected(socketID, username string) *Message {
	return &Message{
		Event: EventDisconnected,
		Data: DisconnectedPayload{
			SocketID: socketID,
			Username: username,
		},
	}
}

func NewCodeChange(code string) *Message {
	return &Message{
		Event: EventCodeChange,
		Data:  CodeChangePayload{Code: code},
	}
}

// NewCodeRequest asks an existing participant to push its buffer to the
// connection identified by socketID.
func NewCodeRequest(socketID string) *Message {
	return &Message{
		Event: EventSendCode,
		Data:  SendCodePayload{SocketID: socketID},
	}
}

// NewCodeSync is the targeted delivery of a pushed buffer to one late joiner.
func NewCodeSync(code, socketID string) *Message {
	return &Message{
		Event: EventSendCode,
		Data: SendCodePayload{
			Code:     code,
			SocketID: socketID,
		},
	}
}

func NewChatMessage(username, message string) *Message {
	return &Message{
		Event: EventReceiveMessage,
		Data: ChatPayload{
			Username: username,
			Message:  message,
		},
	}
}

func NewError(message string) *Message {
	return &Message{
		Event: EventError,
		Data:  ErrorPayload{Message: message},
	}
}
