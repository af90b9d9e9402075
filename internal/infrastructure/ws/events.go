package ws

// Wire event names. The vocabulary is closed: DecodeFrame rejects anything
// not listed here, and the core dispatches one handler per variant.
const (
	// client -> server
	EventJoin        = "join"
	EventCodeChange  = "code-change"
	EventGetCode     = "get-code"
	EventSendCode    = "send-code"
	EventSendMessage = "send-message"
	EventLeaveRoom   = "leave-room"

	// server -> client
	EventJoined         = "joined"
	EventDisconnected   = "disconnected"
	EventReceiveMessage = "receive-message"
	EventError          = "error"
)
