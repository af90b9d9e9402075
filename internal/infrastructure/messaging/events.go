package messaging

const (
	PresenceQueue   = "presence"
	DeadLetterQueue = "dead_letter_queue"
)

// Routing keys for presence events.
const (
	KeyMemberJoined = "presence.member.joined"
	KeyMemberLeft   = "presence.member.left"
	KeyRoomOpened   = "presence.room.opened"
	KeyRoomClosed   = "presence.room.closed"
)

// PresenceEventData is the published payload for a membership transition.
type PresenceEventData struct {
	RoomID      string `json:"roomId"`
	Username    string `json:"username,omitempty"`
	MemberCount int    `json:"memberCount"`
}
