package domain

import (
	"strings"
	"time"

	"github.com/openpair/coderoom/internal/infrastructure/validate"
)

// Participant is one connected client's membership record inside one room.
// It holds the room identifier only, never a pointer back into the registry.
type Participant struct {
	SocketID string    `json:"socketId"`
	Username string    `json:"username"`
	RoomID   string    `json:"roomId"`
	JoinedAt time.Time `json:"joinedAt"`
}

// ValidateUsername rejects display names the room boundary won't accept.
// Names are not unique identifiers; the registry dedups them for display.
func ValidateUsername(rawName string) error {
	v := validate.Field("username",
		validate.Required(),
		validate.MinLength(1),
		validate.MaxLength(32),
		validate.NoSpaces(),
	)
	return v(rawName)
}

// ValidateRoomID checks a caller-supplied room identifier. Identifiers are
// opaque; collisions are not checked.
func ValidateRoomID(roomID string) error {
	v := validate.Field("roomId",
		validate.Required(),
		validate.MaxLength(128),
		validate.NoSpaces(),
	)
	return v(roomID)
}

// NormalizeUsername trims surrounding whitespace. Case is preserved: the
// historical clients show names as typed.
func NormalizeUsername(rawName string) string {
	return strings.TrimSpace(rawName)
}
