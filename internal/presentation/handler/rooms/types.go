package rooms

import "github.com/openpair/coderoom/internal/domain"

type membersResponse struct {
	RoomID  string               `json:"roomId"`
	Members []domain.Participant `json:"members"`
}

type presenceResponse struct {
	RoomID string                    `json:"roomId"`
	Events []domain.PresenceAuditLog `json:"events"`
}
