package booking

import (
	"strings"

	"github.com/google/uuid"
)

// RoomLinker derives a deterministic meeting room URL per session. Stands in
// for an external call-provisioning integration.
type RoomLinker struct {
	baseURL string
}

func NewRoomLinker(baseURL string) *RoomLinker {
	return &RoomLinker{baseURL: strings.TrimRight(baseURL, "/")}
}

func (l *RoomLinker) MeetingLink(sessionID uuid.UUID) string {
	return l.baseURL + "/room/" + sessionID.String()
}
