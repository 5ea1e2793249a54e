// internal/room/chat.go
package room

import (
	"time"

	"github.com/google/uuid"
)

// ChatMessage is one retained room chat line. The room keeps the most recent
// hundred and replays them on reconnect.
type ChatMessage struct {
	PlayerID    uuid.UUID `json:"playerId"`
	DisplayName string    `json:"displayName"`
	Text        string    `json:"text"`
	SentAt      time.Time `json:"sentAt"`
}
