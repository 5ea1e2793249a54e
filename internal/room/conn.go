// internal/room/conn.go
package room

import (
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// Conn is a single client's presence in a room. Outbound messages go through
// a buffered channel drained by the transport's write pump, so room logic
// never blocks on network I/O while holding the room lock.
type Conn struct {
	PlayerID uuid.UUID
	Cancel   func()
	OutChan  chan map[string]interface{}
}

// NewConn builds a connection shell for the given player.
func NewConn(playerID uuid.UUID, cancel func()) *Conn {
	return &Conn{
		PlayerID: playerID,
		Cancel:   cancel,
		OutChan:  make(chan map[string]interface{}, 32),
	}
}

// Write pushes a message onto the connection's OutChan non-blockingly. A full
// or closed channel drops the message; the periodic state broadcasts make the
// client whole again.
func (c *Conn) Write(msg map[string]interface{}) {
	select {
	case c.OutChan <- msg:
	default:
		msgType, _ := msg["type"].(string)
		log.Warnf("room conn %s: OutChan full or closed, dropped %q", c.PlayerID, msgType)
	}
}

// WriteError is a convenience to send a transport-level error object.
func (c *Conn) WriteError(msg string) {
	c.Write(map[string]interface{}{
		"type":    "error",
		"message": msg,
	})
}
