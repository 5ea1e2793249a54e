// internal/handlers/ws_codes.go
package handlers

// Custom WebSocket close codes used by the room handler. These provide more
// specific reasons for closure than standard codes.
const (
	BadSubprotocolError = 3000 // Client connected with an unsupported subprotocol.
	BadTokenError       = 3001 // Provided reconnect token was invalid or expired.
	InvalidRoomError    = 3003 // Target room does not exist.
)
