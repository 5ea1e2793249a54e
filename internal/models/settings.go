// internal/models/settings.go
package models

import "fmt"

// TimeoutPolicy selects what happens when a seat's clock reaches zero.
type TimeoutPolicy string

const (
	// TimeoutAutoDrawAndSkip forces the flagged seat to draw one card, then
	// advances the turn. The game continues.
	TimeoutAutoDrawAndSkip TimeoutPolicy = "autoDrawAndSkip"
	// TimeoutGameEnd ends the game immediately, crediting the remaining players.
	TimeoutGameEnd TimeoutPolicy = "gameEnd"
)

// RoomSettings captures the room-time configuration: seats, deck size,
// starting hands, and the chess-clock parameters.
type RoomSettings struct {
	MaxPlayers      int           `json:"maxPlayers"`
	DeckCount       int           `json:"deckCount"`
	StartingHand    int           `json:"startingHand"`
	InitialTimeMs   int64         `json:"initialTimeMs"`
	IncrementMs     int64         `json:"incrementMs"`
	TimeoutPolicy   TimeoutPolicy `json:"timeoutPolicy"`
	AISeats         int           `json:"aiSeats"`
	Password        string        `json:"-"` // write-only at create/join time
	RequirePassword bool          `json:"requirePassword"`
}

// DefaultRoomSettings returns the baseline configuration for a new room.
func DefaultRoomSettings() RoomSettings {
	return RoomSettings{
		MaxPlayers:    4,
		DeckCount:     1,
		StartingHand:  7,
		InitialTimeMs: 120_000,
		IncrementMs:   2_000,
		TimeoutPolicy: TimeoutAutoDrawAndSkip,
		AISeats:       0,
	}
}

// Update applies a partial settings payload. Absent keys keep their old
// values. Returns an error on the first invalid field; the receiver is left
// unchanged in that case.
func (s *RoomSettings) Update(partial map[string]interface{}) error {
	next := *s

	assignInt := func(field *int, key string, min, max int) error {
		val, exists := partial[key]
		if !exists || val == nil {
			return nil
		}
		f, ok := val.(float64) // JSON numbers decode as float64
		if !ok {
			return fmt.Errorf("invalid type for %s", key)
		}
		n := int(f)
		if n < min || n > max {
			return fmt.Errorf("%s must be between %d and %d", key, min, max)
		}
		*field = n
		return nil
	}
	assignInt64 := func(field *int64, key string, min int64) error {
		val, exists := partial[key]
		if !exists || val == nil {
			return nil
		}
		f, ok := val.(float64)
		if !ok {
			return fmt.Errorf("invalid type for %s", key)
		}
		n := int64(f)
		if n < min {
			return fmt.Errorf("%s must be >= %d", key, min)
		}
		*field = n
		return nil
	}

	if err := assignInt(&next.MaxPlayers, "maxPlayers", 2, 10); err != nil {
		return err
	}
	if err := assignInt(&next.DeckCount, "deckCount", 1, 4); err != nil {
		return err
	}
	if err := assignInt(&next.StartingHand, "startingHand", 1, 20); err != nil {
		return err
	}
	if err := assignInt(&next.AISeats, "aiSeats", 0, 9); err != nil {
		return err
	}
	if err := assignInt64(&next.InitialTimeMs, "initialTimeMs", 5_000); err != nil {
		return err
	}
	if err := assignInt64(&next.IncrementMs, "incrementMs", 0); err != nil {
		return err
	}
	if val, exists := partial["timeoutPolicy"]; exists && val != nil {
		str, ok := val.(string)
		if !ok {
			return fmt.Errorf("invalid type for timeoutPolicy")
		}
		switch TimeoutPolicy(str) {
		case TimeoutAutoDrawAndSkip, TimeoutGameEnd:
			next.TimeoutPolicy = TimeoutPolicy(str)
		default:
			return fmt.Errorf("unknown timeoutPolicy %q", str)
		}
	}

	*s = next
	return nil
}
