package models

import (
	"github.com/google/uuid"
)

// Player is one seat in a room. Seat order is turn order; seat 0 is the host.
// The struct lives for the lifetime of the room; disconnects only flip
// Connected, they never remove the seat or clear the hand.
type Player struct {
	ID          uuid.UUID `json:"id"`
	DisplayName string    `json:"displayName"`
	AvatarRef   string    `json:"avatarRef,omitempty"`
	Seat        int       `json:"seat"`
	IsAI        bool      `json:"isAI"`

	Hand      []*Card `json:"-"`
	Connected bool    `json:"connected"`

	// TimeRemainingMs is the authoritative chess-clock balance for this seat.
	// Only the server mutates it; client countdowns are display projections.
	TimeRemainingMs int64 `json:"timeRemainingMs"`
}

// HoldsCard returns the card with the given id from the player's hand, or nil.
func (p *Player) HoldsCard(cardID uuid.UUID) *Card {
	for _, c := range p.Hand {
		if c.ID == cardID {
			return c
		}
	}
	return nil
}

// RemoveCard takes the card with the given id out of the hand. Returns false
// if the card is not held.
func (p *Player) RemoveCard(cardID uuid.UUID) bool {
	for i, c := range p.Hand {
		if c.ID == cardID {
			p.Hand = append(p.Hand[:i], p.Hand[i+1:]...)
			return true
		}
	}
	return false
}
