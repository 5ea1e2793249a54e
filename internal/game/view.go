// internal/game/view.go
package game

import (
	"github.com/google/uuid"

	"github.com/blitzuno/blitzuno/internal/models"
)

// CardView reveals a card's identity and face. Only cards visible to the
// requesting viewer (their own hand, the discard top) carry faces.
type CardView struct {
	ID    uuid.UUID    `json:"id"`
	Color models.Color `json:"color"`
	Value models.Value `json:"value"`
}

// PlayerView is one seat from the perspective of a requesting viewer. Other
// players' hands are reduced to their size.
type PlayerView struct {
	PlayerID        uuid.UUID  `json:"playerId"`
	DisplayName     string     `json:"displayName"`
	AvatarRef       string     `json:"avatarRef,omitempty"`
	Seat            int        `json:"seat"`
	IsAI            bool       `json:"isAI"`
	Connected       bool       `json:"connected"`
	HandSize        int        `json:"handSize"`
	TimeRemainingMs int64      `json:"timeRemainingMs"`
	IsCurrentTurn   bool       `json:"isCurrentTurn"`
	You             bool       `json:"you"`
	Hand            []CardView `json:"hand,omitempty"` // populated for the viewer only
}

// View is the projected game snapshot sent to a single viewer.
type View struct {
	GameID          uuid.UUID    `json:"gameId"`
	Phase           Phase        `json:"phase"`
	CurrentPlayerID uuid.UUID    `json:"currentPlayerId,omitempty"`
	Direction       int          `json:"direction"`
	ActiveColor     models.Color `json:"activeColor,omitempty"`
	DeckSize        int          `json:"deckSize"`
	DiscardSize     int          `json:"discardSize"`
	DiscardTop      *CardView    `json:"discardTop,omitempty"`
	UnoWindow       *UnoWindow   `json:"unoWindow,omitempty"`
	WinnerID        uuid.UUID    `json:"winnerId,omitempty"`
	EndReason       string       `json:"endReason,omitempty"`
	TurnSeq         int          `json:"turnSeq"`
	Players         []PlayerView `json:"players"`
}

// ViewFor projects the game for one viewer, hiding every other hand behind
// its size. Assumes the owning room's lock is held.
func (g *Game) ViewFor(viewerID uuid.UUID) View {
	v := View{
		GameID:      g.ID,
		Phase:       g.Phase,
		Direction:   g.Direction,
		ActiveColor: g.ActiveColor,
		DeckSize:    len(g.Deck),
		DiscardSize: len(g.Discard),
		WinnerID:    g.WinnerID,
		EndReason:   g.EndReason,
		TurnSeq:     g.TurnSeq,
	}
	if g.Phase == PhasePlaying {
		v.CurrentPlayerID = g.Players[g.CurrentIdx].ID
	}
	if top := g.DiscardTop(); top != nil {
		v.DiscardTop = &CardView{ID: top.ID, Color: top.Color, Value: top.Value}
	}
	if g.UnoWindow != nil {
		w := *g.UnoWindow
		v.UnoWindow = &w
	}

	for i, p := range g.Players {
		pv := PlayerView{
			PlayerID:        p.ID,
			DisplayName:     p.DisplayName,
			AvatarRef:       p.AvatarRef,
			Seat:            p.Seat,
			IsAI:            p.IsAI,
			Connected:       p.Connected,
			HandSize:        len(p.Hand),
			TimeRemainingMs: p.TimeRemainingMs,
			IsCurrentTurn:   g.Phase == PhasePlaying && i == g.CurrentIdx,
			You:             p.ID == viewerID,
		}
		if p.ID == viewerID {
			pv.Hand = make([]CardView, len(p.Hand))
			for j, c := range p.Hand {
				pv.Hand[j] = CardView{ID: c.ID, Color: c.Color, Value: c.Value}
			}
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
