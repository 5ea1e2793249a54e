// internal/game/ai.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"

	"github.com/blitzuno/blitzuno/internal/models"
)

// AIMove is a scripted decision for an AI-controlled seat: either a card play
// (with a chosen color when the card is wild) or a draw.
type AIMove struct {
	Draw        bool
	CardID      uuid.UUID
	ChosenColor models.Color
}

// ChooseAIMove picks a legal move for the given AI seat: the first legal card
// by hand order, or a draw when nothing is playable. Wild color preference is
// the most-held color in hand. Assumes the owning room's lock is held.
func (g *Game) ChooseAIMove(playerID uuid.UUID) AIMove {
	p := g.PlayerByID(playerID)
	if p == nil || g.Phase != PhasePlaying {
		return AIMove{Draw: true}
	}
	for _, c := range p.Hand {
		if !g.isLegalPlay(c) {
			continue
		}
		move := AIMove{CardID: c.ID}
		if c.IsWild() {
			move.ChosenColor = mostHeldColor(p.Hand, g.rng)
		}
		return move
	}
	return AIMove{Draw: true}
}

// mostHeldColor returns the playable color the hand holds most of, breaking
// an empty or all-wild hand with a random pick.
func mostHeldColor(hand []*models.Card, rng *rand.Rand) models.Color {
	counts := make(map[models.Color]int)
	for _, c := range hand {
		if !c.IsWild() {
			counts[c.Color]++
		}
	}
	best := models.Color("")
	for _, color := range models.Colors {
		if best == "" || counts[color] > counts[best] {
			best = color
		}
	}
	if counts[best] == 0 {
		return models.Colors[rng.Intn(len(models.Colors))]
	}
	return best
}

// AIThinkDelay returns an artificial thinking pause: 1-2s normally, with a
// 10% chance of a longer 3-5s stall so AI seats never feel instantaneous.
func AIThinkDelay(rng *rand.Rand) time.Duration {
	if rng.Float64() < 0.10 {
		return 3*time.Second + time.Duration(rng.Int63n(int64(2*time.Second)))
	}
	return time.Second + time.Duration(rng.Int63n(int64(time.Second)))
}

// RNG exposes the game's random source for room-level scheduling decisions.
func (g *Game) RNG() *rand.Rand { return g.rng }
