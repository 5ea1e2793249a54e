// internal/game/game.go
package game

import (
	"math/rand"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/blitzuno/blitzuno/internal/models"
)

// Phase is the room's lifecycle state. finished is terminal.
type Phase string

const (
	PhaseWaiting  Phase = "waiting"
	PhasePlaying  Phase = "playing"
	PhaseFinished Phase = "finished"
)

// End reasons reported alongside the finished phase.
const (
	EndReasonWin           = "win"
	EndReasonTimeout       = "timeout"
	EndReasonDeckExhausted = "deck_exhausted"
)

// UnoWindow is the call-or-be-caught sub-state. It exists for at most one
// player at a time: opened the instant a play leaves that player with exactly
// one card, cleared on call, on a successful catch, or silently when the
// player's next turn begins.
type UnoWindow struct {
	PlayerID uuid.UUID `json:"playerId"`
	Called   bool      `json:"called"`
}

// Game holds the authoritative state for one match. Every method assumes the
// owning room's lock is held; the engine performs no I/O and owns no
// goroutines, so the critical section stays purely in-memory.
type Game struct {
	ID       uuid.UUID
	Settings models.RoomSettings

	Players []*models.Player // seat order = turn order; seat 0 = host
	Deck    []*models.Card
	Discard []*models.Card

	CurrentIdx  int
	Direction   int // +1 or -1
	ActiveColor models.Color
	Phase       Phase
	WinnerID    uuid.UUID
	EndReason   string
	UnoWindow   *UnoWindow

	// TurnSeq increments every time the active seat changes. Deadline timers
	// and scheduled AI moves validate against it to discard stale fires.
	TurnSeq int

	Clock *Clock

	rng *rand.Rand
}

// NewGame builds the deck for the configured pack count and seeds the clock.
// The game stays in the waiting phase until Start.
func NewGame(settings models.RoomSettings, players []*models.Player) *Game {
	id, _ := uuid.NewRandom()
	g := &Game{
		ID:        id,
		Settings:  settings,
		Players:   players,
		Direction: 1,
		Phase:     PhaseWaiting,
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for i := 0; i < settings.DeckCount; i++ {
		g.Deck = append(g.Deck, models.NewPack()...)
	}
	g.shuffleDeck()
	g.Clock = NewClock(players, settings)
	return g
}

func (g *Game) shuffleDeck() {
	g.rng.Shuffle(len(g.Deck), func(i, j int) {
		g.Deck[i], g.Deck[j] = g.Deck[j], g.Deck[i]
	})
}

// Start deals the starting hands, flips the first discard, applies its effect
// if it is an action card, and starts the clock for the opening seat.
func (g *Game) Start() error {
	if g.Phase != PhaseWaiting {
		return ruleErr(CodeWrongPhase)
	}
	if len(g.Players) < 2 {
		return ruleErr(CodeTooFewPlayers)
	}

	for _, p := range g.Players {
		p.Hand = make([]*models.Card, 0, g.Settings.StartingHand)
		for i := 0; i < g.Settings.StartingHand; i++ {
			c := g.popDeck()
			if c == nil {
				break
			}
			p.Hand = append(p.Hand, c)
		}
	}

	g.Phase = PhasePlaying
	g.TurnSeq = 1
	g.flipFirstCard()
	if g.Phase == PhaseFinished {
		// Degenerate settings can exhaust the deck during the deal.
		return nil
	}
	g.Clock.Start(g.Players[g.CurrentIdx].ID)
	log.Infof("game %s started with %d players, first discard %s/%s", g.ID, len(g.Players), g.ActiveColor, g.DiscardTop().Value)
	return nil
}

// flipFirstCard turns the opening discard. A wild draw four is shuffled back
// and a replacement flipped; other action cards apply their effect before the
// first turn, consistent with standard rules.
func (g *Game) flipFirstCard() {
	var first *models.Card
	for {
		first = g.popDeck()
		if first == nil {
			g.endDefensively()
			return
		}
		if first.Value != models.ValueWildDraw {
			break
		}
		g.Deck = append(g.Deck, first)
		g.shuffleDeck()
	}
	g.Discard = append(g.Discard, first)

	switch first.Value {
	case models.ValueWild:
		g.ActiveColor = models.Colors[g.rng.Intn(len(models.Colors))]
	case models.ValueSkip:
		g.ActiveColor = first.Color
		g.CurrentIdx = g.seatAfter(g.CurrentIdx, 1)
	case models.ValueReverse:
		g.ActiveColor = first.Color
		if len(g.Players) == 2 {
			g.CurrentIdx = g.seatAfter(g.CurrentIdx, 1)
		} else {
			g.Direction = -g.Direction
		}
	case models.ValueDrawTwo:
		g.ActiveColor = first.Color
		g.dealTo(g.Players[g.CurrentIdx], 2)
		if g.Phase == PhasePlaying {
			g.CurrentIdx = g.seatAfter(g.CurrentIdx, 1)
		}
	default:
		g.ActiveColor = first.Color
	}
}

// CurrentPlayer returns the seat whose turn it is, or nil outside of play.
func (g *Game) CurrentPlayer() *models.Player {
	if g.Phase != PhasePlaying || len(g.Players) == 0 {
		return nil
	}
	return g.Players[g.CurrentIdx]
}

// PlayerByID finds a seat by player id.
func (g *Game) PlayerByID(id uuid.UUID) *models.Player {
	for _, p := range g.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// DiscardTop returns the active pile top, or nil before the first flip.
func (g *Game) DiscardTop() *models.Card {
	if len(g.Discard) == 0 {
		return nil
	}
	return g.Discard[len(g.Discard)-1]
}

// PlayCard validates and resolves a card play by the given player. On any
// violation it returns a RuleError and leaves state untouched.
func (g *Game) PlayCard(playerID, cardID uuid.UUID, chosenColor models.Color) error {
	if g.Phase != PhasePlaying {
		if g.Phase == PhaseFinished {
			return ruleErr(CodeGameOver)
		}
		return ruleErr(CodeWrongPhase)
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return ruleErr(CodePlayerNotFound)
	}
	if g.Players[g.CurrentIdx].ID != playerID {
		return ruleErr(CodeNotYourTurn)
	}
	card := p.HoldsCard(cardID)
	if card == nil {
		return ruleErr(CodeCardNotInHand)
	}
	if card.IsWild() {
		if chosenColor == "" {
			return ruleErr(CodeMissingColor)
		}
		if !models.ValidChosenColor(chosenColor) {
			return ruleErr(CodeInvalidColor)
		}
	} else if chosenColor != "" {
		return ruleErr(CodeInvalidColor)
	}
	if !g.isLegalPlay(card) {
		return ruleErr(CodeIllegalCard)
	}

	p.RemoveCard(cardID)
	g.Discard = append(g.Discard, card)
	if card.IsWild() {
		g.ActiveColor = chosenColor
	} else {
		g.ActiveColor = card.Color
	}

	// Win is decided before any UNO-window bookkeeping for this play.
	if len(p.Hand) == 0 {
		g.endWithWinner(p.ID, EndReasonWin)
		return nil
	}
	if len(p.Hand) == 1 {
		g.UnoWindow = &UnoWindow{PlayerID: p.ID}
	}

	g.resolveEffect(card)
	return nil
}

// isLegalPlay implements the match rule: color matches the active color, face
// matches the discard top, or the card is wild.
func (g *Game) isLegalPlay(card *models.Card) bool {
	if card.IsWild() {
		return true
	}
	if card.Color == g.ActiveColor {
		return true
	}
	top := g.DiscardTop()
	return top != nil && card.Value == top.Value
}

// resolveEffect applies the face effect of a just-played card and hands the
// turn off. Assumes the card is already on the discard pile.
func (g *Game) resolveEffect(card *models.Card) {
	steps := 1
	switch card.Value {
	case models.ValueSkip:
		steps = 2
	case models.ValueReverse:
		if len(g.Players) == 2 {
			steps = 2 // reverse behaves as a skip head-to-head
		} else {
			g.Direction = -g.Direction
		}
	case models.ValueDrawTwo:
		g.penalizeNextSeat(2)
		steps = 2
	case models.ValueWildDraw:
		g.penalizeNextSeat(4)
		steps = 2
	}
	if g.Phase != PhasePlaying {
		return // a penalty draw can exhaust the deck and end the round
	}
	g.advanceTurn(steps)
}

// penalizeNextSeat makes the seat after the current one draw n cards.
func (g *Game) penalizeNextSeat(n int) {
	target := g.Players[g.seatAfter(g.CurrentIdx, 1)]
	g.dealTo(target, n)
}

// DrawCard draws a single card for the acting player; a voluntary draw always
// ends the turn immediately after the draw.
func (g *Game) DrawCard(playerID uuid.UUID) (*models.Card, error) {
	if g.Phase != PhasePlaying {
		if g.Phase == PhaseFinished {
			return nil, ruleErr(CodeGameOver)
		}
		return nil, ruleErr(CodeWrongPhase)
	}
	p := g.PlayerByID(playerID)
	if p == nil {
		return nil, ruleErr(CodePlayerNotFound)
	}
	if g.Players[g.CurrentIdx].ID != playerID {
		return nil, ruleErr(CodeNotYourTurn)
	}

	before := len(p.Hand)
	g.dealTo(p, 1)
	var drawn *models.Card
	if len(p.Hand) > before {
		drawn = p.Hand[len(p.Hand)-1]
	}
	if g.Phase != PhasePlaying {
		return drawn, nil // deck exhaustion ended the round defensively
	}
	g.advanceTurn(1)
	return drawn, nil
}

// CallUno lets the window's own player declare before their next turn starts.
func (g *Game) CallUno(playerID uuid.UUID) error {
	if g.Phase != PhasePlaying {
		return ruleErr(CodeWrongPhase)
	}
	w := g.UnoWindow
	if w == nil || w.PlayerID != playerID {
		return ruleErr(CodeUnoWindowClosed)
	}
	if w.Called {
		return ruleErr(CodeUnoAlreadyCalled)
	}
	w.Called = true
	g.UnoWindow = nil
	return nil
}

// CatchUno penalizes an undeclared one-card player: the target draws two and
// the window closes. Legal only while the window is open and uncalled, and
// never against oneself.
func (g *Game) CatchUno(accuserID, targetID uuid.UUID) error {
	if g.Phase != PhasePlaying {
		return ruleErr(CodeWrongPhase)
	}
	if g.PlayerByID(accuserID) == nil {
		return ruleErr(CodePlayerNotFound)
	}
	if accuserID == targetID {
		return ruleErr(CodeCannotCatchSelf)
	}
	w := g.UnoWindow
	if w == nil || w.PlayerID != targetID || w.Called {
		return ruleErr(CodeUnoWindowClosed)
	}
	target := g.PlayerByID(targetID)
	if target == nil {
		return ruleErr(CodePlayerNotFound)
	}
	g.UnoWindow = nil
	g.dealTo(target, 2)
	return nil
}

// ApplyTimeout applies the configured policy to the active seat once its
// clock hits zero. Returns the flagged player and the applied policy.
func (g *Game) ApplyTimeout() (uuid.UUID, models.TimeoutPolicy) {
	if g.Phase != PhasePlaying {
		return uuid.Nil, ""
	}
	flagged := g.Players[g.CurrentIdx]
	policy := g.Settings.TimeoutPolicy
	log.Infof("game %s: seat %d (%s) flagged, policy %s", g.ID, flagged.Seat, flagged.ID, policy)

	switch policy {
	case models.TimeoutGameEnd:
		winner := uuid.Nil
		if len(g.Players) == 2 {
			winner = g.Players[g.seatAfter(g.CurrentIdx, 1)].ID
		}
		g.endWithWinner(winner, EndReasonTimeout)
	default: // autoDrawAndSkip
		g.dealTo(flagged, 1)
		if g.Phase == PhasePlaying {
			// The forced draw is not a completed action: no increment.
			g.advanceTurnWithoutCredit(1)
		}
	}
	return flagged.ID, policy
}

// advanceTurn credits the Fischer increment to the seat that just completed
// a legal action, then hands off.
func (g *Game) advanceTurn(steps int) {
	g.Clock.CreditActive()
	g.advanceTurnWithoutCredit(steps)
}

func (g *Game) advanceTurnWithoutCredit(steps int) {
	g.CurrentIdx = g.seatAfter(g.CurrentIdx, steps)
	g.TurnSeq++
	next := g.Players[g.CurrentIdx]
	// Lenient rule: an uncaught, uncalled window closes silently when its
	// player's next turn begins.
	if g.UnoWindow != nil && g.UnoWindow.PlayerID == next.ID {
		g.UnoWindow = nil
	}
	g.Clock.SwitchTo(next.ID)
}

// seatAfter steps through the seat ring in the current direction.
func (g *Game) seatAfter(from, steps int) int {
	n := len(g.Players)
	idx := (from + g.Direction*steps) % n
	if idx < 0 {
		idx += n
	}
	return idx
}

// popDeck removes the top draw card, replenishing from the discard pile
// (minus its top card) when the draw pile empties. Returns nil only when
// both sources are exhausted.
func (g *Game) popDeck() *models.Card {
	if len(g.Deck) == 0 {
		g.replenishFromDiscard()
	}
	if len(g.Deck) == 0 {
		return nil
	}
	c := g.Deck[0]
	g.Deck = g.Deck[1:]
	return c
}

// replenishFromDiscard reshuffles everything below the discard top back into
// the draw pile. No card is lost or duplicated.
func (g *Game) replenishFromDiscard() {
	if len(g.Discard) <= 1 {
		return
	}
	top := g.Discard[len(g.Discard)-1]
	g.Deck = append(g.Deck, g.Discard[:len(g.Discard)-1]...)
	g.Discard = []*models.Card{top}
	g.shuffleDeck()
	log.Debugf("game %s: replenished draw pile with %d cards", g.ID, len(g.Deck))
}

// dealTo moves up to n cards into the player's hand. A shortfall means both
// the draw pile and its reshuffle source ran dry, which is terminal: the
// round ends defensively instead of looping.
func (g *Game) dealTo(p *models.Player, n int) int {
	drawn := 0
	for i := 0; i < n; i++ {
		c := g.popDeck()
		if c == nil {
			break
		}
		p.Hand = append(p.Hand, c)
		drawn++
	}
	if drawn < n && g.Phase == PhasePlaying {
		g.endDefensively()
	}
	return drawn
}

// endDefensively closes out a round that can no longer be played because all
// cards sit in hands. The unique smallest hand wins; a tie yields no winner.
func (g *Game) endDefensively() {
	winner := uuid.Nil
	best := -1
	unique := false
	for _, p := range g.Players {
		switch {
		case best == -1 || len(p.Hand) < best:
			best = len(p.Hand)
			winner = p.ID
			unique = true
		case len(p.Hand) == best:
			unique = false
		}
	}
	if !unique {
		winner = uuid.Nil
	}
	g.endWithWinner(winner, EndReasonDeckExhausted)
}

// endWithWinner moves the game to the terminal phase and freezes all clocks.
func (g *Game) endWithWinner(winner uuid.UUID, reason string) {
	g.Phase = PhaseFinished
	g.WinnerID = winner
	g.EndReason = reason
	g.UnoWindow = nil
	g.Clock.Stop()
	log.Infof("game %s finished: winner=%s reason=%s", g.ID, winner, reason)
}
