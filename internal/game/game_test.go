// internal/game/game_test.go
package game

import (
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blitzuno/blitzuno/internal/models"
)

func testSettings() models.RoomSettings {
	s := models.DefaultRoomSettings()
	s.InitialTimeMs = 60_000
	s.IncrementMs = 0
	return s
}

func setupPlayers(n int) []*models.Player {
	players := make([]*models.Player, n)
	for i := range players {
		id, _ := uuid.NewRandom()
		players[i] = &models.Player{
			ID:          id,
			DisplayName: fmt.Sprintf("p%d", i),
			Seat:        i,
			Connected:   true,
		}
	}
	return players
}

// setupStartedGame deals until the opening flip is a plain number card, so
// tests start from a neutral table with untouched hands.
func setupStartedGame(t *testing.T, n int) *Game {
	t.Helper()
	for i := 0; i < 50; i++ {
		g := NewGame(testSettings(), setupPlayers(n))
		require.NoError(t, g.Start())
		require.Equal(t, PhasePlaying, g.Phase)
		if !g.DiscardTop().IsAction() {
			return g
		}
	}
	t.Fatal("could not deal a game with a plain opening card")
	return nil
}

func testCard(color models.Color, value models.Value) *models.Card {
	id, _ := uuid.NewRandom()
	return &models.Card{ID: id, Color: color, Value: value}
}

// forceTurn pins a known table state: current seat, discard top, active color.
func forceTurn(g *Game, idx int, top *models.Card) {
	g.CurrentIdx = idx
	g.Discard = append(g.Discard, top)
	g.ActiveColor = top.Color
	g.Clock.Start(g.Players[idx].ID)
}

func totalCards(g *Game) int {
	n := len(g.Deck) + len(g.Discard)
	for _, p := range g.Players {
		n += len(p.Hand)
	}
	return n
}

func TestStartDealsHandsAndFlips(t *testing.T) {
	g := setupStartedGame(t, 3)

	for _, p := range g.Players {
		assert.Len(t, p.Hand, 7)
	}
	require.NotNil(t, g.DiscardTop())
	assert.NotEqual(t, models.ValueWildDraw, g.DiscardTop().Value)
	assert.NotEmpty(t, g.ActiveColor)
	assert.True(t, g.Clock.Running())
	assert.Equal(t, 108, totalCards(g))
}

func TestStartRequiresTwoPlayers(t *testing.T) {
	g := NewGame(testSettings(), setupPlayers(1))
	err := g.Start()
	require.Error(t, err)
	assert.Equal(t, CodeTooFewPlayers, CodeOf(err))
}

func TestFirstFlipNeverWildDrawFour(t *testing.T) {
	for i := 0; i < 25; i++ {
		g := NewGame(testSettings(), setupPlayers(2))
		require.NoError(t, g.Start())
		assert.NotEqual(t, models.ValueWildDraw, g.DiscardTop().Value)
	}
}

func TestFirstFlipDrawTwoAppliesBeforeFirstTurn(t *testing.T) {
	g := NewGame(testSettings(), setupPlayers(3))
	d2 := testCard(models.ColorRed, models.ValueDrawTwo)
	g.Deck = append([]*models.Card{d2}, g.Deck...)
	g.Phase = PhasePlaying
	g.TurnSeq = 1

	g.flipFirstCard()
	assert.Equal(t, models.ColorRed, g.ActiveColor)
	assert.Len(t, g.Players[0].Hand, 2, "opening seat draws the penalty")
	assert.Equal(t, 1, g.CurrentIdx)
}

func TestFirstFlipReverseSkipsHeadToHead(t *testing.T) {
	g := NewGame(testSettings(), setupPlayers(2))
	rev := testCard(models.ColorBlue, models.ValueReverse)
	g.Deck = append([]*models.Card{rev}, g.Deck...)
	g.Phase = PhasePlaying
	g.TurnSeq = 1

	g.flipFirstCard()
	assert.Equal(t, 1, g.Direction)
	assert.Equal(t, 1, g.CurrentIdx, "reverse on the flip skips the opening seat")
}

func TestPlayCardRejectsIllegalCard(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	blue9 := testCard(models.ColorBlue, "9")
	p.Hand = []*models.Card{blue9, testCard(models.ColorGreen, "2")}

	err := g.PlayCard(p.ID, blue9.ID, "")
	require.Error(t, err)
	assert.Equal(t, CodeIllegalCard, CodeOf(err))
	assert.Len(t, p.Hand, 2, "rejection must not mutate the hand")
	assert.Equal(t, 0, g.CurrentIdx)
}

func TestPlayCardRejectsOutOfTurn(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	other := g.Players[1]
	red7 := testCard(models.ColorRed, "7")
	other.Hand = []*models.Card{red7}

	err := g.PlayCard(other.ID, red7.ID, "")
	require.Error(t, err)
	assert.Equal(t, CodeNotYourTurn, CodeOf(err))
}

func TestPlayCardMatchesByFace(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	blue5 := testCard(models.ColorBlue, "5")
	p.Hand = []*models.Card{blue5, testCard(models.ColorGreen, "2")}

	require.NoError(t, g.PlayCard(p.ID, blue5.ID, ""))
	assert.Equal(t, models.ColorBlue, g.ActiveColor)
	assert.Equal(t, blue5.ID, g.DiscardTop().ID)
	assert.Equal(t, 1, g.CurrentIdx)
}

func TestWildRequiresChosenColor(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	wild := testCard(models.ColorWild, models.ValueWild)
	p.Hand = []*models.Card{wild, testCard(models.ColorGreen, "2")}

	err := g.PlayCard(p.ID, wild.ID, "")
	assert.Equal(t, CodeMissingColor, CodeOf(err))

	err = g.PlayCard(p.ID, wild.ID, "purple")
	assert.Equal(t, CodeInvalidColor, CodeOf(err))

	require.NoError(t, g.PlayCard(p.ID, wild.ID, models.ColorGreen))
	assert.Equal(t, models.ColorGreen, g.ActiveColor)
}

func TestNonWildRejectsChosenColor(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorGreen, "2")}

	err := g.PlayCard(p.ID, red7.ID, models.ColorRed)
	assert.Equal(t, CodeInvalidColor, CodeOf(err))
}

func TestSkipAdvancesTwoSeats(t *testing.T) {
	g := setupStartedGame(t, 3)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	skip := testCard(models.ColorRed, models.ValueSkip)
	p.Hand = []*models.Card{skip, testCard(models.ColorGreen, "2")}

	require.NoError(t, g.PlayCard(p.ID, skip.ID, ""))
	assert.Equal(t, 2, g.CurrentIdx)
}

func TestReverseFlipsDirection(t *testing.T) {
	g := setupStartedGame(t, 3)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	rev := testCard(models.ColorRed, models.ValueReverse)
	p.Hand = []*models.Card{rev, testCard(models.ColorGreen, "2")}

	require.NoError(t, g.PlayCard(p.ID, rev.ID, ""))
	assert.Equal(t, -1, g.Direction)
	assert.Equal(t, 2, g.CurrentIdx, "reversed order wraps to the last seat")
}

func TestReverseActsAsSkipHeadToHead(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	rev := testCard(models.ColorRed, models.ValueReverse)
	p.Hand = []*models.Card{rev, testCard(models.ColorGreen, "2")}

	before := g.TurnSeq
	require.NoError(t, g.PlayCard(p.ID, rev.ID, ""))
	assert.Equal(t, 1, g.Direction)
	assert.Equal(t, 0, g.CurrentIdx, "same player moves again")
	assert.Equal(t, before+1, g.TurnSeq)
}

func TestDrawTwoPenalizesAndSkips(t *testing.T) {
	g := setupStartedGame(t, 3)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	d2 := testCard(models.ColorRed, models.ValueDrawTwo)
	p.Hand = []*models.Card{d2, testCard(models.ColorGreen, "2")}
	victimHand := len(g.Players[1].Hand)

	require.NoError(t, g.PlayCard(p.ID, d2.ID, ""))
	assert.Len(t, g.Players[1].Hand, victimHand+2)
	assert.Equal(t, 2, g.CurrentIdx)
}

func TestWildDrawFourPenalizesAndSkips(t *testing.T) {
	g := setupStartedGame(t, 3)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	wd4 := testCard(models.ColorWild, models.ValueWildDraw)
	p.Hand = []*models.Card{wd4, testCard(models.ColorGreen, "2")}
	victimHand := len(g.Players[1].Hand)

	require.NoError(t, g.PlayCard(p.ID, wd4.ID, models.ColorYellow))
	assert.Equal(t, models.ColorYellow, g.ActiveColor)
	assert.Len(t, g.Players[1].Hand, victimHand+4)
	assert.Equal(t, 2, g.CurrentIdx)
}

func TestVoluntaryDrawEndsTurn(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	before := len(p.Hand)
	seqBefore := g.TurnSeq

	drawn, err := g.DrawCard(p.ID)
	require.NoError(t, err)
	require.NotNil(t, drawn)
	assert.Len(t, p.Hand, before+1)
	assert.Equal(t, 1, g.CurrentIdx)
	assert.Equal(t, seqBefore+1, g.TurnSeq)
}

func TestWinDecidedBeforeUnoWindow(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7}

	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))
	assert.Equal(t, PhaseFinished, g.Phase)
	assert.Equal(t, p.ID, g.WinnerID)
	assert.Equal(t, EndReasonWin, g.EndReason)
	assert.Nil(t, g.UnoWindow, "no window opens on the winning play")
	assert.False(t, g.Clock.Running())
}

func TestUnoWindowOpensAtOneCard(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorBlue, "9")}

	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))
	require.NotNil(t, g.UnoWindow)
	assert.Equal(t, p.ID, g.UnoWindow.PlayerID)
	assert.False(t, g.UnoWindow.Called)
}

func TestCallUnoClosesWindow(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorBlue, "9")}
	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))

	require.NoError(t, g.CallUno(p.ID))
	assert.Nil(t, g.UnoWindow)

	err := g.CallUno(p.ID)
	assert.Equal(t, CodeUnoWindowClosed, CodeOf(err))
}

func TestCatchUnoPenalizesTarget(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	accuser := g.Players[1]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorBlue, "9")}
	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))

	err := g.CatchUno(p.ID, p.ID)
	assert.Equal(t, CodeCannotCatchSelf, CodeOf(err))

	require.NoError(t, g.CatchUno(accuser.ID, p.ID))
	assert.Len(t, p.Hand, 3, "one card left plus two penalty cards")
	assert.Nil(t, g.UnoWindow)

	err = g.CatchUno(accuser.ID, p.ID)
	assert.Equal(t, CodeUnoWindowClosed, CodeOf(err))
}

func TestCatchAfterCallRejected(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorBlue, "9")}
	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))
	require.NoError(t, g.CallUno(p.ID))

	err := g.CatchUno(g.Players[1].ID, p.ID)
	assert.Equal(t, CodeUnoWindowClosed, CodeOf(err))
	assert.Len(t, p.Hand, 1)
}

func TestUnoWindowClosesSilentlyOnOwnTurn(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	other := g.Players[1]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorBlue, "9")}
	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))
	require.NotNil(t, g.UnoWindow)

	// Opponent takes a turn; play comes back to the window's player.
	_, err := g.DrawCard(other.ID)
	require.NoError(t, err)
	assert.Nil(t, g.UnoWindow, "window closes when its player's turn begins")
}

func TestReplenishConservesCards(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))
	total := totalCards(g)

	// Force the draw pile dry so the next draw reshuffles the discard.
	g.Discard = append(g.Discard, g.Deck...)
	g.Deck = nil

	_, err := g.DrawCard(g.Players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, total, totalCards(g))
	assert.Equal(t, PhasePlaying, g.Phase)
}

func TestDeckExhaustionEndsDefensively(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	// All cards in hands except the discard top; nothing left to draw.
	g.Deck = nil
	g.Discard = g.Discard[len(g.Discard)-1:]
	g.Players[0].Hand = []*models.Card{testCard(models.ColorBlue, "1"), testCard(models.ColorBlue, "2")}
	g.Players[1].Hand = []*models.Card{testCard(models.ColorGreen, "3")}

	_, err := g.DrawCard(g.Players[0].ID)
	require.NoError(t, err)
	assert.Equal(t, PhaseFinished, g.Phase)
	assert.Equal(t, EndReasonDeckExhausted, g.EndReason)
	assert.Equal(t, g.Players[1].ID, g.WinnerID, "unique smallest hand wins")
}

func TestDeckExhaustionTieHasNoWinner(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	g.Deck = nil
	g.Discard = g.Discard[len(g.Discard)-1:]
	g.Players[0].Hand = []*models.Card{testCard(models.ColorBlue, "1")}
	g.Players[1].Hand = []*models.Card{testCard(models.ColorGreen, "3")}

	_, err := g.DrawCard(g.Players[0].ID)
	require.NoError(t, err)
	// After the failed draw both players hold one card.
	assert.Equal(t, PhaseFinished, g.Phase)
	assert.Equal(t, uuid.Nil, g.WinnerID)
}

func TestTimeoutAutoDrawAndSkip(t *testing.T) {
	g := setupStartedGame(t, 3)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	flaggedHand := len(g.Players[0].Hand)
	seqBefore := g.TurnSeq

	flagged, policy := g.ApplyTimeout()
	assert.Equal(t, g.Players[0].ID, flagged)
	assert.Equal(t, models.TimeoutAutoDrawAndSkip, policy)
	assert.Len(t, g.Players[0].Hand, flaggedHand+1)
	assert.Equal(t, 1, g.CurrentIdx)
	assert.Equal(t, seqBefore+1, g.TurnSeq)
	assert.Equal(t, PhasePlaying, g.Phase)
}

func TestTimeoutGameEndHeadToHead(t *testing.T) {
	s := testSettings()
	s.TimeoutPolicy = models.TimeoutGameEnd
	g := NewGame(s, setupPlayers(2))
	require.NoError(t, g.Start())
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	flagged, policy := g.ApplyTimeout()
	assert.Equal(t, g.Players[0].ID, flagged)
	assert.Equal(t, models.TimeoutGameEnd, policy)
	assert.Equal(t, PhaseFinished, g.Phase)
	assert.Equal(t, EndReasonTimeout, g.EndReason)
	assert.Equal(t, g.Players[1].ID, g.WinnerID)
}

func TestTimeoutGameEndMultiplayerHasNoWinner(t *testing.T) {
	s := testSettings()
	s.TimeoutPolicy = models.TimeoutGameEnd
	g := NewGame(s, setupPlayers(4))
	require.NoError(t, g.Start())
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	_, _ = g.ApplyTimeout()
	assert.Equal(t, PhaseFinished, g.Phase)
	assert.Equal(t, uuid.Nil, g.WinnerID)
}

func TestFischerIncrementOnCompletedAction(t *testing.T) {
	s := testSettings()
	s.IncrementMs = 2_000
	g := NewGame(s, setupPlayers(2))
	require.NoError(t, g.Start())
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7, testCard(models.ColorBlue, "9")}

	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))
	assert.InDelta(t, 62_000, p.TimeRemainingMs, 100, "completed action earns the increment")
}

func TestTimeoutDrawEarnsNoIncrement(t *testing.T) {
	s := testSettings()
	s.IncrementMs = 2_000
	g := NewGame(s, setupPlayers(2))
	require.NoError(t, g.Start())
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	_, _ = g.ApplyTimeout()
	assert.LessOrEqual(t, p.TimeRemainingMs, int64(60_000), "forced draw is not a completed action")
}

func TestGameOverRejectsFurtherActions(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{red7}
	require.NoError(t, g.PlayCard(p.ID, red7.ID, ""))
	require.Equal(t, PhaseFinished, g.Phase)

	_, err := g.DrawCard(g.Players[1].ID)
	assert.Equal(t, CodeGameOver, CodeOf(err))
}

func TestAIMovePrefersLegalCard(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	p.IsAI = true
	red7 := testCard(models.ColorRed, "7")
	p.Hand = []*models.Card{testCard(models.ColorBlue, "9"), red7}

	move := g.ChooseAIMove(p.ID)
	assert.False(t, move.Draw)
	assert.Equal(t, red7.ID, move.CardID)
}

func TestAIMoveDrawsWhenStuck(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	p.IsAI = true
	p.Hand = []*models.Card{testCard(models.ColorBlue, "9"), testCard(models.ColorGreen, "2")}

	move := g.ChooseAIMove(p.ID)
	assert.True(t, move.Draw)
}

func TestAIWildPicksMostHeldColor(t *testing.T) {
	g := setupStartedGame(t, 2)
	forceTurn(g, 0, testCard(models.ColorRed, "5"))

	p := g.Players[0]
	p.IsAI = true
	wild := testCard(models.ColorWild, models.ValueWild)
	p.Hand = []*models.Card{
		wild,
		testCard(models.ColorGreen, "2"),
		testCard(models.ColorGreen, "7"),
		testCard(models.ColorBlue, "9"),
	}
	// Green 5s would be legal too, so strip the active color from the hand
	// by making the top yellow.
	g.Discard = append(g.Discard, testCard(models.ColorYellow, "8"))
	g.ActiveColor = models.ColorYellow

	move := g.ChooseAIMove(p.ID)
	assert.False(t, move.Draw)
	assert.Equal(t, wild.ID, move.CardID)
	assert.Equal(t, models.ColorGreen, move.ChosenColor)
}

func TestViewHidesOtherHands(t *testing.T) {
	g := setupStartedGame(t, 2)
	viewer := g.Players[0]

	v := g.ViewFor(viewer.ID)
	require.Len(t, v.Players, 2)
	for _, pv := range v.Players {
		if pv.PlayerID == viewer.ID {
			assert.True(t, pv.You)
			assert.Len(t, pv.Hand, pv.HandSize)
		} else {
			assert.Empty(t, pv.Hand)
			assert.Equal(t, 7, pv.HandSize)
		}
	}
	assert.Equal(t, len(g.Deck), v.DeckSize)
}
