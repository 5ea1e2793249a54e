// internal/game/clock.go
package game

import (
	"time"

	"github.com/google/uuid"

	"github.com/blitzuno/blitzuno/internal/models"
)

// Clock is the per-room chess clock. Exactly one seat is charged at a time;
// elapsed wall time is measured server-side on every touch, never taken from
// a client. All methods assume the owning room's lock is held.
type Clock struct {
	players     []*models.Player
	incrementMs int64

	activeID uuid.UUID
	lastTick time.Time
	running  bool

	// now is swappable in tests to drive deterministic elapsed time.
	now func() time.Time
}

// NewClock seeds every seat with the configured initial balance.
func NewClock(players []*models.Player, settings models.RoomSettings) *Clock {
	for _, p := range players {
		p.TimeRemainingMs = settings.InitialTimeMs
	}
	return &Clock{
		players:     players,
		incrementMs: settings.IncrementMs,
		now:         time.Now,
	}
}

func (c *Clock) player(id uuid.UUID) *models.Player {
	for _, p := range c.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Start begins charging the given seat from now.
func (c *Clock) Start(activeID uuid.UUID) {
	c.activeID = activeID
	c.lastTick = c.now()
	c.running = true
}

// Touch charges the active seat for the wall time elapsed since the last
// touch and returns its remaining balance. Balances floor at zero.
func (c *Clock) Touch() int64 {
	if !c.running {
		return 0
	}
	now := c.now()
	elapsed := now.Sub(c.lastTick).Milliseconds()
	c.lastTick = now
	p := c.player(c.activeID)
	if p == nil {
		return 0
	}
	p.TimeRemainingMs -= elapsed
	if p.TimeRemainingMs < 0 {
		p.TimeRemainingMs = 0
	}
	return p.TimeRemainingMs
}

// CreditActive applies the Fischer increment to the active seat. Called once
// per completed legal action, before the turn hands off.
func (c *Clock) CreditActive() {
	if !c.running || c.incrementMs <= 0 {
		return
	}
	if p := c.player(c.activeID); p != nil {
		p.TimeRemainingMs += c.incrementMs
	}
}

// SwitchTo settles the outgoing seat's elapsed time and starts charging the
// next one.
func (c *Clock) SwitchTo(nextID uuid.UUID) {
	if !c.running {
		return
	}
	c.Touch()
	c.activeID = nextID
	c.lastTick = c.now()
}

// Stop freezes all balances; used at game end.
func (c *Clock) Stop() {
	if c.running {
		c.Touch()
		c.running = false
	}
}

// Running reports whether any seat is currently being charged.
func (c *Clock) Running() bool { return c.running }

// ActiveID returns the seat currently on the clock.
func (c *Clock) ActiveID() uuid.UUID { return c.activeID }

// ActiveRemaining returns the active seat's balance after settling elapsed
// time. Room code arms its deadline timer from this.
func (c *Clock) ActiveRemaining() int64 {
	return c.Touch()
}

// Snapshot returns every seat's authoritative balance, settling the active
// seat first. This is the payload of the periodic clock_sync broadcast.
func (c *Clock) Snapshot() map[uuid.UUID]int64 {
	c.Touch()
	out := make(map[uuid.UUID]int64, len(c.players))
	for _, p := range c.players {
		out[p.ID] = p.TimeRemainingMs
	}
	return out
}
