// internal/room/dedup.go
package room

import (
	"time"
)

const (
	dedupMaxEntries = 256
	dedupMaxAge     = 5 * time.Minute
)

type dedupEntry struct {
	actionID string
	ack      map[string]interface{}
	storedAt time.Time
}

// actionCache remembers acks already sent per actionId so a retried request
// replays the original outcome instead of re-applying the action. Bounded by
// count and age; eviction happens on insert. Not safe for concurrent use on
// its own, the room lock guards it.
type actionCache struct {
	entries map[string]*dedupEntry
	order   []string // insertion order, oldest first
	now     func() time.Time
}

func newActionCache() *actionCache {
	return &actionCache{
		entries: make(map[string]*dedupEntry),
		now:     time.Now,
	}
}

// Lookup returns the cached ack for an actionId, or nil on a miss.
func (c *actionCache) Lookup(actionID string) map[string]interface{} {
	e, ok := c.entries[actionID]
	if !ok {
		return nil
	}
	if c.now().Sub(e.storedAt) > dedupMaxAge {
		return nil
	}
	return e.ack
}

// Store records the ack for an actionId, evicting expired and overflow
// entries first.
func (c *actionCache) Store(actionID string, ack map[string]interface{}) {
	if actionID == "" {
		return
	}
	c.evict()
	if _, exists := c.entries[actionID]; !exists {
		c.order = append(c.order, actionID)
	}
	c.entries[actionID] = &dedupEntry{
		actionID: actionID,
		ack:      ack,
		storedAt: c.now(),
	}
}

func (c *actionCache) evict() {
	now := c.now()
	for len(c.order) > 0 {
		oldest := c.entries[c.order[0]]
		tooOld := oldest != nil && now.Sub(oldest.storedAt) > dedupMaxAge
		if len(c.order) < dedupMaxEntries && !tooOld {
			break
		}
		delete(c.entries, c.order[0])
		c.order = c.order[1:]
	}
}
