// internal/room/store.go
package room

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/blitzuno/blitzuno/internal/models"
)

// codeAlphabet skips the easily confused characters (0/O, 1/I/L).
const (
	codeAlphabet = "ABCDEFGHJKMNPQRSTUVWXYZ23456789"
	codeLength   = 6
)

// Store is the in-memory room registry keyed by join code.
type Store struct {
	mu    sync.Mutex
	rooms map[string]*Room
	rng   *rand.Rand

	// Sink is handed to every created room.
	Sink ActionSink
}

// NewStore initializes an empty registry.
func NewStore() *Store {
	return &Store{
		rooms: make(map[string]*Room),
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Create allocates a fresh room under a unique join code.
func (s *Store) Create(settings models.RoomSettings) (*Room, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var code string
	for i := 0; ; i++ {
		code = s.randomCodeLocked()
		if _, taken := s.rooms[code]; !taken {
			break
		}
		if i > 100 {
			return nil, fmt.Errorf("room code space exhausted")
		}
	}

	r, err := NewRoom(code, settings)
	if err != nil {
		return nil, err
	}
	r.Sink = s.Sink
	r.OnEmpty = s.forget
	s.rooms[code] = r
	return r, nil
}

// Get returns the room for a join code, or nil.
func (s *Store) Get(code string) *Room {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rooms[code]
}

// Count returns the number of live rooms.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.rooms)
}

func (s *Store) forget(code string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms, code)
}

// randomCodeLocked draws a join code. Assumes lock is held.
func (s *Store) randomCodeLocked() string {
	b := make([]byte, codeLength)
	for i := range b {
		b[i] = codeAlphabet[s.rng.Intn(len(codeAlphabet))]
	}
	return string(b)
}
