// internal/models/settings_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettingsUpdatePartial(t *testing.T) {
	s := DefaultRoomSettings()
	err := s.Update(map[string]interface{}{
		"maxPlayers":    float64(6),
		"incrementMs":   float64(5000),
		"timeoutPolicy": "gameEnd",
	})
	require.NoError(t, err)

	assert.Equal(t, 6, s.MaxPlayers)
	assert.Equal(t, int64(5000), s.IncrementMs)
	assert.Equal(t, TimeoutGameEnd, s.TimeoutPolicy)
	// Untouched keys keep their defaults.
	assert.Equal(t, 7, s.StartingHand)
	assert.Equal(t, int64(120_000), s.InitialTimeMs)
}

func TestSettingsUpdateRejectsOutOfRange(t *testing.T) {
	s := DefaultRoomSettings()
	before := s

	assert.Error(t, s.Update(map[string]interface{}{"maxPlayers": float64(1)}))
	assert.Error(t, s.Update(map[string]interface{}{"deckCount": float64(9)}))
	assert.Error(t, s.Update(map[string]interface{}{"initialTimeMs": float64(100)}))
	assert.Error(t, s.Update(map[string]interface{}{"timeoutPolicy": "sudden_death"}))
	assert.Error(t, s.Update(map[string]interface{}{"maxPlayers": "six"}))

	assert.Equal(t, before, s, "a rejected update leaves settings untouched")
}

func TestNewPackComposition(t *testing.T) {
	pack := NewPack()
	require.Len(t, pack, 108)

	counts := make(map[Value]int)
	wilds := 0
	for _, c := range pack {
		counts[c.Value]++
		if c.IsWild() {
			wilds++
			assert.Equal(t, ColorWild, c.Color)
		}
	}
	assert.Equal(t, 4, counts[Value("0")])
	assert.Equal(t, 8, counts[Value("7")])
	assert.Equal(t, 8, counts[ValueSkip])
	assert.Equal(t, 8, counts[ValueReverse])
	assert.Equal(t, 8, counts[ValueDrawTwo])
	assert.Equal(t, 4, counts[ValueWild])
	assert.Equal(t, 4, counts[ValueWildDraw])
	assert.Equal(t, 8, wilds)
}
