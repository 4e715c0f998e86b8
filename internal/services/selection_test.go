package services

import (
	"sync"
	"testing"

	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pick(gameID, playerID int, park float64) models.Selection {
	return models.Selection{GameID: gameID, PlayerID: playerID, ParkFactor: park}
}

func TestSelectionSet_ToggleIsItsOwnInverse(t *testing.T) {
	set := NewSelectionSet()
	set.Toggle(pick(1, 10, 118))
	set.Toggle(pick(2, 20, 76))
	before := set.Picks()

	assert.True(t, set.Toggle(pick(3, 30, 110)))
	assert.False(t, set.Toggle(pick(3, 30, 110)))

	assert.Equal(t, before, set.Picks())
}

func TestSelectionSet_RemovalKeepsOrder(t *testing.T) {
	set := NewSelectionSet()
	set.Toggle(pick(1, 10, 100))
	set.Toggle(pick(1, 11, 100))
	set.Toggle(pick(2, 20, 100))

	set.Toggle(pick(1, 11, 100))

	picks := set.Picks()
	require.Len(t, picks, 2)
	assert.Equal(t, 10, picks[0].PlayerID)
	assert.Equal(t, 20, picks[1].PlayerID)
}

func TestSelectionSet_SameBatterDifferentGame(t *testing.T) {
	set := NewSelectionSet()
	set.Toggle(pick(1, 10, 100))
	set.Toggle(pick(2, 10, 100))

	assert.Equal(t, 2, set.Len())
	assert.True(t, set.Contains(1, 10))
	assert.True(t, set.Contains(2, 10))
	assert.False(t, set.Contains(3, 10))
}

func TestSelectionSet_AverageParkFactor(t *testing.T) {
	set := NewSelectionSet()
	assert.Equal(t, 0, set.AverageParkFactor())

	set.Toggle(pick(1, 1, 118))
	set.Toggle(pick(2, 2, 76))
	assert.Equal(t, 97, set.AverageParkFactor())

	set.Toggle(pick(3, 3, 110))
	// (118+76+110)/3 = 101.33
	assert.Equal(t, 101, set.AverageParkFactor())

	set.Toggle(pick(4, 4, 103))
	// 407/4 = 101.75
	assert.Equal(t, 102, set.AverageParkFactor())
}

func TestSelectionSet_ClearAndCopies(t *testing.T) {
	set := NewSelectionSet()
	set.Toggle(pick(1, 1, 100))

	picks := set.Picks()
	picks[0].PlayerName = "mutated"
	assert.Empty(t, set.Picks()[0].PlayerName)

	set.Clear()
	assert.Zero(t, set.Len())
	assert.NotNil(t, set.Picks())
}

func TestSelectionSet_ConcurrentToggles(t *testing.T) {
	set := NewSelectionSet()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()
			set.Toggle(pick(1, id, 100))
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, set.Len())
}
