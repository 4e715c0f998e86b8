package services

import (
	"math"
	"sync"

	"github.com/stitts-dev/hr-parlay/internal/models"
	"gonum.org/v1/gonum/stat"
)

// SelectionSet is the parlay being built. Picks keep insertion order.
type SelectionSet struct {
	mu    sync.RWMutex
	picks []models.Selection
}

func NewSelectionSet() *SelectionSet {
	return &SelectionSet{picks: []models.Selection{}}
}

// Toggle adds sel when no pick with the same key exists, otherwise removes
// that pick. It reports whether sel is now in the set.
func (s *SelectionSet) Toggle(sel models.Selection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := sel.Key()
	for i, p := range s.picks {
		if p.Key() == key {
			s.picks = append(s.picks[:i:i], s.picks[i+1:]...)
			return false
		}
	}
	s.picks = append(s.picks, sel)
	return true
}

func (s *SelectionSet) Contains(gameID, playerID int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.picks {
		if p.GameID == gameID && p.PlayerID == playerID {
			return true
		}
	}
	return false
}

func (s *SelectionSet) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.picks = []models.Selection{}
}

// Picks returns a copy of the current picks.
func (s *SelectionSet) Picks() []models.Selection {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]models.Selection, len(s.picks))
	copy(out, s.picks)
	return out
}

func (s *SelectionSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.picks)
}

// AverageParkFactor is the mean park factor of the picks rounded to the
// nearest integer, or 0 for an empty set.
func (s *SelectionSet) AverageParkFactor() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return averageParkFactor(s.picks)
}

func averageParkFactor(picks []models.Selection) int {
	if len(picks) == 0 {
		return 0
	}
	factors := make([]float64, len(picks))
	for i, p := range picks {
		factors[i] = p.ParkFactor
	}
	return int(math.Floor(stat.Mean(factors, nil) + 0.5))
}
