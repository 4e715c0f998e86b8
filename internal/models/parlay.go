package models

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Selection is a batter captured at the moment it was picked. Later data
// refreshes never touch it.
type Selection struct {
	PlayerID   int       `json:"player_id"`
	PlayerName string    `json:"player_name"`
	Team       string    `json:"team"`
	Hand       string    `json:"hand"`
	SeasonHRs  int       `json:"season_hrs"`
	Last7HRs   int       `json:"last7_hrs"`
	Avg        string    `json:"avg"`
	GameID     int       `json:"game_id"`
	GameLabel  string    `json:"game_label"`
	GameDate   string    `json:"game_date"`
	Venue      string    `json:"venue"`
	ParkFactor float64   `json:"park_factor"`
	Score      int       `json:"score"`
	Tier       string    `json:"tier"`
	SelectedAt time.Time `json:"selected_at"`
}

// Key identifies a pick: the same batter in a different game is a
// different pick.
func (s Selection) Key() string {
	return fmt.Sprintf("%d:%d", s.GameID, s.PlayerID)
}

// SavedParlay is a persisted selection set.
type SavedParlay struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Picks         datatypes.JSON `gorm:"not null" json:"picks"`
	PickCount     int            `gorm:"not null" json:"pick_count"`
	AvgParkFactor int            `gorm:"not null" json:"avg_park_factor"`
	CreatedAt     time.Time      `gorm:"index" json:"created_at"`
}

func (SavedParlay) TableName() string {
	return "saved_parlays"
}

func (p *SavedParlay) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// NewSavedParlay snapshots picks into a row ready to insert.
func NewSavedParlay(picks []Selection, avgParkFactor int) (*SavedParlay, error) {
	data, err := json.Marshal(picks)
	if err != nil {
		return nil, fmt.Errorf("failed to encode picks: %w", err)
	}
	return &SavedParlay{
		ID:            uuid.New(),
		Picks:         datatypes.JSON(data),
		PickCount:     len(picks),
		AvgParkFactor: avgParkFactor,
	}, nil
}

// Selections decodes the stored picks.
func (p *SavedParlay) Selections() ([]Selection, error) {
	var picks []Selection
	if len(p.Picks) == 0 {
		return picks, nil
	}
	if err := json.Unmarshal(p.Picks, &picks); err != nil {
		return nil, fmt.Errorf("failed to decode picks for parlay %s: %w", p.ID, err)
	}
	return picks, nil
}
