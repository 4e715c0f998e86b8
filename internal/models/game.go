package models

import (
	"fmt"
	"time"
)

// Data sources a game or roster can come from.
const (
	SourceLive     = "live"
	SourceFallback = "fallback"
)

type TeamRef struct {
	ID           int    `json:"id"`
	Abbreviation string `json:"abbreviation"`
	Name         string `json:"name"`
}

type LiveState string

const (
	LivePregame LiveState = "pregame"
	LiveInPlay  LiveState = "live"
	LiveFinal   LiveState = "final"
)

type LiveStatus struct {
	State     LiveState `json:"state"`
	Inning    int       `json:"inning,omitempty"`
	Half      string    `json:"half,omitempty"` // "top" or "bottom"
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Detail    string    `json:"detail,omitempty"`
}

// Display renders the status the way a scoreboard would, e.g. "▲7 3-2".
func (s *LiveStatus) Display() string {
	if s == nil {
		return ""
	}
	switch s.State {
	case LiveFinal:
		return fmt.Sprintf("Final %d-%d", s.AwayScore, s.HomeScore)
	case LiveInPlay:
		arrow := "▲"
		if s.Half == "bottom" {
			arrow = "▼"
		}
		return fmt.Sprintf("%s%d %d-%d", arrow, s.Inning, s.AwayScore, s.HomeScore)
	default:
		return "Pregame"
	}
}

type Game struct {
	ID          int           `json:"id"`
	Date        string        `json:"date"`
	ScheduledAt time.Time     `json:"scheduled_at"`
	Home        TeamRef       `json:"home"`
	Away        TeamRef       `json:"away"`
	Venue       string        `json:"venue"`
	Status      string        `json:"status,omitempty"`
	HomePitcher *Pitcher      `json:"home_pitcher,omitempty"`
	AwayPitcher *Pitcher      `json:"away_pitcher,omitempty"`
	Live        *LiveStatus   `json:"live,omitempty"`
	Odds        *OddsSnapshot `json:"odds,omitempty"`
	Source      string        `json:"source"`
}

// Label is the short matchup string used on picks, e.g. "ARI @ CIN".
func (g *Game) Label() string {
	return fmt.Sprintf("%s @ %s", g.Away.Abbreviation, g.Home.Abbreviation)
}

// OpposingPitcher returns the pitcher a batter on team faces.
func (g *Game) OpposingPitcher(team string) *Pitcher {
	if team == g.Home.Abbreviation {
		return g.AwayPitcher
	}
	return g.HomePitcher
}
