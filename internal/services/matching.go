package services

import (
	"strings"
	"time"

	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/providers"
)

// MatchTeamName reports whether candidate names the same club as reference
// by comparing the reference's trailing word ("yankees") against the words
// of candidate, case-insensitively.
func MatchTeamName(candidate, reference string) bool {
	token := models.TrailingToken(reference)
	if token == "" {
		return false
	}
	for _, word := range strings.Fields(strings.ToLower(candidate)) {
		if word == token {
			return true
		}
	}
	return false
}

// sameMatchup reports whether a provider's home/away pair names both
// teams of game.
func sameMatchup(game *models.Game, home, away string) bool {
	return MatchTeamName(home, game.Home.Name) && MatchTeamName(away, game.Away.Name)
}

// commenceWindow bounds how far an odds event's start may drift from the
// scheduled first pitch and still be treated as the same game. Series
// games between the same clubs are a day apart.
const commenceWindow = 12 * time.Hour

// findOddsEvent returns the single odds event for game, or nil when none
// or more than one event qualifies.
func findOddsEvent(events []providers.OddsEvent, game *models.Game) *providers.OddsEvent {
	var match *providers.OddsEvent
	for i := range events {
		e := &events[i]
		if !sameMatchup(game, e.HomeTeam, e.AwayTeam) {
			continue
		}
		if !game.ScheduledAt.IsZero() {
			if at, err := time.Parse(time.RFC3339, e.CommenceTime); err == nil {
				if d := at.Sub(game.ScheduledAt); d > commenceWindow || d < -commenceWindow {
					continue
				}
			}
		}
		if match != nil {
			return nil
		}
		match = e
	}
	return match
}

// findBDLGame returns the single BallDontLie game for game, or nil when
// none or more than one qualifies (doubleheaders).
func findBDLGame(games []providers.BDLGame, game *models.Game) *providers.BDLGame {
	var match *providers.BDLGame
	for i := range games {
		g := &games[i]
		if !sameMatchup(game, bdlTeamName(g.HomeTeam), bdlTeamName(g.VisitorTeam)) {
			continue
		}
		if match != nil {
			return nil
		}
		match = g
	}
	return match
}

func bdlTeamName(t providers.BDLTeam) string {
	if t.DisplayName != "" {
		return t.DisplayName
	}
	return t.Name
}
