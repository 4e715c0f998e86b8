package providers

import (
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/stitts-dev/hr-parlay/internal/models"
	"gopkg.in/yaml.v3"
)

// GenericRosterTeam backs any team the reference rosters do not know.
const GenericRosterTeam = "NYY"

//go:embed rosters.yaml
var rawRosters []byte

type fallbackBatter struct {
	ID        int    `yaml:"id"`
	Name      string `yaml:"name"`
	SeasonHRs int    `yaml:"season_hrs"`
	Last7HRs  int    `yaml:"last7_hrs"`
	Avg       string `yaml:"avg"`
	Hand      string `yaml:"hand"`
}

var fallbackRosters map[string][]fallbackBatter

func init() {
	var doc struct {
		Rosters map[string][]fallbackBatter `yaml:"rosters"`
	}
	if err := yaml.Unmarshal(rawRosters, &doc); err != nil {
		panic(fmt.Sprintf("providers: invalid embedded rosters: %v", err))
	}
	if len(doc.Rosters[GenericRosterTeam]) == 0 {
		panic("providers: embedded rosters are missing the generic roster")
	}
	fallbackRosters = doc.Rosters
}

// FallbackRoster returns the reference roster for team and whether the team
// was known. Unknown teams get the generic roster, so the result is never
// empty. The returned slice is a fresh copy.
func FallbackRoster(team string) ([]models.Batter, bool) {
	key := strings.ToUpper(strings.TrimSpace(team))
	rows, ok := fallbackRosters[key]
	if !ok {
		rows = fallbackRosters[GenericRosterTeam]
	}

	out := make([]models.Batter, 0, len(rows))
	for _, r := range rows {
		out = append(out, models.Batter{
			ID:        r.ID,
			Name:      r.Name,
			Team:      key,
			Hand:      r.Hand,
			SeasonHRs: r.SeasonHRs,
			Last7HRs:  r.Last7HRs,
			Avg:       r.Avg,
		})
	}
	return out, ok
}

// DemoGames is the built-in slate shown when the schedule feed cannot be
// reached at all. Game ids are small integers that never collide with real
// gamePks.
func DemoGames(date string) []models.Game {
	at, err := time.Parse("2006-01-02", date)
	if err != nil {
		at = time.Now().UTC().Truncate(24 * time.Hour)
		date = at.Format("2006-01-02")
	}
	first := at.Add(23 * time.Hour) // 7pm ET in UTC

	demo := func(id int, away, home models.TeamRef, venue string, awayP, homeP *models.Pitcher, offset time.Duration) models.Game {
		return models.Game{
			ID:          id,
			Date:        date,
			ScheduledAt: first.Add(offset),
			Home:        home,
			Away:        away,
			Venue:       venue,
			Status:      "Preview",
			HomePitcher: homeP,
			AwayPitcher: awayP,
			Source:      models.SourceFallback,
		}
	}

	return []models.Game{
		demo(1,
			models.TeamRef{ID: 109, Abbreviation: "ARI", Name: "Arizona Diamondbacks"},
			models.TeamRef{ID: 113, Abbreviation: "CIN", Name: "Cincinnati Reds"},
			"Great American Ball Park",
			&models.Pitcher{Name: "Tommy Jones", Hand: "R", HR9: 1.8, ERA: 4.85, HasStats: true},
			&models.Pitcher{Name: "Cody Abbott", Hand: "L", HR9: 2.1, ERA: 5.12, HasStats: true},
			0),
		demo(2,
			models.TeamRef{ID: 137, Abbreviation: "SF", Name: "San Francisco Giants"},
			models.TeamRef{ID: 147, Abbreviation: "NYY", Name: "New York Yankees"},
			"Yankee Stadium",
			&models.Pitcher{Name: "Gerrit Cole", Hand: "R", HR9: 0.9, ERA: 3.15, HasStats: true},
			&models.Pitcher{Name: "Kyle Harrison", Hand: "L", HR9: 1.6, ERA: 4.25, HasStats: true},
			5*time.Minute),
		demo(3,
			models.TeamRef{ID: 110, Abbreviation: "BAL", Name: "Baltimore Orioles"},
			models.TeamRef{ID: 108, Abbreviation: "LAA", Name: "Los Angeles Angels"},
			"Angel Stadium",
			&models.Pitcher{Name: "Dean Kremer", Hand: "R", HR9: 1.3, ERA: 4.10, HasStats: true},
			&models.Pitcher{Name: "Patrick Sandoval", Hand: "L", HR9: 1.4, ERA: 3.95, HasStats: true},
			3*time.Hour),
	}
}
