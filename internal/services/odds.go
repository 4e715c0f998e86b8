package services

import (
	"math"
	"sort"
	"time"

	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/providers"
)

const (
	estimateBookName   = "Est."
	estimateDefaultERA = 4.2
	estimateBaseTotal  = 8.5
)

// AggregateBestLines reduces an event's bookmakers to the best price on
// each side. A book quoting only one side is listed and competes for that
// side. ok is false unless both sides have a price somewhere.
func AggregateBestLines(event *providers.OddsEvent) (*models.OddsSnapshot, bool) {
	if event == nil {
		return nil, false
	}

	snap := &models.OddsSnapshot{Books: []models.BookLine{}}
	var haveBestHome, haveBestAway bool

	for _, bm := range event.Bookmakers {
		line := models.BookLine{Key: bm.Key, Name: providers.BookDisplayName(bm.Key, bm.Title)}
		var haveHome, haveAway bool

		for _, m := range bm.Markets {
			switch m.Key {
			case "h2h":
				for _, o := range m.Outcomes {
					switch o.Name {
					case event.HomeTeam:
						line.HomeML, haveHome = o.Price, true
					case event.AwayTeam:
						line.AwayML, haveAway = o.Price, true
					}
				}
			case "totals":
				for _, o := range m.Outcomes {
					if o.Name == "Over" && o.Point != nil {
						point := *o.Point
						line.Total = &point
						break
					}
				}
			}
		}

		if snap.Total == nil && line.Total != nil {
			total := *line.Total
			snap.Total = &total
		}
		if !haveHome && !haveAway {
			continue
		}

		if haveHome && (!haveBestHome || line.HomeML > snap.HomeML) {
			snap.HomeML, snap.HomeBook = line.HomeML, line.Name
			haveBestHome = true
		}
		if haveAway && (!haveBestAway || line.AwayML > snap.AwayML) {
			snap.AwayML, snap.AwayBook = line.AwayML, line.Name
			haveBestAway = true
		}
		snap.Books = append(snap.Books, line)
	}

	if !haveBestHome || !haveBestAway {
		return nil, false
	}

	// books without a home price sort last
	sort.SliceStable(snap.Books, func(i, j int) bool {
		return homeSortKey(snap.Books[i]) > homeSortKey(snap.Books[j])
	})
	snap.BookCount = len(snap.Books)
	snap.Price()
	return snap, true
}

func homeSortKey(b models.BookLine) int {
	if b.HomeML == 0 {
		return math.MinInt
	}
	return b.HomeML
}

// EstimateOdds builds a deterministic line from pitcher ERAs and the home
// park when no sportsbook has the game. Pitchers without season stats
// count as a 4.20 ERA.
func EstimateOdds(parkFactor float64, homePitcher, awayPitcher *models.Pitcher) *models.OddsSnapshot {
	homeERA := estimateERA(homePitcher)
	awayERA := estimateERA(awayPitcher)

	pitcherAdj := (awayERA - homeERA) * 8
	parkAdj := (parkFactor - 100) * 0.3

	homeML := clampInt(roundToFive(-120+pitcherAdj+parkAdj), -250, 130)

	var awayML int
	if homeML < 0 {
		awayML = roundToFive(float64(-homeML) * 0.85)
	} else {
		awayML = roundToFive(float64(-homeML) * 1.15)
	}
	awayML = clampInt(awayML, -200, 200)

	total := roundHalfUp((estimateBaseTotal+(parkFactor-100)*0.018)*2) / 2

	snap := &models.OddsSnapshot{
		HomeML:    homeML,
		AwayML:    awayML,
		HomeBook:  estimateBookName,
		AwayBook:  estimateBookName,
		Total:     &total,
		Books:     []models.BookLine{},
		Estimated: true,
		UpdatedAt: time.Now().UTC(),
	}
	snap.Price()
	return snap
}

func estimateERA(p *models.Pitcher) float64 {
	if p == nil || !p.HasStats || math.IsNaN(p.ERA) {
		return estimateDefaultERA
	}
	return p.ERA
}

// roundHalfUp rounds .5 toward positive infinity so that -24.5 becomes -24.
func roundHalfUp(v float64) float64 {
	return math.Floor(v + 0.5)
}

func roundToFive(v float64) int {
	return int(roundHalfUp(v/5) * 5)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
