// Package matchup evaluates batter versus pitcher situations.
package matchup

import (
	"fmt"
	"strings"
)

// Hand values. Batters may be L, R or S; pitchers are L or R.
const (
	HandLeft   = "L"
	HandRight  = "R"
	HandSwitch = "S"
)

// HasHandednessAdvantage reports whether the batter has the platoon edge.
// Switch hitters always do. Unknown hands never do.
func HasHandednessAdvantage(batterHand, pitcherHand string) bool {
	b := normalizeHand(batterHand)
	p := normalizeHand(pitcherHand)

	switch {
	case b == HandSwitch:
		return true
	case b == HandLeft && p == HandRight:
		return true
	case b == HandRight && p == HandLeft:
		return true
	default:
		return false
	}
}

func normalizeHand(hand string) string {
	h := strings.ToUpper(strings.TrimSpace(hand))
	if h == "" {
		return ""
	}
	switch h[0] {
	case 'L':
		return HandLeft
	case 'R':
		return HandRight
	case 'S', 'B': // some feeds report switch hitters as "B" (both)
		return HandSwitch
	default:
		return ""
	}
}

// NormalizeHand maps provider hand codes ("Left", "R", "B") to L/R/S.
func NormalizeHand(hand string) string {
	return normalizeHand(hand)
}

// PlatoonHint names which batters the pitcher's hand favors.
func PlatoonHint(pitcherHand string) string {
	if normalizeHand(pitcherHand) == HandLeft {
		return "Right-handed batters get advantage"
	}
	return "Left-handed batters get advantage"
}

type Quality string

const (
	QualityGreat   Quality = "great"
	QualityGood    Quality = "good"
	QualityAverage Quality = "average"
	QualityTough   Quality = "tough"
)

// Assessment summarizes how attackable a pitcher is for one batter.
type Assessment struct {
	Points      int     `json:"points"`
	Quality     Quality `json:"quality"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

// AssessPitcher grades a matchup from the pitcher's HR/9 and ERA plus the
// batter's platoon edge.
func AssessPitcher(hr9, era float64, advantage bool) Assessment {
	points := 0

	switch {
	case hr9 >= 1.8:
		points += 3
	case hr9 >= 1.4:
		points += 2
	case hr9 >= 1.1:
		points++
	}

	switch {
	case era >= 4.8:
		points += 3
	case era >= 4.2:
		points += 2
	case era >= 3.8:
		points++
	}

	if advantage {
		points += 2
	}

	a := Assessment{Points: points, Description: describePitcher(hr9, era)}
	switch {
	case points >= 6:
		a.Quality, a.Label = QualityGreat, "GREAT MATCHUP"
	case points >= 4:
		a.Quality, a.Label = QualityGood, "GOOD MATCHUP"
	case points <= 1:
		a.Quality, a.Label = QualityTough, "TOUGH MATCHUP"
	default:
		a.Quality, a.Label = QualityAverage, "AVERAGE MATCHUP"
	}
	return a
}

func describePitcher(hr9, era float64) string {
	switch {
	case hr9 >= 1.5 && era >= 4.5:
		return "Allows lots of home runs & runs"
	case hr9 >= 1.5:
		return fmt.Sprintf("Allows %.1f HRs per 9 innings", hr9)
	case era >= 4.5:
		return "Struggles with run prevention"
	case hr9 <= 0.9 && era <= 3.5:
		return "Elite pitcher - tough to homer against"
	case hr9 <= 1.0:
		return "Rarely gives up home runs"
	default:
		return "Average pitcher stats"
	}
}

// DescribeHR9 is the short badge shown next to a probable pitcher.
func DescribeHR9(hr9 float64) string {
	switch {
	case hr9 >= 1.8:
		return "Gives up HRs"
	case hr9 >= 1.4:
		return "Hittable"
	case hr9 <= 1.0:
		return "Stingy"
	default:
		return "Average"
	}
}
