// Package scoring turns park, power, form and pitcher signals into a tiered
// home-run recommendation with an auditable breakdown.
package scoring

import (
	"math"
	"sort"
)

// MaxScore is the highest achievable total (park 5 + power 4 + form 4 +
// matchup 5). Displayed as the denominator; totals are never clamped.
const MaxScore = 18

// MinScore is the lowest total that still produces a recommendation.
const MinScore = 3

// PitcherContext is the opposing probable pitcher as seen by one batter.
type PitcherContext struct {
	HR9             float64 `json:"hr9"`
	ERA             float64 `json:"era"`
	VsHandAdvantage bool    `json:"vs_hand_advantage"`
}

type Breakdown struct {
	Park    int `json:"park"`
	Power   int `json:"power"`
	Form    int `json:"form"`
	Matchup int `json:"matchup"`
}

func (b Breakdown) Total() int {
	return b.Park + b.Power + b.Form + b.Matchup
}

type Severity string

const (
	SeverityElite Severity = "elite"
	SeverityGood  Severity = "good"
)

type Bonus struct {
	Text     string   `json:"text"`
	Icon     string   `json:"icon"`
	Severity Severity `json:"severity"`
}

type Recommendation struct {
	Score      int       `json:"score"`
	MaxScore   int       `json:"max_score"`
	Breakdown  Breakdown `json:"breakdown"`
	Bonuses    []Bonus   `json:"bonuses"`
	Tier       int       `json:"tier"`
	Label      string    `json:"label"`
	Confidence string    `json:"confidence"`
	Class      string    `json:"class"`
}

type tierRule struct {
	min        int
	tier       int
	label      string
	confidence string
	class      string
}

var tiers = []tierRule{
	{12, 1, "MUST PLAY", "ELITE", "elite"},
	{10, 2, "TOP PICK", "Very High", "top-pick"},
	{7, 3, "STRONG", "High", "strong"},
	{5, 4, "GOOD", "Moderate", "good"},
	{MinScore, 5, "VALUE", "Low", "value"},
}

// Score computes a recommendation. It returns nil when the total falls
// below MinScore; nil means "no recommendation", not a zero score. pitcher
// may be nil when no probable pitcher is known.
func Score(parkFactor float64, seasonHRs, last7HRs int, pitcher *PitcherContext) *Recommendation {
	b := Breakdown{
		Park:  parkPoints(parkFactor),
		Power: powerPoints(seasonHRs),
		Form:  formPoints(last7HRs),
	}
	if pitcher != nil {
		b.Matchup = matchupPoints(pitcher.HR9)
		if pitcher.VsHandAdvantage {
			b.Matchup++
		}
	}

	total := b.Total()
	if total < MinScore {
		return nil
	}

	rec := &Recommendation{
		Score:     total,
		MaxScore:  MaxScore,
		Breakdown: b,
		Bonuses:   bonuses(parkFactor, seasonHRs, last7HRs, pitcher),
	}
	for _, t := range tiers {
		if total >= t.min {
			rec.Tier = t.tier
			rec.Label = t.label
			rec.Confidence = t.confidence
			rec.Class = t.class
			break
		}
	}
	return rec
}

// NaN compares false against every threshold, so it lands in the 0 bucket.
func parkPoints(factor float64) int {
	switch {
	case factor >= 115:
		return 5
	case factor >= 110:
		return 4
	case factor >= 105:
		return 3
	case factor >= 100:
		return 2
	case factor >= 95:
		return 1
	default:
		return 0
	}
}

func powerPoints(seasonHRs int) int {
	switch {
	case seasonHRs >= 35:
		return 4
	case seasonHRs >= 25:
		return 3
	case seasonHRs >= 18:
		return 2
	case seasonHRs >= 10:
		return 1
	default:
		return 0
	}
}

func formPoints(last7HRs int) int {
	switch {
	case last7HRs >= 4:
		return 4
	case last7HRs >= 3:
		return 3
	case last7HRs >= 2:
		return 2
	case last7HRs >= 1:
		return 1
	default:
		return 0
	}
}

func matchupPoints(hr9 float64) int {
	if math.IsNaN(hr9) {
		return 0
	}
	switch {
	case hr9 >= 2.0:
		return 4
	case hr9 >= 1.5:
		return 3
	case hr9 >= 1.2:
		return 2
	case hr9 >= 1.0:
		return 1
	default:
		return 0
	}
}

func bonuses(parkFactor float64, seasonHRs, last7HRs int, pitcher *PitcherContext) []Bonus {
	out := []Bonus{}

	switch {
	case parkFactor >= 115:
		out = append(out, Bonus{"Elite Ballpark", "🏟️", SeverityElite})
	case parkFactor >= 110:
		out = append(out, Bonus{"Hitter's Park", "🔥", SeverityGood})
	}

	switch {
	case seasonHRs >= 35:
		out = append(out, Bonus{"Elite Power", "💪", SeverityElite})
	case seasonHRs >= 25:
		out = append(out, Bonus{"Power Bat", "💥", SeverityGood})
	}

	switch {
	case last7HRs >= 4:
		out = append(out, Bonus{"Red Hot", "🔥", SeverityElite})
	case last7HRs >= 3:
		out = append(out, Bonus{"Hot Streak", "📈", SeverityGood})
	}

	if pitcher != nil {
		switch {
		case pitcher.HR9 >= 2.0:
			out = append(out, Bonus{"HR Machine", "🎯", SeverityElite})
		case pitcher.HR9 >= 1.5:
			out = append(out, Bonus{"Hittable Arm", "🎯", SeverityGood})
		}
		if pitcher.VsHandAdvantage {
			out = append(out, Bonus{"Platoon Edge", "⚾", SeverityGood})
		}
	}

	return out
}

// Scored pairs a caller-owned item with its (possibly nil) recommendation.
type Scored[T any] struct {
	Item           T
	Recommendation *Recommendation
}

// Rank drops unrecommended items and orders the rest by score descending.
// Ties keep their input order.
func Rank[T any](items []Scored[T]) []Scored[T] {
	out := make([]Scored[T], 0, len(items))
	for _, it := range items {
		if it.Recommendation != nil {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Recommendation.Score > out[j].Recommendation.Score
	})
	return out
}
