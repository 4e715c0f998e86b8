// Package parks holds the home-run park factor table for every MLB venue.
package parks

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Classification thresholds for hitter and pitcher friendly parks.
const (
	HotThreshold  = 108
	ColdThreshold = 92
	NeutralFactor = 100
)

type Class string

const (
	ClassHot     Class = "hot"
	ClassCold    Class = "cold"
	ClassNeutral Class = "neutral"
)

// Profile describes one venue. Profiles are immutable after load.
type Profile struct {
	Team   string  `yaml:"-" json:"team"`
	Venue  string  `yaml:"venue" json:"venue"`
	Factor float64 `yaml:"factor" json:"factor"`
	Home   string  `yaml:"home" json:"home"`
	Notes  string  `yaml:"notes,omitempty" json:"notes,omitempty"`
}

//go:embed parks.yaml
var rawTable []byte

var table map[string]Profile

func init() {
	t, err := parseTable(rawTable)
	if err != nil {
		panic(fmt.Sprintf("parks: invalid embedded table: %v", err))
	}
	table = t
}

func parseTable(data []byte) (map[string]Profile, error) {
	var doc struct {
		Parks map[string]Profile `yaml:"parks"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	if len(doc.Parks) == 0 {
		return nil, fmt.Errorf("no parks defined")
	}

	out := make(map[string]Profile, len(doc.Parks))
	for abbr, p := range doc.Parks {
		if p.Factor <= 0 {
			return nil, fmt.Errorf("park %s has non-positive factor %v", abbr, p.Factor)
		}
		p.Team = strings.ToUpper(abbr)
		out[p.Team] = p
	}
	return out, nil
}

// Lookup returns the profile for a team abbreviation. Unknown teams get a
// neutral profile so callers never need to handle a miss.
func Lookup(team string) Profile {
	key := strings.ToUpper(strings.TrimSpace(team))
	if p, ok := table[key]; ok {
		return p
	}
	return Profile{
		Team:   key,
		Venue:  "Unknown Park",
		Factor: NeutralFactor,
		Home:   team,
	}
}

// Known reports whether the team has an entry in the table.
func Known(team string) bool {
	_, ok := table[strings.ToUpper(strings.TrimSpace(team))]
	return ok
}

// All returns every profile sorted by factor descending, then team.
func All() []Profile {
	out := make([]Profile, 0, len(table))
	for _, p := range table {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Factor != out[j].Factor {
			return out[i].Factor > out[j].Factor
		}
		return out[i].Team < out[j].Team
	})
	return out
}

func Classify(factor float64) Class {
	switch {
	case factor >= HotThreshold:
		return ClassHot
	case factor <= ColdThreshold:
		return ClassCold
	default:
		return ClassNeutral
	}
}

func Label(factor float64) string {
	switch Classify(factor) {
	case ClassHot:
		return "Hitter's Park"
	case ClassCold:
		return "Pitcher's Park"
	default:
		return "Neutral Park"
	}
}

// BoostPercentage is the signed home-run boost relative to an average park.
func BoostPercentage(factor float64) int {
	diff := factor - NeutralFactor
	if diff >= 0 {
		return int(diff + 0.5)
	}
	return -int(-diff + 0.5)
}

// FormatBoost renders the boost for display, e.g. "+18% HR boost".
func FormatBoost(factor float64) string {
	pct := BoostPercentage(factor)
	switch {
	case pct > 0:
		return fmt.Sprintf("+%d%% HR boost", pct)
	case pct < 0:
		return fmt.Sprintf("%d%% HR boost", pct)
	default:
		return "Neutral"
	}
}
