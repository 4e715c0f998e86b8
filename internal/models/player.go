package models

// Defaults applied when a probable pitcher's season line is missing.
const (
	DefaultPitcherHR9  = 1.2
	DefaultPitcherERA  = 4.00
	DefaultPitcherHand = "R"
)

type Pitcher struct {
	ID            int            `json:"id"`
	Name          string         `json:"name"`
	Hand          string         `json:"hand"`
	ERA           float64        `json:"era"`
	HR9           float64        `json:"hr9"`
	HasStats      bool           `json:"has_stats"`
	Season        *PitcherSeason `json:"season,omitempty"`
	GameLog       []PitcherStart `json:"game_log,omitempty"`
	RecentHRs     int            `json:"recent_hrs,omitempty"`
	AvgHRPerStart *float64       `json:"avg_hr_per_start,omitempty"`
}

// EffectiveHR9 falls back to the league-ish default when no stats exist.
func (p *Pitcher) EffectiveHR9() float64 {
	if p == nil || !p.HasStats {
		return DefaultPitcherHR9
	}
	return p.HR9
}

func (p *Pitcher) EffectiveERA() float64 {
	if p == nil || !p.HasStats {
		return DefaultPitcherERA
	}
	return p.ERA
}

func (p *Pitcher) EffectiveHand() string {
	if p == nil || p.Hand == "" {
		return DefaultPitcherHand
	}
	return p.Hand
}

type PitcherSeason struct {
	ERA            float64 `json:"era"`
	HR9            float64 `json:"hr9"`
	WHIP           float64 `json:"whip"`
	StrikeoutsPer9 float64 `json:"k9"`
	WalksPer9      float64 `json:"bb9"`
	Strikeouts     int     `json:"strikeouts"`
	InningsPitched float64 `json:"innings_pitched"`
	HomeRuns       int     `json:"home_runs"`
	Wins           int     `json:"wins"`
	Losses         int     `json:"losses"`
}

type PitcherStart struct {
	Date           string  `json:"date"`
	HomeRuns       int     `json:"home_runs"`
	InningsPitched float64 `json:"innings_pitched"`
	Strikeouts     int     `json:"strikeouts"`
	EarnedRuns     int     `json:"earned_runs"`
	Opponent       string  `json:"opponent"`
}

// PitcherMatchup is the opposing pitcher as attached to one batter.
type PitcherMatchup struct {
	ID              int     `json:"id,omitempty"`
	Name            string  `json:"name"`
	Hand            string  `json:"hand"`
	HR9             float64 `json:"hr9"`
	ERA             float64 `json:"era"`
	VsHandAdvantage bool    `json:"vs_hand_advantage"`
}

type Batter struct {
	ID          int             `json:"id"`
	Name        string          `json:"name"`
	Team        string          `json:"team"`
	TeamName    string          `json:"team_name,omitempty"`
	Hand        string          `json:"hand"`
	SeasonHRs   int             `json:"season_hrs"`
	Last7HRs    int             `json:"last7_hrs"`
	Avg         string          `json:"avg"`
	Doubles     int             `json:"doubles,omitempty"`
	Triples     int             `json:"triples,omitempty"`
	XBH         int             `json:"xbh,omitempty"`
	AtBats      int             `json:"at_bats,omitempty"`
	GamesPlayed int             `json:"games_played,omitempty"`
	OBP         string          `json:"obp,omitempty"`
	SLG         string          `json:"slg,omitempty"`
	OPS         string          `json:"ops,omitempty"`
	RealStats   bool            `json:"real_stats"`
	Matchup     *PitcherMatchup `json:"pitcher,omitempty"`
}

// LastName is the final whitespace-separated token of the name, ignoring
// generational suffixes.
func (b *Batter) LastName() string {
	return lastNameOf(b.Name)
}

// AdvancedStats is quality-of-contact and plate-discipline data. Nil
// fields mean the metric was not reported.
type AdvancedStats struct {
	PlayerID     int      `json:"player_id"`
	XBA          *float64 `json:"xba"`
	XSLG         *float64 `json:"xslg"`
	BarrelRate   *float64 `json:"barrel_rate"`
	HardHitPct   *float64 `json:"hard_hit_pct"`
	ExitVelo     *float64 `json:"exit_velo"`
	LaunchAngle  *float64 `json:"launch_angle"`
	SweetSpotPct *float64 `json:"sweet_spot_pct"`
	KPct         *float64 `json:"k_pct"`
	BBPct        *float64 `json:"bb_pct"`
	OZSwingPct   *float64 `json:"oz_swing_pct"`
	ZSwingPct    *float64 `json:"z_swing_pct"`
	FStrikePct   *float64 `json:"f_strike_pct"`
	PA           *int     `json:"pa"`
}
