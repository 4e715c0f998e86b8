package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/matchup"
	"github.com/stitts-dev/hr-parlay/internal/models"
)

const (
	minAtBatsForRoster = 50
	rosterSize         = 8
	pitcherLogStarts   = 5
)

// MLBStatsClient reads schedules, team hitting and pitcher stats from the
// public MLB Stats API. No credentials are required.
type MLBStatsClient struct {
	requester
	baseURL string
	cache   CacheProvider
}

func NewMLBStatsClient(baseURL string, timeout time.Duration, cache CacheProvider, logger *logrus.Logger) *MLBStatsClient {
	return &MLBStatsClient{
		requester: newRequester(ProviderMLBStats, timeout, nil, logger),
		baseURL:   strings.TrimRight(baseURL, "/"),
		cache:     cache,
	}
}

// MLB Stats API response structures
type mlbScheduleResponse struct {
	Dates []struct {
		Date  string    `json:"date"`
		Games []mlbGame `json:"games"`
	} `json:"dates"`
}

type mlbGame struct {
	GamePk   int    `json:"gamePk"`
	GameDate string `json:"gameDate"`
	Status   struct {
		AbstractGameState string `json:"abstractGameState"`
		DetailedState     string `json:"detailedState"`
	} `json:"status"`
	Teams struct {
		Away mlbGameTeam `json:"away"`
		Home mlbGameTeam `json:"home"`
	} `json:"teams"`
	Venue struct {
		Name string `json:"name"`
	} `json:"venue"`
	Linescore *struct {
		CurrentInning int    `json:"currentInning"`
		InningHalf    string `json:"inningHalf"`
	} `json:"linescore"`
}

type mlbGameTeam struct {
	Score int `json:"score"`
	Team  struct {
		ID           int    `json:"id"`
		Name         string `json:"name"`
		Abbreviation string `json:"abbreviation"`
	} `json:"team"`
	ProbablePitcher *mlbProbablePitcher `json:"probablePitcher"`
}

type mlbProbablePitcher struct {
	ID        int    `json:"id"`
	FullName  string `json:"fullName"`
	PitchHand struct {
		Code string `json:"code"`
	} `json:"pitchHand"`
	Stats []struct {
		Group struct {
			DisplayName string `json:"displayName"`
		} `json:"group"`
		Stats mlbPitchingStat `json:"stats"`
	} `json:"stats"`
}

type mlbPitchingStat struct {
	ERA            flexFloat `json:"era"`
	HomeRunsPer9   flexFloat `json:"homeRunsPer9"`
	WHIP           flexFloat `json:"whip"`
	StrikeoutsPer9 flexFloat `json:"strikeoutsPer9"`
	WalksPer9      flexFloat `json:"walksPer9"`
	StrikeOuts     int       `json:"strikeOuts"`
	InningsPitched flexFloat `json:"inningsPitched"`
	HomeRuns       int       `json:"homeRuns"`
	EarnedRuns     int       `json:"earnedRuns"`
	Wins           int       `json:"wins"`
	Losses         int       `json:"losses"`
}

type mlbHittingResponse struct {
	Stats []struct {
		Splits []struct {
			Player *struct {
				ID       int    `json:"id"`
				FullName string `json:"fullName"`
				BatSide  struct {
					Code string `json:"code"`
				} `json:"batSide"`
			} `json:"player"`
			Stat struct {
				HomeRuns    int    `json:"homeRuns"`
				Doubles     int    `json:"doubles"`
				Triples     int    `json:"triples"`
				AtBats      int    `json:"atBats"`
				GamesPlayed int    `json:"gamesPlayed"`
				Avg         string `json:"avg"`
				OBP         string `json:"obp"`
				SLG         string `json:"slg"`
				OPS         string `json:"ops"`
			} `json:"stat"`
		} `json:"splits"`
	} `json:"stats"`
}

type mlbPitchingResponse struct {
	Stats []struct {
		Splits []struct {
			Date     string `json:"date"`
			Opponent struct {
				Name string `json:"name"`
			} `json:"opponent"`
			Stat mlbPitchingStat `json:"stat"`
		} `json:"splits"`
	} `json:"stats"`
}

// GetSchedule returns the games scheduled on date (YYYY-MM-DD). An empty
// slice with a nil error means the league has no games that day.
func (c *MLBStatsClient) GetSchedule(ctx context.Context, date string) ([]models.Game, error) {
	cacheKey := fmt.Sprintf("mlb:schedule:%s", date)

	var cached []models.Game
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/schedule?sportId=1&date=%s&hydrate=team,linescore,probablePitcher(stats(type=season))", c.baseURL, date)

	var resp mlbScheduleResponse
	if _, err := c.getJSON(ctx, url, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch schedule for %s: %w", date, err)
	}

	games := []models.Game{}
	for _, d := range resp.Dates {
		for _, g := range d.Games {
			games = append(games, convertMLBGame(g, date))
		}
	}

	if err := c.cache.SetSimple(cacheKey, games, LiveTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache schedule")
	}

	return games, nil
}

func convertMLBGame(g mlbGame, date string) models.Game {
	game := models.Game{
		ID:   g.GamePk,
		Date: date,
		Home: models.TeamRef{
			ID:           g.Teams.Home.Team.ID,
			Abbreviation: g.Teams.Home.Team.Abbreviation,
			Name:         g.Teams.Home.Team.Name,
		},
		Away: models.TeamRef{
			ID:           g.Teams.Away.Team.ID,
			Abbreviation: g.Teams.Away.Team.Abbreviation,
			Name:         g.Teams.Away.Team.Name,
		},
		Venue:       g.Venue.Name,
		Status:      g.Status.DetailedState,
		HomePitcher: convertProbablePitcher(g.Teams.Home.ProbablePitcher),
		AwayPitcher: convertProbablePitcher(g.Teams.Away.ProbablePitcher),
		Source:      models.SourceLive,
	}

	if t, err := time.Parse(time.RFC3339, g.GameDate); err == nil {
		game.ScheduledAt = t
	}

	switch g.Status.AbstractGameState {
	case "Live":
		game.Live = &models.LiveStatus{
			State:     models.LiveInPlay,
			HomeScore: g.Teams.Home.Score,
			AwayScore: g.Teams.Away.Score,
			Detail:    g.Status.DetailedState,
		}
		if g.Linescore != nil {
			game.Live.Inning = g.Linescore.CurrentInning
			game.Live.Half = halfFromMLB(g.Linescore.InningHalf)
		}
	case "Final":
		game.Live = &models.LiveStatus{
			State:     models.LiveFinal,
			HomeScore: g.Teams.Home.Score,
			AwayScore: g.Teams.Away.Score,
			Detail:    g.Status.DetailedState,
		}
	}

	return game
}

func halfFromMLB(h string) string {
	if strings.EqualFold(h, "top") {
		return "top"
	}
	return "bottom"
}

func convertProbablePitcher(pp *mlbProbablePitcher) *models.Pitcher {
	if pp == nil || pp.FullName == "" {
		return nil
	}

	p := &models.Pitcher{
		ID:   pp.ID,
		Name: pp.FullName,
		Hand: matchup.NormalizeHand(pp.PitchHand.Code),
	}
	if p.Hand == "" {
		p.Hand = models.DefaultPitcherHand
	}

	for _, s := range pp.Stats {
		if s.Group.DisplayName != "" && !strings.EqualFold(s.Group.DisplayName, "pitching") {
			continue
		}
		if s.Stats.ERA.Valid || s.Stats.HomeRunsPer9.Valid {
			p.ERA = valueOr(s.Stats.ERA, models.DefaultPitcherERA)
			p.HR9 = valueOr(s.Stats.HomeRunsPer9, models.DefaultPitcherHR9)
			p.HasStats = true
			break
		}
	}

	return p
}

func valueOr(f flexFloat, def float64) float64 {
	if !f.Valid {
		return def
	}
	return f.Value
}

// GetTeamHitters returns the team's top home-run hitters for a season:
// batters with at least 50 at-bats, sorted by home runs, capped at eight.
// Both endpoint shapes the API exposes are tried in order.
func (c *MLBStatsClient) GetTeamHitters(ctx context.Context, teamID, season int) ([]models.Batter, error) {
	cacheKey := fmt.Sprintf("mlb:hitters:%d:%d", teamID, season)

	var cached []models.Batter
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil && len(cached) > 0 {
		return cached, nil
	}

	endpoints := []string{
		fmt.Sprintf("%s/teams/%d/stats?stats=season&group=hitting&season=%d", c.baseURL, teamID, season),
		fmt.Sprintf("%s/stats?stats=season&group=hitting&season=%d&sportId=1&teamId=%d&limit=30", c.baseURL, season, teamID),
	}

	var lastErr error = ErrNoData
	for _, url := range endpoints {
		var resp mlbHittingResponse
		if _, err := c.getJSON(ctx, url, nil, &resp); err != nil {
			lastErr = err
			continue
		}

		hitters := topHitters(resp)
		if len(hitters) == 0 {
			continue
		}

		if err := c.cache.SetSimple(cacheKey, hitters, SeasonTTL); err != nil {
			c.logger.WithError(err).Debug("Failed to cache team hitters")
		}
		return hitters, nil
	}

	return nil, fmt.Errorf("no hitting stats for team %d: %w", teamID, lastErr)
}

func topHitters(resp mlbHittingResponse) []models.Batter {
	if len(resp.Stats) == 0 {
		return nil
	}

	var out []models.Batter
	for _, s := range resp.Stats[0].Splits {
		if s.Player == nil || s.Player.FullName == "" || s.Stat.AtBats < minAtBatsForRoster {
			continue
		}
		hand := matchup.NormalizeHand(s.Player.BatSide.Code)
		if hand == "" {
			hand = matchup.HandRight
		}
		avg := trimLeadingZero(s.Stat.Avg)
		if avg == "" {
			avg = ".000"
		}
		out = append(out, models.Batter{
			ID:          s.Player.ID,
			Name:        s.Player.FullName,
			Hand:        hand,
			SeasonHRs:   s.Stat.HomeRuns,
			Last7HRs:    0, // the season split carries no trailing window
			Avg:         avg,
			Doubles:     s.Stat.Doubles,
			Triples:     s.Stat.Triples,
			XBH:         s.Stat.Doubles + s.Stat.Triples + s.Stat.HomeRuns,
			AtBats:      s.Stat.AtBats,
			GamesPlayed: s.Stat.GamesPlayed,
			OBP:         trimLeadingZero(s.Stat.OBP),
			SLG:         trimLeadingZero(s.Stat.SLG),
			OPS:         trimLeadingZero(s.Stat.OPS),
			RealStats:   true,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SeasonHRs > out[j].SeasonHRs
	})
	if len(out) > rosterSize {
		out = out[:rosterSize]
	}
	return out
}

// GetPitcherDetail fetches a pitcher's season aggregates and last five
// starts concurrently. Either half may be missing.
func (c *MLBStatsClient) GetPitcherDetail(ctx context.Context, pitcherID, season int) (*models.Pitcher, error) {
	if pitcherID <= 0 {
		return nil, fmt.Errorf("invalid pitcher id %d", pitcherID)
	}

	cacheKey := fmt.Sprintf("mlb:pitcher:%d:%d", pitcherID, season)

	var cached models.Pitcher
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	var (
		wg                sync.WaitGroup
		seasonResp, logs  mlbPitchingResponse
		seasonErr, logErr error
	)

	wg.Add(2)
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/people/%d/stats?stats=season&group=pitching&season=%d", c.baseURL, pitcherID, season)
		_, seasonErr = c.getJSON(ctx, url, nil, &seasonResp)
	}()
	go func() {
		defer wg.Done()
		url := fmt.Sprintf("%s/people/%d/stats?stats=gameLog&group=pitching&season=%d&limit=%d", c.baseURL, pitcherID, season, pitcherLogStarts)
		_, logErr = c.getJSON(ctx, url, nil, &logs)
	}()
	wg.Wait()

	if seasonErr != nil && logErr != nil {
		return nil, fmt.Errorf("failed to fetch pitcher %d: %w", pitcherID, seasonErr)
	}

	p := &models.Pitcher{ID: pitcherID}

	if seasonErr == nil && len(seasonResp.Stats) > 0 && len(seasonResp.Stats[0].Splits) > 0 {
		st := seasonResp.Stats[0].Splits[0].Stat
		p.Season = &models.PitcherSeason{
			ERA:            st.ERA.Value,
			HR9:            st.HomeRunsPer9.Value,
			WHIP:           st.WHIP.Value,
			StrikeoutsPer9: st.StrikeoutsPer9.Value,
			WalksPer9:      st.WalksPer9.Value,
			Strikeouts:     st.StrikeOuts,
			InningsPitched: st.InningsPitched.Value,
			HomeRuns:       st.HomeRuns,
			Wins:           st.Wins,
			Losses:         st.Losses,
		}
		p.ERA = st.ERA.Value
		p.HR9 = st.HomeRunsPer9.Value
		p.HasStats = st.ERA.Valid || st.HomeRunsPer9.Valid
	}

	if logErr == nil && len(logs.Stats) > 0 {
		splits := logs.Stats[0].Splits
		if len(splits) > pitcherLogStarts {
			splits = splits[:pitcherLogStarts]
		}
		total := 0
		for _, s := range splits {
			p.GameLog = append(p.GameLog, models.PitcherStart{
				Date:           s.Date,
				HomeRuns:       s.Stat.HomeRuns,
				InningsPitched: s.Stat.InningsPitched.Value,
				Strikeouts:     s.Stat.StrikeOuts,
				EarnedRuns:     s.Stat.EarnedRuns,
				Opponent:       s.Opponent.Name,
			})
			total += s.Stat.HomeRuns
		}
		p.RecentHRs = total
		if len(p.GameLog) > 0 {
			avg := roundTo(float64(total)/float64(len(p.GameLog)), 1)
			p.AvgHRPerStart = &avg
		}
	}

	if p.Season == nil && len(p.GameLog) == 0 {
		return nil, fmt.Errorf("pitcher %d: %w", pitcherID, ErrNoData)
	}

	if err := c.cache.SetSimple(cacheKey, p, SeasonTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache pitcher detail")
	}

	return p, nil
}
