package providers

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// BallDontLieClient reads live game state and season batting lines from
// the BallDontLie MLB API.
type BallDontLieClient struct {
	requester
	baseURL string
	apiKey  string
	cache   CacheProvider
}

func NewBallDontLieClient(baseURL, apiKey string, requestsPerMinute int, timeout time.Duration, cache CacheProvider, logger *logrus.Logger) *BallDontLieClient {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 5
	}
	return &BallDontLieClient{
		requester: newRequester(ProviderBallDontLie, timeout,
			rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1), logger),
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		cache:   cache,
	}
}

func (c *BallDontLieClient) Configured() bool {
	return c.apiKey != ""
}

// BDLTeam is a team as BallDontLie names it.
type BDLTeam struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	DisplayName  string `json:"display_name"`
	Abbreviation string `json:"abbreviation"`
}

type BDLGame struct {
	ID               int     `json:"id"`
	Date             string  `json:"date"`
	Status           string  `json:"status"`
	Inning           int     `json:"inning"`
	InningHalf       string  `json:"inning_half"`
	HomeTeam         BDLTeam `json:"home_team"`
	VisitorTeam      BDLTeam `json:"visitor_team"`
	HomeTeamScore    int     `json:"home_team_score"`
	VisitorTeamScore int     `json:"visitor_team_score"`
}

type BDLPlayerStat struct {
	Player struct {
		ID        int    `json:"id"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
	} `json:"player"`
	TeamID            int     `json:"team_id"`
	HomeRuns          int     `json:"home_runs"`
	AtBats            int     `json:"at_bats"`
	BattingAverage    float64 `json:"batting_average"`
	OnBasePercentage  float64 `json:"on_base_percentage"`
	SluggingPct       float64 `json:"slugging_percentage"`
	OnBasePlusSlugPct float64 `json:"on_base_plus_slugging"`
}

// FullName joins the first and last name.
func (s BDLPlayerStat) FullName() string {
	return strings.TrimSpace(s.Player.FirstName + " " + s.Player.LastName)
}

type bdlGamesResponse struct {
	Data []BDLGame `json:"data"`
}

type bdlStatsResponse struct {
	Data []BDLPlayerStat `json:"data"`
}

func (c *BallDontLieClient) headers() map[string]string {
	return map[string]string{"Authorization": c.apiKey}
}

// GetGames returns the games BallDontLie lists for date (YYYY-MM-DD).
func (c *BallDontLieClient) GetGames(ctx context.Context, date string) ([]BDLGame, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", ProviderBallDontLie, ErrNotConfigured)
	}

	if cached, ok := c.CachedGames(date); ok {
		return cached, nil
	}

	url := fmt.Sprintf("%s/games?dates[]=%s&per_page=30", c.baseURL, date)

	var resp bdlGamesResponse
	if _, err := c.getJSON(ctx, url, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch live games for %s: %w", date, err)
	}

	if err := c.cache.SetSimple(gamesCacheKey(date), resp.Data, LiveTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache live games")
	}

	return resp.Data, nil
}

// CachedGames returns date's games when a fresh copy is cached. It never
// touches the network or the rate limiter.
func (c *BallDontLieClient) CachedGames(date string) ([]BDLGame, bool) {
	var cached []BDLGame
	if err := c.cache.GetSimple(gamesCacheKey(date), &cached); err != nil {
		return nil, false
	}
	return cached, true
}

func gamesCacheKey(date string) string {
	return fmt.Sprintf("bdl:games:%s", date)
}

// GetTeamSeasonStats returns season batting lines for one BallDontLie team.
func (c *BallDontLieClient) GetTeamSeasonStats(ctx context.Context, teamID, season int) ([]BDLPlayerStat, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", ProviderBallDontLie, ErrNotConfigured)
	}

	cacheKey := fmt.Sprintf("bdl:team_stats:%d:%d", teamID, season)

	var cached []BDLPlayerStat
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/stats?season=%d&team_ids[]=%d&per_page=50", c.baseURL, season, teamID)

	var resp bdlStatsResponse
	if _, err := c.getJSON(ctx, url, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch team stats for %d: %w", teamID, err)
	}

	if err := c.cache.SetSimple(cacheKey, resp.Data, SeasonTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache team stats")
	}

	return resp.Data, nil
}

// GetHRLeaders returns batters with at least three home runs, most first.
func (c *BallDontLieClient) GetHRLeaders(ctx context.Context, season int) ([]BDLPlayerStat, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", ProviderBallDontLie, ErrNotConfigured)
	}

	cacheKey := fmt.Sprintf("bdl:hr_leaders:%d", season)

	var cached []BDLPlayerStat
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return cached, nil
	}

	url := fmt.Sprintf("%s/stats?season=%d&per_page=100", c.baseURL, season)

	var resp bdlStatsResponse
	if _, err := c.getJSON(ctx, url, c.headers(), &resp); err != nil {
		return nil, fmt.Errorf("failed to fetch hr leaders: %w", err)
	}

	leaders := make([]BDLPlayerStat, 0, len(resp.Data))
	for _, s := range resp.Data {
		if s.HomeRuns >= 3 {
			leaders = append(leaders, s)
		}
	}
	sort.SliceStable(leaders, func(i, j int) bool {
		return leaders[i].HomeRuns > leaders[j].HomeRuns
	})

	if err := c.cache.SetSimple(cacheKey, leaders, SeasonTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache hr leaders")
	}

	return leaders, nil
}
