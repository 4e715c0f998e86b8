package providers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// RemainingHeader carries The Odds API's remaining monthly quota.
const RemainingHeader = "x-requests-remaining"

var bookNames = map[string]string{
	"fanduel":     "FanDuel",
	"draftkings":  "DraftKings",
	"betmgm":      "BetMGM",
	"caesars":     "Caesars",
	"pointsbetus": "PointsBet",
	"betrivers":   "BetRivers",
	"unibet_us":   "Unibet",
	"wynnbet":     "WynnBet",
	"bovada":      "Bovada",
	"betus":       "BetUS",
	"superbook":   "SuperBook",
	"betonlineag": "BetOnline",
	"mybookieag":  "MyBookie",
}

// BookDisplayName maps a bookmaker key to its marketing name.
func BookDisplayName(key, title string) string {
	if name, ok := bookNames[key]; ok {
		return name
	}
	if title != "" {
		return title
	}
	return key
}

// OddsEvent is one game as listed by The Odds API.
type OddsEvent struct {
	ID           string          `json:"id"`
	CommenceTime string          `json:"commence_time"`
	HomeTeam     string          `json:"home_team"`
	AwayTeam     string          `json:"away_team"`
	Bookmakers   []OddsBookmaker `json:"bookmakers"`
}

type OddsBookmaker struct {
	Key     string       `json:"key"`
	Title   string       `json:"title"`
	Markets []OddsMarket `json:"markets"`
}

type OddsMarket struct {
	Key      string        `json:"key"`
	Outcomes []OddsOutcome `json:"outcomes"`
}

type OddsOutcome struct {
	Name  string   `json:"name"`
	Price int      `json:"price"`
	Point *float64 `json:"point,omitempty"`
}

// OddsBoard is the full market plus the quota header from the response
// that produced it.
type OddsBoard struct {
	Events            []OddsEvent `json:"events"`
	RequestsRemaining string      `json:"requests_remaining,omitempty"`
	FetchedAt         time.Time   `json:"fetched_at"`
}

// OddsAPIClient reads MLB moneylines and totals from The Odds API.
type OddsAPIClient struct {
	requester
	baseURL string
	apiKey  string
	cache   CacheProvider
}

func NewOddsAPIClient(baseURL, apiKey string, requestsPerMinute int, timeout time.Duration, cache CacheProvider, logger *logrus.Logger) *OddsAPIClient {
	var limiter *rate.Limiter
	if requestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(requestsPerMinute)), 1)
	}
	return &OddsAPIClient{
		requester: newRequester(ProviderOdds, timeout, limiter, logger),
		baseURL:   strings.TrimRight(baseURL, "/"),
		apiKey:    apiKey,
		cache:     cache,
	}
}

func (c *OddsAPIClient) Configured() bool {
	return c.apiKey != ""
}

// GetMLBOdds returns every listed MLB game with h2h and totals markets.
func (c *OddsAPIClient) GetMLBOdds(ctx context.Context) (*OddsBoard, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", ProviderOdds, ErrNotConfigured)
	}

	const cacheKey = "odds:mlb:h2h_totals"

	var cached OddsBoard
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil {
		return &cached, nil
	}

	url := fmt.Sprintf("%s/sports/baseball_mlb/odds?apiKey=%s&regions=us&markets=h2h,totals&oddsFormat=american&dateFormat=iso", c.baseURL, c.apiKey)

	var events []OddsEvent
	hdr, err := c.getJSON(ctx, url, nil, &events)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch odds: %w", err)
	}

	board := &OddsBoard{
		Events:            events,
		RequestsRemaining: hdr.Get(RemainingHeader),
		FetchedAt:         time.Now().UTC(),
	}

	if board.RequestsRemaining != "" {
		c.logger.WithField("requests_remaining", board.RequestsRemaining).Debug("Odds API quota")
	}

	if err := c.cache.SetSimple(cacheKey, board, LiveTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache odds board")
	}

	return board, nil
}
