package providers

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/models"
)

// SavantClient reads the expected-stats leaderboard. The leaderboard is a
// JSON array served from a configurable URL; "{year}" in the URL is
// replaced with the season.
type SavantClient struct {
	requester
	url   string
	cache CacheProvider
}

func NewSavantClient(url string, timeout time.Duration, cache CacheProvider, logger *logrus.Logger) *SavantClient {
	return &SavantClient{
		requester: newRequester(ProviderSavant, timeout, nil, logger),
		url:       url,
		cache:     cache,
	}
}

func (c *SavantClient) Configured() bool {
	return c.url != ""
}

// SavantRow is one leaderboard entry. Metrics arrive as strings or numbers
// depending on the export.
type SavantRow struct {
	PlayerID     flexFloat `json:"player_id"`
	XBA          flexFloat `json:"xba"`
	XSLG         flexFloat `json:"xslg"`
	BarrelRate   flexFloat `json:"barrel_rate"`
	HardHitPct   flexFloat `json:"hard_hit_pct"`
	ExitVelo     flexFloat `json:"exit_velo"`
	LaunchAngle  flexFloat `json:"launch_angle"`
	SweetSpotPct flexFloat `json:"sweet_spot_pct"`
	KPct         flexFloat `json:"k_pct"`
	BBPct        flexFloat `json:"bb_pct"`
	OZSwingPct   flexFloat `json:"oz_swing_pct"`
	ZSwingPct    flexFloat `json:"z_swing_pct"`
	FStrikePct   flexFloat `json:"f_strike_pct"`
	PA           flexFloat `json:"pa"`
}

// cachedLeaderboard is the normalized form stored in the cache; flexFloat
// does not round-trip through JSON.
type cachedLeaderboard map[string]models.AdvancedStats

func (c *SavantClient) leaderboardURL(year int) string {
	if strings.Contains(c.url, "{year}") {
		return strings.ReplaceAll(c.url, "{year}", strconv.Itoa(year))
	}
	sep := "?"
	if strings.Contains(c.url, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%syear=%d", c.url, sep, year)
}

func (c *SavantClient) leaderboard(ctx context.Context, year int) (cachedLeaderboard, error) {
	cacheKey := fmt.Sprintf("savant:leaderboard:%d", year)

	var cached cachedLeaderboard
	if err := c.cache.GetSimple(cacheKey, &cached); err == nil && cached != nil {
		return cached, nil
	}

	var rows []SavantRow
	if _, err := c.getJSON(ctx, c.leaderboardURL(year), nil, &rows); err != nil {
		return nil, fmt.Errorf("failed to fetch savant leaderboard: %w", err)
	}

	board := make(cachedLeaderboard, len(rows))
	for _, r := range rows {
		if !r.PlayerID.Valid {
			continue
		}
		id := int(r.PlayerID.Value)
		board[strconv.Itoa(id)] = r.toAdvanced(id)
	}

	if err := c.cache.SetSimple(cacheKey, board, LeaderboardTTL); err != nil {
		c.logger.WithError(err).Debug("Failed to cache savant leaderboard")
	}

	return board, nil
}

func (r SavantRow) toAdvanced(id int) models.AdvancedStats {
	a := models.AdvancedStats{
		PlayerID:     id,
		XBA:          r.XBA.Ptr(3),
		XSLG:         r.XSLG.Ptr(3),
		BarrelRate:   r.BarrelRate.Ptr(1),
		HardHitPct:   r.HardHitPct.Ptr(1),
		ExitVelo:     r.ExitVelo.Ptr(1),
		LaunchAngle:  r.LaunchAngle.Ptr(1),
		SweetSpotPct: r.SweetSpotPct.Ptr(1),
		KPct:         r.KPct.Ptr(1),
		BBPct:        r.BBPct.Ptr(1),
		OZSwingPct:   r.OZSwingPct.Ptr(1),
		ZSwingPct:    r.ZSwingPct.Ptr(1),
		FStrikePct:   r.FStrikePct.Ptr(1),
	}
	if r.PA.Valid && r.PA.Value > 0 {
		pa := int(r.PA.Value)
		a.PA = &pa
	}
	return a
}

// GetAdvancedStats returns the player's metrics, or nil with no error when
// the player is not on the leaderboard (below the plate-appearance cutoff).
func (c *SavantClient) GetAdvancedStats(ctx context.Context, playerID, year int) (*models.AdvancedStats, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", ProviderSavant, ErrNotConfigured)
	}
	if playerID <= 0 {
		return nil, nil
	}

	board, err := c.leaderboard(ctx, year)
	if err != nil {
		return nil, err
	}

	stats, ok := board[strconv.Itoa(playerID)]
	if !ok {
		return nil, nil
	}
	return &stats, nil
}
