package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/matchup"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/parks"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
	"golang.org/x/sync/singleflight"
)

// ScheduleSource is the MLB Stats API surface the reconciler needs.
type ScheduleSource interface {
	GetSchedule(ctx context.Context, date string) ([]models.Game, error)
	GetTeamHitters(ctx context.Context, teamID, season int) ([]models.Batter, error)
	GetPitcherDetail(ctx context.Context, pitcherID, season int) (*models.Pitcher, error)
}

type OddsSource interface {
	GetMLBOdds(ctx context.Context) (*providers.OddsBoard, error)
}

// LiveSource is the BallDontLie surface: live games and season stats.
type LiveSource interface {
	GetGames(ctx context.Context, date string) ([]providers.BDLGame, error)
	GetTeamSeasonStats(ctx context.Context, teamID, season int) ([]providers.BDLPlayerStat, error)
	GetHRLeaders(ctx context.Context, season int) ([]providers.BDLPlayerStat, error)
}

// CachedLiveSource is implemented by live sources that can answer from
// their cache without spending rate budget.
type CachedLiveSource interface {
	CachedGames(date string) ([]providers.BDLGame, bool)
}

type AdvancedSource interface {
	GetAdvancedStats(ctx context.Context, playerID, year int) (*models.AdvancedStats, error)
}

// Reconciler merges the external sources into the view the app shows,
// substituting fallbacks wherever a source fails. Any source may be nil.
type Reconciler struct {
	schedule ScheduleSource
	odds     OddsSource
	live     LiveSource
	advanced AdvancedSource
	breakers *CircuitBreakerService
	season   int
	timeout  time.Duration
	logger   *logrus.Logger

	// boards of one date resolve concurrently and share a games fetch
	flights singleflight.Group
}

type ReconcilerOptions struct {
	Schedule ScheduleSource
	Odds     OddsSource
	Live     LiveSource
	Advanced AdvancedSource
	Breakers *CircuitBreakerService
	Season   int
	Timeout  time.Duration
}

func NewReconciler(opts ReconcilerOptions, logger *logrus.Logger) *Reconciler {
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	if opts.Season == 0 {
		opts.Season = time.Now().Year()
	}
	if opts.Breakers == nil {
		opts.Breakers = NewCircuitBreakerService(5, 30*time.Second, logger)
	}
	return &Reconciler{
		schedule: opts.Schedule,
		odds:     opts.Odds,
		live:     opts.Live,
		advanced: opts.Advanced,
		breakers: opts.Breakers,
		season:   opts.Season,
		timeout:  opts.Timeout,
		logger:   logger,
	}
}

func (r *Reconciler) Season() int {
	return r.season
}

func (r *Reconciler) Breakers() *CircuitBreakerService {
	return r.breakers
}

// call runs fn behind the provider's breaker with the per-call timeout.
func (r *Reconciler) call(ctx context.Context, provider string, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()
	return r.breakers.Execute(provider, func() (interface{}, error) {
		return fn(ctx)
	})
}

func (r *Reconciler) warn(provider string, err error, msg string) {
	entry := logger.WithProvider(r.logger, provider).
		WithField("component", "reconciler").
		WithError(err)
	if errors.Is(err, providers.ErrNotConfigured) {
		entry.Debug(msg)
		return
	}
	entry.Warn(msg)
}

// Schedule returns the games for date. An empty slice with a nil error
// means the source answered and there are no games.
func (r *Reconciler) Schedule(ctx context.Context, date string) ([]models.Game, error) {
	if r.schedule == nil {
		return nil, fmt.Errorf("%s: %w", providers.ProviderMLBStats, providers.ErrNotConfigured)
	}
	out, err := r.call(ctx, providers.ProviderMLBStats, func(ctx context.Context) (interface{}, error) {
		return r.schedule.GetSchedule(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return out.([]models.Game), nil
}

// GetRoster returns the team's batters: live season stats when the schedule
// source has them, otherwise the built-in roster for the team, otherwise the
// generic roster. The result is never empty. When opposing is given every
// batter carries the matchup against that pitcher.
func (r *Reconciler) GetRoster(ctx context.Context, team models.TeamRef, opposing *models.Pitcher) []models.Batter {
	batters := r.liveRoster(ctx, team)
	if len(batters) == 0 {
		var known bool
		batters, known = providers.FallbackRoster(team.Abbreviation)
		if !known {
			r.logger.WithFields(logrus.Fields{
				"component": "reconciler",
				"team":      team.Abbreviation,
			}).Warn("No built-in roster for team, using generic roster")
		}
	}

	for i := range batters {
		batters[i].Team = team.Abbreviation
		batters[i].TeamName = team.Name
	}

	applyPitcherMatchup(batters, opposing)
	return batters
}

func (r *Reconciler) liveRoster(ctx context.Context, team models.TeamRef) []models.Batter {
	if r.schedule == nil || team.ID <= 0 {
		return nil
	}
	out, err := r.call(ctx, providers.ProviderMLBStats, func(ctx context.Context) (interface{}, error) {
		return r.schedule.GetTeamHitters(ctx, team.ID, r.season)
	})
	if err != nil {
		r.warn(providers.ProviderMLBStats, err, "Team hitting stats unavailable, using built-in roster")
		return nil
	}
	return out.([]models.Batter)
}

func applyPitcherMatchup(batters []models.Batter, p *models.Pitcher) {
	if p == nil {
		return
	}
	hand := p.EffectiveHand()
	for i := range batters {
		batters[i].Matchup = &models.PitcherMatchup{
			ID:              p.ID,
			Name:            p.Name,
			Hand:            hand,
			HR9:             p.EffectiveHR9(),
			ERA:             p.EffectiveERA(),
			VsHandAdvantage: matchup.HasHandednessAdvantage(batters[i].Hand, hand),
		}
	}
}

// EnrichRoster overlays BallDontLie season stats onto batters by last-name
// match. bdlTeamID identifies the club on BallDontLie; zero skips
// enrichment. Batters without a match are left unchanged.
func (r *Reconciler) EnrichRoster(ctx context.Context, bdlTeamID int, batters []models.Batter) {
	if r.live == nil || bdlTeamID <= 0 || len(batters) == 0 {
		return
	}
	out, err := r.call(ctx, providers.ProviderBallDontLie, func(ctx context.Context) (interface{}, error) {
		return r.live.GetTeamSeasonStats(ctx, bdlTeamID, r.season)
	})
	if err != nil {
		r.warn(providers.ProviderBallDontLie, err, "Season stats unavailable, keeping roster stats")
		return
	}

	byLastName := make(map[string]providers.BDLPlayerStat)
	for _, s := range out.([]providers.BDLPlayerStat) {
		b := models.Batter{Name: s.FullName()}
		if key := strings.ToLower(b.LastName()); key != "" {
			byLastName[key] = s
		}
	}

	for i := range batters {
		s, ok := byLastName[strings.ToLower(batters[i].LastName())]
		if !ok {
			continue
		}
		if s.HomeRuns > 0 {
			batters[i].SeasonHRs = s.HomeRuns
		}
		if s.AtBats > 0 {
			batters[i].AtBats = s.AtBats
		}
		batters[i].Avg = formatRate(s.BattingAverage)
		batters[i].OBP = formatRate(s.OnBasePercentage)
		batters[i].SLG = formatRate(s.SluggingPct)
		batters[i].OPS = formatRate(s.OnBasePlusSlugPct)
		batters[i].RealStats = true
	}
}

// formatRate renders a rate stat the baseball way: .287, 1.012.
func formatRate(v float64) string {
	thousandths := int(math.Round(v * 1000))
	if thousandths >= 1000 {
		return fmt.Sprintf("%d.%03d", thousandths/1000, thousandths%1000)
	}
	return fmt.Sprintf(".%03d", thousandths)
}

// BDLTeamIDs finds the BallDontLie team ids for game's clubs. Zero means
// not found.
func (r *Reconciler) BDLTeamIDs(ctx context.Context, game *models.Game) (home, away int) {
	g := r.bdlGame(ctx, game)
	if g == nil {
		return 0, 0
	}
	return g.HomeTeam.ID, g.VisitorTeam.ID
}

func (r *Reconciler) bdlGame(ctx context.Context, game *models.Game) *providers.BDLGame {
	if r.live == nil {
		return nil
	}
	games, err := r.liveGames(ctx, game.Date)
	if err != nil {
		r.warn(providers.ProviderBallDontLie, err, "Live games unavailable")
		return nil
	}
	return findBDLGame(games, game)
}

// liveGames serves cached games ahead of the breaker, so an open breaker
// only refuses requests that would reach the provider.
func (r *Reconciler) liveGames(ctx context.Context, date string) ([]providers.BDLGame, error) {
	if cached, ok := r.live.(CachedLiveSource); ok {
		if games, hit := cached.CachedGames(date); hit {
			return games, nil
		}
	}
	out, err, _ := r.flights.Do("bdl-games:"+date, func() (interface{}, error) {
		// one waiter going away must not fail the others
		return r.call(context.WithoutCancel(ctx), providers.ProviderBallDontLie, func(ctx context.Context) (interface{}, error) {
			return r.live.GetGames(ctx, date)
		})
	})
	if err != nil {
		return nil, err
	}
	return out.([]providers.BDLGame), nil
}

// ResolveOdds returns the best available lines for game: aggregated
// sportsbook prices when the odds feed lists it, the estimate otherwise.
// Never nil.
func (r *Reconciler) ResolveOdds(ctx context.Context, game *models.Game) *models.OddsSnapshot {
	if r.odds != nil {
		out, err := r.call(ctx, providers.ProviderOdds, func(ctx context.Context) (interface{}, error) {
			return r.odds.GetMLBOdds(ctx)
		})
		if err != nil {
			r.warn(providers.ProviderOdds, err, "Odds unavailable, estimating")
		} else if board := out.(*providers.OddsBoard); board != nil {
			if snap, ok := AggregateBestLines(findOddsEvent(board.Events, game)); ok {
				snap.RequestsRemaining = board.RequestsRemaining
				snap.UpdatedAt = board.FetchedAt
				return snap
			}
		}
	}

	return EstimateOdds(parks.Lookup(game.Home.Abbreviation).Factor, game.HomePitcher, game.AwayPitcher)
}

// ResolveLiveStatus returns game's state from BallDontLie, falling back to
// whatever the schedule reported, then to pregame. Never nil.
func (r *Reconciler) ResolveLiveStatus(ctx context.Context, game *models.Game) *models.LiveStatus {
	if g := r.bdlGame(ctx, game); g != nil {
		return liveStatusFromBDL(g)
	}
	if game.Live != nil {
		status := *game.Live
		return &status
	}
	return &models.LiveStatus{State: models.LivePregame}
}

func liveStatusFromBDL(g *providers.BDLGame) *models.LiveStatus {
	status := &models.LiveStatus{
		HomeScore: g.HomeTeamScore,
		AwayScore: g.VisitorTeamScore,
		Detail:    g.Status,
	}

	switch {
	case g.Status == "Final" || g.Status == "F" || strings.HasPrefix(g.Status, "Final"):
		status.State = models.LiveFinal
	case strings.Contains(g.Status, "In Progress") || isDigits(g.Status):
		status.State = models.LiveInPlay
		status.Inning = g.Inning
		if status.Inning == 0 && isDigits(g.Status) {
			fmt.Sscanf(g.Status, "%d", &status.Inning)
		}
		if strings.EqualFold(g.InningHalf, "top") {
			status.Half = "top"
		} else {
			status.Half = "bottom"
		}
	default:
		status.State = models.LivePregame
		status.HomeScore, status.AwayScore = 0, 0
	}
	return status
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// RefreshGame re-resolves the odds and live status of a game concurrently.
func (r *Reconciler) RefreshGame(ctx context.Context, game *models.Game) (*models.OddsSnapshot, *models.LiveStatus) {
	var (
		wg   sync.WaitGroup
		odds *models.OddsSnapshot
		live *models.LiveStatus
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		odds = r.ResolveOdds(ctx, game)
	}()
	go func() {
		defer wg.Done()
		live = r.ResolveLiveStatus(ctx, game)
	}()
	wg.Wait()
	return odds, live
}

// PitcherDetail returns a pitcher's season line and recent starts.
func (r *Reconciler) PitcherDetail(ctx context.Context, pitcherID int) (*models.Pitcher, error) {
	if r.schedule == nil {
		return nil, fmt.Errorf("%s: %w", providers.ProviderMLBStats, providers.ErrNotConfigured)
	}
	out, err := r.call(ctx, providers.ProviderMLBStats, func(ctx context.Context) (interface{}, error) {
		return r.schedule.GetPitcherDetail(ctx, pitcherID, r.season)
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.Pitcher), nil
}

// AdvancedStats returns nil with no error when the player has no entry.
func (r *Reconciler) AdvancedStats(ctx context.Context, playerID int) (*models.AdvancedStats, error) {
	if r.advanced == nil {
		return nil, fmt.Errorf("%s: %w", providers.ProviderSavant, providers.ErrNotConfigured)
	}
	out, err := r.call(ctx, providers.ProviderSavant, func(ctx context.Context) (interface{}, error) {
		return r.advanced.GetAdvancedStats(ctx, playerID, r.season)
	})
	if err != nil {
		return nil, err
	}
	return out.(*models.AdvancedStats), nil
}

func (r *Reconciler) HRLeaders(ctx context.Context) ([]providers.BDLPlayerStat, error) {
	if r.live == nil {
		return nil, fmt.Errorf("%s: %w", providers.ProviderBallDontLie, providers.ErrNotConfigured)
	}
	out, err := r.call(ctx, providers.ProviderBallDontLie, func(ctx context.Context) (interface{}, error) {
		return r.live.GetHRLeaders(ctx, r.season)
	})
	if err != nil {
		return nil, err
	}
	return out.([]providers.BDLPlayerStat), nil
}
