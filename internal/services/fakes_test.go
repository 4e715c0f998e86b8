package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
)

// fakeSchedule stands in for the MLB Stats API client.
type fakeSchedule struct {
	mu          sync.Mutex
	games       map[string][]models.Game
	scheduleErr map[string]error
	hitters     map[int][]models.Batter
	hittersErr  error
	pitcher     *models.Pitcher
	calls       map[string]int
}

func newFakeSchedule() *fakeSchedule {
	return &fakeSchedule{
		games:       map[string][]models.Game{},
		scheduleErr: map[string]error{},
		hitters:     map[int][]models.Batter{},
		calls:       map[string]int{},
	}
}

func (f *fakeSchedule) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeSchedule) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeSchedule) GetSchedule(_ context.Context, date string) ([]models.Game, error) {
	f.record("schedule")
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.scheduleErr[date]; err != nil {
		return nil, err
	}
	games := f.games[date]
	out := make([]models.Game, len(games))
	copy(out, games)
	return out, nil
}

func (f *fakeSchedule) GetTeamHitters(_ context.Context, teamID, _ int) ([]models.Batter, error) {
	f.record("hitters")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.hittersErr != nil {
		return nil, f.hittersErr
	}
	rows, ok := f.hitters[teamID]
	if !ok {
		return nil, fmt.Errorf("team %d: %w", teamID, providers.ErrNoData)
	}
	out := make([]models.Batter, len(rows))
	copy(out, rows)
	return out, nil
}

func (f *fakeSchedule) GetPitcherDetail(_ context.Context, pitcherID, _ int) (*models.Pitcher, error) {
	f.record("pitcher")
	if f.pitcher == nil || f.pitcher.ID != pitcherID {
		return nil, fmt.Errorf("pitcher %d: %w", pitcherID, providers.ErrNoData)
	}
	p := *f.pitcher
	return &p, nil
}

type fakeOdds struct {
	mu    sync.Mutex
	board *providers.OddsBoard
	err   error
	calls int
}

func (f *fakeOdds) GetMLBOdds(_ context.Context) (*providers.OddsBoard, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.board, nil
}

func (f *fakeOdds) setBoard(b *providers.OddsBoard) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.board = b
}

type fakeLive struct {
	mu       sync.Mutex
	games    []providers.BDLGame
	gamesErr error
	stats    map[int][]providers.BDLPlayerStat
	leaders  []providers.BDLPlayerStat
}

func (f *fakeLive) GetGames(_ context.Context, _ string) ([]providers.BDLGame, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.gamesErr != nil {
		return nil, f.gamesErr
	}
	return f.games, nil
}

func (f *fakeLive) GetTeamSeasonStats(_ context.Context, teamID, _ int) ([]providers.BDLPlayerStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stats, ok := f.stats[teamID]
	if !ok {
		return nil, providers.ErrNoData
	}
	return stats, nil
}

func (f *fakeLive) GetHRLeaders(_ context.Context, _ int) ([]providers.BDLPlayerStat, error) {
	return f.leaders, nil
}

func (f *fakeLive) setGames(games []providers.BDLGame) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games = games
}

type fakeAdvanced struct {
	stats map[int]models.AdvancedStats
}

func (f *fakeAdvanced) GetAdvancedStats(_ context.Context, playerID, _ int) (*models.AdvancedStats, error) {
	s, ok := f.stats[playerID]
	if !ok {
		return nil, nil
	}
	return &s, nil
}

// notConfiguredOdds behaves like the odds client without an API key.
type notConfiguredOdds struct{}

func (notConfiguredOdds) GetMLBOdds(_ context.Context) (*providers.OddsBoard, error) {
	return nil, fmt.Errorf("%s: %w", providers.ProviderOdds, providers.ErrNotConfigured)
}

func newTestReconciler(schedule ScheduleSource, odds OddsSource, live LiveSource, advanced AdvancedSource) *Reconciler {
	log := logger.Discard()
	return NewReconciler(ReconcilerOptions{
		Schedule: schedule,
		Odds:     odds,
		Live:     live,
		Advanced: advanced,
		Breakers: NewCircuitBreakerService(1, time.Minute, log),
		Season:   2025,
		Timeout:  time.Second,
	}, log)
}

func demoGame(id int) models.Game {
	for _, g := range providers.DemoGames("2025-06-01") {
		if g.ID == id {
			return g
		}
	}
	panic("no demo game")
}
