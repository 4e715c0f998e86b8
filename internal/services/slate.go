package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/matchup"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"github.com/stitts-dev/hr-parlay/internal/parks"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/internal/scoring"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
	"golang.org/x/sync/errgroup"
)

const dateLayout = "2006-01-02"

var (
	ErrNoGames        = errors.New("no games scheduled")
	ErrInvalidDate    = errors.New("invalid date, expected YYYY-MM-DD")
	ErrDateOutOfRange = errors.New("date must be within 1 month back and 6 months ahead")
	ErrPlayerNotFound = errors.New("player not found on the loaded slate")
	ErrGameNotFound   = errors.New("game not found on the loaded slate")
	ErrEmptyParlay    = errors.New("parlay has no picks")
	ErrNoSlate        = errors.New("no slate loaded")
)

// RankedPlayer is a batter with its recommendation and matchup grade.
type RankedPlayer struct {
	models.Batter
	Recommendation *scoring.Recommendation `json:"recommendation"`
	Assessment     *matchup.Assessment     `json:"assessment,omitempty"`
	Selected       bool                    `json:"selected"`
}

// Board is one game's scored view.
type Board struct {
	Game    models.Game     `json:"game"`
	Park    parks.Profile   `json:"park"`
	Players []RankedPlayer  `json:"players"`
	Unrated []models.Batter `json:"unrated"`
	BuiltAt time.Time       `json:"built_at"`
}

func (b *Board) findPlayer(playerID int) (*models.Batter, *scoring.Recommendation, bool) {
	for i := range b.Players {
		if b.Players[i].ID == playerID {
			return &b.Players[i].Batter, b.Players[i].Recommendation, true
		}
	}
	for i := range b.Unrated {
		if b.Unrated[i].ID == playerID {
			return &b.Unrated[i], nil, true
		}
	}
	return nil, nil, false
}

// Slate is every game loaded for one date.
type Slate struct {
	Date     string    `json:"date"`
	Source   string    `json:"source"`
	Boards   []*Board  `json:"boards"`
	LoadedAt time.Time `json:"loaded_at"`
}

func (s *Slate) board(gameID int) *Board {
	for _, b := range s.Boards {
		if b.Game.ID == gameID {
			return b
		}
	}
	return nil
}

// GameSnapshot is the refreshed odds and live state of one game.
type GameSnapshot struct {
	GameID int                  `json:"game_id"`
	Odds   *models.OddsSnapshot `json:"odds"`
	Live   *models.LiveStatus   `json:"live"`
}

type SlateOptions struct {
	LookaheadDays int
	// BoardConcurrency bounds how many boards build at once.
	BoardConcurrency int
	// SkipLiveData uses the demo slate without calling the schedule source.
	SkipLiveData bool
}

// SlateService owns the application state: the loaded slate, the parlay
// being built and the handles needed to refresh and persist them.
type SlateService struct {
	reconciler *Reconciler
	store      *ParlayStore
	selections *SelectionSet
	opts       SlateOptions
	logger     *logrus.Logger
	now        func() time.Time

	mu    sync.RWMutex
	slate *Slate
}

func NewSlateService(reconciler *Reconciler, store *ParlayStore, opts SlateOptions, logger *logrus.Logger) *SlateService {
	if opts.LookaheadDays <= 0 {
		opts.LookaheadDays = 14
	}
	if opts.BoardConcurrency <= 0 {
		opts.BoardConcurrency = 4
	}
	return &SlateService{
		reconciler: reconciler,
		store:      store,
		selections: NewSelectionSet(),
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *SlateService) Reconciler() *Reconciler {
	return s.reconciler
}

func (s *SlateService) Selections() *SelectionSet {
	return s.selections
}

// ParseDate validates a YYYY-MM-DD date against the selectable window of
// one month back through six months ahead.
func (s *SlateService) ParseDate(date string) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, date, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if d.Before(today.AddDate(0, -1, 0)) || d.After(today.AddDate(0, 6, 0)) {
		return time.Time{}, ErrDateOutOfRange
	}
	return d, nil
}

// LoadSlate loads and scores every game on date, replacing the current
// slate. A schedule fetch failure falls back to the demo games; a date
// with no games returns ErrNoGames and leaves the current slate alone.
func (s *SlateService) LoadSlate(ctx context.Context, date string) (*Slate, error) {
	if _, err := s.ParseDate(date); err != nil {
		return nil, err
	}

	games, source := s.fetchGames(ctx, date)
	if len(games) == 0 {
		return nil, ErrNoGames
	}
	return s.install(ctx, date, games, source)
}

func (s *SlateService) fetchGames(ctx context.Context, date string) ([]models.Game, string) {
	if s.opts.SkipLiveData {
		return providers.DemoGames(date), models.SourceFallback
	}
	games, err := s.reconciler.Schedule(ctx, date)
	if err != nil {
		s.logger.WithFields(logrus.Fields{
			"component": "slate",
			"date":      date,
		}).WithError(err).Warn("Schedule unavailable, using demo games")
		return providers.DemoGames(date), models.SourceFallback
	}
	return games, models.SourceLive
}

// FindNextSlate loads the first date from `from` onward, within the
// lookahead window, that has games. Dates whose schedule cannot be fetched
// are skipped. When nothing is found the demo slate for `from` is loaded.
func (s *SlateService) FindNextSlate(ctx context.Context, from time.Time) (*Slate, error) {
	start := from.UTC().Format(dateLayout)
	if s.opts.SkipLiveData {
		return s.install(ctx, start, providers.DemoGames(start), models.SourceFallback)
	}

	for i := 0; i < s.opts.LookaheadDays; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		date := from.UTC().AddDate(0, 0, i).Format(dateLayout)
		games, err := s.reconciler.Schedule(ctx, date)
		if err != nil {
			s.logger.WithFields(logrus.Fields{
				"component": "slate",
				"date":      date,
			}).WithError(err).Debug("Skipping date, schedule unavailable")
			continue
		}
		if len(games) > 0 {
			return s.install(ctx, date, games, models.SourceLive)
		}
	}

	s.logger.WithField("component", "slate").Info("No games in lookahead window, loading demo slate")
	return s.install(ctx, start, providers.DemoGames(start), models.SourceFallback)
}

func (s *SlateService) install(ctx context.Context, date string, games []models.Game, source string) (*Slate, error) {
	boards := make([]*Board, len(games))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BoardConcurrency)
	for i := range games {
		g.Go(func() error {
			boards[i] = s.BuildBoard(gctx, games[i])
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to build slate for %s: %w", date, err)
	}

	slate := &Slate{
		Date:     date,
		Source:   source,
		Boards:   boards,
		LoadedAt: s.now().UTC(),
	}

	s.mu.Lock()
	s.slate = slate
	s.mu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"component": "slate",
		"date":      date,
		"games":     len(games),
		"source":    source,
	}).Info("Slate loaded")

	return s.Current(), nil
}

// BuildBoard fetches both rosters plus odds and live state concurrently,
// then scores every batter against the home park.
func (s *SlateService) BuildBoard(ctx context.Context, game models.Game) *Board {
	var (
		wg                 sync.WaitGroup
		homeBats, awayBats []models.Batter
		odds               *models.OddsSnapshot
		live               *models.LiveStatus
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		homeBats = s.reconciler.GetRoster(ctx, game.Home, game.AwayPitcher)
	}()
	go func() {
		defer wg.Done()
		awayBats = s.reconciler.GetRoster(ctx, game.Away, game.HomePitcher)
	}()
	go func() {
		defer wg.Done()
		odds, live = s.reconciler.RefreshGame(ctx, &game)
	}()
	wg.Wait()

	if needsEnrichment(homeBats) || needsEnrichment(awayBats) {
		homeID, awayID := s.reconciler.BDLTeamIDs(ctx, &game)
		if needsEnrichment(homeBats) {
			s.reconciler.EnrichRoster(ctx, homeID, homeBats)
		}
		if needsEnrichment(awayBats) {
			s.reconciler.EnrichRoster(ctx, awayID, awayBats)
		}
	}

	game.Odds = odds
	game.Live = live

	park := parks.Lookup(game.Home.Abbreviation)
	board := &Board{
		Game:    game,
		Park:    park,
		Players: []RankedPlayer{},
		Unrated: []models.Batter{},
		BuiltAt: s.now().UTC(),
	}

	all := append(homeBats, awayBats...)
	scored := make([]scoring.Scored[models.Batter], 0, len(all))
	for _, b := range all {
		rec := scoring.Score(park.Factor, b.SeasonHRs, b.Last7HRs, pitcherContext(b.Matchup))
		if rec == nil {
			board.Unrated = append(board.Unrated, b)
			continue
		}
		scored = append(scored, scoring.Scored[models.Batter]{Item: b, Recommendation: rec})
	}

	for _, sc := range scoring.Rank(scored) {
		rp := RankedPlayer{Batter: sc.Item, Recommendation: sc.Recommendation}
		if m := sc.Item.Matchup; m != nil {
			a := matchup.AssessPitcher(m.HR9, m.ERA, m.VsHandAdvantage)
			rp.Assessment = &a
		}
		board.Players = append(board.Players, rp)
	}

	return board
}

func needsEnrichment(batters []models.Batter) bool {
	for _, b := range batters {
		if !b.RealStats {
			return true
		}
	}
	return false
}

func pitcherContext(m *models.PitcherMatchup) *scoring.PitcherContext {
	if m == nil {
		return nil
	}
	return &scoring.PitcherContext{
		HR9:             m.HR9,
		ERA:             m.ERA,
		VsHandAdvantage: m.VsHandAdvantage,
	}
}

// Current returns the loaded slate with selection flags applied, or nil.
func (s *SlateService) Current() *Slate {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.slate == nil {
		return nil
	}
	out := *s.slate
	out.Boards = make([]*Board, len(s.slate.Boards))
	for i, b := range s.slate.Boards {
		out.Boards[i] = s.markSelected(b)
	}
	return &out
}

// Board returns a copy of one game's board.
func (s *SlateService) Board(gameID int) (*Board, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.slate == nil {
		return nil, ErrNoSlate
	}
	b := s.slate.board(gameID)
	if b == nil {
		return nil, ErrGameNotFound
	}
	return s.markSelected(b), nil
}

func (s *SlateService) markSelected(b *Board) *Board {
	out := *b
	out.Players = make([]RankedPlayer, len(b.Players))
	for i, p := range b.Players {
		p.Selected = s.selections.Contains(b.Game.ID, p.ID)
		out.Players[i] = p
	}
	return &out
}

// RefreshSnapshots re-resolves odds and live status for every loaded game
// and replaces the stored snapshots. Picks are never touched.
func (s *SlateService) RefreshSnapshots(ctx context.Context) ([]GameSnapshot, error) {
	s.mu.RLock()
	if s.slate == nil {
		s.mu.RUnlock()
		return nil, ErrNoSlate
	}
	date := s.slate.Date
	games := make([]models.Game, len(s.slate.Boards))
	for i, b := range s.slate.Boards {
		games[i] = b.Game
	}
	s.mu.RUnlock()

	snapshots := make([]GameSnapshot, len(games))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BoardConcurrency)
	for i := range games {
		g.Go(func() error {
			odds, live := s.reconciler.RefreshGame(gctx, &games[i])
			snapshots[i] = GameSnapshot{GameID: games[i].ID, Odds: odds, Live: live}
			return gctx.Err()
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to refresh snapshots: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// a different date may have been loaded meanwhile
	if s.slate == nil || s.slate.Date != date {
		return snapshots, nil
	}
	for _, snap := range snapshots {
		if b := s.slate.board(snap.GameID); b != nil {
			b.Game.Odds = snap.Odds
			b.Game.Live = snap.Live
		}
	}
	return snapshots, nil
}

// TogglePlayer adds or removes a batter from the parlay. The pick is a
// snapshot of the batter as currently shown.
func (s *SlateService) TogglePlayer(gameID, playerID int) (bool, []models.Selection, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.slate == nil {
		return false, nil, ErrNoSlate
	}
	b := s.slate.board(gameID)
	if b == nil {
		return false, nil, ErrPlayerNotFound
	}
	batter, rec, ok := b.findPlayer(playerID)
	if !ok {
		return false, nil, ErrPlayerNotFound
	}

	sel := models.Selection{
		PlayerID:   batter.ID,
		PlayerName: batter.Name,
		Team:       batter.Team,
		Hand:       batter.Hand,
		SeasonHRs:  batter.SeasonHRs,
		Last7HRs:   batter.Last7HRs,
		Avg:        batter.Avg,
		GameID:     b.Game.ID,
		GameLabel:  b.Game.Label(),
		GameDate:   b.Game.Date,
		Venue:      b.Park.Venue,
		ParkFactor: b.Park.Factor,
		SelectedAt: s.now().UTC(),
	}
	if rec != nil {
		sel.Score = rec.Score
		sel.Tier = rec.Label
	}

	added := s.selections.Toggle(sel)
	logger.WithGameContext(s.logger, gameID, playerID).
		WithFields(logrus.Fields{"component": "slate", "added": added}).
		Debug("Parlay pick toggled")
	return added, s.selections.Picks(), nil
}

// ClearParlay empties the parlay being built.
func (s *SlateService) ClearParlay() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.selections.Clear()
}

// SaveParlay persists the current picks and clears them.
func (s *SlateService) SaveParlay(ctx context.Context) (*models.SavedParlay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	picks := s.selections.Picks()
	if len(picks) == 0 {
		return nil, ErrEmptyParlay
	}

	saved, err := s.store.Save(ctx, picks, averageParkFactor(picks))
	if err != nil {
		return nil, err
	}
	s.selections.Clear()

	s.logger.WithFields(logrus.Fields{
		"component": "slate",
		"parlay_id": saved.ID,
		"picks":     len(picks),
	}).Info("Parlay saved")

	return saved, nil
}

// History returns up to limit saved parlays, newest first, and how many
// are stored in total.
func (s *SlateService) History(ctx context.Context, limit int) ([]models.SavedParlay, int64, error) {
	parlays, err := s.store.List(ctx, limit)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.store.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return parlays, total, nil
}

func (s *SlateService) GetSaved(ctx context.Context, id uuid.UUID) (*models.SavedParlay, error) {
	return s.store.Get(ctx, id)
}

func (s *SlateService) DeleteSaved(ctx context.Context, id uuid.UUID) error {
	return s.store.Delete(ctx, id)
}
