package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/websocket"
)

// Broadcaster fans a message out to connected clients.
type Broadcaster interface {
	Broadcast(message interface{})
}

// SnapshotUpdate is the payload pushed after each refresh.
type SnapshotUpdate struct {
	Date      string         `json:"date"`
	Snapshots []GameSnapshot `json:"snapshots"`
}

// SlateUpdate announces which slate is loaded. New clients get one as a
// greeting and everyone gets one on rollover.
type SlateUpdate struct {
	Date   string `json:"date"`
	Games  int    `json:"games"`
	Source string `json:"source"`
}

func NewSlateUpdate(slate *Slate) SlateUpdate {
	return SlateUpdate{
		Date:   slate.Date,
		Games:  len(slate.Boards),
		Source: slate.Source,
	}
}

const (
	MessageSnapshots = "snapshots"
	MessageSlate     = "slate"
)

// RefresherService re-resolves odds and live scores on a schedule and rolls
// the slate forward once its date has passed.
type RefresherService struct {
	slate       *SlateService
	broadcaster Broadcaster
	logger      *logrus.Logger
	cron        *cron.Cron
	interval    time.Duration
	rolloverAt  string

	mu        sync.Mutex
	isRunning bool
	ctx       context.Context
	cancel    context.CancelFunc

	refreshing sync.Mutex
	statusMu   sync.Mutex
	lastRun    time.Time
	lastErr    error
}

func NewRefresherService(slate *SlateService, broadcaster Broadcaster, interval time.Duration, logger *logrus.Logger) *RefresherService {
	return &RefresherService{
		slate:       slate,
		broadcaster: broadcaster,
		logger:      logger,
		cron:        cron.New(),
		interval:    interval,
		rolloverAt:  "0 10 * * *", // 10:00 UTC, before the first pitch anywhere
	}
}

// Start schedules the refresh and rollover jobs and runs a refresh now.
func (s *RefresherService) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return fmt.Errorf("refresher is already running")
	}

	s.ctx, s.cancel = context.WithCancel(context.Background())

	schedule := fmt.Sprintf("@every %s", s.interval.String())
	if _, err := s.cron.AddFunc(schedule, s.refresh); err != nil {
		return fmt.Errorf("failed to schedule snapshot refresh: %w", err)
	}
	if _, err := s.cron.AddFunc(s.rolloverAt, s.rollover); err != nil {
		return fmt.Errorf("failed to schedule slate rollover: %w", err)
	}

	s.cron.Start()
	s.isRunning = true

	go s.refresh()

	s.logger.WithFields(logrus.Fields{
		"component": "refresher",
		"interval":  s.interval.String(),
	}).Info("Refresher started")
	return nil
}

// Stop halts the jobs and waits for a running one to finish.
func (s *RefresherService) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	s.cancel()
	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.logger.WithField("component", "refresher").Info("Refresher stopped")
}

func (s *RefresherService) refresh() {
	if err := s.RefreshNow(s.ctx); err != nil && !errors.Is(err, ErrNoSlate) {
		s.logger.WithField("component", "refresher").WithError(err).Warn("Snapshot refresh failed")
	}
}

// RefreshNow refreshes every loaded game and broadcasts the snapshots.
// Overlapping calls are skipped rather than queued.
func (s *RefresherService) RefreshNow(ctx context.Context) error {
	if !s.refreshing.TryLock() {
		s.logger.WithField("component", "refresher").Debug("Refresh already running, skipping")
		return nil
	}
	defer s.refreshing.Unlock()

	snapshots, err := s.slate.RefreshSnapshots(ctx)
	s.recordRun(err)
	if err != nil {
		return err
	}

	date := ""
	if current := s.slate.Current(); current != nil {
		date = current.Date
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(websocket.NewMessage(MessageSnapshots, SnapshotUpdate{
			Date:      date,
			Snapshots: snapshots,
		}))
	}

	s.logger.WithFields(logrus.Fields{
		"component": "refresher",
		"games":     len(snapshots),
	}).Debug("Snapshots refreshed")
	return nil
}

// rollover loads the next slate when the loaded one is in the past.
func (s *RefresherService) rollover() {
	current := s.slate.Current()
	today := time.Now().UTC().Format(dateLayout)
	if current != nil && current.Date >= today {
		return
	}

	slate, err := s.slate.FindNextSlate(s.ctx, time.Now().UTC())
	if err != nil {
		s.logger.WithField("component", "refresher").WithError(err).Warn("Slate rollover failed")
		return
	}

	if s.broadcaster != nil {
		s.broadcaster.Broadcast(websocket.NewMessage(MessageSlate, NewSlateUpdate(slate)))
	}
}

func (s *RefresherService) recordRun(err error) {
	s.statusMu.Lock()
	defer s.statusMu.Unlock()
	s.lastRun = time.Now().UTC()
	s.lastErr = err
}

// GetStatus reports the refresher state for the health endpoint.
func (s *RefresherService) GetStatus() map[string]interface{} {
	s.mu.Lock()
	running := s.isRunning
	s.mu.Unlock()

	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	status := map[string]interface{}{
		"running":  running,
		"interval": s.interval.String(),
		"last_run": s.lastRun,
	}
	if s.lastErr != nil {
		status["last_error"] = s.lastErr.Error()
	}
	return status
}
