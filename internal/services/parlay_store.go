package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/stitts-dev/hr-parlay/internal/models"
	"gorm.io/gorm"
)

// ErrParlayNotFound is returned when a saved parlay id does not exist.
var ErrParlayNotFound = errors.New("saved parlay not found")

// ParlayStore persists saved parlays.
type ParlayStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewParlayStore(db *gorm.DB) *ParlayStore {
	return &ParlayStore{
		db:  db,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// AutoMigrate creates or updates the saved_parlays table.
func (s *ParlayStore) AutoMigrate() error {
	return s.db.AutoMigrate(&models.SavedParlay{})
}

// Save persists picks as a new parlay.
func (s *ParlayStore) Save(ctx context.Context, picks []models.Selection, avgParkFactor int) (*models.SavedParlay, error) {
	if len(picks) == 0 {
		return nil, ErrEmptyParlay
	}

	parlay, err := models.NewSavedParlay(picks, avgParkFactor)
	if err != nil {
		return nil, err
	}
	parlay.CreatedAt = s.now()

	if err := s.db.WithContext(ctx).Create(parlay).Error; err != nil {
		return nil, fmt.Errorf("failed to save parlay: %w", err)
	}
	return parlay, nil
}

// List returns saved parlays, newest first. limit <= 0 means all.
func (s *ParlayStore) List(ctx context.Context, limit int) ([]models.SavedParlay, error) {
	var parlays []models.SavedParlay

	query := s.db.WithContext(ctx).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}

	if err := query.Find(&parlays).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch saved parlays: %w", err)
	}
	return parlays, nil
}

func (s *ParlayStore) Get(ctx context.Context, id uuid.UUID) (*models.SavedParlay, error) {
	var parlay models.SavedParlay
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&parlay).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrParlayNotFound
		}
		return nil, fmt.Errorf("failed to fetch parlay %s: %w", id, err)
	}
	return &parlay, nil
}

func (s *ParlayStore) Delete(ctx context.Context, id uuid.UUID) error {
	result := s.db.WithContext(ctx).Where("id = ?", id).Delete(&models.SavedParlay{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete parlay %s: %w", id, result.Error)
	}
	if result.RowsAffected == 0 {
		return ErrParlayNotFound
	}
	return nil
}

func (s *ParlayStore) Count(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.SavedParlay{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("failed to count saved parlays: %w", err)
	}
	return total, nil
}
