package providers

import (
	"errors"
	"fmt"
	"time"
)

// CacheProvider interface for cache operations
type CacheProvider interface {
	SetSimple(key string, value interface{}, expiration time.Duration) error
	GetSimple(key string, dest interface{}) error
}

// Freshness windows, matched to how quickly each kind of data changes.
const (
	LiveTTL        = time.Minute
	SeasonTTL      = 10 * time.Minute
	LeaderboardTTL = time.Hour
)

// Provider names, shared with the circuit breakers and the proxy.
const (
	ProviderMLBStats    = "mlbstats"
	ProviderOdds        = "oddsapi"
	ProviderBallDontLie = "balldontlie"
	ProviderSavant      = "savant"
)

var (
	// ErrNoData means the provider answered but had nothing usable.
	ErrNoData = errors.New("provider returned no usable data")
	// ErrNotConfigured means credentials or a base URL are missing.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrRateLimited means the client's own limiter refused the request
	// before it reached the provider.
	ErrRateLimited = errors.New("rate limit budget exhausted")
)

// StatusError is returned for non-2xx upstream responses.
type StatusError struct {
	Provider   string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: unexpected status code %d", e.Provider, e.StatusCode)
}
