package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stitts-dev/hr-parlay/internal/providers"
	"github.com/stitts-dev/hr-parlay/pkg/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreaker_TripsPerProvider(t *testing.T) {
	cb := NewCircuitBreakerService(1, time.Minute, logger.Discard())
	boom := errors.New("boom")

	for i := 0; i < 3; i++ {
		_, err := cb.Execute(providers.ProviderBallDontLie, func() (interface{}, error) {
			return nil, boom
		})
		assert.ErrorIs(t, err, boom)
	}

	assert.Equal(t, gobreaker.StateOpen, cb.GetState(providers.ProviderBallDontLie))
	assert.Equal(t, gobreaker.StateClosed, cb.GetState(providers.ProviderMLBStats), "other providers unaffected")

	_, err := cb.Execute(providers.ProviderBallDontLie, func() (interface{}, error) {
		t.Fatal("open breaker must not call through")
		return nil, nil
	})
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)

	status := cb.Status()
	assert.Equal(t, "open", status[providers.ProviderBallDontLie].State)
	assert.Equal(t, uint32(3), status[providers.ProviderBallDontLie].TotalFailures)
	assert.Equal(t, "closed", status[providers.ProviderSavant].State)
	assert.Zero(t, status[providers.ProviderSavant].Requests)
}

func TestCircuitBreaker_BenignErrorsDoNotCount(t *testing.T) {
	cb := NewCircuitBreakerService(1, time.Minute, logger.Discard())
	benign := []error{
		fmt.Errorf("wrapped: %w", providers.ErrNoData),
		fmt.Errorf("wrapped: %w", providers.ErrNotConfigured),
		fmt.Errorf("balldontlie: %w: %w", providers.ErrRateLimited, errors.New("rate: Wait(n=1) would exceed context deadline")),
		context.Canceled,
	}

	for i := 0; i < 3; i++ {
		for _, e := range benign {
			_, err := cb.Execute(providers.ProviderOdds, func() (interface{}, error) {
				return nil, e
			})
			assert.ErrorIs(t, err, e)
		}
	}

	assert.Equal(t, gobreaker.StateClosed, cb.GetState(providers.ProviderOdds))
	assert.Zero(t, cb.GetCounts(providers.ProviderOdds).TotalFailures)
}

func TestCircuitBreaker_UnknownServiceRunsUnprotected(t *testing.T) {
	cb := NewCircuitBreakerService(1, time.Minute, logger.Discard())

	out, err := cb.Execute("weather", func() (interface{}, error) {
		return 42, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 42, out)
	assert.Equal(t, gobreaker.StateClosed, cb.GetState("weather"))
	assert.Zero(t, cb.GetCounts("weather").Requests)
}
