package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/stitts-dev/hr-parlay/internal/providers"
)

type CircuitBreakerService struct {
	breakers map[string]*gobreaker.CircuitBreaker
	logger   *logrus.Logger
}

// NewCircuitBreakerService creates one breaker per upstream provider.
// threshold is how many trial requests are let through while half-open;
// timeout is how long a tripped breaker stays open.
func NewCircuitBreakerService(threshold int, timeout time.Duration, logger *logrus.Logger) *CircuitBreakerService {
	names := []string{
		providers.ProviderMLBStats,
		providers.ProviderOdds,
		providers.ProviderBallDontLie,
		providers.ProviderSavant,
	}

	breakers := make(map[string]*gobreaker.CircuitBreaker, len(names))
	for _, name := range names {
		breakers[name] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: uint32(threshold),
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				// an empty answer, missing credentials, our own rate
				// limiter and caller cancellation say nothing about
				// upstream health
				return err == nil ||
					errors.Is(err, providers.ErrNoData) ||
					errors.Is(err, providers.ErrNotConfigured) ||
					errors.Is(err, providers.ErrRateLimited) ||
					errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
				logger.WithFields(logrus.Fields{
					"component": "circuit_breaker",
					"service":   name,
					"from":      from.String(),
					"to":        to.String(),
				}).Info("Circuit breaker state changed")
			},
		})
	}

	return &CircuitBreakerService{
		breakers: breakers,
		logger:   logger,
	}
}

// Execute wraps a function call with circuit breaker protection
func (cb *CircuitBreakerService) Execute(service string, fn func() (interface{}, error)) (interface{}, error) {
	breaker, exists := cb.breakers[service]
	if !exists {
		cb.logger.WithFields(logrus.Fields{
			"component": "circuit_breaker",
			"service":   service,
		}).Warn("No circuit breaker found for service, executing without protection")
		return fn()
	}

	return breaker.Execute(fn)
}

// GetState returns the current state of a circuit breaker
func (cb *CircuitBreakerService) GetState(service string) gobreaker.State {
	if breaker, exists := cb.breakers[service]; exists {
		return breaker.State()
	}
	return gobreaker.StateClosed
}

func (cb *CircuitBreakerService) GetCounts(service string) gobreaker.Counts {
	if breaker, exists := cb.breakers[service]; exists {
		return breaker.Counts()
	}
	return gobreaker.Counts{}
}

// BreakerStatus is one breaker's state and its counts for the current
// interval.
type BreakerStatus struct {
	State               string `json:"state"`
	Requests            uint32 `json:"requests"`
	TotalFailures       uint32 `json:"total_failures"`
	ConsecutiveFailures uint32 `json:"consecutive_failures"`
}

// Status reports every breaker for the health endpoint.
func (cb *CircuitBreakerService) Status() map[string]BreakerStatus {
	out := make(map[string]BreakerStatus, len(cb.breakers))
	for name := range cb.breakers {
		counts := cb.GetCounts(name)
		out[name] = BreakerStatus{
			State:               cb.GetState(name).String(),
			Requests:            counts.Requests,
			TotalFailures:       counts.TotalFailures,
			ConsecutiveFailures: counts.ConsecutiveFailures,
		}
	}
	return out
}
