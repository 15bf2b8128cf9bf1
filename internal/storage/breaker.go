package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"
)

// BreakerConfig tunes the circuit breaker placed in front of a LogStore
type BreakerConfig struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit
	FailureThreshold uint32
	// Timeout is how long the circuit stays open before a trial request
	Timeout time.Duration
}

// DefaultBreakerConfig returns the thresholds used by the continue policy
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		FailureThreshold: 3,
		Timeout:          30 * time.Second,
	}
}

// Breaker fails fast while the wrapped store keeps failing
type Breaker struct {
	next LogStore
	cb   *gobreaker.CircuitBreaker[any]
}

// NewBreaker wraps next with circuit breaker protection
func NewBreaker(next LogStore, cfg BreakerConfig, logger zerolog.Logger) *Breaker {
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = DefaultBreakerConfig().FailureThreshold
	}
	settings := gobreaker.Settings{
		Name:        "log-store",
		MaxRequests: 1,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("log store circuit changed state")
		},
	}
	return &Breaker{
		next: next,
		cb:   gobreaker.NewCircuitBreaker[any](settings),
	}
}

// State returns the breaker state name
func (b *Breaker) State() string {
	return b.cb.State().String()
}

// Append forwards to the wrapped store unless the circuit is open
func (b *Breaker) Append(ctx context.Context, rec Record) error {
	_, err := b.cb.Execute(func() (any, error) {
		return nil, b.next.Append(ctx, rec)
	})
	return breakerError(err)
}

// LatestSubject forwards to the wrapped store unless the circuit is open
func (b *Breaker) LatestSubject(ctx context.Context, channel string) (string, bool, error) {
	type subject struct {
		body  string
		found bool
	}
	res, err := b.cb.Execute(func() (any, error) {
		body, found, err := b.next.LatestSubject(ctx, channel)
		return subject{body, found}, err
	})
	if err != nil {
		return "", false, breakerError(err)
	}
	s := res.(subject)
	return s.body, s.found, nil
}

func breakerError(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return err
}
