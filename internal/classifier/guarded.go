package classifier

import (
	"context"
	"fmt"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// GuardConfig tunes the timeout and circuit breaker around a classifier.
type GuardConfig struct {
	Name             string
	Timeout          time.Duration
	FailureThreshold uint32
	OpenTimeout      time.Duration
}

// Guarded bounds every call to the wrapped classifier and stops calling it
// for a while after repeated failures.
type Guarded struct {
	next    Classifier
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	logger  *zap.Logger
}

// NewGuarded wraps next with a per-call timeout and a circuit breaker.
func NewGuarded(next Classifier, cfg GuardConfig, logger *zap.Logger) *Guarded {
	if cfg.Name == "" {
		cfg.Name = "ai-classifier"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 8 * time.Second
	}
	if cfg.FailureThreshold == 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.OpenTimeout <= 0 {
		cfg.OpenTimeout = 30 * time.Second
	}

	threshold := cfg.FailureThreshold
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     cfg.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("Classifier circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &Guarded{
		next:    next,
		timeout: cfg.Timeout,
		breaker: breaker,
		logger:  logger,
	}
}

type classifyOutcome struct {
	result *Result
	err    error
}

// Classify never blocks longer than the configured timeout. Any failure is
// reported as ErrUnavailable.
func (g *Guarded) Classify(ctx context.Context, req Request) (*Result, error) {
	out, err := g.breaker.Execute(func() (interface{}, error) {
		callCtx, cancel := context.WithTimeout(ctx, g.timeout)
		defer cancel()

		done := make(chan classifyOutcome, 1)
		go func() {
			res, err := g.next.Classify(callCtx, req)
			done <- classifyOutcome{result: res, err: err}
		}()

		select {
		case o := <-done:
			return o.result, o.err
		case <-callCtx.Done():
			return nil, fmt.Errorf("classifier timed out: %w", callCtx.Err())
		}
	})
	if err != nil {
		g.logger.Warn("Classifier unavailable, scoring without AI", zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	res, _ := out.(*Result)
	if res == nil {
		return nil, fmt.Errorf("%w: empty classifier result", ErrUnavailable)
	}
	return res, nil
}

// State is the breaker state ("closed", "half-open" or "open") shown on /health.
func (g *Guarded) State() string {
	return g.breaker.State().String()
}
