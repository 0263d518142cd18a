package cache

import (
	"context"
	stderrors "errors"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/circuitbreaker"
	"github.com/KeremKalyoncu/vidgate/internal/types"
)

// Guarded wraps a ResponseCache with a circuit breaker. While the breaker is
// open, Get reports a miss and Set is a no-op, so requests go straight to the
// extractor instead of waiting on a dead Redis.
type Guarded struct {
	next    ResponseCache
	breaker *circuitbreaker.Breaker
}

// NewGuarded wraps next. A nil breaker gets the default thresholds.
func NewGuarded(next ResponseCache, breaker *circuitbreaker.Breaker, logger *zap.Logger) *Guarded {
	if logger == nil {
		logger = zap.NewNop()
	}
	if breaker == nil {
		breaker = circuitbreaker.New("response-cache", circuitbreaker.Config{
			OnStateChange: func(name string, from, to circuitbreaker.State) {
				logger.Warn("Circuit breaker state changed",
					zap.String("breaker", name),
					zap.Stringer("from", from),
					zap.Stringer("to", to),
				)
			},
		})
	}

	return &Guarded{next: next, breaker: breaker}
}

// Get returns ErrCacheMiss without touching Redis while the breaker is open
func (g *Guarded) Get(ctx context.Context, url string) (*types.MappedResponse, error) {
	if err := g.breaker.Allow(); err != nil {
		return nil, ErrCacheMiss
	}

	resp, err := g.next.Get(ctx, url)
	g.breaker.Done(err == nil || stderrors.Is(err, ErrCacheMiss))
	return resp, err
}

// Set drops the write while the breaker is open
func (g *Guarded) Set(ctx context.Context, url string, resp *types.MappedResponse) error {
	if err := g.breaker.Allow(); err != nil {
		return nil
	}

	err := g.next.Set(ctx, url, resp)
	g.breaker.Done(err == nil)
	return err
}

// Ping always reaches the backend so readiness reflects its real state
func (g *Guarded) Ping(ctx context.Context) error {
	return g.next.Ping(ctx)
}

// Close closes the wrapped cache
func (g *Guarded) Close() error {
	return g.next.Close()
}

// State returns the breaker state
func (g *Guarded) State() circuitbreaker.State {
	return g.breaker.State()
}
