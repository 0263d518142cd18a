package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"
)

// Handler is a named cleanup step
type Handler struct {
	Name string
	Fn   func(ctx context.Context) error
}

// GracefulShutdown runs registered cleanup handlers, in registration order,
// once a shutdown signal arrives
type GracefulShutdown struct {
	logger  *zap.Logger
	timeout time.Duration

	mu       sync.Mutex
	handlers []Handler
	once     sync.Once
}

// NewGracefulShutdown creates a shutdown handler
func NewGracefulShutdown(logger *zap.Logger, timeout time.Duration) *GracefulShutdown {
	return &GracefulShutdown{
		logger:  logger,
		timeout: timeout,
	}
}

// Register adds a cleanup handler
func (gs *GracefulShutdown) Register(name string, fn func(ctx context.Context) error) {
	gs.mu.Lock()
	defer gs.mu.Unlock()
	gs.handlers = append(gs.handlers, Handler{Name: name, Fn: fn})
}

// Wait blocks until SIGINT/SIGTERM or ctx is done, then shuts down
func (gs *GracefulShutdown) Wait(ctx context.Context) {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	gs.logger.Info("Shutdown signal received", zap.NamedError("reason", context.Cause(ctx)))

	gs.Shutdown()
}

// Shutdown runs every handler under the configured timeout. It is safe to
// call more than once; only the first call does anything.
func (gs *GracefulShutdown) Shutdown() {
	gs.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), gs.timeout)
		defer cancel()

		gs.mu.Lock()
		handlers := append([]Handler(nil), gs.handlers...)
		gs.mu.Unlock()

		for _, h := range handlers {
			gs.logger.Info("Executing cleanup handler", zap.String("handler", h.Name))

			if err := h.Fn(ctx); err != nil {
				gs.logger.Error("Cleanup handler failed",
					zap.String("handler", h.Name),
					zap.Error(err),
				)
			}
		}

		gs.logger.Info("Graceful shutdown completed")
	})
}
