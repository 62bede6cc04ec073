// Package di assembles the object graph for both entrypoints.
package di

import (
	"context"
	"net/http"

	"chirp/infrastructure/config"
	"chirp/pkg/observability"

	"go.uber.org/zap"
)

// Container holds the fully wired application.
// Both entrypoints build one and serve Container.Router.
type Container struct {
	Config *config.Config
	Logger *zap.Logger
	Router http.Handler

	// Tracing is optional; nil when disabled in config
	Tracer *observability.TracerProvider
}

// Shutdown flushes the logger and tracer before exit
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Logger != nil {
		// Sync can fail on stderr; nothing actionable
		_ = c.Logger.Sync()
	}
	if c.Tracer != nil {
		return c.Tracer.Shutdown(ctx)
	}
	return nil
}
