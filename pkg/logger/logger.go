// Package logger constructs the structured loggers used throughout
// Ignite. It exists so every subsystem gets the same service-tagged,
// leveled logger instead of each caller configuring zap by hand.
package logger

import (
	"os"

	"go.uber.org/zap"
)

// New builds a *zap.SugaredLogger tagged with service. It prefers a
// production (JSON, info-level) configuration, falling back to a
// development (console, debug-level) configuration when IGNITE_ENV is
// "development" or "dev".
func New(service string) *zap.SugaredLogger {
	var base *zap.Logger
	var err error

	switch os.Getenv("IGNITE_ENV") {
	case "development", "dev":
		base, err = zap.NewDevelopment()
	default:
		base, err = zap.NewProduction()
	}
	if err != nil {
		base = zap.NewNop()
	}

	return base.With(zap.String("service", service)).Sugar()
}
