// Package logger builds the application-wide zap logger.
package logger

import (
	"go.uber.org/zap"
)

// New returns a zap logger tuned for the given environment.
// "production" gets JSON output at info level; anything else gets
// the human-readable development encoder at debug level.
func New(env string) (*zap.Logger, error) {
	if env == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
