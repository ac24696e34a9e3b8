// Package extensions holds ready-to-register PostProcessor and
// BuildExtension implementations for common cross-cutting concerns,
// adapted from the teacher package's extensions subpackage.
package extensions

import (
	"time"

	"github.com/extspi-go/extspi"
	"go.uber.org/zap"
)

// LoggingExtension logs every build pipeline invocation through a
// structured zap.Logger, replacing the teacher package's
// fmt.Printf-based LoggingExtension (spec's ambient-stack decision to
// carry structured logging regardless of what the distilled spec's
// Non-goals exclude).
type LoggingExtension struct {
	extspi.BaseBuildExtension
	logger *zap.Logger
}

// NewLoggingExtension creates a logging BuildExtension that writes
// through logger.
func NewLoggingExtension(logger *zap.Logger) *LoggingExtension {
	return &LoggingExtension{
		BaseBuildExtension: extspi.NewBaseBuildExtension("logging"),
		logger:             logger,
	}
}

func (e *LoggingExtension) Wrap(next func() (any, error), ev extspi.BuildEvent) (any, error) {
	start := time.Now()
	e.logger.Debug("build starting", zap.String("contract", ev.Contract.String()), zap.String("name", ev.Name))

	result, err := next()

	duration := time.Since(start)
	if err != nil {
		e.logger.Warn("build failed",
			zap.String("contract", ev.Contract.String()),
			zap.String("name", ev.Name),
			zap.Duration("duration", duration),
			zap.Error(err))
	} else {
		e.logger.Debug("build completed",
			zap.String("contract", ev.Contract.String()),
			zap.String("name", ev.Name),
			zap.Duration("duration", duration))
	}

	return result, err
}

func (e *LoggingExtension) OnError(err error, ev extspi.BuildEvent) {
	e.logger.Error("build extension observed error",
		zap.String("contract", ev.Contract.String()),
		zap.String("name", ev.Name),
		zap.Error(err))
}
