// Package logging sets up the zap logger. The terminal belongs to the UI, so
// logs go to a file.
package logging

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"peoplesearch/internal/eventbus"
)

// NewFileLogger builds a JSON logger that appends to path at the given level
func NewFileLogger(path, level string) (*zap.Logger, error) {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{path}
	cfg.ErrorOutputPaths = []string{path}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	cfg.Sampling = nil

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	return logger, nil
}

// Attach logs every domain event published on bus.
// It returns a function that detaches the logger.
func Attach(bus eventbus.EventBus, logger *zap.Logger) func() {
	logger = logger.Named("events")
	return bus.SubscribeAll(func(e eventbus.DomainEvent) {
		logEvent(logger, e)
	})
}

func logEvent(logger *zap.Logger, e eventbus.DomainEvent) {
	msg := string(e.Type())
	switch ev := e.(type) {
	case eventbus.QueryChangedEvent:
		logger.Debug(msg, zap.String("query", ev.Query))
	case eventbus.PipelineStartedEvent:
		logger.Debug(msg, zap.String("query", ev.Query), zap.Bool("filtered", ev.Filtered))
	case eventbus.ResultsPublishedEvent:
		logger.Info(msg,
			zap.String("query", ev.Query),
			zap.Int("count", ev.Count),
			zap.Duration("duration", ev.Duration))
	case eventbus.DatasetChangedEvent:
		logger.Info(msg, zap.Int("count", ev.Count))
	case eventbus.PipelineResumedEvent:
		logger.Info(msg, zap.Bool("recomputed", ev.Recomputed))
	case eventbus.ConfigLoadedEvent:
		logger.Info(msg, zap.String("path", ev.Path))
	case eventbus.ConfigSavedEvent:
		logger.Info(msg, zap.String("path", ev.Path))
	case eventbus.ErrorEvent:
		logger.Error(ev.Message, zap.Error(ev.Err))
	default:
		logger.Info(msg)
	}
}
