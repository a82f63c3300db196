// Package simlog wires zerolog the way the rest of the stack does: a
// package-level logger configured once at process start, and a context-
// scoped child logger carrying per-turn fields for every stage to use.
package simlog

import (
	"context"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

type contextKey string

const loggerKey contextKey = "simlog.logger"

// Init initializes the global console logger.
func Init() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
}

// WithTurn returns a context carrying a logger scoped to the given turn.
func WithTurn(ctx context.Context, turn int) context.Context {
	logger := log.With().Int("turn", turn).Logger()
	return context.WithValue(ctx, loggerKey, logger)
}

// WithStage returns a context carrying a logger additionally scoped to the
// named pipeline stage.
func WithStage(ctx context.Context, stage string) context.Context {
	logger := FromContext(ctx).With().Str("stage", stage).Logger()
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext returns the logger attached to ctx, or the global logger if
// none was attached.
func FromContext(ctx context.Context) *zerolog.Logger {
	if logger, ok := ctx.Value(loggerKey).(zerolog.Logger); ok {
		return &logger
	}
	return &log.Logger
}

// StageSkipped logs a stage that was skipped with a reason, matching the
// turn report's requirement that skipped stages are enumerated with why.
func StageSkipped(ctx context.Context, reason string) {
	FromContext(ctx).Warn().Str("outcome", "skipped").Msg(reason)
}

// StageFailed logs a stage failure.
func StageFailed(ctx context.Context, err error) {
	FromContext(ctx).Error().Err(err).Str("outcome", "failed").Msg("stage failed")
}
