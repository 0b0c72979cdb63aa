package slogx

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/sfconnect/pkg/idx"
)

// StartOperation attaches a contextual logger tagged with a fresh req_id and
// the operation name to ctx. The returned finish func logs the outcome and
// duration; call it exactly once.
//
// If ctx already carries a logger with a request ID (nested calls), that
// logger is reused as the base so the IDs chain.
func StartOperation(ctx context.Context, base *slog.Logger, operation string) (context.Context, *slog.Logger, func(error)) {
	start := time.Now()
	reqID := idx.New().String()

	logger := FromContext(ctx, base).With(
		"req_id", reqID,
		"operation", operation,
	)
	ctx = WithContext(ctx, logger)

	finish := func(err error) {
		duration := time.Since(start).Milliseconds()
		if err != nil {
			logger.Warn("operation_failed",
				"duration_ms", duration,
				"error", err,
			)
			return
		}
		logger.Debug("operation_completed", "duration_ms", duration)
	}

	return ctx, logger, finish
}
