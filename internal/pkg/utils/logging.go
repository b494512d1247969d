package utils

import (
	"context"
	"hospital-service/internal/pkg/constvars"
	"time"

	"go.uber.org/zap"
)

// LogSweep runs one batch job of a background worker and logs how many records it touched.
// A partial count is still reported when fn fails.
func LogSweep(ctx context.Context, logger *zap.Logger, job string, fn func(ctx context.Context) (int, error)) (int, error) {
	start := time.Now()
	requestID := RequestIDFromContext(ctx)

	logger.Debug("Sweep started",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOperationKey, job),
	)

	count, err := fn(ctx)
	if err != nil {
		logger.Error("Sweep failed",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingOperationKey, job),
			zap.Int(constvars.LoggingCountKey, count),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
			zap.Bool(constvars.LoggingSuccessKey, false),
			zap.Error(err),
		)
		return count, err
	}

	logger.Info("Sweep completed",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingOperationKey, job),
		zap.Int(constvars.LoggingCountKey, count),
		zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
		zap.Bool(constvars.LoggingSuccessKey, true),
	)
	return count, nil
}

// LogBusinessEvent writes one audit line for a domain mutation.
func LogBusinessEvent(logger *zap.Logger, event string, requestID string, fields ...zap.Field) {
	allFields := []zap.Field{
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventTypeKey, event),
		zap.Time("timestamp", time.Now()),
	}
	allFields = append(allFields, fields...)

	logger.Info("Business event occurred", allFields...)
}

// LogSecurityEvent records rejected tokens and role checks.
func LogSecurityEvent(logger *zap.Logger, event string, requestID string, fields ...zap.Field) {
	allFields := []zap.Field{
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingEventTypeKey, event),
		zap.Time("timestamp", time.Now()),
	}
	allFields = append(allFields, fields...)

	logger.Warn("Security event detected", allFields...)
}

func RequestIDFromContext(ctx context.Context) string {
	if requestID, ok := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string); ok {
		return requestID
	}
	return ""
}
