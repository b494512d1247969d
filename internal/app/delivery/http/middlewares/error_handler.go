package middlewares

import (
	"errors"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"
)

// ErrorHandler turns a handler panic into a 500 envelope.
func (m *Middlewares) ErrorHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				var err error
				switch x := rec.(type) {
				case string:
					err = errors.New(x)
				case error:
					err = x
				default:
					err = errors.New("unknown error")
				}

				fields := []zap.Field{
					zap.String(constvars.LoggingRequestIDKey, utils.RequestIDFromContext(r.Context())),
					zap.String(constvars.LoggingMethodKey, r.Method),
					zap.String(constvars.LoggingEndpointKey, r.URL.Path),
					zap.ByteString("stack", debug.Stack()),
					zap.Error(err),
				}
				if audit, ok := r.Context().Value(auditContextKey{}).(*requestAudit); ok && audit.authenticated {
					fields = append(fields, zap.Int64(constvars.LoggingCallerIDKey, audit.caller.UserID))
				}
				m.Log.Error("Recovered from panic", fields...)
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrServerProcess(err), m.InternalConfig.ExposeErrorDetails())
			}
		}()
		next.ServeHTTP(w, r)
	})
}
