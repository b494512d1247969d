package middlewares

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type auditContextKey struct{}

// requestAudit is filled by Authenticate so the access log can name the caller.
type requestAudit struct {
	caller        models.Caller
	authenticated bool
}

type responseRecorder struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rec *responseRecorder) WriteHeader(code int) {
	rec.statusCode = code
	rec.ResponseWriter.WriteHeader(code)
}

func (rec *responseRecorder) Write(b []byte) (int, error) {
	n, err := rec.ResponseWriter.Write(b)
	rec.written += n
	return n, err
}

// Logging writes one access line per request, keyed by the chi route pattern so
// /invoices/7 and /invoices/8 aggregate together.
func (m *Middlewares) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := utils.RequestIDFromContext(r.Context())

		audit := &requestAudit{}
		r = r.WithContext(context.WithValue(r.Context(), auditContextKey{}, audit))
		rec := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(rec, r)

		route := r.URL.Path
		if routeContext := chi.RouteContext(r.Context()); routeContext != nil && routeContext.RoutePattern() != "" {
			route = routeContext.RoutePattern()
		}

		fields := []zap.Field{
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.String(constvars.LoggingMethodKey, r.Method),
			zap.String(constvars.LoggingEndpointKey, route),
			zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			zap.Int(constvars.LoggingStatusCodeKey, rec.statusCode),
			zap.Int(constvars.LoggingResponseBytesKey, rec.written),
			zap.Duration(constvars.LoggingDurationKey, time.Since(start)),
		}
		if audit.authenticated {
			fields = append(fields,
				zap.Int64(constvars.LoggingCallerIDKey, audit.caller.UserID),
				zap.String(constvars.LoggingCallerRoleKey, string(audit.caller.Role)),
			)
		}

		switch {
		case rec.statusCode >= http.StatusInternalServerError:
			m.Log.Error("API request failed", fields...)
		case rec.statusCode >= http.StatusBadRequest:
			m.Log.Warn("API request rejected", fields...)
		default:
			m.Log.Info("API request completed", fields...)
		}
	})
}

func (m *Middlewares) RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constvars.HeaderXRequestID)
		if requestID == "" {
			requestID = utils.GenerateRequestID()
		}

		ctx := context.WithValue(r.Context(), constvars.CONTEXT_REQUEST_ID_KEY, requestID)
		w.Header().Set(constvars.HeaderXRequestID, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// BodyLimit caps request bodies at the configured size; multipart uploads get the
// bank slip allowance on top.
func (m *Middlewares) BodyLimit(next http.Handler) http.Handler {
	limit := int64(m.InternalConfig.App.RequestBodyLimitInMegabyte) << 20
	if slipLimit := m.InternalConfig.Billing.BankSlipMaxUploadSizeInMB << 20; slipLimit > limit {
		limit = slipLimit + 1<<20
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Body != nil {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
		}
		next.ServeHTTP(w, r)
	})
}
