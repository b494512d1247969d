package middlewares

import (
	"context"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

const bearerPrefix = "Bearer "

// Authenticate resolves the bearer token into a models.Caller stored under CONTEXT_CALLER_KEY.
func (m *Middlewares) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)

		authHeader := r.Header.Get(constvars.HeaderAuthorization)
		if !strings.HasPrefix(authHeader, bearerPrefix) {
			utils.LogSecurityEvent(m.Log, "token_missing", requestID,
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil), m.InternalConfig.ExposeErrorDetails())
			return
		}

		token := strings.TrimSpace(strings.TrimPrefix(authHeader, bearerPrefix))
		userID, role, err := utils.ParseAccessToken(token, m.InternalConfig.JWT.Secret)
		if err != nil || !models.Role(role).Valid() {
			utils.LogSecurityEvent(m.Log, "token_invalid", requestID,
				zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				zap.String(constvars.LoggingRemoteAddrKey, r.RemoteAddr),
			)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenInvalid(err), m.InternalConfig.ExposeErrorDetails())
			return
		}

		caller := models.Caller{UserID: userID, Role: models.Role(role)}
		if audit, ok := r.Context().Value(auditContextKey{}).(*requestAudit); ok {
			audit.caller = caller
			audit.authenticated = true
		}
		ctx := context.WithValue(r.Context(), constvars.CONTEXT_CALLER_KEY, caller)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles rejects callers whose role is not listed. It must run after Authenticate.
func (m *Middlewares) RequireRoles(roles ...models.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, ok := CallerFromContext(r.Context())
			if !ok {
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrTokenMissing(nil), m.InternalConfig.ExposeErrorDetails())
				return
			}
			if !caller.HasRole(roles...) {
				requestID, _ := r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
				utils.LogSecurityEvent(m.Log, "role_not_allowed", requestID,
					zap.Int64(constvars.LoggingCallerIDKey, caller.UserID),
					zap.String(constvars.LoggingCallerRoleKey, string(caller.Role)),
					zap.String(constvars.LoggingEndpointKey, r.URL.Path),
				)
				utils.BuildErrorResponse(m.Log, w, exceptions.ErrRoleNotAllowed(string(caller.Role)), m.InternalConfig.ExposeErrorDetails())
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func CallerFromContext(ctx context.Context) (models.Caller, bool) {
	caller, ok := ctx.Value(constvars.CONTEXT_CALLER_KEY).(models.Caller)
	return caller, ok
}
