package middlewares

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/app/models"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

const testSecret = "test-secret"

func newTestMiddlewares() *Middlewares {
	return NewMiddlewares(zap.NewNop(), &config.InternalConfig{
		App: config.App{MaxRequests: 100, RequestBodyLimitInMegabyte: 1},
		JWT: config.AppJWT{Secret: testSecret},
	})
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	m := newTestMiddlewares()

	t.Run("echoes client request id", func(t *testing.T) {
		var seen string
		handler := m.RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen, _ = r.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderXRequestID, "client-id")
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		assert.Equal(t, "client-id", seen)
		assert.Equal(t, "client-id", rec.Header().Get(constvars.HeaderXRequestID))
	})

	t.Run("generates request id", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.RequestIDMiddleware(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Contains(t, rec.Header().Get(constvars.HeaderXRequestID), constvars.REQUEST_ID_PREFIX)
	})
}

func TestAuthenticate(t *testing.T) {
	m := newTestMiddlewares()

	t.Run("missing token", func(t *testing.T) {
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("token signed with another secret", func(t *testing.T) {
		token, err := utils.GenerateAccessToken(7, string(models.RolePatient), "other", time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)
		rec := httptest.NewRecorder()
		m.Authenticate(okHandler()).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token sets caller", func(t *testing.T) {
		token, err := utils.GenerateAccessToken(7, string(models.RolePatient), testSecret, time.Hour)
		require.NoError(t, err)

		var caller models.Caller
		handler := m.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			caller, _ = CallerFromContext(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)
		handler.ServeHTTP(httptest.NewRecorder(), req)

		assert.Equal(t, models.Caller{UserID: 7, Role: models.RolePatient}, caller)
	})
}

func TestRequireRoles(t *testing.T) {
	m := newTestMiddlewares()
	token, err := utils.GenerateAccessToken(3, string(models.RolePatient), testSecret, time.Hour)
	require.NoError(t, err)

	handler := m.Authenticate(m.RequireRoles(models.RoleAccountant, models.RoleAdmin)(okHandler()))

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestErrorHandlerRecoversPanic(t *testing.T) {
	m := newTestMiddlewares()
	handler := m.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestRateLimiterBlocksAfterBurst(t *testing.T) {
	limiter := NewRateLimiter(2, time.Hour, time.Minute, zap.NewNop(), nil)
	handler := limiter.Limit(okHandler())

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodPost, "/", nil)
	other.RemoteAddr = "10.0.0.2:5000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, other)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoggingNamesAuthenticatedCaller(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMiddlewares(zap.New(core), &config.InternalConfig{
		App: config.App{MaxRequests: 100, RequestBodyLimitInMegabyte: 1},
		JWT: config.AppJWT{Secret: testSecret},
	})

	token, err := utils.GenerateAccessToken(11, string(models.RoleAccountant), testSecret, time.Hour)
	require.NoError(t, err)

	handler := m.RequestIDMiddleware(m.Logging(m.Authenticate(okHandler())))
	req := httptest.NewRequest(http.MethodGet, "/api/v1/payments", nil)
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+token)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("API request completed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, int64(11), fields[constvars.LoggingCallerIDKey])
	assert.Equal(t, string(models.RoleAccountant), fields[constvars.LoggingCallerRoleKey])
	assert.Equal(t, int64(http.StatusOK), fields[constvars.LoggingStatusCodeKey])
}

func TestLoggingWarnsOnRejectedRequest(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	m := NewMiddlewares(zap.New(core), &config.InternalConfig{JWT: config.AppJWT{Secret: testSecret}})

	m.Logging(m.Authenticate(okHandler())).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	entries := logs.FilterMessage("API request rejected").All()
	require.Len(t, entries, 1)
	_, named := entries[0].ContextMap()[constvars.LoggingCallerIDKey]
	assert.False(t, named)
}

func TestGlobalRateLimitUsesErrorEnvelope(t *testing.T) {
	m := NewMiddlewares(zap.NewNop(), &config.InternalConfig{App: config.App{MaxRequests: 1}})
	handler := m.GlobalRateLimit()(okHandler())

	codes := make([]int, 0, 2)
	var body string
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "10.0.0.9:5000"
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		body = rec.Body.String()
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
	assert.Contains(t, body, `"success":false`)
}

func TestErrorEnvelopeDevDetailsFollowAppEnv(t *testing.T) {
	tests := []struct {
		env         string
		wantDevInfo bool
	}{
		{env: constvars.AppEnvDevelopment, wantDevInfo: true},
		{env: constvars.AppEnvProduction, wantDevInfo: false},
	}

	for _, tt := range tests {
		t.Run(tt.env, func(t *testing.T) {
			m := NewMiddlewares(zap.NewNop(), &config.InternalConfig{
				App: config.App{Env: tt.env},
				JWT: config.AppJWT{Secret: testSecret},
			})
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Header.Set(constvars.HeaderAuthorization, "Bearer not-a-jwt")
			rec := httptest.NewRecorder()

			m.Authenticate(okHandler()).ServeHTTP(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, tt.wantDevInfo, strings.Contains(rec.Body.String(), `"dev_message"`))
		})
	}
}
