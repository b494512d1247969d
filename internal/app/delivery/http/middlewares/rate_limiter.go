package middlewares

import (
	"hospital-service/internal/app/config"
	"hospital-service/internal/pkg/constvars"
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// RateLimiter throttles per client IP and blocks an IP for blockTime once it exceeds its budget.
type RateLimiter struct {
	limiters  map[string]*rate.Limiter
	blocked   map[string]time.Time
	mu        sync.Mutex
	requests  int
	per       time.Duration
	blockTime time.Duration
	log       *zap.Logger

	internalConfig *config.InternalConfig
}

func NewRateLimiter(requests int, per, blockTime time.Duration, logger *zap.Logger, internalConfig *config.InternalConfig) *RateLimiter {
	return &RateLimiter{
		limiters:  make(map[string]*rate.Limiter),
		blocked:   make(map[string]time.Time),
		requests:  requests,
		per:       per,
		blockTime: blockTime,
		log:       logger,

		internalConfig: internalConfig,
	}
}

// NewPaymentRateLimiter allows requestsPerMinute payment submissions per IP, refilled evenly.
func NewPaymentRateLimiter(requestsPerMinute int, logger *zap.Logger, internalConfig *config.InternalConfig) *RateLimiter {
	if requestsPerMinute <= 0 {
		requestsPerMinute = 1
	}
	return NewRateLimiter(requestsPerMinute, time.Minute/time.Duration(requestsPerMinute), time.Minute, logger, internalConfig)
}

func (r *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		ip, _, err := net.SplitHostPort(req.RemoteAddr)
		if err != nil {
			ip = req.RemoteAddr
		}

		r.mu.Lock()

		if blockedUntil, found := r.blocked[ip]; found {
			if time.Now().Before(blockedUntil) {
				r.mu.Unlock()
				r.reject(w, req, ip, blockedUntil)
				return
			}

			delete(r.blocked, ip)
		}

		limiter, exists := r.limiters[ip]
		if !exists {
			limiter = rate.NewLimiter(rate.Every(r.per), r.requests)
			r.limiters[ip] = limiter
		}

		r.mu.Unlock()

		if !limiter.Allow() {
			blockedUntil := time.Now().Add(r.blockTime)

			r.mu.Lock()
			r.blocked[ip] = blockedUntil
			r.mu.Unlock()

			r.reject(w, req, ip, blockedUntil)
			return
		}

		next.ServeHTTP(w, req)
	})
}

func (r *RateLimiter) reject(w http.ResponseWriter, req *http.Request, ip string, blockedUntil time.Time) {
	requestID, _ := req.Context().Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	utils.LogSecurityEvent(r.log, "rate_limited", requestID,
		zap.String(constvars.LoggingRemoteAddrKey, ip),
		zap.String(constvars.LoggingEndpointKey, req.URL.Path),
	)

	retryAfter := int(time.Until(blockedUntil).Seconds()) + 1
	w.Header().Set(constvars.HeaderRetryAfter, strconv.Itoa(retryAfter))
	utils.BuildErrorResponse(r.log, w, exceptions.ErrRateLimited(ip), r.internalConfig.ExposeErrorDetails())
}
