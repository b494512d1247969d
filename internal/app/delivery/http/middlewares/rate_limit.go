package middlewares

import (
	"hospital-service/internal/pkg/exceptions"
	"hospital-service/internal/pkg/utils"
	"net/http"
	"time"

	"github.com/go-chi/httprate"
)

// GlobalRateLimit caps every client IP at MaxRequests per second and answers with the
// standard error envelope once the budget is spent.
func (m *Middlewares) GlobalRateLimit() func(next http.Handler) http.Handler {
	return httprate.Limit(
		m.InternalConfig.App.MaxRequests,
		time.Second,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			key, _ := httprate.KeyByIP(r)
			utils.BuildErrorResponse(m.Log, w, exceptions.ErrRateLimited(key), m.InternalConfig.ExposeErrorDetails())
		}),
	)
}
