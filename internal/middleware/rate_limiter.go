package middleware

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/yourusername/linkbot/internal/services/logging"
	"github.com/yourusername/linkbot/internal/services/monitoring"
)

// securityLogger and monitor are wired once at startup from main.
// NOTE: In AWS Lambda, each instance maintains its own limiter state.
var (
	securityLogger *logging.SecurityLogger
	monitor        *monitoring.CloudWatchMonitor
)

// SetSecurityLogger configures the security logger used for rate limit events.
func SetSecurityLogger(sl *logging.SecurityLogger) {
	securityLogger = sl
}

// SetMonitor configures the CloudWatch monitor used for rate limit metrics.
func SetMonitor(m *monitoring.CloudWatchMonitor) {
	monitor = m
}

// GlobalRateLimiter applies a single token bucket across all requests to
// the interactions endpoint. Discord's own delivery rate is the real bound;
// this protects the admin API from anything hammering the public URL directly.
type GlobalRateLimiter struct {
	limiter *rate.Limiter
}

// NewGlobalRateLimiter creates a rate limiter with the given requests-per-second and burst size.
func NewGlobalRateLimiter(requestsPerSecond int, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// Middleware rejects requests with 429 once the bucket is empty.
// Runs before signature verification, so rejected requests cost no crypto.
func (rl *GlobalRateLimiter) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !rl.limiter.Allow() {
			if securityLogger != nil {
				securityLogger.LogRateLimitExceeded(r.Context(), r.RemoteAddr)
			}
			if monitor != nil {
				monitor.PublishRateLimitMetric()
			}
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	}
}
