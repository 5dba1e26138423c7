package middleware

import (
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/phrazzld/recall-api/internal/api/shared"
	"github.com/phrazzld/recall-api/internal/platform/clock"
	"github.com/phrazzld/recall-api/internal/platform/metrics"
	"golang.org/x/time/rate"
)

// idleEviction is how long an unused bucket is kept.
const idleEviction = 10 * time.Minute

type ownerBucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter applies a token bucket per authenticated owner. Requests
// without an owner are keyed by client IP.
type RateLimiter struct {
	limit   rate.Limit
	burst   int
	clock   clock.Clock
	mu      sync.Mutex
	buckets map[string]*ownerBucket
	swept   time.Time
}

// NewRateLimiter creates a limiter allowing rps requests per second with the
// given burst. A nil clock uses the system clock.
func NewRateLimiter(rps float64, burst int, clk clock.Clock) *RateLimiter {
	if clk == nil {
		clk = clock.System()
	}
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(rps)))
	}
	return &RateLimiter{
		limit:   rate.Limit(rps),
		burst:   burst,
		clock:   clk,
		buckets: make(map[string]*ownerBucket),
	}
}

// Limit rejects requests over the owner's budget with 429 and Retry-After.
func (l *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if l.allow(requestKey(r)) {
			next.ServeHTTP(w, r)
			return
		}
		metrics.RateLimited.Inc()
		w.Header().Set("Retry-After", strconv.Itoa(l.retryAfterSeconds()))
		shared.RespondWithErrorAndLog(w, r, http.StatusTooManyRequests, "Too many requests", nil)
	})
}

func (l *RateLimiter) allow(key string) bool {
	now := l.clock.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > idleEviction {
		for k, b := range l.buckets {
			if now.Sub(b.lastSeen) > idleEviction {
				delete(l.buckets, k)
			}
		}
		l.swept = now
	}

	b, ok := l.buckets[key]
	if !ok {
		b = &ownerBucket{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	return b.limiter.AllowN(now, 1)
}

// retryAfterSeconds is the time to earn one token, rounded up.
func (l *RateLimiter) retryAfterSeconds() int {
	if l.limit <= 0 {
		return 1
	}
	return int(math.Max(1, math.Ceil(1/float64(l.limit))))
}

func requestKey(r *http.Request) string {
	if ownerID, ok := shared.OwnerIDFromContext(r.Context()); ok {
		return "owner:" + ownerID.String()
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}
