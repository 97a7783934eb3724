package server

import (
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/brightpath-mortgage/intake-api/internal/metrics"
)

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// requestLogger logs one line per request with route, status and latency.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		start := time.Now()
		next.ServeHTTP(rec, r)

		route := chi.RouteContext(r.Context()).RoutePattern()
		elapsed := time.Since(start)

		zap.L().Info("request",
			zap.String("method", r.Method),
			zap.String("route", route),
			zap.Int("status", rec.status),
			zap.Duration("elapsed", elapsed),
		)
		metrics.HTTPRequestDuration.
			WithLabelValues(route, r.Method, strconv.Itoa(rec.status)).
			Observe(elapsed.Seconds())
	})
}

// submitLimiter applies a per-client-IP token bucket to the form
// submission endpoints. Stale buckets are evicted lazily.
type submitLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucketEntry
	rps     rate.Limit
	burst   int
}

type bucketEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newSubmitLimiter(rps float64, burst int) *submitLimiter {
	return &submitLimiter{
		buckets: map[string]*bucketEntry{},
		rps:     rate.Limit(rps),
		burst:   burst,
	}
}

func (l *submitLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := time.Now()
	entry, ok := l.buckets[ip]
	if !ok {
		entry = &bucketEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.buckets[ip] = entry
	}
	entry.lastSeen = now

	if len(l.buckets) > 1024 {
		for key, e := range l.buckets {
			if now.Sub(e.lastSeen) > 10*time.Minute {
				delete(l.buckets, key)
			}
		}
	}
	return entry.limiter.Allow()
}

func (l *submitLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}
		if !l.allow(ip) {
			respondError(w, http.StatusTooManyRequests, "too many submissions, slow down")
			return
		}
		next.ServeHTTP(w, r)
	})
}
