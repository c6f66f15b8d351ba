package middleware

import (
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"placement/pkg/requestcontext"
)

// Config sets the per-caller budget.
type Config struct {
	PerMinute       int
	Burst           int
	CleanupInterval time.Duration
}

type callerLimiter struct {
	limiter    *rate.Limiter
	lastAccess time.Time
}

// Middleware throttles authenticated callers by verified email.
type Middleware struct {
	cfg      Config
	limit    rate.Limit
	logger   *slog.Logger
	disabled bool

	mu       sync.Mutex
	limiters map[string]*callerLimiter

	stopCh chan struct{}
	once   sync.Once
}

type Option func(*Middleware)

// WithDisabled disables rate limiting entirely (for testing/demo mode).
func WithDisabled(disabled bool) Option {
	return func(m *Middleware) {
		m.disabled = disabled
	}
}

// New starts a limiter with a background sweep of idle callers. Call Stop on shutdown.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Middleware {
	if cfg.PerMinute <= 0 {
		cfg.PerMinute = 120
	}
	if cfg.Burst <= 0 {
		cfg.Burst = cfg.PerMinute
	}
	if cfg.CleanupInterval <= 0 {
		cfg.CleanupInterval = 5 * time.Minute
	}
	m := &Middleware{
		cfg:      cfg,
		limit:    rate.Limit(float64(cfg.PerMinute) / 60.0),
		logger:   logger,
		limiters: make(map[string]*callerLimiter),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.disabled {
		logger.Info("rate limiting disabled")
		return m
	}
	go m.cleanupLoop()
	return m
}

// Stop ends the background sweep.
func (m *Middleware) Stop() {
	m.once.Do(func() { close(m.stopCh) })
}

// RateLimit must run after auth.RequireAuth. Unauthenticated requests pass through.
func (m *Middleware) RateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.disabled {
			next.ServeHTTP(w, r)
			return
		}
		ctx := r.Context()
		email := requestcontext.Email(ctx)
		if email == "" {
			next.ServeHTTP(w, r)
			return
		}
		if !m.limiterFor(email).Allow() {
			m.logger.WarnContext(ctx, "rate limit exceeded",
				"email", email,
				"request_id", requestcontext.RequestID(ctx),
			)
			m.writeRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Tracked reports how many callers currently hold a limiter.
func (m *Middleware) Tracked() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.limiters)
}

func (m *Middleware) limiterFor(email string) *rate.Limiter {
	m.mu.Lock()
	defer m.mu.Unlock()
	cl, ok := m.limiters[email]
	if !ok {
		cl = &callerLimiter{limiter: rate.NewLimiter(m.limit, m.cfg.Burst)}
		m.limiters[email] = cl
	}
	cl.lastAccess = time.Now()
	return cl.limiter
}

func (m *Middleware) cleanupLoop() {
	ticker := time.NewTicker(m.cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep(time.Now())
		case <-m.stopCh:
			return
		}
	}
}

// sweep drops callers idle for more than two cleanup intervals.
func (m *Middleware) sweep(now time.Time) {
	ttl := 2 * m.cfg.CleanupInterval
	m.mu.Lock()
	defer m.mu.Unlock()
	for email, cl := range m.limiters {
		if now.Sub(cl.lastAccess) > ttl {
			delete(m.limiters, email)
		}
	}
}

func (m *Middleware) writeRateLimitExceeded(w http.ResponseWriter) {
	retryAfter := int(math.Ceil(1.0 / float64(m.limit)))
	if retryAfter < 1 {
		retryAfter = 1
	}
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate_limit_exceeded","error_description":"Too many requests. Please try again later."}`))
}
