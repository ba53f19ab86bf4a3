package middleware

import (
	"context"
	"net"
	"sync"
	"time"

	"budget-tracker/internal/errors"
	"budget-tracker/internal/handlers"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

const (
	visitorIdleTimeout   = 3 * time.Minute
	visitorSweepInterval = time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter keeps one token bucket per client address.
type IPRateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	rps      rate.Limit
	burst    int
	now      func() time.Time
}

func NewIPRateLimiter(requestsPerSecond, burst int) *IPRateLimiter {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if burst <= 0 {
		burst = requestsPerSecond * 2
	}
	return &IPRateLimiter{
		visitors: make(map[string]*visitor),
		rps:      rate.Limit(requestsPerSecond),
		burst:    burst,
		now:      time.Now,
	}
}

// Middleware rejects requests over the per-address budget with SYSTEM_006.
func (l *IPRateLimiter) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !l.allow(c.RealIP()) {
				return handlers.SendError(c, errors.SystemRateLimitExceeded)
			}
			return next(c)
		}
	}
}

// Run drops idle visitors until ctx is cancelled.
func (l *IPRateLimiter) Run(ctx context.Context) {
	ticker := time.NewTicker(visitorSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.sweep()
		}
	}
}

func (l *IPRateLimiter) allow(ip string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	v, exists := l.visitors[ip]
	if !exists {
		v = &visitor{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = l.now()
	return v.limiter.Allow()
}

func (l *IPRateLimiter) sweep() {
	l.mu.Lock()
	defer l.mu.Unlock()

	cutoff := l.now().Add(-visitorIdleTimeout)
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
		}
	}
}

// ClientIPExtractor resolves the caller's address for c.RealIP. X-Forwarded-For is only
// honoured when the direct peer falls inside a trusted range; otherwise the socket address wins.
func ClientIPExtractor(trusted []*net.IPNet) echo.IPExtractor {
	if len(trusted) == 0 {
		return echo.ExtractIPDirect()
	}
	opts := []echo.TrustOption{
		echo.TrustLoopback(false),
		echo.TrustLinkLocal(false),
		echo.TrustPrivateNet(false),
	}
	for _, ipRange := range trusted {
		opts = append(opts, echo.TrustIPRange(ipRange))
	}
	return echo.ExtractIPFromXFFHeader(opts...)
}
