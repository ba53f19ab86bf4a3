package middleware

import (
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"
)

func TestIPRateLimiter(t *testing.T) {
	suite.Run(t, new(RateLimiterSuite))
}

type RateLimiterSuite struct {
	suite.Suite
	e *echo.Echo
}

func (s *RateLimiterSuite) SetupTest() {
	s.e = echo.New()
	s.e.IPExtractor = ClientIPExtractor(nil)
}

// hit sends one request from addr through the limiter.
func (s *RateLimiterSuite) hit(limiter *IPRateLimiter, addr string) *httptest.ResponseRecorder {
	next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }

	req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	s.Require().NoError(limiter.Middleware()(next)(s.e.NewContext(req, rec)))
	return rec
}

func (s *RateLimiterSuite) TestBurstThenRejects() {
	limiter := NewIPRateLimiter(1, 3)

	for range 3 {
		s.Equal(http.StatusNoContent, s.hit(limiter, "198.51.100.4:5000").Code)
	}

	rec := s.hit(limiter, "198.51.100.4:5000")
	s.Equal(http.StatusTooManyRequests, rec.Code)
	s.Contains(rec.Body.String(), `"code":"SYSTEM_006"`)
}

func (s *RateLimiterSuite) TestBucketsArePerAddress() {
	limiter := NewIPRateLimiter(1, 1)

	s.Equal(http.StatusNoContent, s.hit(limiter, "198.51.100.1:1").Code)
	s.Equal(http.StatusTooManyRequests, s.hit(limiter, "198.51.100.1:2").Code)
	s.Equal(http.StatusNoContent, s.hit(limiter, "198.51.100.2:1").Code)
}

func (s *RateLimiterSuite) TestDefaults() {
	testCases := []struct {
		rps, burst int
		wantRPS    float64
		wantBurst  int
	}{
		{rps: 0, burst: 0, wantRPS: 5, wantBurst: 10},
		{rps: 3, burst: 0, wantRPS: 3, wantBurst: 6},
		{rps: 7, burst: 2, wantRPS: 7, wantBurst: 2},
	}
	for _, tc := range testCases {
		limiter := NewIPRateLimiter(tc.rps, tc.burst)
		s.Equal(tc.wantRPS, float64(limiter.rps))
		s.Equal(tc.wantBurst, limiter.burst)
	}
}

func (s *RateLimiterSuite) TestForwardedHeaderCannotDodgeTheLimit() {
	limiter := NewIPRateLimiter(1, 1)

	spoof := func(forwardedFor string) int {
		next := func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }
		req := httptest.NewRequest(http.MethodGet, "/api/expenses", nil)
		req.RemoteAddr = "198.51.100.9:7000"
		req.Header.Set(echo.HeaderXForwardedFor, forwardedFor)
		rec := httptest.NewRecorder()
		s.Require().NoError(limiter.Middleware()(next)(s.e.NewContext(req, rec)))
		return rec.Code
	}

	s.Equal(http.StatusNoContent, spoof("203.0.113.1"))
	s.Equal(http.StatusTooManyRequests, spoof("203.0.113.2"))
	s.Equal(http.StatusTooManyRequests, spoof("203.0.113.3"))
}

func (s *RateLimiterSuite) TestClientIPExtractor() {
	_, proxies, err := net.ParseCIDR("10.20.0.0/16")
	s.Require().NoError(err)

	testCases := map[string]struct {
		trusted      []*net.IPNet
		remote       string
		forwardedFor string
		realIP       string
		want         string
	}{
		"no proxies ignores forwarded header": {remote: "198.51.100.20:4431", forwardedFor: "203.0.113.7", want: "198.51.100.20"},
		"no proxies ignores real ip header":   {remote: "198.51.100.20:4431", realIP: "203.0.113.9", want: "198.51.100.20"},
		"trusted proxy forwards the client":   {trusted: []*net.IPNet{proxies}, remote: "10.20.0.5:80", forwardedFor: "203.0.113.7", want: "203.0.113.7"},
		"untrusted peer is not believed":      {trusted: []*net.IPNet{proxies}, remote: "198.51.100.20:80", forwardedFor: "203.0.113.7", want: "198.51.100.20"},
		"spoofed hop before the proxy":        {trusted: []*net.IPNet{proxies}, remote: "10.20.0.5:80", forwardedFor: "1.2.3.4, 203.0.113.7", want: "203.0.113.7"},
		"private peers are not implied":       {trusted: []*net.IPNet{proxies}, remote: "192.168.1.4:80", forwardedFor: "203.0.113.7", want: "192.168.1.4"},
	}
	for name, tc := range testCases {
		s.Run(name, func() {
			e := echo.New()
			e.IPExtractor = ClientIPExtractor(tc.trusted)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			if tc.forwardedFor != "" {
				req.Header.Set(echo.HeaderXForwardedFor, tc.forwardedFor)
			}
			if tc.realIP != "" {
				req.Header.Set(echo.HeaderXRealIP, tc.realIP)
			}

			s.Equal(tc.want, e.NewContext(req, httptest.NewRecorder()).RealIP())
		})
	}
}

func (s *RateLimiterSuite) TestSweepForgetsIdleAddresses() {
	limiter := NewIPRateLimiter(5, 10)
	clock := time.Date(2025, 11, 3, 9, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return clock }

	limiter.allow("198.51.100.1")
	clock = clock.Add(visitorIdleTimeout + time.Second)
	limiter.allow("198.51.100.2")
	limiter.sweep()

	s.NotContains(limiter.visitors, "198.51.100.1")
	s.Contains(limiter.visitors, "198.51.100.2")
}

func (s *RateLimiterSuite) TestConcurrentCallersShareOneBucket() {
	limiter := NewIPRateLimiter(1, 4)
	var allowed, rejected atomic.Int32

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.allow("198.51.100.50") {
				allowed.Add(1)
			} else {
				rejected.Add(1)
			}
		}()
	}
	wg.Wait()

	s.LessOrEqual(allowed.Load(), int32(5))
	s.GreaterOrEqual(allowed.Load(), int32(4))
	s.Equal(int32(16), allowed.Load()+rejected.Load())
}
