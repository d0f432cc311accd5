package server

import (
	"net/http"
	"sync"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/valpere/meditranslate/internal/metrics"
)

// idleLimiterTTL is how long an unused client bucket is kept.
const idleLimiterTTL = 10 * time.Minute

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client key.
type RateLimiter struct {
	mutex     sync.Mutex
	clients   map[string]*clientLimiter
	limit     rate.Limit
	burst     int
	lastPrune time.Time
	now       func() time.Time
}

// NewRateLimiter allows perMinute events per client with the given burst.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		limit:   rate.Every(time.Minute / time.Duration(perMinute)),
		burst:   burst,
		now:     time.Now,
	}
}

// Reserve takes one token from the client's bucket. ok is false when the
// client is over its limit, in which case nothing is taken. Calling refund
// returns the token, for actions that did not go ahead.
func (rl *RateLimiter) Reserve(key string) (refund func(), ok bool) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	if now.Sub(rl.lastPrune) > idleLimiterTTL {
		for k, cl := range rl.clients {
			if now.Sub(cl.lastSeen) > idleLimiterTTL {
				delete(rl.clients, k)
			}
		}
		rl.lastPrune = now
	}

	cl, found := rl.clients[key]
	if !found {
		cl = &clientLimiter{limiter: rate.NewLimiter(rl.limit, rl.burst)}
		rl.clients[key] = cl
	}
	cl.lastSeen = now

	r := cl.limiter.ReserveN(now, 1)
	if !r.OK() {
		return nil, false
	}
	if r.DelayFrom(now) > 0 {
		r.CancelAt(now)
		return nil, false
	}
	return func() { r.CancelAt(now) }, true
}

// retryAfter is the wait for one token at the configured rate.
func (rl *RateLimiter) retryAfter() time.Duration {
	return time.Duration(float64(time.Second) / float64(rl.limit))
}

// takeToken charges the client for starting an analysis. When limiting is
// off it always succeeds. The refund must be called if the analysis does not
// start.
func (s *Server) takeToken(c *gin.Context) (refund func(), ok bool) {
	if s.limiter == nil {
		return func() {}, true
	}

	clientIP := c.ClientIP()
	refund, ok = s.limiter.Reserve(clientIP)
	if !ok {
		metrics.RateLimitedTotal.Inc()
		log.WithFields(log.Fields{
			"client": clientIP,
			"path":   c.FullPath(),
		}).Warn("rate limit exceeded")
	}
	return refund, ok
}

func (s *Server) rateLimited(c *gin.Context) {
	c.JSON(http.StatusTooManyRequests, gin.H{
		"error":       "Too many analyses started. Please wait and try again.",
		"code":        "rate_limited",
		"retry_after": int(s.limiter.retryAfter().Seconds() + 0.5),
	})
}
