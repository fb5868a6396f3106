package router

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/ovaphlow/pitchfork/service-jobs-go/internal/apperror"
)

// RateLimiter allows each client IP a burst of max requests, refilled
// evenly over window. The client IP is the socket peer unless trustProxy
// is set, in which case the first X-Forwarded-For entry wins.
type RateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*rate.Limiter
	every      rate.Limit
	burst      int
	trustProxy bool
	msg        string
	logger     *zap.SugaredLogger
}

func NewRateLimiter(max int, window time.Duration, trustProxy bool, logger *zap.SugaredLogger) *RateLimiter {
	minutes := int(window.Round(time.Minute).Minutes())
	if minutes < 1 {
		minutes = 1
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &RateLimiter{
		limiters:   make(map[string]*rate.Limiter),
		every:      rate.Every(window / time.Duration(max)),
		burst:      max,
		trustProxy: trustProxy,
		msg:        fmt.Sprintf("Too many request from this IP, please try again after %d minutes", minutes),
		logger:     logger,
	}
}

func (rl *RateLimiter) limiter(key string) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	l, ok := rl.limiters[key]
	if !ok {
		l = rate.NewLimiter(rl.every, rl.burst)
		rl.limiters[key] = l
	}
	return l
}

// Handler answers 429 once the client has spent its burst.
func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := clientIP(r, rl.trustProxy)
		if !rl.limiter(ip).Allow() {
			rl.logger.Warnw("rate limit exceeded", "ip", ip, "path", r.URL.Path)
			apperror.WriteJSON(w, http.StatusTooManyRequests, apperror.Response{Msg: rl.msg})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Sweep drops limiters that are back at a full bucket.
func (rl *RateLimiter) Sweep() {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for k, l := range rl.limiters {
		if l.Tokens() >= float64(rl.burst) {
			delete(rl.limiters, k)
		}
	}
}

func clientIP(r *http.Request, trustProxy bool) string {
	if fwd := r.Header.Get("X-Forwarded-For"); trustProxy && fwd != "" {
		first, _, _ := strings.Cut(fwd, ",")
		return strings.TrimSpace(first)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
