package middleware

import (
	"fmt"
	"math"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"event-ticketing-api/internal/response"
)

// LoginRateLimiter provides rate limiting specifically for login attempts
type LoginRateLimiter struct {
	attempts    map[string][]time.Time
	mutex       sync.Mutex
	maxAttempts int
	window      time.Duration
	now         func() time.Time
	stop        chan struct{}
	stopOnce    sync.Once
}

// NewLoginRateLimiter creates a new login rate limiter. Call Stop to end the
// cleanup goroutine.
func NewLoginRateLimiter(maxAttempts int, window time.Duration) *LoginRateLimiter {
	rl := &LoginRateLimiter{
		attempts:    make(map[string][]time.Time),
		maxAttempts: maxAttempts,
		window:      window,
		now:         time.Now,
		stop:        make(chan struct{}),
	}

	go rl.cleanup(time.Minute)

	return rl
}

// Stop ends the cleanup goroutine
func (rl *LoginRateLimiter) Stop() {
	rl.stopOnce.Do(func() { close(rl.stop) })
}

// IsAllowed checks if a login attempt from the given IP is allowed
func (rl *LoginRateLimiter) IsAllowed(ip string) bool {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	valid := rl.prune(rl.attempts[ip], rl.now())
	if len(valid) == 0 {
		delete(rl.attempts, ip)
	} else {
		rl.attempts[ip] = valid
	}

	return len(valid) < rl.maxAttempts
}

// RecordAttempt records a login attempt for the given IP
func (rl *LoginRateLimiter) RecordAttempt(ip string) {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	rl.attempts[ip] = append(rl.attempts[ip], rl.now())
}

// GetTimeUntilAllowed returns the time until the next login attempt is allowed
func (rl *LoginRateLimiter) GetTimeUntilAllowed(ip string) time.Duration {
	rl.mutex.Lock()
	defer rl.mutex.Unlock()

	now := rl.now()
	valid := rl.prune(rl.attempts[ip], now)
	if len(valid) < rl.maxAttempts {
		return 0
	}

	// the oldest attempt in the window is the first to expire
	return valid[0].Add(rl.window).Sub(now)
}

func (rl *LoginRateLimiter) prune(attempts []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-rl.window)
	var valid []time.Time
	for _, attempt := range attempts {
		if attempt.After(cutoff) {
			valid = append(valid, attempt)
		}
	}
	return valid
}

// cleanup removes old entries periodically
func (rl *LoginRateLimiter) cleanup(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-rl.stop:
			return
		case <-ticker.C:
			rl.mutex.Lock()
			now := rl.now()
			for ip, attempts := range rl.attempts {
				if valid := rl.prune(attempts, now); len(valid) == 0 {
					delete(rl.attempts, ip)
				} else {
					rl.attempts[ip] = valid
				}
			}
			rl.mutex.Unlock()
		}
	}
}

// LoginRateLimit provides rate limiting middleware for login endpoints
func LoginRateLimit(rateLimiter *LoginRateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			ip := getClientIP(r)

			if !rateLimiter.IsAllowed(ip) {
				wait := rateLimiter.GetTimeUntilAllowed(ip)
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				response.JSON(w, http.StatusTooManyRequests, response.ErrorBody{
					Detail: fmt.Sprintf("Too many login attempts. Please try again in %s.", wait.Round(time.Second)),
					Code:   response.CodeRateLimited,
				})
				return
			}

			defer rateLimiter.RecordAttempt(ip)

			next.ServeHTTP(w, r)
		})
	}
}

// getClientIP returns the host part of RemoteAddr. chi's RealIP middleware
// has already applied forwarding headers.
func getClientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
