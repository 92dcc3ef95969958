package authprovider

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// loginLimiter throttles sign-in attempts per email address.
type loginLimiter struct {
	mu       sync.Mutex
	perMin   int
	limiters map[string]*rate.Limiter
}

func newLoginLimiter(perMinute int) *loginLimiter {
	return &loginLimiter{perMin: perMinute, limiters: make(map[string]*rate.Limiter)}
}

// allow reports whether another attempt for key may proceed at now.
// A non-positive rate disables throttling.
func (l *loginLimiter) allow(key string, now time.Time) bool {
	if l.perMin <= 0 {
		return true
	}
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(time.Minute/time.Duration(l.perMin)), l.perMin)
		l.limiters[key] = lim
	}
	l.mu.Unlock()
	return lim.AllowN(now, 1)
}
