package log

import (
	"time"

	"github.com/go-kit/log"
	"golang.org/x/time/rate"
)

// RateLimitedLogger drops log calls once they exceed logsPerSecond,
// so a hot loop (a rehash stepper under heavy churn, a retry loop)
// cannot drown out everything else on the wire.
type RateLimitedLogger struct {
	limiter *rate.Limiter
	logger  log.Logger
}

// NewRateLimitedLogger wraps logger, allowing at most logsPerSecond
// calls through per second with a burst of one.
func NewRateLimitedLogger(logsPerSecond int, logger log.Logger) *RateLimitedLogger {
	return &RateLimitedLogger{
		limiter: rate.NewLimiter(rate.Limit(logsPerSecond), 1),
		logger:  logger,
	}
}

// Log forwards keyvals to the wrapped logger unless the rate limit is
// currently exceeded, in which case the call is silently dropped.
func (l *RateLimitedLogger) Log(keyvals ...interface{}) {
	if !l.limiter.AllowN(time.Now(), 1) {
		return
	}
	_ = l.logger.Log(keyvals...)
}
