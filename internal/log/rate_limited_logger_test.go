package log

import (
	"testing"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/stretchr/testify/assert"
)

func TestRateLimitedLogger(t *testing.T) {
	logger := NewRateLimitedLogger(10, level.Error(Logger))
	assert.NotNil(t, logger)

	logger.Log("msg", "test")
}

func TestRateLimitedLoggerDropsBurst(t *testing.T) {
	calls := 0
	logger := NewRateLimitedLogger(1, kitlog.LoggerFunc(func(...interface{}) error {
		calls++
		return nil
	}))
	logger.Log("msg", "first")
	// second call within the same instant should be silently dropped,
	// not panic or block.
	logger.Log("msg", "second")
	assert.Equal(t, 1, calls)
}
