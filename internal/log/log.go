// Package log provides the ambient logger shared across rkv's
// command-line tooling: a package-level logfmt Logger gated by a
// runtime-configurable level filter, plus a rate-limited wrapper for
// call sites that could otherwise flood output (the rehash stepper
// under heavy churn, in particular).
package log

import (
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the process-wide logger. SetLevel adjusts its filter;
// every other package logs through this var rather than taking a
// logger as a constructor argument, matching the ambient-logger
// pattern the rest of the stack uses.
var Logger = newLogger()

func newLogger() log.Logger {
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	return level.NewFilter(l, level.AllowInfo())
}

// SetLevel reparses a textual level ("debug", "info", "warn", "error")
// and installs a freshly filtered Logger. An unrecognized name leaves
// the current filter untouched.
func SetLevel(name string) {
	var opt level.Option
	switch name {
	case "debug":
		opt = level.AllowDebug()
	case "info":
		opt = level.AllowInfo()
	case "warn":
		opt = level.AllowWarn()
	case "error":
		opt = level.AllowError()
	default:
		return
	}
	l := log.NewLogfmtLogger(log.NewSyncWriter(os.Stderr))
	l = log.With(l, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller)
	Logger = level.NewFilter(l, opt)
}
