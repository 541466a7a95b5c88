// Package obs provides the ambient observability facade: a thin wrapper
// around charmbracelet/log shared by every package in this module.
package obs

import (
	"os"
	"time"

	"github.com/charmbracelet/log"
)

var base = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
})

// Init configures the shared logger's prefix and level. appName becomes the
// log prefix; level is one of "debug", "info", "warn", "error" (anything
// else falls back to info).
func Init(appName, level string) {
	base.SetPrefix(appName)
	switch level {
	case "debug":
		base.SetLevel(log.DebugLevel)
	case "warn":
		base.SetLevel(log.WarnLevel)
	case "error":
		base.SetLevel(log.ErrorLevel)
	default:
		base.SetLevel(log.InfoLevel)
	}
}

func Debug(format string, args ...any) {
	if len(args) == 0 {
		base.Debug(format)
		return
	}
	base.Debugf(format, args...)
}

func Info(format string, args ...any) {
	if len(args) == 0 {
		base.Info(format)
		return
	}
	base.Infof(format, args...)
}

func Warn(format string, args ...any) {
	if len(args) == 0 {
		base.Warn(format)
		return
	}
	base.Warnf(format, args...)
}

func Error(format string, args ...any) {
	if len(args) == 0 {
		base.Error(format)
		return
	}
	base.Errorf(format, args...)
}

// Fatal logs at error level and terminates the process. Reserved for
// start-up failures (bad config, can't bind listener) — never called from
// request-handling paths, where invariant violations instead panic and are
// recovered per game (see internal/session).
func Fatal(format string, args ...any) {
	if len(args) == 0 {
		base.Fatal(format)
		return
	}
	base.Fatalf(format, args...)
}
