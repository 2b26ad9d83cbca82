package pppoe

import (
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

// Logger is the structured logging collaborator the driver reports
// through: spec.md §6's "external logging collaborator". It is the
// same minimal interface as github.com/go-kit/log.Logger, the
// discipline katalix-go-l2tp's l2tp package uses for its own
// state-machine library, so any go-kit logger (or adapter to one) can
// be passed in directly.
type Logger = log.Logger

// logWith fills in a no-op logger if l is nil, so internal code never
// has to nil-check before logging.
func logWith(l Logger) Logger {
	if l == nil {
		return log.NewNopLogger()
	}
	return l
}

func logDebug(l Logger, keyvals ...interface{}) {
	level.Debug(logWith(l)).Log(keyvals...)
}

func logInfo(l Logger, keyvals ...interface{}) {
	level.Info(logWith(l)).Log(keyvals...)
}

func logWarn(l Logger, keyvals ...interface{}) {
	level.Warn(logWith(l)).Log(keyvals...)
}

func logError(l Logger, keyvals ...interface{}) {
	level.Error(logWith(l)).Log(keyvals...)
}
