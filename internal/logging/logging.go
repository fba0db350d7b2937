// Package logging provides a small leveled logger writing to stderr.
// stdout is reserved for structured command output, so everything
// diagnostic goes through here.
package logging

import (
	"log"
	"os"
	"sync/atomic"
)

// Level controls which messages are emitted.
type Level int32

const (
	LevelError Level = iota
	LevelWarn
	LevelInfo
	LevelDebug
)

var (
	level  atomic.Int32
	logger = log.New(os.Stderr, "", log.LstdFlags)
)

func init() {
	level.Store(int32(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l Level) {
	level.Store(int32(l))
}

// SetVerbose enables debug logging.
func SetVerbose(verbose bool) {
	if verbose {
		SetLevel(LevelDebug)
	} else {
		SetLevel(LevelInfo)
	}
}

func enabled(l Level) bool {
	return Level(level.Load()) >= l
}

// Errorf logs at error level.
func Errorf(format string, args ...interface{}) {
	if enabled(LevelError) {
		logger.Printf("[ERROR] "+format, args...)
	}
}

// Warnf logs at warn level.
func Warnf(format string, args ...interface{}) {
	if enabled(LevelWarn) {
		logger.Printf("[WARN] "+format, args...)
	}
}

// Infof logs at info level.
func Infof(format string, args ...interface{}) {
	if enabled(LevelInfo) {
		logger.Printf("[INFO] "+format, args...)
	}
}

// Debugf logs at debug level.
func Debugf(format string, args ...interface{}) {
	if enabled(LevelDebug) {
		logger.Printf("[DEBUG] "+format, args...)
	}
}
