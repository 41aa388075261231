// Package logx holds the process-wide structured logger.
package logx

import (
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

var once sync.Once
var logger *log.Logger

// L returns the shared logger instance.
func L() *log.Logger {
	once.Do(func() {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			TimeFormat:      time.Kitchen,
			Prefix:          "lumen",
		})
	})

	return logger
}

// SetLevel configures the shared logger from a level name.
// Unknown names fall back to info.
func SetLevel(level string) {
	switch strings.ToLower(level) {
	case "debug":
		L().SetLevel(log.DebugLevel)
	case "warn":
		L().SetLevel(log.WarnLevel)
	case "error":
		L().SetLevel(log.ErrorLevel)
	default:
		L().SetLevel(log.InfoLevel)
	}
}
