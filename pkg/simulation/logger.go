package simulation

import (
	"fmt"
	"os"
	"strings"

	golog "github.com/tochemey/goakt/v3/log"
)

// NewLogger returns the logger handed to the actor system for the given level name.
func NewLogger(level string) (golog.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return golog.New(golog.DebugLevel, os.Stdout), nil
	case "", "info":
		return golog.New(golog.InfoLevel, os.Stdout), nil
	case "warn", "warning":
		return golog.New(golog.WarningLevel, os.Stdout), nil
	case "error":
		return golog.New(golog.ErrorLevel, os.Stdout), nil
	}
	return nil, fmt.Errorf("unknown log level %q", level)
}
