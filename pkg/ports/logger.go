// Package ports defines the interfaces between the encoding pipeline and its
// collaborators: encoders, packet sinks, logging, file I/O and metrics.
package ports

import "strings"

// LogLevel orders log messages by severity.
type LogLevel int

const (
	// LevelDebug covers per-frame and per-packet detail from components.
	LevelDebug LogLevel = iota
	// LevelInfo covers run progress reported by the orchestrator and CLI.
	LevelInfo
	// LevelWarn covers conditions the run survives, such as a codec fallback
	// or a stream that does not start with a keyframe.
	LevelWarn
	// LevelError covers failures that end the run.
	LevelError
	// LevelQuiet suppresses everything.
	LevelQuiet
)

var levelNames = [...]string{
	LevelDebug: "debug",
	LevelInfo:  "info",
	LevelWarn:  "warn",
	LevelError: "error",
	LevelQuiet: "quiet",
}

func (l LogLevel) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "unknown"
	}
	return levelNames[l]
}

// ParseLogLevel maps a level name to a LogLevel, ignoring case. "warning"
// and "none" are accepted as aliases. Unknown names yield LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch s = strings.ToLower(strings.TrimSpace(s)); s {
	case "warning":
		return LevelWarn
	case "none":
		return LevelQuiet
	}
	for l, name := range levelNames {
		if name == s {
			return LogLevel(l)
		}
	}
	return LevelInfo
}

// Logger is the logging interface injected into every component. msg is a
// format string and doubles as the translation key.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)

	// WithComponent returns a Logger whose lines are tagged with component.
	// Tags nest, so a session logger derived from an orchestrator logger
	// reports as "orchestrator/session".
	WithComponent(component string) Logger
}
