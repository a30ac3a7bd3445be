// Package logger provides ports.Logger implementations.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/ideamans/go-l10n"
	"github.com/mattn/go-isatty"
	"github.com/user/planarenc/pkg/ports"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGray   = "\033[90m"
	colorYellow = "\033[33m"
	colorRed    = "\033[31m"
	colorCyan   = "\033[36m"
)

// ConsoleLogger writes translated messages line by line. Debug and info go
// to the output writer, warnings and errors to the error writer.
type ConsoleLogger struct {
	level     ports.LogLevel
	component string
	color     bool

	mu     *sync.Mutex
	out    io.Writer
	errOut io.Writer
}

// NewConsole creates a logger on stdout and stderr. Color is used only when
// stdout is a terminal.
func NewConsole(level ports.LogLevel) *ConsoleLogger {
	return NewConsoleWriter(os.Stdout, os.Stderr, level)
}

// NewConsoleWriter creates a logger on the given writers. Color is used only
// when out is a terminal.
func NewConsoleWriter(out, errOut io.Writer, level ports.LogLevel) *ConsoleLogger {
	return &ConsoleLogger{
		level:  level,
		color:  isTerminal(out),
		mu:     &sync.Mutex{},
		out:    out,
		errOut: errOut,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (l *ConsoleLogger) Debug(msg string, args ...any) { l.log(ports.LevelDebug, msg, args) }
func (l *ConsoleLogger) Info(msg string, args ...any)  { l.log(ports.LevelInfo, msg, args) }
func (l *ConsoleLogger) Warn(msg string, args ...any)  { l.log(ports.LevelWarn, msg, args) }
func (l *ConsoleLogger) Error(msg string, args ...any) { l.log(ports.LevelError, msg, args) }

// WithComponent returns a logger tagged with component, nested under the
// receiver's own tag.
func (l *ConsoleLogger) WithComponent(component string) ports.Logger {
	child := *l
	if l.component != "" {
		child.component = l.component + "/" + component
	} else {
		child.component = component
	}
	return &child
}

// Level returns the minimum level that is written.
func (l *ConsoleLogger) Level() ports.LogLevel {
	return l.level
}

func (l *ConsoleLogger) log(level ports.LogLevel, msg string, args []any) {
	if level < l.level {
		return
	}

	line := l10n.F(msg, args...)
	if l.component != "" {
		tag := "[" + l.component + "]"
		if l.color {
			tag = colorCyan + tag + colorReset
		}
		line = tag + " " + line
	}

	w := l.out
	if level >= ports.LevelWarn {
		w = l.errOut
	}

	if l.color {
		switch level {
		case ports.LevelDebug:
			line = colorGray + line + colorReset
		case ports.LevelWarn:
			line = colorYellow + line + colorReset
		case ports.LevelError:
			line = colorRed + line + colorReset
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(w, line)
}

var _ ports.Logger = (*ConsoleLogger)(nil)
