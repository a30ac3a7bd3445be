package logger

import "github.com/user/planarenc/pkg/ports"

// NoopLogger drops every message. Quiet mode and tests use it.
type NoopLogger struct{}

// NewNoop returns a NoopLogger.
func NewNoop() *NoopLogger {
	return &NoopLogger{}
}

func (*NoopLogger) Debug(string, ...any) {}
func (*NoopLogger) Info(string, ...any)  {}
func (*NoopLogger) Warn(string, ...any)  {}
func (*NoopLogger) Error(string, ...any) {}

func (l *NoopLogger) WithComponent(string) ports.Logger { return l }

var _ ports.Logger = (*NoopLogger)(nil)
