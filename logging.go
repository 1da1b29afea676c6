package envlight

import "go.uber.org/zap"

// Logger is the logging seam for probe lifecycle events. Implementations
// must be safe for use from the single goroutine driving the probe.
type Logger interface {
	Debugf(format string, args ...any)
	Infof(format string, args ...any)
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

type zapLogger struct {
	s *zap.SugaredLogger
}

// NewZapLogger adapts a zap logger to the Logger seam.
func NewZapLogger(l *zap.Logger) Logger {
	return &zapLogger{s: l.Sugar()}
}

func (l *zapLogger) Debugf(format string, args ...any) { l.s.Debugf(format, args...) }
func (l *zapLogger) Infof(format string, args ...any)  { l.s.Infof(format, args...) }
func (l *zapLogger) Warnf(format string, args ...any)  { l.s.Warnf(format, args...) }
func (l *zapLogger) Errorf(format string, args ...any) { l.s.Errorf(format, args...) }

type nopLogger struct{}

// NewNopLogger returns a logger that discards everything. It is the
// default when no Logger is configured.
func NewNopLogger() Logger { return nopLogger{} }

func (nopLogger) Debugf(format string, args ...any) {}
func (nopLogger) Infof(format string, args ...any)  {}
func (nopLogger) Warnf(format string, args ...any)  {}
func (nopLogger) Errorf(format string, args ...any) {}
