// Package logging is a thin structured-logging wrapper, in the style of
// go.viam.com/rdk/logging: a small Logger interface backed by zap, with
// Sublogger support so each engine subsystem (kinematics, collisions,
// features) can be attributed in the log stream.
package logging

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

// Logger is the interface every package in this module logs through.
type Logger interface {
	Debugf(template string, args ...interface{})
	Infof(template string, args ...interface{})
	Warnf(template string, args ...interface{})
	Errorf(template string, args ...interface{})
	// Sublogger returns a child logger tagged with name, for attributing
	// log lines to a particular engine subsystem.
	Sublogger(name string) Logger
}

type zapLogger struct {
	sugar *zap.SugaredLogger
	name  string
}

// NewLogger builds a production Logger writing structured JSON via zap.
func NewLogger(name string) Logger {
	base, err := zap.NewProduction()
	if err != nil {
		base = zap.NewNop()
	}
	return &zapLogger{sugar: base.Sugar().Named(name), name: name}
}

// NewTestLogger builds a Logger that writes to the given *testing.T, so log
// lines interleave correctly with `go test -v` output.
func NewTestLogger(tb testing.TB) Logger {
	base := zaptest.NewLogger(tb)
	return &zapLogger{sugar: base.Sugar(), name: ""}
}

func (l *zapLogger) Debugf(template string, args ...interface{}) { l.sugar.Debugf(template, args...) }
func (l *zapLogger) Infof(template string, args ...interface{})  { l.sugar.Infof(template, args...) }
func (l *zapLogger) Warnf(template string, args ...interface{})  { l.sugar.Warnf(template, args...) }
func (l *zapLogger) Errorf(template string, args ...interface{}) { l.sugar.Errorf(template, args...) }

func (l *zapLogger) Sublogger(name string) Logger {
	full := name
	if l.name != "" {
		full = l.name + "." + name
	}
	return &zapLogger{sugar: l.sugar.Named(name), name: full}
}
