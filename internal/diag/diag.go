// Package diag is the diagnostic logging sink consumed by the simulation
// core. The core reports anomalies through it without depending on any
// particular backing logger.
package diag

import (
	"fmt"
	"log/slog"
)

// Sink accepts one diagnostic message at a time.
type Sink interface {
	Logf(format string, args ...any)
}

type slogSink struct {
	logger *slog.Logger
}

func (s slogSink) Logf(format string, args ...any) {
	s.logger.Warn(fmt.Sprintf(format, args...))
}

// Slog adapts a structured logger into a Sink. A nil logger uses the
// process default.
func Slog(logger *slog.Logger) Sink {
	if logger == nil {
		logger = slog.Default()
	}
	return slogSink{logger: logger}
}

type nopSink struct{}

func (nopSink) Logf(string, ...any) {}

// Nop discards all diagnostics.
func Nop() Sink {
	return nopSink{}
}

// Recorder retains messages for assertions and counting.
type Recorder struct {
	Messages []string
}

func (r *Recorder) Logf(format string, args ...any) {
	r.Messages = append(r.Messages, fmt.Sprintf(format, args...))
}
