package jsonstore

import (
	"log/slog"
	"time"
)

type options struct {
	now     func() time.Time
	logger  *slog.Logger
	metrics *Metrics
}

type Option func(*options)

// WithClock replaces time.Now for creation and modification stamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records operation counts and durations into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) { o.metrics = m }
}
