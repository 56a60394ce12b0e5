package search

import (
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"bazaar/internal/eventbus"
)

// Option configures a Coordinator
type Option func(*Coordinator)

// WithDebounce sets the quiescence window
func WithDebounce(d time.Duration) Option {
	return func(c *Coordinator) {
		c.window = d
	}
}

// WithMaxWait forces an emission once d has passed since the first keystroke
// of an uninterrupted burst. Zero disables the ceiling.
func WithMaxWait(d time.Duration) Option {
	return func(c *Coordinator) {
		c.maxWait = d
	}
}

// WithClock replaces the wall clock, mainly for tests
func WithClock(clk clock.Clock) Option {
	return func(c *Coordinator) {
		if clk != nil {
			c.clock = clk
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(c *Coordinator) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithEventBus publishes dispatch, presentation, discard and cancel events on bus
func WithEventBus(bus eventbus.EventBus) Option {
	return func(c *Coordinator) {
		c.bus = bus
	}
}
