package search

import (
	"time"

	"k8s.io/utils/clock"
)

// DefaultDebounce is the quiescence window used when none is configured
const DefaultDebounce = 300 * time.Millisecond

// Debouncer collapses a burst of submits into a single emission after a
// quiet period. It is not safe for concurrent use: the coordinator loop owns
// it and selects on C() to learn when the window has elapsed.
type Debouncer struct {
	clock   clock.Clock
	window  time.Duration
	maxWait time.Duration

	pending bool
	text    string
	firstAt time.Time // first submit of the current burst
	timer   clock.Timer
}

// NewDebouncer creates a debouncer. A maxWait of zero disables the ceiling.
func NewDebouncer(clk clock.Clock, window, maxWait time.Duration) *Debouncer {
	if clk == nil {
		clk = clock.RealClock{}
	}
	if window < 0 {
		window = 0
	}
	if maxWait < 0 {
		maxWait = 0
	}
	return &Debouncer{
		clock:   clk,
		window:  window,
		maxWait: maxWait,
	}
}

// Submit records the latest text and restarts the window.
// It returns (text, true) when the text must be emitted right away: empty
// text always is, and so is text arriving after the max-wait ceiling passed.
func (d *Debouncer) Submit(text string) (string, bool) {
	if isEmptyQuery(text) {
		d.Cancel()
		return text, true
	}

	now := d.clock.Now()
	if !d.pending {
		d.pending = true
		d.firstAt = now
	}
	d.text = text

	wait := d.window
	if d.maxWait > 0 {
		remaining := d.maxWait - now.Sub(d.firstAt)
		if remaining <= 0 {
			return d.take(), true
		}
		if remaining < wait {
			wait = remaining
		}
	}

	d.stopTimer()
	d.timer = d.clock.NewTimer(wait)
	return "", false
}

// C returns the channel that fires when the window elapses. It is nil when
// nothing is pending, which blocks forever in a select.
func (d *Debouncer) C() <-chan time.Time {
	if d.timer == nil {
		return nil
	}
	return d.timer.C()
}

// Fire is called when C() delivers. It returns the pending text, if any.
func (d *Debouncer) Fire() (string, bool) {
	if !d.pending {
		d.stopTimer()
		return "", false
	}
	return d.take(), true
}

// Flush emits the pending text immediately. Without pending text it does nothing.
func (d *Debouncer) Flush() (string, bool) {
	if !d.pending {
		return "", false
	}
	return d.take(), true
}

// Cancel drops the pending text and stops the timer.
// It reports whether anything was pending.
func (d *Debouncer) Cancel() bool {
	wasPending := d.pending
	d.stopTimer()
	d.pending = false
	d.text = ""
	return wasPending
}

// Pending returns the text waiting for the window to elapse
func (d *Debouncer) Pending() (string, bool) {
	return d.text, d.pending
}

func (d *Debouncer) take() string {
	text := d.text
	d.Cancel()
	return text
}

func (d *Debouncer) stopTimer() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
