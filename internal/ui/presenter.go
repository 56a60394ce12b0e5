package ui

import (
	"sync"

	tea "github.com/charmbracelet/bubbletea"

	"bazaar/internal/search"
)

// Forwarder is the search.Presenter of the TUI. The coordinator calls Present
// on its own loop; a single goroutine hands the outcomes to the program in
// the same order. Present never blocks, so the coordinator cannot stall on a
// busy program while the program is sending it keystrokes.
type Forwarder struct {
	mu     sync.Mutex
	queue  []search.Outcome
	closed bool

	wake    chan struct{}
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
}

var _ search.Presenter = (*Forwarder)(nil)

// NewForwarder creates an idle forwarder
func NewForwarder() *Forwarder {
	return &Forwarder{
		wake:    make(chan struct{}, 1),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Present queues o for the program. After Close it does nothing.
func (f *Forwarder) Present(o search.Outcome) {
	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		return
	}
	f.queue = append(f.queue, o)
	f.mu.Unlock()

	select {
	case f.wake <- struct{}{}:
	default:
	}
}

// Start delivers queued outcomes through send until Close. Pass tea.Program.Send.
func (f *Forwarder) Start(send func(tea.Msg)) {
	go func() {
		defer close(f.stopped)
		for {
			select {
			case <-f.wake:
			case <-f.done:
				return
			}
			for {
				o, ok := f.pop()
				if !ok {
					break
				}
				send(OutcomeMsg{Outcome: o})
			}
		}
	}()
}

func (f *Forwarder) pop() (search.Outcome, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || len(f.queue) == 0 {
		return search.Outcome{}, false
	}
	o := f.queue[0]
	f.queue[0] = search.Outcome{}
	f.queue = f.queue[1:]
	return o, true
}

// Close stops delivery. Outcomes still queued are dropped.
func (f *Forwarder) Close() {
	f.once.Do(func() {
		f.mu.Lock()
		f.closed = true
		f.queue = nil
		f.mu.Unlock()
		close(f.done)
	})
}

// Wait blocks until the delivery goroutine started by Start has exited
func (f *Forwarder) Wait() {
	<-f.stopped
}
