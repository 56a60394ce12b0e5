package search

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"
	"k8s.io/utils/clock"

	"bazaar/internal/eventbus"
)

type commandKind int

const (
	cmdSubmit commandKind = iota
	cmdFlush
	cmdCancelAll
	cmdSnapshot
)

type command struct {
	kind  commandKind
	text  string
	reply chan<- Snapshot
}

// Coordinator turns a stream of keystrokes into at most one presented
// result per query, never letting an older query's answer overwrite a newer one.
type Coordinator struct {
	// Configuration, fixed after New
	window  time.Duration
	maxWait time.Duration
	clock   clock.Clock
	logger  *zap.Logger
	bus     eventbus.EventBus

	// Loop plumbing
	cmds      chan command
	results   chan Outcome
	stop      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	ctx       context.Context
	cancel    context.CancelFunc

	// Owned by the loop goroutine
	debouncer  *Debouncer
	seq        *Sequencer
	guard      *Guard
	gate       *Gate
	dispatcher *Dispatcher
}

// New creates a coordinator and starts its loop. Call Close on teardown.
func New(provider Provider, presenter Presenter, opts ...Option) *Coordinator {
	c := &Coordinator{
		window:  DefaultDebounce,
		clock:   clock.RealClock{},
		logger:  zap.NewNop(),
		cmds:    make(chan command, 64),
		results: make(chan Outcome),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}

	c.ctx, c.cancel = context.WithCancel(context.Background())
	c.debouncer = NewDebouncer(c.clock, c.window, c.maxWait)
	c.seq = &Sequencer{}
	c.guard = NewGuard()
	c.gate = NewGate(c.seq, c.guard, safePresenter{presenter: presenter, logger: c.logger})
	c.dispatcher = NewDispatcher(provider, c.clock, c.results, c.stop)

	go c.run()

	return c
}

// Submit records the latest input text. Non-empty text is dispatched once
// the debounce window passes without another Submit; empty text is
// presented as "no results" right away.
func (c *Coordinator) Submit(text string) {
	c.send(command{kind: cmdSubmit, text: text})
}

// Flush dispatches the pending text without waiting for the window
func (c *Coordinator) Flush() {
	c.send(command{kind: cmdFlush})
}

// CancelAll drops the pending debounce timer and makes sure no outstanding
// dispatch is ever presented. The coordinator remains usable.
func (c *Coordinator) CancelAll() {
	c.send(command{kind: cmdCancelAll})
}

// Snapshot returns a copy of the coordinator state. Because it round-trips
// through the loop, every command sent before it has been applied.
func (c *Coordinator) Snapshot() (Snapshot, error) {
	reply := make(chan Snapshot, 1)
	select {
	case c.cmds <- command{kind: cmdSnapshot, reply: reply}:
	case <-c.done:
		return Snapshot{}, ErrClosed
	}
	select {
	case s := <-reply:
		return s, nil
	case <-c.done:
		return Snapshot{}, ErrClosed
	}
}

// Close cancels everything and stops the loop. It does not wait for
// providers that ignore cancellation; their answers are discarded.
func (c *Coordinator) Close() {
	c.closeOnce.Do(func() {
		close(c.stop)
	})
	<-c.done
}

// Done is closed once the loop has stopped
func (c *Coordinator) Done() <-chan struct{} {
	return c.done
}

func (c *Coordinator) send(cmd command) {
	select {
	case c.cmds <- cmd:
	case <-c.done:
	}
}

// run is the single logical thread that owns all coordinator state
func (c *Coordinator) run() {
	defer close(c.done)

	for {
		select {
		case cmd := <-c.cmds:
			c.handle(cmd)

		case <-c.debouncer.C():
			if text, ok := c.debouncer.Fire(); ok {
				c.emit(text)
			}

		case o := <-c.results:
			c.resolve(o)

		case <-c.stop:
			c.cancelAll()
			c.cancel()
			return
		}
	}
}

func (c *Coordinator) handle(cmd command) {
	switch cmd.kind {
	case cmdSubmit:
		if text, ok := c.debouncer.Submit(cmd.text); ok {
			c.emit(text)
		}

	case cmdFlush:
		if text, ok := c.debouncer.Flush(); ok {
			c.emit(text)
		}

	case cmdCancelAll:
		c.cancelAll()

	case cmdSnapshot:
		text, pending := c.debouncer.Pending()
		cmd.reply <- Snapshot{
			CurrentID:   c.seq.Current(),
			Pending:     pending,
			PendingText: text,
			Outstanding: c.guard.Outstanding(),
			Epoch:       c.guard.Epoch(),
		}
	}
}

// emit handles a "query ready" event from the debouncer
func (c *Coordinator) emit(text string) {
	if isEmptyQuery(text) {
		// Outstanding dispatches answer text that is no longer in the box
		if n := c.guard.Outstanding(); n > 0 {
			c.guard.CancelAll()
			c.publish(eventbus.SearchCancelledEvent{Outstanding: n})
		}
		c.resolve(Outcome{
			ID:    c.seq.Current(),
			Query: text,
			Kind:  OutcomeEmpty,
			epoch: c.guard.Epoch(),
		})
		return
	}

	id := c.seq.Next()
	c.guard.Supersede(id)

	ctx, cancel := context.WithCancel(c.ctx)
	c.guard.Track(id, cancel)

	c.logger.Debug("dispatching search", zap.Uint64("request_id", uint64(id)), zap.String("query", text))
	c.publish(eventbus.SearchDispatchedEvent{RequestID: uint64(id), Query: text})

	c.dispatcher.Dispatch(ctx, id, c.guard.Epoch(), text)
}

// resolve routes an outcome through the gate
func (c *Coordinator) resolve(o Outcome) {
	c.guard.Done(o.ID)

	if !c.gate.Accept(o) {
		// Superseded answers are expected, not errors
		c.logger.Debug("discarding stale search outcome",
			zap.Uint64("request_id", uint64(o.ID)),
			zap.Uint64("current_id", uint64(c.seq.Current())),
			zap.String("query", o.Query))
		c.publish(eventbus.SearchDiscardedEvent{
			RequestID: uint64(o.ID),
			CurrentID: uint64(c.seq.Current()),
			Query:     o.Query,
			Elapsed:   o.Elapsed,
		})
		return
	}

	if o.Kind == OutcomeFailure {
		c.logger.Warn("search failed", zap.Uint64("request_id", uint64(o.ID)), zap.String("query", o.Query), zap.Error(o.Err))
	}
	c.publish(eventbus.SearchPresentedEvent{
		RequestID: uint64(o.ID),
		Query:     o.Query,
		Kind:      o.Kind.String(),
		Count:     len(o.Items),
		Elapsed:   o.Elapsed,
	})
}

func (c *Coordinator) cancelAll() {
	timerPending := c.debouncer.Cancel()
	n := c.guard.CancelAll()
	if n > 0 || timerPending {
		c.logger.Debug("cancelled pending search work", zap.Int("outstanding", n), zap.Bool("timer_pending", timerPending))
	}
	c.publish(eventbus.SearchCancelledEvent{Outstanding: n, TimerPending: timerPending})
}

func (c *Coordinator) publish(event eventbus.DomainEvent) {
	if c.bus != nil {
		c.bus.Publish(event)
	}
}

// safePresenter keeps a panicking presenter from killing the loop
type safePresenter struct {
	presenter Presenter
	logger    *zap.Logger
}

func (p safePresenter) Present(o Outcome) {
	if p.presenter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("search presenter panic",
				zap.Uint64("request_id", uint64(o.ID)),
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
		}
	}()
	p.presenter.Present(o)
}
