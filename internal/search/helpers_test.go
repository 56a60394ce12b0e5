package search

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	testingclock "k8s.io/utils/clock/testing"

	"bazaar/internal/domain"
)

const waitTimeout = 2 * time.Second

// providerCall is one pending invocation of scriptedProvider
type providerCall struct {
	text  string
	ctx   context.Context
	reply chan providerReply
}

type providerReply struct {
	items []domain.Listing
	err   error
}

func (c *providerCall) respond(items ...domain.Listing) {
	select {
	case c.reply <- providerReply{items: items}:
	default:
	}
}

func (c *providerCall) fail(err error) {
	select {
	case c.reply <- providerReply{err: err}:
	default:
	}
}

// scriptedProvider blocks every call until the test answers it. It ignores
// ctx on purpose: the coordinator must not rely on providers stopping.
type scriptedProvider struct {
	calls chan *providerCall

	mu  sync.Mutex
	all []*providerCall
}

func newScriptedProvider(t *testing.T) *scriptedProvider {
	p := &scriptedProvider{calls: make(chan *providerCall, 64)}
	t.Cleanup(p.releaseAll)
	return p
}

func (p *scriptedProvider) Search(ctx context.Context, text string) ([]domain.Listing, error) {
	c := &providerCall{text: text, ctx: ctx, reply: make(chan providerReply, 1)}
	p.mu.Lock()
	p.all = append(p.all, c)
	p.mu.Unlock()

	p.calls <- c
	r := <-c.reply
	return r.items, r.err
}

func (p *scriptedProvider) next(t *testing.T) *providerCall {
	t.Helper()
	select {
	case c := <-p.calls:
		return c
	case <-time.After(waitTimeout):
		t.Fatal("expected a provider call")
		return nil
	}
}

func (p *scriptedProvider) expectNoCall(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case c := <-p.calls:
		t.Fatalf("unexpected provider call for %q", c.text)
	case <-time.After(within):
	}
}

func (p *scriptedProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.all)
}

func (p *scriptedProvider) releaseAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, c := range p.all {
		c.respond()
	}
}

// recorder collects presented outcomes
type recorder struct {
	ch chan Outcome
}

func newRecorder() *recorder {
	return &recorder{ch: make(chan Outcome, 64)}
}

func (r *recorder) Present(o Outcome) {
	r.ch <- o
}

func (r *recorder) next(t *testing.T) Outcome {
	t.Helper()
	select {
	case o := <-r.ch:
		return o
	case <-time.After(waitTimeout):
		t.Fatal("expected a presented outcome")
		return Outcome{}
	}
}

func (r *recorder) expectNothing(t *testing.T, within time.Duration) {
	t.Helper()
	select {
	case o := <-r.ch:
		t.Fatalf("unexpected presentation: id=%d query=%q kind=%s", o.ID, o.Query, o.Kind)
	case <-time.After(within):
	}
}

func newFakeClock() *testingclock.FakeClock {
	return testingclock.NewFakeClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC))
}

func newTestCoordinator(t *testing.T, p Provider, r Presenter, opts ...Option) *Coordinator {
	t.Helper()
	c := New(p, r, opts...)
	t.Cleanup(c.Close)
	return c
}

// settle waits until the loop has applied every command sent so far
func settle(t *testing.T, c *Coordinator) Snapshot {
	t.Helper()
	s, err := c.Snapshot()
	require.NoError(t, err)
	return s
}

func listing(title string) domain.Listing {
	return domain.Listing{ID: title, Title: title, PriceCents: 1000}
}
