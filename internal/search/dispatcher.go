package search

import (
	"context"
	"fmt"
	"sync"

	"k8s.io/utils/clock"

	"bazaar/internal/domain"
)

// Dispatcher runs provider calls off the coordinator loop and sends each
// tagged outcome back over results.
type Dispatcher struct {
	provider Provider
	clock    clock.PassiveClock
	results  chan<- Outcome
	stop     <-chan struct{}
	wg       sync.WaitGroup
}

// NewDispatcher creates a dispatcher. Outcomes are delivered on results until stop is closed.
func NewDispatcher(provider Provider, clk clock.PassiveClock, results chan<- Outcome, stop <-chan struct{}) *Dispatcher {
	if clk == nil {
		clk = clock.RealClock{}
	}
	return &Dispatcher{
		provider: provider,
		clock:    clk,
		results:  results,
		stop:     stop,
	}
}

// Dispatch starts the provider call for text. It returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, id RequestID, epoch uint64, text string) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		start := d.clock.Now()
		items, err := d.call(ctx, text)
		o := newOutcome(id, epoch, text, items, err)
		o.Elapsed = d.clock.Since(start)

		select {
		case d.results <- o:
		case <-d.stop:
		}
	}()
}

// Wait blocks until every started provider call has returned
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// call invokes the provider, turning a panic into a failure outcome
func (d *Dispatcher) call(ctx context.Context, text string) (items []domain.Listing, err error) {
	defer func() {
		if r := recover(); r != nil {
			items = nil
			err = fmt.Errorf("search provider panicked: %v", r)
		}
	}()
	return d.provider.Search(ctx, text)
}
