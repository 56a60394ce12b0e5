package search

import (
	"context"
	"errors"
	"strings"
	"time"

	"bazaar/internal/domain"
)

// ErrClosed is returned by operations on a closed coordinator
var ErrClosed = errors.New("search coordinator closed")

// RequestID identifies a dispatched query. Zero means nothing has been dispatched.
type RequestID uint64

// OutcomeKind tells the presenter which of the three result shapes it got
type OutcomeKind int

const (
	OutcomeItems OutcomeKind = iota
	OutcomeEmpty
	OutcomeFailure
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeItems:
		return "items"
	case OutcomeEmpty:
		return "empty"
	case OutcomeFailure:
		return "failure"
	default:
		return "unknown"
	}
}

// Outcome is the answer to one query, tagged with the RequestID it answers
type Outcome struct {
	ID      RequestID
	Query   string
	Kind    OutcomeKind
	Items   []domain.Listing // set for OutcomeItems only
	Err     error            // set for OutcomeFailure only
	Elapsed time.Duration    // provider time; zero for the empty short-circuit

	epoch uint64
}

// newOutcome builds the outcome for a finished provider call.
// A successful answer without items becomes OutcomeEmpty.
func newOutcome(id RequestID, epoch uint64, query string, items []domain.Listing, err error) Outcome {
	o := Outcome{ID: id, Query: query, epoch: epoch}
	switch {
	case err != nil:
		o.Kind = OutcomeFailure
		o.Err = err
	case len(items) == 0:
		o.Kind = OutcomeEmpty
	default:
		o.Kind = OutcomeItems
		o.Items = items
	}
	return o
}

// isEmptyQuery reports whether text takes the empty short-circuit
func isEmptyQuery(text string) bool {
	return strings.TrimSpace(text) == ""
}

// Provider executes a query against the backend. Implementations may be
// slow and may ignore ctx; the coordinator only relies on the eventual answer.
type Provider interface {
	Search(ctx context.Context, text string) ([]domain.Listing, error)
}

// ProviderFunc adapts an ordinary function to the Provider interface
type ProviderFunc func(ctx context.Context, text string) ([]domain.Listing, error)

// Search calls f(ctx, text)
func (f ProviderFunc) Search(ctx context.Context, text string) ([]domain.Listing, error) {
	return f(ctx, text)
}

// Presenter receives every outcome that passes the result gate. It is called
// on the coordinator loop and must not call back into the coordinator synchronously.
type Presenter interface {
	Present(Outcome)
}

// PresenterFunc adapts an ordinary function to the Presenter interface
type PresenterFunc func(Outcome)

// Present calls f(o)
func (f PresenterFunc) Present(o Outcome) {
	f(o)
}

// Snapshot is a point-in-time copy of the coordinator state
type Snapshot struct {
	CurrentID   RequestID
	Pending     bool   // a debounce timer is running
	PendingText string // text the timer will emit
	Outstanding int    // dispatches whose outcome may still be presented
	Epoch       uint64 // bumped every time outstanding work is fenced off
}
