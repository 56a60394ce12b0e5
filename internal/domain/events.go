package domain

import "time"

// EventType represents the type of domain event
type EventType string

// Event types
const (
	EventSearchDispatched EventType = "SearchDispatched"
	EventSearchPresented  EventType = "SearchPresented"
	EventSearchDiscarded  EventType = "SearchDiscarded"
	EventSearchCancelled  EventType = "SearchCancelled"
	EventConfigLoaded     EventType = "ConfigLoaded"
	EventCatalogSeeded    EventType = "CatalogSeeded"
	EventError            EventType = "Error"
)

// DomainEvent is the interface for all domain events
type DomainEvent interface {
	Type() EventType
}

// SearchDispatchedEvent is emitted when a query is handed to the search provider
type SearchDispatchedEvent struct {
	RequestID uint64
	Query     string
}

func (e SearchDispatchedEvent) Type() EventType { return EventSearchDispatched }

// SearchPresentedEvent is emitted when an outcome passes the result gate
type SearchPresentedEvent struct {
	RequestID uint64
	Query     string
	Kind      string // "items", "empty" or "failure"
	Count     int
	Elapsed   time.Duration // provider time, zero for the empty short-circuit
}

func (e SearchPresentedEvent) Type() EventType { return EventSearchPresented }

// SearchDiscardedEvent is emitted when a superseded or cancelled outcome is dropped
type SearchDiscardedEvent struct {
	RequestID uint64
	CurrentID uint64
	Query     string
	Elapsed   time.Duration
}

func (e SearchDiscardedEvent) Type() EventType { return EventSearchDiscarded }

// SearchCancelledEvent is emitted when outstanding dispatches are fenced off
type SearchCancelledEvent struct {
	Outstanding  int  // dispatches that can no longer be presented
	TimerPending bool // whether a debounce timer was dropped
}

func (e SearchCancelledEvent) Type() EventType { return EventSearchCancelled }

// ConfigLoadedEvent is emitted when configuration is loaded
type ConfigLoadedEvent struct {
	Path string // empty when defaults were used
}

func (e ConfigLoadedEvent) Type() EventType { return EventConfigLoaded }

// CatalogSeededEvent is emitted after sample listings are written to the catalog
type CatalogSeededEvent struct {
	Inserted int
}

func (e CatalogSeededEvent) Type() EventType { return EventCatalogSeeded }

// ErrorEvent is emitted when an error occurs
type ErrorEvent struct {
	Message string
	Err     error
}

func (e ErrorEvent) Type() EventType { return EventError }
