package ui

import (
	"bazaar/internal/search"
)

// OutcomeMsg carries a presented search outcome into the program
type OutcomeMsg struct {
	Outcome search.Outcome
}

// pagerMsg contains the result of showing a listing in the pager
type pagerMsg struct {
	err error
}
