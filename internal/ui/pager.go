package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/noborus/ov/oviewer"

	"bazaar/internal/catalog"
	"bazaar/internal/domain"
	"bazaar/internal/ui/views"
)

// Pager shows a listing full screen
type Pager interface {
	Show(l domain.Listing) error
}

// ListingSource loads the stored version of a listing
type ListingSource interface {
	Get(ctx context.Context, id string) (domain.Listing, error)
}

// ListingPager shows listing details in the ov pager
type ListingPager struct {
	program  *tea.Program // reference to Bubble Tea program for terminal management
	renderer *views.ListingRenderer
	source   ListingSource
}

// NewListingPager creates a pager rendering with renderer. Listings are
// reloaded from source so the detail reflects edits made since the search;
// a nil source shows the listing as it was found.
func NewListingPager(renderer *views.ListingRenderer, source ListingSource) *ListingPager {
	return &ListingPager{
		renderer: renderer,
		source:   source,
	}
}

// SetProgram sets the program whose terminal is borrowed while the pager runs
func (p *ListingPager) SetProgram(program *tea.Program) {
	p.program = program
}

// Show renders l and runs ov until the user leaves it
func (p *ListingPager) Show(l domain.Listing) error {
	if p.program == nil {
		return errors.New("program not set")
	}

	detail, err := p.detail(context.Background(), l)
	if err != nil {
		return err
	}

	// Release terminal control to run ov
	if err := p.program.ReleaseTerminal(); err != nil {
		return err
	}

	// Ensure terminal is restored even if ov fails
	defer func() {
		// Small delay to ensure ov has fully exited before restoring terminal
		time.Sleep(100 * time.Millisecond)
		_ = p.program.RestoreTerminal()
	}()

	root, err := oviewer.NewRoot(strings.NewReader(detail))
	if err != nil {
		return err
	}

	// Don't write the document back to our screen on exit
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	return root.Run()
}

// detail renders the stored version of l
func (p *ListingPager) detail(ctx context.Context, l domain.Listing) (string, error) {
	if p.source != nil {
		fresh, err := p.source.Get(ctx, l.ID)
		if errors.Is(err, catalog.ErrNotFound) {
			return "", fmt.Errorf("listing %q is no longer available", l.Title)
		}
		if err != nil {
			return "", err
		}
		l = fresh
	}
	return p.renderer.RenderDetail(l), nil
}

// showListing runs the pager off the update loop
func showListing(pager Pager, l domain.Listing) tea.Cmd {
	return func() tea.Msg {
		return pagerMsg{err: pager.Show(l)}
	}
}
