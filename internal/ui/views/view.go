package views

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/lipgloss"

	"bazaar/internal/domain"
)

// ResultState says what the result area shows
type ResultState int

const (
	ResultIdle ResultState = iota // nothing typed yet
	ResultItems
	ResultEmpty
	ResultFailure
)

// ViewState contains all the state needed for rendering
type ViewState struct {
	Width          int
	Height         int
	Input          string // rendered text input
	Searching      bool
	Spinner        string // rendered spinner frame
	State          ResultState
	Query          string // the text the shown results answer
	Listings       []domain.Listing
	Err            error
	Elapsed        time.Duration
	SelectedIndex  int
	ViewportOffset int
	StatusMessage  string
	HelpModel      help.Model
	Keys           help.KeyMap
}

// chromeLines is the height taken by everything except the result rows:
// padding, title, input, status with margins, scroll hint and help.
const chromeLines = 10

// Renderer handles all view rendering
type Renderer struct {
	styles        *Styles
	listingRender *ListingRenderer
}

// NewRenderer creates a new renderer
func NewRenderer() *Renderer {
	styles := NewStyles()
	return &Renderer{
		styles:        styles,
		listingRender: NewListingRenderer(styles),
	}
}

// Styles returns the styles in use
func (r *Renderer) Styles() *Styles {
	return r.styles
}

// Listings returns the listing renderer
func (r *Renderer) Listings() *ListingRenderer {
	return r.listingRender
}

// ViewportHeight returns how many result rows fit in a terminal of the given height
func ViewportHeight(height int) int {
	return max(height-chromeLines, 3)
}

// Render produces the complete view
func (r *Renderer) Render(state ViewState) string {
	content := &strings.Builder{}

	// Title line with the searching indicator right-aligned
	logo := r.styles.Title.Render("bazaar")
	titleLine := logo
	if state.Searching {
		indicator := r.styles.StatusLoading.Render(state.Spinner + " searching")
		padding := state.Width - 4 - lipgloss.Width(logo) - lipgloss.Width(indicator)
		if padding < 1 {
			padding = 1
		}
		titleLine = logo + strings.Repeat(" ", padding) + indicator
	}
	content.WriteString(titleLine)
	content.WriteString("\n\n")

	content.WriteString(state.Input)
	content.WriteString("\n")

	content.WriteString(r.styles.Status.Render(r.renderStatus(state)))
	content.WriteString("\n")

	if state.State == ResultItems {
		content.WriteString(r.renderListings(state))
	}

	content.WriteString("\n")
	content.WriteString(r.styles.Help.Render(state.HelpModel.View(state.Keys)))

	return r.styles.Main.Render(content.String())
}

func (r *Renderer) renderStatus(state ViewState) string {
	if state.StatusMessage != "" {
		return state.StatusMessage
	}

	switch state.State {
	case ResultItems:
		noun := "results"
		if len(state.Listings) == 1 {
			noun = "result"
		}
		return r.styles.StatusSuccess.Render(fmt.Sprintf("%d %s for %q", len(state.Listings), noun, state.Query)) +
			r.styles.Dim.Render(fmt.Sprintf("  %s", state.Elapsed.Round(time.Millisecond)))
	case ResultEmpty:
		if strings.TrimSpace(state.Query) == "" {
			return r.styles.StatusLoading.Render("Type to search listings")
		}
		return r.styles.StatusEmpty.Render(fmt.Sprintf("No results for %q", state.Query))
	case ResultFailure:
		return r.styles.StatusError.Render(fmt.Sprintf("Search failed for %q: %v", state.Query, state.Err))
	default:
		return r.styles.StatusLoading.Render("Type to search listings")
	}
}

func (r *Renderer) renderListings(state ViewState) string {
	rows := ViewportHeight(state.Height)
	end := min(state.ViewportOffset+rows, len(state.Listings))
	width := state.Width - 4

	var b strings.Builder
	for i := state.ViewportOffset; i < end; i++ {
		b.WriteString(r.listingRender.RenderRow(state.Listings[i], i == state.SelectedIndex, state.Query, width))
		b.WriteString("\n")
	}

	if hidden := len(state.Listings) - end; hidden > 0 || state.ViewportOffset > 0 {
		b.WriteString(r.styles.Scroll.Render(fmt.Sprintf("%d-%d of %d", state.ViewportOffset+1, end, len(state.Listings))))
		b.WriteString("\n")
	}
	return b.String()
}
