package ui

import (
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"bazaar/internal/catalog"
	"bazaar/internal/domain"
	"bazaar/internal/search"
	"bazaar/internal/ui/views"
)

// Coordinator is the part of search.Coordinator the screen drives
type Coordinator interface {
	Submit(text string)
	Flush()
	Close()
}

var _ Coordinator = (*search.Coordinator)(nil)

// Model represents the search screen
type Model struct {
	coord    Coordinator
	pager    Pager
	logger   *zap.Logger
	renderer *views.Renderer

	width   int
	height  int
	input   textinput.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	// Latest presented outcome
	state    views.ResultState
	query    string
	listings []domain.Listing
	err      error
	elapsed  time.Duration

	selected int
	offset   int
	awaiting bool   // the text in the box has not been answered yet
	status   string // transient message, cleared by the next keystroke

	teardown sync.Once
}

// NewModel creates the search screen. pager may be nil to disable the detail view.
func NewModel(coord Coordinator, pager Pager, renderer *views.Renderer, logger *zap.Logger) *Model {
	if renderer == nil {
		renderer = views.NewRenderer()
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ti := textinput.New()
	ti.Placeholder = "search listings"
	ti.Prompt = "› "
	ti.PromptStyle = renderer.Styles().Prompt
	ti.CharLimit = catalog.MaxQueryLength
	ti.Focus()

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

	return &Model{
		coord:    coord,
		pager:    pager,
		logger:   logger,
		renderer: renderer,
		input:    ti,
		spinner:  sp,
		help:     help.New(),
		keys:     defaultKeyMap(),
		state:    views.ResultIdle,
	}
}

// Init returns an initial command
func (m *Model) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.spinner.Tick)
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.input.Width = max(msg.Width-8, 10)
		m.scrollToSelection()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case OutcomeMsg:
		m.present(msg.Outcome)
		return m, nil

	case pagerMsg:
		if msg.err != nil {
			m.logger.Warn("pager failed", zap.Error(msg.err))
			m.status = m.renderer.Styles().StatusError.Render("Could not open listing: " + msg.err.Error())
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.Teardown()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveSelection(-1)
		return m, nil

	case key.Matches(msg, m.keys.Down):
		m.moveSelection(1)
		return m, nil

	case key.Matches(msg, m.keys.Open):
		l, ok := m.SelectedListing()
		if !ok || m.pager == nil {
			return m, nil
		}
		return m, showListing(m.pager, l)

	case key.Matches(msg, m.keys.Search):
		m.coord.Flush()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		if m.input.Value() == "" {
			m.Teardown()
			return m, tea.Quit
		}
		m.input.SetValue("")
		m.submit("")
		return m, nil
	}

	prev := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if text := m.input.Value(); text != prev {
		m.submit(text)
	}
	return m, cmd
}

// submit hands the current box text to the coordinator
func (m *Model) submit(text string) {
	m.coord.Submit(text)
	m.awaiting = strings.TrimSpace(text) != ""
}

// present shows an outcome that passed the result gate
func (m *Model) present(o search.Outcome) {
	m.query = o.Query
	m.elapsed = o.Elapsed
	m.listings = nil
	m.err = nil

	switch o.Kind {
	case search.OutcomeItems:
		m.state = views.ResultItems
		m.listings = o.Items
	case search.OutcomeEmpty:
		m.state = views.ResultEmpty
	case search.OutcomeFailure:
		m.state = views.ResultFailure
		m.err = o.Err
	}

	m.selected = 0
	m.offset = 0
	if o.Query == m.input.Value() {
		m.awaiting = false
	}
}

func (m *Model) moveSelection(delta int) {
	if m.state != views.ResultItems || len(m.listings) == 0 {
		return
	}
	m.selected = min(max(m.selected+delta, 0), len(m.listings)-1)
	m.scrollToSelection()
}

func (m *Model) scrollToSelection() {
	rows := views.ViewportHeight(m.height)
	if m.selected < m.offset {
		m.offset = m.selected
	}
	if m.selected >= m.offset+rows {
		m.offset = m.selected - rows + 1
	}
}

// SelectedListing returns the highlighted result, if any
func (m *Model) SelectedListing() (domain.Listing, bool) {
	if m.state != views.ResultItems || m.selected >= len(m.listings) {
		return domain.Listing{}, false
	}
	return m.listings[m.selected], true
}

// Teardown cancels all search work. Safe to call more than once.
func (m *Model) Teardown() {
	m.teardown.Do(func() {
		m.coord.Close()
	})
}

// View renders the UI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	return m.renderer.Render(views.ViewState{
		Width:          m.width,
		Height:         m.height,
		Input:          m.input.View(),
		Searching:      m.awaiting,
		Spinner:        m.spinner.View(),
		State:          m.state,
		Query:          m.query,
		Listings:       m.listings,
		Err:            m.err,
		Elapsed:        m.elapsed,
		SelectedIndex:  m.selected,
		ViewportOffset: m.offset,
		StatusMessage:  m.status,
		HelpModel:      m.help,
		Keys:           m.keys,
	})
}
