package tui

import (
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/search"
)

// Tab identifies a top-level browser tab
type Tab int

const (
	TabUpcoming Tab = iota
	TabPopular
	TabFavorites
	tabCount
)

func (t Tab) String() string {
	switch t {
	case TabUpcoming:
		return "Upcoming"
	case TabPopular:
		return "Popular"
	default:
		return "Favorites"
	}
}

// listKind returns the catalog list behind a tab (false for favorites)
func (t Tab) listKind() (domain.ListKind, bool) {
	switch t {
	case TabUpcoming:
		return domain.ListUpcoming, true
	case TabPopular:
		return domain.ListPopular, true
	}
	return "", false
}

// TabFor maps a list kind name to its tab; unknown names open Upcoming
func TabFor(name string) Tab {
	switch name {
	case string(domain.ListPopular):
		return TabPopular
	case "favorites":
		return TabFavorites
	}
	return TabUpcoming
}

const (
	tickInterval  = 100 * time.Millisecond
	statusTimeout = 4 * time.Second
)

// Model is the main Bubble Tea model for the application
type Model struct {
	// Core
	Queries  domain.LibraryQueries
	Commands domain.LibraryCommands
	Search   *search.Service

	results     <-chan domain.OpResult
	connChanges <-chan bool
	imageBase   string

	// Browser state
	Tab         Tab
	cursors     [tabCount]int
	ShowDetails bool
	DetailsID   int

	// Filter
	Filtering bool
	filter    textinput.Model

	// Help
	ShowHelp bool
	help     help.Model

	// Dimensions
	Width  int
	Height int
	Ready  bool

	// UI state
	StatusMsg    string
	StatusIsErr  bool
	SpinnerFrame int
}

// Options configures a Model
type Options struct {
	Queries     domain.LibraryQueries
	Commands    domain.LibraryCommands
	Search      *search.Service
	Results     <-chan domain.OpResult
	ConnChanges <-chan bool
	ImageBase   string
	DefaultTab  Tab
}

// NewModel creates a new application model
func NewModel(opts Options) Model {
	ti := textinput.New()
	ti.Placeholder = "filter titles"
	ti.Prompt = "/ "
	ti.CharLimit = 64

	return Model{
		Queries:     opts.Queries,
		Commands:    opts.Commands,
		Search:      opts.Search,
		results:     opts.Results,
		connChanges: opts.ConnChanges,
		imageBase:   opts.ImageBase,
		Tab:         opts.DefaultTab,
		filter:      ti,
		help:        help.New(),
	}
}

// Init loads favorites and the first page of every list
func (m Model) Init() tea.Cmd {
	m.Commands.LoadFavorites()
	for _, kind := range domain.ListKinds() {
		m.Commands.RequestList(kind, 1, false)
	}

	cmds := []tea.Cmd{TickCmd(tickInterval)}
	if m.results != nil {
		cmds = append(cmds, WaitForResultCmd(m.results))
	}
	if m.connChanges != nil {
		cmds = append(cmds, WaitForConnectivityCmd(m.connChanges))
	}
	return tea.Batch(cmds...)
}

// Update handles all messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.help.Width = msg.Width
		m.Ready = true
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyMsg(msg)

	case TickMsg:
		m.SpinnerFrame++
		return m, TickCmd(tickInterval)

	case OpResultMsg:
		var cmd tea.Cmd
		if !msg.Result.OK() {
			m.StatusMsg = msg.Result.Err
			m.StatusIsErr = true
			cmd = ClearStatusCmd(statusTimeout)
		}
		m.clampCursor()
		return m, tea.Batch(cmd, WaitForResultCmd(m.results))

	case ConnectivityMsg:
		if msg.Connected {
			m.StatusMsg = "back online"
			m.StatusIsErr = false
		} else {
			m.StatusMsg = "offline: showing cached data"
			m.StatusIsErr = true
		}
		return m, tea.Batch(ClearStatusCmd(statusTimeout), WaitForConnectivityCmd(m.connChanges))

	case ClearStatusMsg:
		m.StatusMsg = ""
		m.StatusIsErr = false
		return m, nil
	}

	return m, nil
}

func (m Model) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.Filtering {
		return m.handleFilterKey(msg)
	}

	switch {
	case key.Matches(msg, Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, Keys.Help):
		m.ShowHelp = !m.ShowHelp

	case key.Matches(msg, Keys.Back):
		if m.ShowDetails {
			m.ShowDetails = false
		} else if m.filter.Value() != "" {
			m.filter.SetValue("")
			m.cursors[m.Tab] = 0
		}

	case key.Matches(msg, Keys.Filter):
		if !m.ShowDetails {
			m.Filtering = true
			cmd := m.filter.Focus()
			return m, cmd
		}

	case key.Matches(msg, Keys.Favorite):
		m.toggleFavorite()

	case key.Matches(msg, Keys.ToggleOffline):
		m.Commands.SetConnectivity(!m.Queries.Connected())

	case m.ShowDetails:
		if key.Matches(msg, Keys.Refresh) {
			m.Commands.RequestDetails(m.DetailsID)
		}

	case key.Matches(msg, Keys.NextTab):
		m.switchTab((m.Tab + 1) % tabCount)

	case key.Matches(msg, Keys.PrevTab):
		m.switchTab((m.Tab + tabCount - 1) % tabCount)

	case key.Matches(msg, Keys.Up):
		if m.cursors[m.Tab] > 0 {
			m.cursors[m.Tab]--
		}

	case key.Matches(msg, Keys.Down):
		if m.cursors[m.Tab] < len(m.rows())-1 {
			m.cursors[m.Tab]++
		}
		m.maybeLoadMore()

	case key.Matches(msg, Keys.Home):
		m.cursors[m.Tab] = 0

	case key.Matches(msg, Keys.End):
		m.cursors[m.Tab] = max(0, len(m.rows())-1)
		m.maybeLoadMore()

	case key.Matches(msg, Keys.Enter):
		m.openDetails()

	case key.Matches(msg, Keys.Refresh):
		// Favorites are only loaded at startup
		if kind, ok := m.Tab.listKind(); ok {
			m.Commands.RequestList(kind, 1, true)
		}

	case key.Matches(msg, Keys.LoadMore):
		if kind, ok := m.Tab.listKind(); ok {
			st := m.Queries.List(kind)
			if st.HasMore && !st.Loading {
				m.Commands.RequestList(kind, st.Page+1, false)
			}
		}
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		m.Filtering = false
		m.filter.Blur()
		return m, nil
	case tea.KeyEsc:
		m.Filtering = false
		m.filter.Blur()
		m.filter.SetValue("")
		m.cursors[m.Tab] = 0
		return m, nil
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	m.cursors[m.Tab] = 0
	return m, cmd
}

// row is one rendered entry of the current tab
type row struct {
	Movie          domain.Movie
	MatchedIndexes []int
}

// rows returns the movies of the current tab, filtered when a filter is set
func (m Model) rows() []row {
	query := m.filter.Value()
	kind, isList := m.Tab.listKind()

	var out []row
	switch {
	case isList && query != "" && m.Search != nil:
		for _, r := range m.Search.FilterLists(query, []domain.ListKind{kind}) {
			out = append(out, row{Movie: r.Movie, MatchedIndexes: r.MatchedIndexes})
		}
	case isList:
		for _, mv := range m.Queries.List(kind).Movies {
			out = append(out, row{Movie: mv})
		}
	case m.Search != nil:
		for _, mv := range m.Search.FilterFavorites(query) {
			out = append(out, row{Movie: mv})
		}
	default:
		for _, mv := range m.Queries.Favorites() {
			out = append(out, row{Movie: mv})
		}
	}
	return out
}

// selected returns the movie under the cursor
func (m Model) selected() (domain.Movie, bool) {
	rows := m.rows()
	c := m.cursors[m.Tab]
	if c < 0 || c >= len(rows) {
		return domain.Movie{}, false
	}
	return rows[c].Movie, true
}

func (m *Model) switchTab(t Tab) {
	m.Tab = t
	m.filter.SetValue("")
	m.clampCursor()
}

func (m *Model) clampCursor() {
	n := len(m.rows())
	if m.cursors[m.Tab] >= n {
		m.cursors[m.Tab] = max(0, n-1)
	}
}

// maybeLoadMore requests the next page when the cursor reaches the end of an unfiltered list
func (m *Model) maybeLoadMore() {
	kind, ok := m.Tab.listKind()
	if !ok || m.filter.Value() != "" {
		return
	}
	st := m.Queries.List(kind)
	if m.cursors[m.Tab] >= len(st.Movies)-1 && st.HasMore && !st.Loading && st.Page > 0 {
		m.Commands.RequestList(kind, st.Page+1, false)
	}
}

func (m *Model) openDetails() {
	mv, ok := m.selected()
	if !ok {
		return
	}
	m.ShowDetails = true
	m.DetailsID = mv.ID
	if _, cached := m.Queries.Details(mv.ID); !cached {
		m.Commands.RequestDetails(mv.ID)
	}
}

func (m *Model) toggleFavorite() {
	if m.ShowDetails {
		if d, ok := m.Queries.Details(m.DetailsID); ok {
			m.Commands.ToggleFavorite(d.Summary())
			return
		}
	}
	if mv, ok := m.selected(); ok {
		m.Commands.ToggleFavorite(mv)
		m.clampCursor()
	}
}
