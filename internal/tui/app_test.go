package tui

import (
	"fmt"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/library"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/search"
	"github.com/mmcdole/marquee/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyCommands records triggers instead of running them
type spyCommands struct {
	mu        sync.Mutex
	lists     []string
	details   []int
	toggled   []int
	loads     int
	connected []bool
	st        *state.Store
}

func (s *spyCommands) RequestList(kind domain.ListKind, page int, refresh bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lists = append(s.lists, fmt.Sprintf("%s:%d", kind, page))
}

func (s *spyCommands) RequestDetails(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.details = append(s.details, id)
}

func (s *spyCommands) ToggleFavorite(m domain.Movie) {
	s.mu.Lock()
	s.toggled = append(s.toggled, m.ID)
	s.mu.Unlock()
	s.st.ToggleFavorite(m)
}

func (s *spyCommands) LoadFavorites() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++
}

func (s *spyCommands) SetConnectivity(c bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = append(s.connected, c)
}

func newTestModel(t *testing.T) (Model, *spyCommands, *state.Store) {
	t.Helper()
	st := state.New()
	ticket := st.BeginList(domain.ListUpcoming, 1, false)
	require.True(t, st.CompleteList(ticket, []domain.Movie{
		{ID: 1, Title: "Alien", ReleaseDate: "1979-05-25"},
		{ID: 2, Title: "Aliens", ReleaseDate: "1986-07-18"},
		{ID: 3, Title: "Blade Runner", ReleaseDate: "1982-06-25"},
	}, true))

	spy := &spyCommands{st: st}
	q := library.NewQueries(st, nil)
	m := NewModel(Options{
		Queries:  q,
		Commands: spy,
		Search:   search.NewService(q, log.NullLogger()),
		Results:  make(chan domain.OpResult, 1),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 30})
	return updated.(Model), spy, st
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		case "tab":
			msg = tea.KeyMsg{Type: tea.KeyTab}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		updated, _ := m.Update(msg)
		m = updated.(Model)
	}
	return m
}

func TestInitLoadsFavoritesAndLists(t *testing.T) {
	m, spy, _ := newTestModel(t)
	m.Init()

	assert.Equal(t, 1, spy.loads)
	assert.Equal(t, []string{"upcoming:1", "popular:1"}, spy.lists)
}

func TestEnterRequestsMissingDetailsOnly(t *testing.T) {
	m, spy, st := newTestModel(t)

	m = press(t, m, "enter")
	assert.True(t, m.ShowDetails)
	assert.Equal(t, 1, m.DetailsID)
	assert.Equal(t, []int{1}, spy.details)

	st.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 2, Title: "Aliens"}})
	m = press(t, m, "esc", "j", "enter")
	assert.Equal(t, 2, m.DetailsID)
	assert.Equal(t, []int{1}, spy.details, "cached details are not refetched")
	assert.Contains(t, m.View(), "Aliens")
}

func TestFavoriteToggleFromList(t *testing.T) {
	m, spy, st := newTestModel(t)

	m = press(t, m, "j", "f")
	assert.Equal(t, []int{2}, spy.toggled)
	assert.True(t, st.IsFavorite(2))

	m = press(t, m, "tab", "tab")
	assert.Equal(t, TabFavorites, m.Tab)
	rows := m.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Aliens", rows[0].Movie.Title)
}

func TestLoadMoreAtEndOfList(t *testing.T) {
	m, spy, _ := newTestModel(t)

	press(t, m, "G")
	assert.Equal(t, []string{"upcoming:2"}, spy.lists)
}

func TestRefreshRequestsFirstPage(t *testing.T) {
	m, spy, _ := newTestModel(t)

	m = press(t, m, "tab", "r")
	assert.Equal(t, TabPopular, m.Tab)
	assert.Equal(t, []string{"popular:1"}, spy.lists)
}

func TestRefreshOnFavoritesKeepsSessionSet(t *testing.T) {
	m, spy, st := newTestModel(t)
	m = press(t, m, "f")
	require.True(t, st.IsFavorite(1))

	m = press(t, m, "tab", "tab", "r")
	assert.Equal(t, TabFavorites, m.Tab)
	assert.Zero(t, spy.loads)
	assert.Empty(t, spy.lists)
	assert.True(t, st.IsFavorite(1))
	assert.Len(t, m.rows(), 1)
}

func TestFilterNarrowsRows(t *testing.T) {
	m, _, _ := newTestModel(t)

	m = press(t, m, "/", "b", "l", "a", "enter")
	assert.False(t, m.Filtering)
	rows := m.rows()
	require.Len(t, rows, 1)
	assert.Equal(t, "Blade Runner", rows[0].Movie.Title)
	assert.Equal(t, []int{0, 1, 2}, rows[0].MatchedIndexes)

	m = press(t, m, "esc")
	assert.Len(t, m.rows(), 3)
}

func TestFailedResultShowsStatus(t *testing.T) {
	m, _, _ := newTestModel(t)

	updated, cmd := m.Update(OpResultMsg{Result: domain.OpResult{Op: domain.OpFetchList, List: domain.ListPopular, Err: "Network error"}})
	m = updated.(Model)
	assert.NotNil(t, cmd)
	assert.Equal(t, "Network error", m.StatusMsg)
	assert.True(t, m.StatusIsErr)

	updated, _ = m.Update(ClearStatusMsg{})
	assert.Empty(t, updated.(Model).StatusMsg)
}

func TestToggleOffline(t *testing.T) {
	m, spy, _ := newTestModel(t)
	press(t, m, "o")
	assert.Equal(t, []bool{false}, spy.connected)
}

func TestTabFor(t *testing.T) {
	assert.Equal(t, TabUpcoming, TabFor("upcoming"))
	assert.Equal(t, TabPopular, TabFor("popular"))
	assert.Equal(t, TabFavorites, TabFor("favorites"))
	assert.Equal(t, TabUpcoming, TabFor("bogus"))
}
