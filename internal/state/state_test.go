package state

import (
	"math/rand/v2"
	"sync"
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func movies(ids ...int) []domain.Movie {
	out := make([]domain.Movie, len(ids))
	for i, id := range ids {
		out[i] = domain.Movie{ID: id, Title: "movie", GenreIDs: []int{28}}
	}
	return out
}

func ids(ms []domain.Movie) []int {
	out := make([]int, len(ms))
	for i, m := range ms {
		out[i] = m.ID
	}
	return out
}

func load(t *testing.T, s *Store, kind domain.ListKind, page int, hasMore bool, list ...int) {
	t.Helper()
	require.True(t, s.CompleteList(s.BeginList(kind, page, false), movies(list...), hasMore))
}

func TestCompletePageRecordsResponsePage(t *testing.T) {
	s := New()

	ticket := s.BeginList(domain.ListPopular, 1, false)
	require.True(t, s.CompletePage(ticket, domain.MoviePage{Page: 1, TotalPages: 3, Results: movies(1, 2)}))
	st := s.List(domain.ListPopular)
	assert.Equal(t, 1, st.Page)
	assert.True(t, st.HasMore)

	ticket = s.BeginList(domain.ListPopular, 2, false)
	require.True(t, s.CompletePage(ticket, domain.MoviePage{Page: 3, TotalPages: 3, Results: movies(2, 3)}))
	st = s.List(domain.ListPopular)
	assert.Equal(t, 3, st.Page)
	assert.False(t, st.HasMore)
	assert.Equal(t, []int{1, 2, 3}, ids(st.Movies))

	// Responses without a page number keep the requested one
	ticket = s.BeginList(domain.ListUpcoming, 1, false)
	require.True(t, s.CompletePage(ticket, domain.MoviePage{Results: movies(4)}))
	assert.Equal(t, 1, s.List(domain.ListUpcoming).Page)
}

func TestNewStoreDefaults(t *testing.T) {
	s := New()
	for _, kind := range domain.ListKinds() {
		st := s.List(kind)
		assert.Empty(t, st.Movies)
		assert.Zero(t, st.Page)
		assert.True(t, st.HasMore)
		assert.False(t, st.Loading)
	}
	assert.Empty(t, s.Favorites())
}

func TestFirstPageLoad(t *testing.T) {
	s := New()

	ticket := s.BeginList(domain.ListUpcoming, 1, false)
	st := s.List(domain.ListUpcoming)
	assert.True(t, st.Loading)
	assert.False(t, st.Refreshing)

	require.True(t, s.CompleteList(ticket, movies(1), true))

	st = s.List(domain.ListUpcoming)
	assert.Equal(t, []int{1}, ids(st.Movies))
	assert.False(t, st.Movies[0].IsFavorite)
	assert.Equal(t, 1, st.Page)
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)
	assert.Empty(t, st.LastError)
}

func TestAppendDeduplicatesById(t *testing.T) {
	s := New()
	load(t, s, domain.ListPopular, 1, true, 1, 2, 3)

	ticket := s.BeginList(domain.ListPopular, 2, false)
	page2 := movies(3, 4, 1, 5)
	page2[0].Title = "replacement"
	require.True(t, s.CompleteList(ticket, page2, false))

	st := s.List(domain.ListPopular)
	assert.Equal(t, []int{1, 2, 3, 4, 5}, ids(st.Movies))
	assert.Equal(t, "movie", st.Movies[2].Title, "first write wins")
	assert.Equal(t, 2, st.Page)
	assert.False(t, st.HasMore)
}

func TestNoDuplicateIdsAfterAnyPageSequence(t *testing.T) {
	r := rand.New(rand.NewPCG(1, 2))
	for range 200 {
		s := New()
		pages := 1 + r.IntN(4)
		for p := 1; p <= pages; p++ {
			batch := make([]int, r.IntN(6))
			for i := range batch {
				batch[i] = r.IntN(10)
			}
			load(t, s, domain.ListUpcoming, p, true, batch...)
		}

		seen := map[int]bool{}
		for _, m := range s.List(domain.ListUpcoming).Movies {
			require.False(t, seen[m.ID], "duplicate id %d", m.ID)
			seen[m.ID] = true
		}
	}
}

func TestRefreshKeepsMoviesUntilSuccess(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1, 2)
	load(t, s, domain.ListUpcoming, 2, true, 3)

	ticket := s.BeginList(domain.ListUpcoming, 1, true)

	st := s.List(domain.ListUpcoming)
	assert.True(t, st.Refreshing)
	assert.True(t, st.Loading)
	assert.Equal(t, []int{1, 2, 3}, ids(st.Movies))

	require.True(t, s.CompleteList(ticket, movies(9), true))
	st = s.List(domain.ListUpcoming)
	assert.Equal(t, []int{9}, ids(st.Movies))
	assert.Equal(t, 1, st.Page)
	assert.False(t, st.Refreshing)
	assert.False(t, st.Loading)
}

func TestFailureKeepsData(t *testing.T) {
	s := New()
	load(t, s, domain.ListPopular, 1, true, 1, 2)

	ticket := s.BeginList(domain.ListPopular, 2, false)
	require.True(t, s.FailList(ticket, "Network error"))

	st := s.List(domain.ListPopular)
	assert.Equal(t, []int{1, 2}, ids(st.Movies))
	assert.Equal(t, 1, st.Page)
	assert.True(t, st.HasMore)
	assert.False(t, st.Loading)
	assert.Equal(t, "Network error", st.LastError)

	s.BeginList(domain.ListPopular, 2, false)
	assert.Empty(t, s.List(domain.ListPopular).LastError, "request clears the error")
}

func TestSupersededTicketIsIgnored(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1)

	slowRefresh := s.BeginList(domain.ListUpcoming, 1, true)
	loadMore := s.BeginList(domain.ListUpcoming, 2, false)

	require.True(t, s.CompleteList(loadMore, movies(2), true))
	assert.False(t, s.CompleteList(slowRefresh, movies(7), true))
	assert.False(t, s.FailList(slowRefresh, "late failure"))

	st := s.List(domain.ListUpcoming)
	assert.Equal(t, []int{1, 2}, ids(st.Movies))
	assert.Equal(t, 2, st.Page)
	assert.Empty(t, st.LastError)
}

func TestTicketsAreIndependentPerKind(t *testing.T) {
	s := New()
	up := s.BeginList(domain.ListUpcoming, 1, false)
	pop := s.BeginList(domain.ListPopular, 1, false)

	assert.True(t, s.CompleteList(up, movies(1), true))
	assert.True(t, s.CompleteList(pop, movies(2), true))
}

func TestSetRefreshing(t *testing.T) {
	s := New()
	s.SetRefreshing(domain.ListPopular, true)
	st := s.List(domain.ListPopular)
	assert.True(t, st.Refreshing)
	assert.True(t, st.Loading)

	s.SetRefreshing(domain.ListPopular, false)
	assert.False(t, s.List(domain.ListPopular).Refreshing)
}

func TestToggleUpdatesEveryProjection(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1, 2)
	load(t, s, domain.ListPopular, 1, true, 3, 1)
	s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 1}, Runtime: 95})

	assert.True(t, s.ToggleFavorite(movies(1)[0]))

	assert.True(t, s.List(domain.ListUpcoming).Movies[0].IsFavorite)
	assert.False(t, s.List(domain.ListUpcoming).Movies[1].IsFavorite)
	assert.True(t, s.List(domain.ListPopular).Movies[1].IsFavorite)
	d, ok := s.Details(1)
	require.True(t, ok)
	assert.True(t, d.IsFavorite)
	require.Len(t, s.Favorites(), 1)
	assert.True(t, s.Favorites()[0].IsFavorite)
	assert.True(t, s.IsFavorite(1))
}

func TestDoubleToggleRestoresState(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1, 2)
	load(t, s, domain.ListPopular, 1, true, 2)
	s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 2}})
	s.ToggleFavorite(movies(1)[0])

	beforeUp := s.List(domain.ListUpcoming)
	beforePop := s.List(domain.ListPopular)
	beforeDetails, _ := s.Details(2)
	beforeFavs := s.Favorites()

	assert.True(t, s.ToggleFavorite(movies(2)[0]))
	assert.False(t, s.ToggleFavorite(movies(2)[0]))

	assert.Equal(t, beforeUp, s.List(domain.ListUpcoming))
	assert.Equal(t, beforePop, s.List(domain.ListPopular))
	afterDetails, _ := s.Details(2)
	assert.Equal(t, beforeDetails, afterDetails)
	assert.Equal(t, beforeFavs, s.Favorites())
}

// consistent checks that id agrees on IsFavorite everywhere it appears
func consistent(t *testing.T, s *Store, id int) {
	t.Helper()
	want := s.IsFavorite(id)
	for _, kind := range domain.ListKinds() {
		for _, m := range s.List(kind).Movies {
			if m.ID == id {
				require.Equal(t, want, m.IsFavorite, "list %s id %d", kind, id)
			}
		}
	}
	if d, ok := s.Details(id); ok {
		require.Equal(t, want, d.IsFavorite, "details id %d", id)
	}
}

func TestRandomToggleSequencesStayConsistent(t *testing.T) {
	r := rand.New(rand.NewPCG(7, 11))
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1, 2, 3, 4)
	load(t, s, domain.ListPopular, 1, true, 3, 4, 5, 6)
	for _, id := range []int{2, 4, 6, 8} {
		s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: id}})
	}

	for range 500 {
		id := 1 + r.IntN(8)
		s.ToggleFavorite(domain.Movie{ID: id})
		for check := 1; check <= 8; check++ {
			consistent(t, s, check)
		}
	}
}

func TestMergeDerivesFavoriteFlags(t *testing.T) {
	s := New()
	s.ToggleFavorite(domain.Movie{ID: 2})

	load(t, s, domain.ListPopular, 1, true, 1, 2)
	st := s.List(domain.ListPopular)
	assert.False(t, st.Movies[0].IsFavorite)
	assert.True(t, st.Movies[1].IsFavorite)

	s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 2}})
	d, _ := s.Details(2)
	assert.True(t, d.IsFavorite)
}

func TestReplaceFavoritesRederivesEverywhere(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1, 2)
	s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 2}})
	s.ToggleFavorite(domain.Movie{ID: 1})

	s.ReplaceFavorites(movies(2, 3, 2))

	assert.Equal(t, []int{2, 3}, ids(s.Favorites()))
	for _, id := range []int{1, 2, 3} {
		consistent(t, s, id)
	}
	d, _ := s.Details(2)
	assert.True(t, d.IsFavorite)
}

func TestDetailsErrors(t *testing.T) {
	s := New()
	s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 5}, Tagline: "kept"})

	s.FailDetails(5, "failed to fetch movie details")
	assert.Equal(t, "failed to fetch movie details", s.DetailsError(5))
	d, ok := s.Details(5)
	require.True(t, ok)
	assert.Equal(t, "kept", d.Tagline)

	s.BeginDetails(5)
	assert.Empty(t, s.DetailsError(5))

	s.FailDetails(6, "boom")
	s.PutDetails(domain.MovieDetails{Movie: domain.Movie{ID: 6}})
	assert.Empty(t, s.DetailsError(6))
}

func TestReadsReturnCopies(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1)

	st := s.List(domain.ListUpcoming)
	st.Movies[0].Title = "mutated"
	st.Movies[0].GenreIDs[0] = 0

	again := s.List(domain.ListUpcoming)
	assert.Equal(t, "movie", again.Movies[0].Title)
	assert.Equal(t, 28, again.Movies[0].GenreIDs[0])
}

func TestConcurrentTransitions(t *testing.T) {
	s := New()
	load(t, s, domain.ListUpcoming, 1, true, 1, 2, 3)

	var wg sync.WaitGroup
	for i := range 50 {
		wg.Add(2)
		go func() {
			defer wg.Done()
			s.ToggleFavorite(domain.Movie{ID: 1 + i%3})
		}()
		go func() {
			defer wg.Done()
			_ = s.List(domain.ListUpcoming)
		}()
	}
	wg.Wait()

	for _, id := range []int{1, 2, 3} {
		consistent(t, s, id)
	}
}
