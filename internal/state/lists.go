package state

import "github.com/mmcdole/marquee/internal/domain"

// Ticket identifies one list request. Only the ticket from the most recent
// BeginList for a kind may complete it; older tickets are superseded.
type Ticket struct {
	Kind    domain.ListKind
	Page    int
	Refresh bool
	gen     uint64
}

// BeginList marks a list as loading and supersedes any in-flight request for
// the same kind. Movies are kept while a refresh is in flight.
func (s *Store) BeginList(kind domain.ListKind, page int, refresh bool) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slot(kind)
	sl.gen++
	sl.state.Loading = true
	sl.state.LastError = ""
	if refresh {
		sl.state.Refreshing = true
	}
	return Ticket{Kind: kind, Page: page, Refresh: refresh, gen: sl.gen}
}

// CompleteList merges a fetched page. Page 1 replaces the list, later pages
// append, skipping ids already present. Returns false if t was superseded.
func (s *Store) CompleteList(t Ticket, movies []domain.Movie, hasMore bool) bool {
	return s.complete(t, t.Page, movies, hasMore)
}

// CompletePage merges a catalog response, recording the page number the
// response reports. A response without a page number falls back to the
// requested page.
func (s *Store) CompletePage(t Ticket, page domain.MoviePage) bool {
	n := page.Page
	if n <= 0 {
		n = t.Page
	}
	return s.complete(t, n, page.Results, page.HasMore())
}

func (s *Store) complete(t Ticket, page int, movies []domain.Movie, hasMore bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slot(t.Kind)
	if sl.gen != t.gen {
		return false
	}

	st := &sl.state
	var base []domain.Movie
	if t.Page > 1 {
		base = st.Movies
	}
	st.Movies = s.withFavoriteFlags(mergeUnique(base, movies))
	st.Page = page
	st.HasMore = hasMore
	st.Loading = false
	st.Refreshing = false
	st.LastError = ""
	return true
}

// FailList records a failed request. Movies and page are left untouched.
// Returns false if t was superseded.
func (s *Store) FailList(t Ticket, message string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	sl := s.slot(t.Kind)
	if sl.gen != t.gen {
		return false
	}
	sl.state.Loading = false
	sl.state.Refreshing = false
	sl.state.LastError = message
	return true
}

// SetRefreshing toggles the refreshing flag outside a request.
// Setting it also sets loading, so refreshing always implies loading.
func (s *Store) SetRefreshing(kind domain.ListKind, refreshing bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.slot(kind).state
	st.Refreshing = refreshing
	if refreshing {
		st.Loading = true
	}
}

// mergeUnique appends incoming to base, dropping ids already seen.
// The first occurrence of an id keeps its position.
func mergeUnique(base, incoming []domain.Movie) []domain.Movie {
	out := make([]domain.Movie, 0, len(base)+len(incoming))
	seen := make(map[int]struct{}, len(base)+len(incoming))
	for _, group := range [][]domain.Movie{base, incoming} {
		for _, m := range group {
			if _, dup := seen[m.ID]; dup {
				continue
			}
			seen[m.ID] = struct{}{}
			out = append(out, m.Clone())
		}
	}
	return out
}

// withFavoriteFlags sets IsFavorite on every movie from the favorites set. Caller holds mu.
func (s *Store) withFavoriteFlags(movies []domain.Movie) []domain.Movie {
	for i := range movies {
		movies[i].IsFavorite = s.favoriteIndex(movies[i].ID) >= 0
	}
	return movies
}
