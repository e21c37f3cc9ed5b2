// Package state holds the process-wide application state: one ListState per
// list kind, the details map, per-movie details errors, and the favorites set.
//
// Every transition runs under a single lock, so readers never observe a
// partially applied update. Reads return deep copies.
package state

import (
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
)

type listSlot struct {
	state domain.ListState
	gen   uint64 // generation of the most recent BeginList
}

// Store is the application state container
type Store struct {
	mu            sync.RWMutex
	lists         map[domain.ListKind]*listSlot
	details       map[int]domain.MovieDetails
	detailsErrors map[int]string
	favorites     []domain.Movie
}

// New returns an empty state container
func New() *Store {
	s := &Store{
		lists:         make(map[domain.ListKind]*listSlot),
		details:       make(map[int]domain.MovieDetails),
		detailsErrors: make(map[int]string),
	}
	for _, kind := range domain.ListKinds() {
		s.lists[kind] = &listSlot{state: domain.NewListState()}
	}
	return s
}

func (s *Store) slot(kind domain.ListKind) *listSlot {
	sl, ok := s.lists[kind]
	if !ok {
		sl = &listSlot{state: domain.NewListState()}
		s.lists[kind] = sl
	}
	return sl
}

// --- Reads ---

// List returns a copy of the state of one list kind
func (s *Store) List(kind domain.ListKind) domain.ListState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if sl, ok := s.lists[kind]; ok {
		return sl.state.Clone()
	}
	return domain.NewListState()
}

// Details returns a copy of the details record for id
func (s *Store) Details(id int) (domain.MovieDetails, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.details[id]
	if !ok {
		return domain.MovieDetails{}, false
	}
	return d.Clone(), true
}

// DetailsError returns the last details failure for id, or ""
func (s *Store) DetailsError(id int) string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.detailsErrors[id]
}

// Favorites returns a copy of the favorites set in insertion order
func (s *Store) Favorites() []domain.Movie {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Movie, len(s.favorites))
	for i, m := range s.favorites {
		out[i] = m.Clone()
	}
	return out
}

// IsFavorite reports whether id is in the favorites set
func (s *Store) IsFavorite(id int) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.favoriteIndex(id) >= 0
}

func (s *Store) favoriteIndex(id int) int {
	for i, m := range s.favorites {
		if m.ID == id {
			return i
		}
	}
	return -1
}
