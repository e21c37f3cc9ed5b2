package library

import (
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/state"
)

var _ domain.LibraryQueries = (*Queries)(nil)

// Queries provides synchronous, in-memory reads.
// Implements domain.LibraryQueries.
type Queries struct {
	state  *state.Store
	oracle domain.ConnectivityOracle
}

// NewQueries creates a new Queries instance.
func NewQueries(st *state.Store, oracle domain.ConnectivityOracle) *Queries {
	return &Queries{state: st, oracle: oracle}
}

func (q *Queries) List(kind domain.ListKind) domain.ListState {
	return q.state.List(kind)
}

func (q *Queries) Details(id int) (domain.MovieDetails, bool) {
	return q.state.Details(id)
}

func (q *Queries) DetailsError(id int) string {
	return q.state.DetailsError(id)
}

func (q *Queries) Favorites() []domain.Movie {
	return q.state.Favorites()
}

func (q *Queries) IsFavorite(id int) bool {
	return q.state.IsFavorite(id)
}

// Connected reports the oracle's current reachability (true when none is set)
func (q *Queries) Connected() bool {
	if q.oracle == nil {
		return true
	}
	return q.oracle.Current()
}
