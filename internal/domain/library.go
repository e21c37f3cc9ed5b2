package domain

// LibraryQueries: Synchronous, in-memory reads.
// All methods return instantly. NEVER block on network or storage.
// Safe to call from View() and navigation code.
type LibraryQueries interface {
	List(kind ListKind) ListState
	Details(id int) (MovieDetails, bool)
	DetailsError(id int) string
	Favorites() []Movie
	IsFavorite(id int) bool
	Connected() bool
}

// LibraryCommands: Asynchronous triggers that may hit network or storage.
// Each call returns immediately; the outcome is published as exactly one OpResult,
// except for list fetches superseded by a newer request for the same kind, which
// publish nothing. SetConnectivity is synchronous and publishes nothing.
type LibraryCommands interface {
	RequestList(kind ListKind, page int, refresh bool)
	RequestDetails(id int)
	ToggleFavorite(movie Movie)
	LoadFavorites()
	SetConnectivity(connected bool)
}

// OpKind identifies the kind of orchestrated operation
type OpKind string

const (
	OpFetchList      OpKind = "fetch_list"
	OpFetchDetails   OpKind = "fetch_details"
	OpToggleFavorite OpKind = "toggle_favorite"
	OpLoadFavorites  OpKind = "load_favorites"
)

// OpResult is the terminal event of one orchestrated operation.
// Err is empty on success.
type OpResult struct {
	Op      OpKind
	List    ListKind // OpFetchList only
	Page    int      // OpFetchList only
	MovieID int      // OpFetchDetails / OpToggleFavorite
	Err     string
}

// OK reports whether the operation succeeded
func (r OpResult) OK() bool {
	return r.Err == ""
}

// ResultObserver receives terminal events of orchestrated operations.
type ResultObserver interface {
	OnResult(result OpResult)
}

// NoOpObserver discards results (for testing/batch operations).
type NoOpObserver struct{}

func (NoOpObserver) OnResult(OpResult) {}

// ObserverFunc adapts a plain function to ResultObserver
type ObserverFunc func(OpResult)

func (f ObserverFunc) OnResult(r OpResult) { f(r) }
