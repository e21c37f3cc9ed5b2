package library

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/favorites"
	"github.com/mmcdole/marquee/internal/fetch"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/state"
)

// Default failure messages for errors that carry no text
const (
	msgUpcomingFailed  = "failed to fetch upcoming movies"
	msgPopularFailed   = "failed to fetch popular movies"
	msgDetailsFailed   = "failed to fetch movie details"
	msgFavoritesFailed = "failed to load favorites"
)

// ConnectivitySetter accepts reachability changes from outside the core
type ConnectivitySetter interface {
	Set(connected bool)
}

// Deps are the collaborators Commands orchestrates
type Deps struct {
	Catalog      domain.CatalogClient
	Engine       *fetch.Engine
	State        *state.Store
	Favorites    *favorites.Service
	Connectivity ConnectivitySetter
	Observer     domain.ResultObserver
	Metrics      *metrics.Recorder
}

var _ domain.LibraryCommands = (*Commands)(nil)

// Commands provides asynchronous operations that hit network or storage.
// Implements domain.LibraryCommands.
//
// List fetches are latest-wins per list kind: a superseded request's network
// call still completes, but its result is discarded and publishes nothing.
// Details, toggles and favorites loads fan out independently.
type Commands struct {
	deps   Deps
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewCommands creates a new Commands instance.
func NewCommands(deps Deps, logger *slog.Logger) *Commands {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Observer == nil {
		deps.Observer = domain.NoOpObserver{}
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Commands{deps: deps, logger: logger, ctx: ctx, cancel: cancel}
}

// RequestList fetches one page of a list. Page 1 replaces the list; refresh
// keeps the current movies visible until the new page arrives.
func (c *Commands) RequestList(kind domain.ListKind, page int, refresh bool) {
	if page < 1 {
		page = 1
	}
	ticket := c.deps.State.BeginList(kind, page, refresh)
	c.logger.Debug("list requested", "list", kind, "page", page, "refresh", refresh)

	c.spawn(func(ctx context.Context) {
		result, err := fetch.Fetch(ctx, c.deps.Engine, fetch.ListKey(kind, page), func(ctx context.Context) (domain.MoviePage, error) {
			return c.listPage(ctx, kind, page)
		})

		res := domain.OpResult{Op: domain.OpFetchList, List: kind, Page: page}
		var applied bool
		if err != nil {
			res.Err = failureMessage(err, listFailureMessage(kind))
			applied = c.deps.State.FailList(ticket, res.Err)
		} else {
			applied = c.deps.State.CompletePage(ticket, result)
		}

		if !applied {
			c.deps.Metrics.RecordSuperseded(string(kind))
			c.logger.Debug("discarding superseded list result", "list", kind, "page", page)
			return
		}
		if err != nil {
			c.logger.Error("failed to fetch list", "list", kind, "page", page, "error", err)
		}
		c.publish(res)
	})
}

// RequestDetails fetches the full record for a movie
func (c *Commands) RequestDetails(id int) {
	c.deps.State.BeginDetails(id)

	c.spawn(func(ctx context.Context) {
		details, err := fetch.Fetch(ctx, c.deps.Engine, fetch.DetailsKey(id), func(ctx context.Context) (domain.MovieDetails, error) {
			return c.deps.Catalog.Details(ctx, id)
		})

		res := domain.OpResult{Op: domain.OpFetchDetails, MovieID: id}
		if err != nil {
			res.Err = failureMessage(err, msgDetailsFailed)
			c.logger.Error("failed to fetch movie details", "movieID", id, "error", err)
			c.deps.State.FailDetails(id, res.Err)
		} else {
			c.deps.State.PutDetails(details)
		}
		c.publish(res)
	})
}

// ToggleFavorite flips the movie's favorite flag everywhere before returning,
// then persists the favorites set in the background. Persistence failures are
// logged only.
func (c *Commands) ToggleFavorite(movie domain.Movie) {
	c.deps.Favorites.Toggle(movie)

	c.spawn(func(ctx context.Context) {
		_ = c.deps.Favorites.Persist(context.WithoutCancel(ctx))
		c.publish(domain.OpResult{Op: domain.OpToggleFavorite, MovieID: movie.ID})
	})
}

// LoadFavorites reads the persisted favorites set
func (c *Commands) LoadFavorites() {
	c.spawn(func(ctx context.Context) {
		res := domain.OpResult{Op: domain.OpLoadFavorites}
		if err := c.deps.Favorites.Load(ctx); err != nil {
			res.Err = msgFavoritesFailed
		}
		c.publish(res)
	})
}

// SetConnectivity pushes a reachability change into the oracle
func (c *Commands) SetConnectivity(connected bool) {
	if c.deps.Connectivity == nil {
		return
	}
	c.deps.Connectivity.Set(connected)
}

// Wait blocks until every in-flight operation has published its result
func (c *Commands) Wait() {
	c.wg.Wait()
}

// Close cancels in-flight operations and waits for them to finish
func (c *Commands) Close() {
	c.cancel()
	c.wg.Wait()
}

func (c *Commands) spawn(op func(ctx context.Context)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		op(c.ctx)
	}()
}

func (c *Commands) publish(res domain.OpResult) {
	c.deps.Metrics.RecordOperation(string(res.Op), res.OK())
	c.deps.Observer.OnResult(res)
}

func (c *Commands) listPage(ctx context.Context, kind domain.ListKind, page int) (domain.MoviePage, error) {
	if kind == domain.ListPopular {
		return c.deps.Catalog.ListPopular(ctx, page)
	}
	return c.deps.Catalog.ListUpcoming(ctx, page)
}

func listFailureMessage(kind domain.ListKind) string {
	if kind == domain.ListPopular {
		return msgPopularFailed
	}
	return msgUpcomingFailed
}

// failureMessage turns err into the text shown to the user
func failureMessage(err error, fallback string) string {
	var ce *domain.CatalogError
	if errors.As(err, &ce) && ce.Message != "" {
		return ce.Message
	}
	if err == nil || err.Error() == "" {
		return fallback
	}
	return err.Error()
}
