package domain

import "context"

// ConnectivityOracle reports network reachability and pushes changes to subscribers.
type ConnectivityOracle interface {
	// Current returns the last known reachability
	Current() bool

	// Subscribe registers onChange for every reachability transition.
	// The returned func removes the subscription.
	Subscribe(onChange func(connected bool)) (unsubscribe func())
}

// CatalogClient performs parameterized GETs against the remote movie catalog.
// Failures are *CatalogError values.
type CatalogClient interface {
	ListUpcoming(ctx context.Context, page int) (MoviePage, error)
	ListPopular(ctx context.Context, page int) (MoviePage, error)
	Details(ctx context.Context, id int) (MovieDetails, error)
}
