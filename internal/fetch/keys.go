package fetch

import (
	"strconv"
	"strings"

	"github.com/mmcdole/marquee/internal/domain"
)

// Key is a cache key namespaced by resource kind and parameters
type Key string

// Cache key prefixes
const (
	// PrefixUpcoming is the prefix for upcoming list pages (upcoming_movies_{page})
	PrefixUpcoming = "upcoming_movies_"

	// PrefixPopular is the prefix for popular list pages (popular_movies_{page})
	PrefixPopular = "popular_movies_"

	// PrefixDetails is the prefix for movie details (movie_details_{id})
	PrefixDetails = "movie_details_"

	// FavoritesKey holds the serialized favorites array
	FavoritesKey Key = "favorites"
)

// ListKey returns the cache key for one page of a list kind
func ListKey(kind domain.ListKind, page int) Key {
	switch kind {
	case domain.ListPopular:
		return Key(PrefixPopular + strconv.Itoa(page))
	default:
		return Key(PrefixUpcoming + strconv.Itoa(page))
	}
}

// DetailsKey returns the cache key for a movie's details
func DetailsKey(id int) Key {
	return Key(PrefixDetails + strconv.Itoa(id))
}

// Resource returns the resource kind a key belongs to, used as a metrics label
func (k Key) Resource() string {
	s := string(k)
	switch {
	case strings.HasPrefix(s, PrefixUpcoming):
		return string(domain.ListUpcoming)
	case strings.HasPrefix(s, PrefixPopular):
		return string(domain.ListPopular)
	case strings.HasPrefix(s, PrefixDetails):
		return "details"
	case k == FavoritesKey:
		return "favorites"
	default:
		return "other"
	}
}
