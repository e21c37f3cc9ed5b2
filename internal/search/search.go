// Package search filters loaded movies by title.
package search

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
	"github.com/mmcdole/marquee/internal/domain"
	sfuzzy "github.com/sahilm/fuzzy"
)

// FilterItem is a searchable movie and the list it was found in
type FilterItem struct {
	Movie  domain.Movie
	Source domain.ListKind
}

// FilterResult is a match with metadata for highlighting
type FilterResult struct {
	FilterItem
	MatchedIndexes []int // rune positions in the title that matched
	Score          int   // higher is better
}

// FilterIndex implements sahilm/fuzzy.Source over lowercase titles
type FilterIndex struct {
	items       []FilterItem
	lowerTitles []string
}

// String returns the lowercase title at index i (implements fuzzy.Source)
func (idx *FilterIndex) String(i int) string { return idx.lowerTitles[i] }

// Len returns the number of items (implements fuzzy.Source)
func (idx *FilterIndex) Len() int { return len(idx.items) }

// NewFilterIndex indexes items, skipping ids already indexed
func NewFilterIndex(items []FilterItem) *FilterIndex {
	idx := &FilterIndex{}
	seen := make(map[int]bool, len(items))
	for _, it := range items {
		if seen[it.Movie.ID] {
			continue
		}
		seen[it.Movie.ID] = true
		idx.items = append(idx.items, it)
		idx.lowerTitles = append(idx.lowerTitles, strings.ToLower(it.Movie.Title))
	}
	return idx
}

// Service handles fuzzy search over the loaded lists and favorites
type Service struct {
	queries domain.LibraryQueries
	logger  *slog.Logger
}

// NewService creates a new search service
func NewService(queries domain.LibraryQueries, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{queries: queries, logger: logger}
}

// FilterLists searches the loaded movies of kinds (nil = every list kind).
// A movie present in several lists is reported once, under the first kind.
func (s *Service) FilterLists(query string, kinds []domain.ListKind) []FilterResult {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil
	}
	if len(kinds) == 0 {
		kinds = domain.ListKinds()
	}

	var items []FilterItem
	for _, kind := range kinds {
		for _, m := range s.queries.List(kind).Movies {
			items = append(items, FilterItem{Movie: m, Source: kind})
		}
	}

	idx := NewFilterIndex(items)
	matches := sfuzzy.FindFrom(strings.ToLower(query), idx)

	results := make([]FilterResult, len(matches))
	for i, match := range matches {
		results[i] = FilterResult{
			FilterItem:     idx.items[match.Index],
			MatchedIndexes: match.MatchedIndexes,
			Score:          match.Score,
		}
	}
	s.logger.Debug("filtered lists", "query", query, "candidates", idx.Len(), "results", len(results))
	return results
}

// FilterFavorites returns favorites whose titles fuzzily contain query,
// closest matches first. An empty query returns every favorite.
func (s *Service) FilterFavorites(query string) []domain.Movie {
	favs := s.queries.Favorites()
	query = strings.TrimSpace(query)
	if query == "" {
		return favs
	}

	titles := make([]string, len(favs))
	for i, m := range favs {
		titles[i] = m.Title
	}

	ranks := fuzzy.RankFindFold(query, titles)
	sort.Stable(ranks)

	out := make([]domain.Movie, len(ranks))
	for i, r := range ranks {
		out[i] = favs[r.OriginalIndex]
	}
	return out
}
