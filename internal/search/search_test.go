package search

import (
	"testing"

	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/library"
	"github.com/mmcdole/marquee/internal/log"
	"github.com/mmcdole/marquee/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T) *Service {
	t.Helper()
	st := state.New()

	up := st.BeginList(domain.ListUpcoming, 1, false)
	require.True(t, st.CompleteList(up, []domain.Movie{
		{ID: 1, Title: "Dune: Part Two"},
		{ID: 2, Title: "Mad Max: Fury Road"},
	}, false))
	pop := st.BeginList(domain.ListPopular, 1, false)
	require.True(t, st.CompleteList(pop, []domain.Movie{
		{ID: 1, Title: "Dune: Part Two"},
		{ID: 3, Title: "The Dark Knight"},
	}, false))

	st.ToggleFavorite(domain.Movie{ID: 3, Title: "The Dark Knight"})
	st.ToggleFavorite(domain.Movie{ID: 4, Title: "Dunkirk"})

	return NewService(library.NewQueries(st, nil), log.NullLogger())
}

func TestFilterListsDeduplicatesAcrossKinds(t *testing.T) {
	s := seeded(t)

	results := s.FilterLists("dune", nil)
	require.Len(t, results, 1)
	assert.Equal(t, 1, results[0].Movie.ID)
	assert.Equal(t, domain.ListUpcoming, results[0].Source)
	assert.Equal(t, []int{0, 1, 2, 3}, results[0].MatchedIndexes)
}

func TestFilterListsRestrictedToKind(t *testing.T) {
	s := seeded(t)

	results := s.FilterLists("knight", []domain.ListKind{domain.ListUpcoming})
	assert.Empty(t, results)

	results = s.FilterLists("knight", []domain.ListKind{domain.ListPopular})
	require.Len(t, results, 1)
	assert.True(t, results[0].Movie.IsFavorite)
}

func TestFilterListsEmptyQuery(t *testing.T) {
	assert.Nil(t, seeded(t).FilterLists("  ", nil))
}

func TestFilterFavorites(t *testing.T) {
	s := seeded(t)

	assert.Len(t, s.FilterFavorites(""), 2)

	got := s.FilterFavorites("DUNK")
	require.Len(t, got, 1)
	assert.Equal(t, "Dunkirk", got[0].Title)

	assert.Empty(t, s.FilterFavorites("zzz"))
}
