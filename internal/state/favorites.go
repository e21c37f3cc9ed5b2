package state

import "github.com/mmcdole/marquee/internal/domain"

// ToggleFavorite adds movie to the favorites set if absent, removes it
// otherwise, and updates IsFavorite for that id in both lists and the details
// map in the same transition. Returns the new membership.
func (s *Store) ToggleFavorite(movie domain.Movie) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	favorite := false
	if i := s.favoriteIndex(movie.ID); i >= 0 {
		s.favorites = append(s.favorites[:i:i], s.favorites[i+1:]...)
	} else {
		m := movie.Clone()
		m.IsFavorite = true
		s.favorites = append(s.favorites, m)
		favorite = true
	}

	s.setFlag(movie.ID, favorite)
	return favorite
}

// ReplaceFavorites installs a loaded favorites set and re-derives IsFavorite
// across both lists and every details record.
func (s *Store) ReplaceFavorites(movies []domain.Movie) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.favorites = s.favorites[:0:0]
	for _, m := range mergeUnique(nil, movies) {
		m.IsFavorite = true
		s.favorites = append(s.favorites, m)
	}

	for _, sl := range s.lists {
		s.withFavoriteFlags(sl.state.Movies)
	}
	for id, d := range s.details {
		d.IsFavorite = s.favoriteIndex(id) >= 0
		s.details[id] = d
	}
}

// setFlag writes IsFavorite for id wherever it appears. Caller holds mu.
func (s *Store) setFlag(id int, favorite bool) {
	for _, sl := range s.lists {
		if i := sl.state.IndexOf(id); i >= 0 {
			sl.state.Movies[i].IsFavorite = favorite
		}
	}
	if d, ok := s.details[id]; ok {
		d.IsFavorite = favorite
		s.details[id] = d
	}
}
