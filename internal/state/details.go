package state

import "github.com/mmcdole/marquee/internal/domain"

// BeginDetails clears any previous failure recorded for id
func (s *Store) BeginDetails(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.detailsErrors, id)
}

// PutDetails stores a details record with IsFavorite derived from the favorites set
func (s *Store) PutDetails(d domain.MovieDetails) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d = d.Clone()
	d.IsFavorite = s.favoriteIndex(d.ID) >= 0
	s.details[d.ID] = d
	delete(s.detailsErrors, d.ID)
}

// FailDetails records a failure for id. Any existing details record is kept.
func (s *Store) FailDetails(id int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.detailsErrors[id] = message
}
