// Package favorites keeps the favorites set in sync with every projection of
// movie data and persists it to the key-value store.
package favorites

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/goccy/go-json"
	"github.com/mmcdole/marquee/internal/domain"
	"github.com/mmcdole/marquee/internal/fetch"
	"github.com/mmcdole/marquee/internal/metrics"
	"github.com/mmcdole/marquee/internal/state"
)

// Service toggles, persists and loads favorites.
// In-memory state is authoritative; persistence is best effort.
type Service struct {
	kv      domain.KeyValueStore
	state   *state.Store
	metrics *metrics.Recorder
	logger  *slog.Logger

	persistMu sync.Mutex // serializes writes of the favorites key
}

// NewService creates a favorites service over st, persisting to kv
func NewService(kv domain.KeyValueStore, st *state.Store, recorder *metrics.Recorder, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{kv: kv, state: st, metrics: recorder, logger: logger}
}

// Toggle flips movie's membership and updates every projection before
// returning. It does not persist; call Persist afterwards.
func (s *Service) Toggle(movie domain.Movie) bool {
	favorite := s.state.ToggleFavorite(movie)
	s.logger.Debug("toggled favorite", "movieID", movie.ID, "favorite", favorite)
	return favorite
}

// Persist writes the current favorites set, overwriting the previous value.
// Writes are serialized and each one snapshots the set when it runs, so the
// last write always stores the newest set. Failures are logged and returned.
func (s *Service) Persist(ctx context.Context) error {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	favs := s.state.Favorites()
	data, err := json.Marshal(favs)
	if err != nil {
		s.logger.Error("failed to encode favorites", "error", err)
		return fmt.Errorf("encode favorites: %w", err)
	}

	if err := s.kv.Set(ctx, string(fetch.FavoritesKey), data); err != nil {
		s.metrics.RecordStorageError("set")
		s.logger.Error("failed to save favorites", "count", len(favs), "error", err)
		return err
	}
	return nil
}

// Load reads the persisted favorites set and installs it, re-deriving
// IsFavorite in both lists and the details map. A missing key leaves the
// in-memory set untouched. An unreadable value is deleted so the next Persist
// starts clean.
func (s *Service) Load(ctx context.Context) error {
	data, ok, err := s.kv.Get(ctx, string(fetch.FavoritesKey))
	if err != nil {
		s.metrics.RecordStorageError("get")
		s.logger.Error("failed to read favorites", "error", err)
		return err
	}

	if !ok {
		s.logger.Debug("no persisted favorites")
		return nil
	}

	var favs []domain.Movie
	if err := json.Unmarshal(data, &favs); err != nil {
		s.logger.Warn("discarding corrupt favorites", "error", err)
		if delErr := s.kv.Delete(ctx, string(fetch.FavoritesKey)); delErr != nil {
			s.metrics.RecordStorageError("delete")
			s.logger.Error("failed to delete corrupt favorites", "error", delErr)
		}
		return fmt.Errorf("decode favorites: %w", err)
	}

	s.state.ReplaceFavorites(favs)
	s.logger.Debug("loaded favorites", "count", len(favs))
	return nil
}
