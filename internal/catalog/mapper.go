package catalog

import "github.com/mmcdole/marquee/internal/domain"

// MapPage converts a TMDB list response to a domain page
func MapPage(r PageResponse) domain.MoviePage {
	return domain.MoviePage{
		Page:         r.Page,
		Results:      MapMovies(r.Results),
		TotalPages:   r.TotalPages,
		TotalResults: r.TotalResults,
	}
}

// MapMovies converts TMDB movies to domain movies
func MapMovies(dtos []MovieDTO) []domain.Movie {
	movies := make([]domain.Movie, 0, len(dtos))
	for _, m := range dtos {
		movies = append(movies, mapMovie(m))
	}
	return movies
}

func mapMovie(m MovieDTO) domain.Movie {
	return domain.Movie{
		ID:               m.ID,
		Title:            m.Title,
		Overview:         m.Overview,
		PosterPath:       deref(m.PosterPath),
		BackdropPath:     deref(m.BackdropPath),
		ReleaseDate:      m.ReleaseDate,
		VoteAverage:      m.VoteAverage,
		VoteCount:        m.VoteCount,
		GenreIDs:         m.GenreIDs,
		Popularity:       m.Popularity,
		OriginalLanguage: m.OriginalLanguage,
		OriginalTitle:    m.OriginalTitle,
		Adult:            m.Adult,
		Video:            m.Video,
	}
}

// MapDetails converts a TMDB details response to domain details
func MapDetails(d DetailsDTO) domain.MovieDetails {
	details := domain.MovieDetails{
		Movie:         mapMovie(d.MovieDTO),
		Budget:        d.Budget,
		Revenue:       d.Revenue,
		Tagline:       d.Tagline,
		Homepage:      d.Homepage,
		IMDbID:        deref(d.IMDbID),
		Status:        d.Status,
		OriginCountry: d.OriginCountry,
	}
	if d.Runtime != nil {
		details.Runtime = *d.Runtime
	}

	// Details responses carry full genres instead of genre_ids
	for _, g := range d.Genres {
		details.Genres = append(details.Genres, domain.Genre{ID: g.ID, Name: g.Name})
		if len(d.GenreIDs) == 0 {
			details.GenreIDs = append(details.GenreIDs, g.ID)
		}
	}
	for _, pc := range d.ProductionCompanies {
		details.ProductionCompanies = append(details.ProductionCompanies, domain.ProductionCompany{
			ID:            pc.ID,
			LogoPath:      deref(pc.LogoPath),
			Name:          pc.Name,
			OriginCountry: pc.OriginCountry,
		})
	}
	for _, pc := range d.ProductionCountries {
		details.ProductionCountries = append(details.ProductionCountries, domain.ProductionCountry{
			ISO3166_1: pc.ISO3166_1,
			Name:      pc.Name,
		})
	}
	for _, sl := range d.SpokenLanguages {
		details.SpokenLanguages = append(details.SpokenLanguages, domain.SpokenLanguage{
			EnglishName: sl.EnglishName,
			ISO639_1:    sl.ISO639_1,
			Name:        sl.Name,
		})
	}
	if d.Collection != nil {
		details.Collection = &domain.Collection{
			ID:           d.Collection.ID,
			Name:         d.Collection.Name,
			PosterPath:   deref(d.Collection.PosterPath),
			BackdropPath: deref(d.Collection.BackdropPath),
		}
	}
	return details
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
