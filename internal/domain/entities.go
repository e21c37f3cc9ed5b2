package domain

import (
	"fmt"
	"strconv"
)

// ListKind identifies one of the independent paginated catalogs
type ListKind string

const (
	ListUpcoming ListKind = "upcoming"
	ListPopular  ListKind = "popular"
)

// ListKinds returns every list kind in display order
func ListKinds() []ListKind {
	return []ListKind{ListUpcoming, ListPopular}
}

// ParseListKind converts a user-supplied name into a ListKind
func ParseListKind(s string) (ListKind, error) {
	switch ListKind(s) {
	case ListUpcoming, ListPopular:
		return ListKind(s), nil
	default:
		return "", fmt.Errorf("unknown list kind: %q", s)
	}
}

// Movie is the summary record returned by the catalog list endpoints.
// ID is the stable identity; every other field is replaced on refresh.
type Movie struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       string  `json:"poster_path,omitempty"`
	BackdropPath     string  `json:"backdrop_path,omitempty"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`

	// Derived from the favorites set, never from the catalog
	IsFavorite bool `json:"isFavorite,omitempty"`
}

// Year returns the release year parsed from ReleaseDate (0 if unknown)
func (m Movie) Year() int {
	if len(m.ReleaseDate) < 4 {
		return 0
	}
	y, err := strconv.Atoi(m.ReleaseDate[:4])
	if err != nil {
		return 0
	}
	return y
}

// Clone returns a copy that shares no slices with m
func (m Movie) Clone() Movie {
	if m.GenreIDs != nil {
		m.GenreIDs = append([]int(nil), m.GenreIDs...)
	}
	return m
}

// Genre is a named catalog genre
type Genre struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// Collection is the franchise a movie belongs to
type Collection struct {
	ID           int    `json:"id"`
	Name         string `json:"name"`
	PosterPath   string `json:"poster_path,omitempty"`
	BackdropPath string `json:"backdrop_path,omitempty"`
}

// ProductionCompany is a studio credited on a movie
type ProductionCompany struct {
	ID            int    `json:"id"`
	LogoPath      string `json:"logo_path,omitempty"`
	Name          string `json:"name"`
	OriginCountry string `json:"origin_country"`
}

// ProductionCountry is an ISO 3166-1 country credited on a movie
type ProductionCountry struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Name      string `json:"name"`
}

// SpokenLanguage is an ISO 639-1 language spoken in a movie
type SpokenLanguage struct {
	EnglishName string `json:"english_name"`
	ISO639_1    string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// MovieDetails is the full record for a single movie, keyed by ID
type MovieDetails struct {
	Movie

	Budget              int64               `json:"budget"`
	Revenue             int64               `json:"revenue"`
	Runtime             int                 `json:"runtime"` // minutes
	Tagline             string              `json:"tagline"`
	Homepage            string              `json:"homepage"`
	IMDbID              string              `json:"imdb_id"`
	Status              string              `json:"status"`
	Genres              []Genre             `json:"genres"`
	OriginCountry       []string            `json:"origin_country"`
	ProductionCompanies []ProductionCompany `json:"production_companies"`
	ProductionCountries []ProductionCountry `json:"production_countries"`
	SpokenLanguages     []SpokenLanguage    `json:"spoken_languages"`
	Collection          *Collection         `json:"belongs_to_collection,omitempty"`
}

// Summary returns the list-level view of the details record
func (d MovieDetails) Summary() Movie {
	return d.Movie.Clone()
}

// Clone returns a deep copy safe to hand to readers
func (d MovieDetails) Clone() MovieDetails {
	d.Movie = d.Movie.Clone()
	d.Genres = append([]Genre(nil), d.Genres...)
	d.OriginCountry = append([]string(nil), d.OriginCountry...)
	d.ProductionCompanies = append([]ProductionCompany(nil), d.ProductionCompanies...)
	d.ProductionCountries = append([]ProductionCountry(nil), d.ProductionCountries...)
	d.SpokenLanguages = append([]SpokenLanguage(nil), d.SpokenLanguages...)
	if d.Collection != nil {
		c := *d.Collection
		d.Collection = &c
	}
	return d
}

// FormattedRuntime returns the runtime in a human-readable format
func (d MovieDetails) FormattedRuntime() string {
	if d.Runtime <= 0 {
		return ""
	}
	h := d.Runtime / 60
	mins := d.Runtime % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, mins)
	}
	return fmt.Sprintf("%dm", mins)
}

// GenreNames returns the genre names in catalog order
func (d MovieDetails) GenreNames() []string {
	names := make([]string, len(d.Genres))
	for i, g := range d.Genres {
		names[i] = g.Name
	}
	return names
}

// MoviePage is one page of a paginated list endpoint
type MoviePage struct {
	Page         int     `json:"page"`
	Results      []Movie `json:"results"`
	TotalPages   int     `json:"total_pages"`
	TotalResults int     `json:"total_results"`
}

// HasMore reports whether the catalog has pages after this one
func (p MoviePage) HasMore() bool {
	return p.Page < p.TotalPages
}

// ListState is the merged, paginated view of one list kind
type ListState struct {
	Movies     []Movie
	Page       int // last page fully merged, 0 before the first load
	HasMore    bool
	Loading    bool
	Refreshing bool // implies Loading
	LastError  string
}

// NewListState returns the state of a list that has never been fetched
func NewListState() ListState {
	return ListState{HasMore: true}
}

// Clone returns a deep copy safe to hand to readers
func (s ListState) Clone() ListState {
	movies := make([]Movie, len(s.Movies))
	for i, m := range s.Movies {
		movies[i] = m.Clone()
	}
	s.Movies = movies
	return s
}

// IndexOf returns the position of the movie with id, or -1
func (s ListState) IndexOf(id int) int {
	for i, m := range s.Movies {
		if m.ID == id {
			return i
		}
	}
	return -1
}
