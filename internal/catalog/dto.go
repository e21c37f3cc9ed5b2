package catalog

// PageResponse is the envelope of the paginated TMDB list endpoints
type PageResponse struct {
	Page         int        `json:"page"`
	Results      []MovieDTO `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}

// MovieDTO is a movie as returned by /movie/upcoming and /movie/popular
type MovieDTO struct {
	ID               int     `json:"id"`
	Title            string  `json:"title"`
	Overview         string  `json:"overview"`
	PosterPath       *string `json:"poster_path"`
	BackdropPath     *string `json:"backdrop_path"`
	ReleaseDate      string  `json:"release_date"`
	VoteAverage      float64 `json:"vote_average"`
	VoteCount        int     `json:"vote_count"`
	GenreIDs         []int   `json:"genre_ids"`
	Popularity       float64 `json:"popularity"`
	OriginalLanguage string  `json:"original_language"`
	OriginalTitle    string  `json:"original_title"`
	Adult            bool    `json:"adult"`
	Video            bool    `json:"video"`
}

// DetailsDTO is the /movie/{id} response
type DetailsDTO struct {
	MovieDTO

	Budget              int64                  `json:"budget"`
	Revenue             int64                  `json:"revenue"`
	Runtime             *int                   `json:"runtime"`
	Tagline             string                 `json:"tagline"`
	Homepage            string                 `json:"homepage"`
	IMDbID              *string                `json:"imdb_id"`
	Status              string                 `json:"status"`
	Genres              []GenreDTO             `json:"genres"`
	OriginCountry       []string               `json:"origin_country"`
	ProductionCompanies []ProductionCompanyDTO `json:"production_companies"`
	ProductionCountries []ProductionCountryDTO `json:"production_countries"`
	SpokenLanguages     []SpokenLanguageDTO    `json:"spoken_languages"`
	Collection          *CollectionDTO         `json:"belongs_to_collection"`
}

type GenreDTO struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type CollectionDTO struct {
	ID           int     `json:"id"`
	Name         string  `json:"name"`
	PosterPath   *string `json:"poster_path"`
	BackdropPath *string `json:"backdrop_path"`
}

type ProductionCompanyDTO struct {
	ID            int     `json:"id"`
	LogoPath      *string `json:"logo_path"`
	Name          string  `json:"name"`
	OriginCountry string  `json:"origin_country"`
}

type ProductionCountryDTO struct {
	ISO3166_1 string `json:"iso_3166_1"`
	Name      string `json:"name"`
}

type SpokenLanguageDTO struct {
	EnglishName string `json:"english_name"`
	ISO639_1    string `json:"iso_639_1"`
	Name        string `json:"name"`
}

// ErrorResponse is the body TMDB returns with non-2xx statuses
type ErrorResponse struct {
	StatusCode    int    `json:"status_code"`
	StatusMessage string `json:"status_message"`
	Success       bool   `json:"success"`
}
