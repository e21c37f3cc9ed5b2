// Package catalog is the remote catalog client for the TMDB v3 API.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/mmcdole/marquee/internal/domain"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout = 10 * time.Second
	userAgent      = "Marquee/1.0"

	// fallbackMessage is used when a failure carries no message of its own
	fallbackMessage = "Network error"
)

// Options configures a Client
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration // per request; defaults to 10s
	RateLimit  float64       // requests per second; 0 disables limiting
	Burst      int
	HTTPClient *http.Client // overrides Timeout when set
}

// Client implements domain.CatalogClient for TMDB
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *gobreaker.CircuitBreaker[[]byte]
	logger     *slog.Logger
}

// NewClient creates a new TMDB API client
func NewClient(opts Options, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	c := &Client{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		apiKey:     opts.APIKey,
		httpClient: httpClient,
		limiter:    limiter,
		logger:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker[[]byte](gobreaker.Settings{
		Name:        "tmdb",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		// Client errors mean the server is up
		IsSuccessful: func(err error) bool {
			if err == nil || errors.Is(err, context.Canceled) {
				return true
			}
			var ce *domain.CatalogError
			if errors.As(err, &ce) {
				return ce.StatusCode >= 400 && ce.StatusCode < 500
			}
			return false
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("catalog circuit breaker state changed", "name", name, "from", from.String(), "to", to.String())
		},
	})
	return c
}

// ListUpcoming returns one page of upcoming movies
func (c *Client) ListUpcoming(ctx context.Context, page int) (domain.MoviePage, error) {
	return c.listPage(ctx, "/movie/upcoming", page)
}

// ListPopular returns one page of popular movies
func (c *Client) ListPopular(ctx context.Context, page int) (domain.MoviePage, error) {
	return c.listPage(ctx, "/movie/popular", page)
}

// Details returns the full record for a movie
func (c *Client) Details(ctx context.Context, id int) (domain.MovieDetails, error) {
	body, err := c.doRequest(ctx, "/movie/"+strconv.Itoa(id), nil)
	if err != nil {
		return domain.MovieDetails{}, err
	}

	var dto DetailsDTO
	if err := json.Unmarshal(body, &dto); err != nil {
		c.logger.Error("failed to parse details response", "movieID", id, "error", err)
		return domain.MovieDetails{}, &domain.CatalogError{Message: "failed to parse response", Err: err}
	}
	return MapDetails(dto), nil
}

func (c *Client) listPage(ctx context.Context, path string, page int) (domain.MoviePage, error) {
	query := url.Values{}
	query.Set("page", strconv.Itoa(page))

	body, err := c.doRequest(ctx, path, query)
	if err != nil {
		return domain.MoviePage{}, err
	}

	var resp PageResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.logger.Error("failed to parse list response", "path", path, "page", page, "error", err)
		return domain.MoviePage{}, &domain.CatalogError{Message: "failed to parse response", Err: err}
	}
	return MapPage(resp), nil
}

// doRequest performs a rate-limited GET through the circuit breaker
func (c *Client) doRequest(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &domain.CatalogError{Message: err.Error(), Err: err}
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		return c.get(ctx, path, query)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, &domain.CatalogError{Message: "catalog temporarily unavailable", Err: domain.ErrCircuitOpen}
	}
	return body, err
}

// get performs one authenticated GET. Every failure is a *domain.CatalogError.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, error) {
	if query == nil {
		query = url.Values{}
	}
	query.Set("api_key", c.apiKey)
	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, &domain.CatalogError{Message: fmt.Sprintf("failed to create request: %v", err), Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	c.logger.Debug("catalog request", "path", path, "query", redact(query))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("catalog request failed", "path", path, "error", err)
		return nil, &domain.CatalogError{Message: transportMessage(err), Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &domain.CatalogError{Message: fmt.Sprintf("failed to read response: %v", err), StatusCode: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Error("catalog request error", "path", path, "status", resp.StatusCode)
		return nil, &domain.CatalogError{Message: statusMessage(resp.StatusCode, body), StatusCode: resp.StatusCode}
	}

	return body, nil
}

// statusMessage prefers the API's status_message over a generic description
func statusMessage(status int, body []byte) string {
	var er ErrorResponse
	if err := json.Unmarshal(body, &er); err == nil && er.StatusMessage != "" {
		return er.StatusMessage
	}
	return fmt.Sprintf("request failed with status code %d", status)
}

func transportMessage(err error) string {
	if err == nil || err.Error() == "" {
		return fallbackMessage
	}
	return err.Error()
}

// redact returns the query string without the api key
func redact(query url.Values) string {
	q := url.Values{}
	for k, v := range query {
		if k != "api_key" {
			q[k] = v
		}
	}
	return q.Encode()
}

// ImageURL builds a TMDB image URL, e.g. size "w500" or "original".
// Returns "" when the movie has no image.
func ImageURL(base, size, path string) string {
	if path == "" {
		return ""
	}
	return strings.TrimRight(base, "/") + "/" + size + "/" + strings.TrimLeft(path, "/")
}
