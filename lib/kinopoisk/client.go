package kinopoisk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"log/slog"
)

const defaultBaseURL = "https://api.kinopoisk.dev/v1.4"

// Provider profession markers, as returned in the API's locale.
const (
	professionActor    = "актеры"
	professionDirector = "режиссеры"
)

// Client talks to the Kinopoisk metadata API. It is only used during catalog
// seeding, never on the request-serving path.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option overrides a Client default.
type Option func(*Client)

// WithBaseURL points the client at a different API root. Mostly for tests.
func WithBaseURL(url string) Option {
	return func(c *Client) {
		c.baseURL = url
	}
}

// WithHTTPClient swaps the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func NewClient(apiKey string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    defaultBaseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Movie is the provider payload for a single title. Nested objects and every
// scalar use pointers so fields the provider leaves out stay null instead of
// collapsing to zero values.
type Movie struct {
	Name        *string  `json:"name"`
	Year        *int     `json:"year"`
	Description *string  `json:"description"`
	Rating      *Rating  `json:"rating"`
	Genres      []Genre  `json:"genres"`
	Poster      *Poster  `json:"poster"`
	Persons     []Person `json:"persons"`
}

type Rating struct {
	KP *float64 `json:"kp"`
}

type Poster struct {
	URL *string `json:"url"`
}

type Genre struct {
	Name string `json:"name"`
}

type Person struct {
	Name       *string `json:"name"`
	Profession *string `json:"profession"`
}

// RatingKP returns the nested rating.kp value, or nil when either level is
// missing from the payload.
func (m *Movie) RatingKP() *float64 {
	if m.Rating == nil {
		return nil
	}
	return m.Rating.KP
}

// PosterURL returns the nested poster.url value, or nil when absent.
func (m *Movie) PosterURL() *string {
	if m.Poster == nil {
		return nil
	}
	return m.Poster.URL
}

// GenreNames flattens the genre objects into their names.
func (m *Movie) GenreNames() []string {
	names := make([]string, 0, len(m.Genres))
	for _, g := range m.Genres {
		names = append(names, g.Name)
	}
	return names
}

// ActorNames returns the names of persons listed with the actor profession.
func (m *Movie) ActorNames() []string {
	return m.personNames(professionActor)
}

// DirectorNames returns the names of persons listed with the director
// profession.
func (m *Movie) DirectorNames() []string {
	return m.personNames(professionDirector)
}

func (m *Movie) personNames(profession string) []string {
	var names []string
	for _, p := range m.Persons {
		if p.Profession == nil || p.Name == nil {
			continue
		}
		if *p.Profession == profession {
			names = append(names, *p.Name)
		}
	}
	return names
}

// FetchMovie retrieves one movie by its Kinopoisk identifier. Any non-200
// response is an error; callers treat that as fatal for seeding.
func (c *Client) FetchMovie(ctx context.Context, externalID int) (*Movie, error) {
	url := fmt.Sprintf("%s/movie/%d", c.baseURL, externalID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch movie %d: %w", externalID, err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Error("failed to close response body", slog.Any("error", err))
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d fetching movie %d", resp.StatusCode, externalID)
	}

	var movie Movie
	if err := json.NewDecoder(resp.Body).Decode(&movie); err != nil {
		return nil, fmt.Errorf("failed to decode movie %d: %w", externalID, err)
	}

	return &movie, nil
}
