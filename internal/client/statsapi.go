package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"pitchdash/ingestion/internal/metrics"
	"pitchdash/ingestion/internal/models"

	"github.com/rs/zerolog/log"
)

// ErrNotFound is returned when the API has no record for the requested player
var ErrNotFound = errors.New("player not found")

// StatsAPI is the MLB Stats API client
type StatsAPI struct {
	baseURL     string
	httpClient  *http.Client
	rateLimiter chan struct{} // Rate limiting semaphore
}

// NewStatsAPI creates a new MLB Stats API client. Each request is bounded by timeout
// and attempted once.
func NewStatsAPI(baseURL string, timeout time.Duration) *StatsAPI {
	// Create rate limiter (max 20 concurrent requests)
	rateLimiter := make(chan struct{}, 20)
	for i := 0; i < 20; i++ {
		rateLimiter <- struct{}{}
	}

	return &StatsAPI{
		baseURL:     baseURL,
		rateLimiter: rateLimiter,
		httpClient: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

// get performs a single GET request against the Stats API
func (c *StatsAPI) get(ctx context.Context, endpoint, path string, params map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, path)

	// Rate limiting: acquire semaphore
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-c.rateLimiter:
		defer func() { c.rateLimiter <- struct{}{} }()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "pitchdash-ingestion/1.0")

	if len(params) > 0 {
		q := req.URL.Query()
		for key, value := range params {
			q.Add(key, value)
		}
		req.URL.RawQuery = q.Encode()
	}

	log.Debug().
		Str("url", url).
		Str("method", req.Method).
		Msg("Making API request")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.RecordAPICall(endpoint, "error", time.Since(start).Seconds())
		return nil, fmt.Errorf("API request failed: %w", err)
	}
	defer resp.Body.Close()

	metrics.RecordAPICall(endpoint, strconv.Itoa(resp.StatusCode), time.Since(start).Seconds())

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		log.Debug().
			Str("url", url).
			Int("status", resp.StatusCode).
			Int("size", len(body)).
			Msg("API request successful")
		return body, nil

	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound

	default:
		return nil, fmt.Errorf("API returned status %d", resp.StatusCode)
	}
}

// FetchPerson fetches a single player with the current team hydrated
func (c *StatsAPI) FetchPerson(ctx context.Context, playerID int) (*models.PersonInput, error) {
	path := fmt.Sprintf("people/%d", playerID)
	body, err := c.get(ctx, "people", path, map[string]string{"hydrate": "currentTeam"})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch person %d: %w", playerID, err)
	}

	var payload models.PeopleResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal person %d: %w", playerID, err)
	}

	if len(payload.People) == 0 {
		return nil, fmt.Errorf("person %d: %w", playerID, ErrNotFound)
	}

	return &payload.People[0], nil
}

// CurrentTeam returns the player's current team abbreviation, or "" if the
// player has none
func (c *StatsAPI) CurrentTeam(ctx context.Context, playerID int) (string, error) {
	person, err := c.FetchPerson(ctx, playerID)
	if err != nil {
		return "", err
	}
	return person.TeamAbbreviation(), nil
}
