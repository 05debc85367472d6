// Package nominatim implements domain.Geocoder against a Nominatim-style
// public search endpoint.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/levonter/corridor/internal/domain"
)

const (
	// maxCandidates bounds how many matches we request per query. Anything
	// past the third candidate is noise for short place-name strings.
	maxCandidates = 3

	// maxBodyBytes caps the response body read from the public endpoint.
	maxBodyBytes = 1 << 20

	userAgent = "corridor-planner/1.0 (+https://github.com/levonter/corridor)"
)

// Client queries a Nominatim-compatible search service.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
}

// NewClient creates a geocoding client against baseURL, e.g.
// "https://nominatim.openstreetmap.org".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: baseURL,
		logger:  logger,
	}
}

// Search looks up candidate coordinates for query, biased to the given box.
// Candidates are returned in provider-preference order, at most three.
func (c *Client) Search(ctx context.Context, query string, bias domain.BoundingBox) ([]domain.Coordinate, error) {
	params := url.Values{
		"q":      {query},
		"format": {"jsonv2"},
		"limit":  {strconv.Itoa(maxCandidates)},
		// viewbox is lon/lat pairs: west,north,east,south.
		"viewbox": {fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", bias.West, bias.North, bias.East, bias.South)},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geocode request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("geocoder status %d: %s", resp.StatusCode, body)
	}

	var places []place
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&places); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	coords := make([]domain.Coordinate, 0, len(places))
	for _, p := range places {
		lat, latErr := strconv.ParseFloat(p.Lat, 64)
		lon, lonErr := strconv.ParseFloat(p.Lon, 64)
		if latErr != nil || lonErr != nil {
			c.logger.Warn("skipping unparseable geocoder candidate",
				"query", query, "lat", p.Lat, "lon", p.Lon)
			continue
		}
		coords = append(coords, domain.Coordinate{Lat: lat, Lon: lon})
		if len(coords) == maxCandidates {
			break
		}
	}
	return coords, nil
}

// Nominatim returns lat/lon as JSON strings.
type place struct {
	Lat string `json:"lat"`
	Lon string `json:"lon"`
}
