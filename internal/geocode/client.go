package geocode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/sony/gobreaker"

	"github.com/skysnap/skysnap/internal/common"
)

var (
	// ErrResolution is returned when a location cannot be resolved to coordinates.
	ErrResolution = errors.New("location resolution failed")
	// ErrEmptyLocation is returned when the location text is empty.
	ErrEmptyLocation = fmt.Errorf("%w: empty location", ErrResolution)
)

// Coordinates is a resolved latitude/longitude pair. It is derived from a
// user's location text on every pipeline run and never stored.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Client resolves free-text locations via the OpenCage geocoding API.
type Client struct {
	apiKey  string
	country string
	baseURL string
	httpCfg common.HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewClient creates a geocoding client. country is appended to every query
// to bias resolution, e.g. "Pune" becomes "Pune,India".
func NewClient(client *http.Client, apiKey, country string) *Client {
	return &Client{
		apiKey:  apiKey,
		country: country,
		baseURL: "https://api.opencagedata.com/geocode/v1/json",
		httpCfg: common.HTTPClientConfig{
			Client:  client,
			Backoff: common.DefaultBackoff(),
		},
		circuit: common.DefaultBreaker("opencage"),
	}
}

// Resolve translates a location string into coordinates. Zero results or a
// non-200 response fail with ErrResolution; callers treat that as
// "cannot proceed for this user", not a fatal condition.
func (c *Client) Resolve(ctx context.Context, location string) (Coordinates, error) {
	if location == "" {
		return Coordinates{}, ErrEmptyLocation
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("q", fmt.Sprintf("%s,%s", location, c.country))
		values.Set("key", c.apiKey)

		u := fmt.Sprintf("%s?%s", c.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := common.DoRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return Coordinates{}, fmt.Errorf("%w: %v", ErrResolution, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Coordinates{}, fmt.Errorf("%w: status %d", ErrResolution, resp.StatusCode)
	}

	var payload struct {
		Results []struct {
			Geometry struct {
				Lat float64 `json:"lat"`
				Lng float64 `json:"lng"`
			} `json:"geometry"`
		} `json:"results"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Coordinates{}, fmt.Errorf("%w: decode response: %v", ErrResolution, err)
	}

	if len(payload.Results) == 0 {
		return Coordinates{}, fmt.Errorf("%w: no results for %q", ErrResolution, location)
	}

	g := payload.Results[0].Geometry
	return Coordinates{Lat: g.Lat, Lng: g.Lng}, nil
}
