package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/skysnap/skysnap/internal/common"
	"github.com/skysnap/skysnap/internal/geocode"
)

// ErrFetch is returned when current conditions or a forecast cannot be fetched.
var ErrFetch = errors.New("weather fetch failed")

// Client fetches current conditions and forecasts from the OpenWeatherMap API.
// Units are fixed to metric.
type Client struct {
	apiKey      string
	currentURL  string
	forecastURL string
	httpCfg     common.HTTPClientConfig
	circuit     *gobreaker.CircuitBreaker
}

// NewClient creates an OpenWeatherMap client.
func NewClient(client *http.Client, apiKey string) *Client {
	return &Client{
		apiKey:      apiKey,
		currentURL:  "https://api.openweathermap.org/data/2.5/weather",
		forecastURL: "https://api.openweathermap.org/data/2.5/forecast",
		httpCfg: common.HTTPClientConfig{
			Client:  client,
			Backoff: common.DefaultBackoff(),
		},
		circuit: common.DefaultBreaker("openweather"),
	}
}

// conditionsPayload is the upstream current-weather shape. The same main/weather
// blocks appear in each forecast list entry.
type conditionsPayload struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Weather []struct {
		Description string `json:"description"`
		Icon        string `json:"icon"`
	} `json:"weather"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Sunrise int64 `json:"sunrise"`
		Sunset  int64 `json:"sunset"`
	} `json:"sys"`
}

// Current fetches the current conditions for the given coordinates.
func (c *Client) Current(ctx context.Context, coords geocode.Coordinates) (Snapshot, error) {
	resp, err := c.get(ctx, c.currentURL, coords)
	if err != nil {
		return Snapshot{}, err
	}
	defer resp.Body.Close()

	var payload conditionsPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return Snapshot{}, fmt.Errorf("%w: decode response: %v", ErrFetch, err)
	}
	if len(payload.Weather) == 0 {
		return Snapshot{}, fmt.Errorf("%w: response missing weather block", ErrFetch)
	}

	return Snapshot{
		Temperature: payload.Main.Temp,
		FeelsLike:   payload.Main.FeelsLike,
		Description: strings.ToLower(payload.Weather[0].Description),
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   payload.Wind.Speed,
		Sunrise:     time.Unix(payload.Sys.Sunrise, 0),
		Sunset:      time.Unix(payload.Sys.Sunset, 0),
		Icon:        payload.Weather[0].Icon,
	}, nil
}

// Forecast fetches the raw 5-day forecast: one entry per 3-hour period.
// Use DailyForecast to reduce it to one entry per calendar day.
func (c *Client) Forecast(ctx context.Context, coords geocode.Coordinates) ([]ForecastEntry, error) {
	resp, err := c.get(ctx, c.forecastURL, coords)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		List []conditionsPayload `json:"list"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrFetch, err)
	}

	entries := make([]ForecastEntry, 0, len(payload.List))
	for _, item := range payload.List {
		entry := ForecastEntry{
			Timestamp:   time.Unix(item.Dt, 0),
			Temperature: item.Main.Temp,
		}
		if len(item.Weather) > 0 {
			entry.Description = strings.ToLower(item.Weather[0].Description)
			entry.Icon = item.Weather[0].Icon
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (c *Client) get(ctx context.Context, baseURL string, coords geocode.Coordinates) (*http.Response, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("lat", fmt.Sprintf("%f", coords.Lat))
		values.Set("lon", fmt.Sprintf("%f", coords.Lng))
		values.Set("appid", c.apiKey)
		values.Set("units", "metric")

		u := fmt.Sprintf("%s?%s", baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	resp, err := common.DoRequestWithResilience(ctx, c.httpCfg, c.circuit, buildRequest)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}
	return resp, nil
}
