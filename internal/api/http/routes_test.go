package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysnap/skysnap/internal/geocode"
	"github.com/skysnap/skysnap/internal/observability"
	"github.com/skysnap/skysnap/internal/pipeline"
	"github.com/skysnap/skysnap/internal/user"
	"github.com/skysnap/skysnap/internal/weather"
)

type stubResolver struct{ err error }

func (s stubResolver) Resolve(_ context.Context, _ string) (geocode.Coordinates, error) {
	return geocode.Coordinates{Lat: 18.52, Lng: 73.85}, s.err
}

type stubFetcher struct{ snapshot weather.Snapshot }

func (s stubFetcher) Current(_ context.Context, _ geocode.Coordinates) (weather.Snapshot, error) {
	return s.snapshot, nil
}

func (s stubFetcher) Forecast(_ context.Context, _ geocode.Coordinates) ([]weather.ForecastEntry, error) {
	return nil, nil
}

type stubSender struct{ sent int }

func (s *stubSender) Send(_, _, _ string) error {
	s.sent++
	return nil
}

func newApp(resolver pipeline.Resolver, snapshot weather.Snapshot) (*fiber.App, user.Directory, *stubSender) {
	app := fiber.New()
	directory := user.NewMemoryDirectory()
	sender := &stubSender{}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := pipeline.NewService(resolver, stubFetcher{snapshot: snapshot}, sender, metrics, 1)
	RegisterRoutes(app, directory, svc)
	return app, directory, sender
}

func TestRegisterUser_Validation(t *testing.T) {
	app, _, _ := newApp(stubResolver{}, weather.Snapshot{})

	// Missing fields should return 400.
	req := httptest.NewRequest(http.MethodPost, "/api/v1/users", strings.NewReader(`{"name":"Asha"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Malformed email should also return 400.
	req = httptest.NewRequest(http.MethodPost, "/api/v1/users",
		strings.NewReader(`{"name":"Asha","email":"not-an-email","location":"Pune"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestRegisterUser_DuplicateConflict(t *testing.T) {
	app, directory, _ := newApp(stubResolver{}, weather.Snapshot{})

	_, err := directory.Create(context.Background(), "Asha", "asha@example.com", "Pune")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/users",
		strings.NewReader(`{"name":"Other","email":"asha@example.com","location":"Mumbai"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestFindUser_Miss(t *testing.T) {
	app, _, _ := newApp(stubResolver{}, weather.Snapshot{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/users?email=ghost@example.com", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Missing query parameter entirely is a 400.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/users", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestWeatherCheck_UnknownUser(t *testing.T) {
	app, _, _ := newApp(stubResolver{}, weather.Snapshot{})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/check?email=ghost@example.com", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestWeatherCheck_ResolutionFailureIs422(t *testing.T) {
	app, directory, _ := newApp(stubResolver{err: geocode.ErrResolution}, weather.Snapshot{})

	_, err := directory.Create(context.Background(), "Asha", "asha@example.com", "Nowhere")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/check?email=asha@example.com", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestWeatherCheck_NotifyDispatches(t *testing.T) {
	app, directory, sender := newApp(stubResolver{}, weather.Snapshot{Description: "light rain", Temperature: 25})

	_, err := directory.Create(context.Background(), "Asha", "asha@example.com", "Pune")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/weather/check?email=asha@example.com&notify=true", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sender.sent)

	// Without notify, the pipeline evaluates but does not send.
	req = httptest.NewRequest(http.MethodGet, "/api/v1/weather/check?email=asha@example.com", nil)
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, sender.sent)
}

func TestUpdateLocation(t *testing.T) {
	app, directory, _ := newApp(stubResolver{}, weather.Snapshot{})

	created, err := directory.Create(context.Background(), "Asha", "asha@example.com", "Pune")
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPut, "/api/v1/users/1/location",
		strings.NewReader(`{"location":"Mumbai"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	updated, err := directory.FindByEmail(context.Background(), created.Email)
	require.NoError(t, err)
	assert.Equal(t, "Mumbai", updated.Location)

	// Unknown id is a 404.
	req = httptest.NewRequest(http.MethodPut, "/api/v1/users/42/location",
		strings.NewReader(`{"location":"Delhi"}`))
	req.Header.Set("Content-Type", "application/json")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
