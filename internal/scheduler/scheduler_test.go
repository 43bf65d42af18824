package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skysnap/skysnap/internal/geocode"
	"github.com/skysnap/skysnap/internal/observability"
	"github.com/skysnap/skysnap/internal/pipeline"
	"github.com/skysnap/skysnap/internal/user"
	"github.com/skysnap/skysnap/internal/weather"
)

// blockingResolver parks every Resolve call until release is closed, keeping a
// sweep in flight for as long as the test needs.
type blockingResolver struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func (r *blockingResolver) Resolve(_ context.Context, _ string) (geocode.Coordinates, error) {
	r.once.Do(func() { close(r.started) })
	<-r.release
	return geocode.Coordinates{}, nil
}

type stubFetcher struct{}

func (stubFetcher) Current(_ context.Context, _ geocode.Coordinates) (weather.Snapshot, error) {
	return weather.Snapshot{Description: "clear sky", Temperature: 20}, nil
}

func (stubFetcher) Forecast(_ context.Context, _ geocode.Coordinates) ([]weather.ForecastEntry, error) {
	return nil, nil
}

type stubSender struct{}

func (stubSender) Send(_, _, _ string) error { return nil }

func TestRunSweep_SkipsWhileRunning(t *testing.T) {
	resolver := &blockingResolver{
		started: make(chan struct{}),
		release: make(chan struct{}),
	}
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := pipeline.NewService(resolver, stubFetcher{}, stubSender{}, metrics, 1)

	directory := user.NewMemoryDirectory()
	_, err := directory.Create(context.Background(), "Asha", "asha@example.com", "Pune")
	require.NoError(t, err)

	s := New("07:00", time.UTC, directory, svc, metrics)

	done := make(chan struct{})
	go func() {
		s.runSweep()
		close(done)
	}()

	// Wait until the first sweep is genuinely in flight.
	select {
	case <-resolver.started:
	case <-time.After(5 * time.Second):
		t.Fatal("first sweep never started")
	}

	// A second trigger while the sweep runs must be ignored, not queued.
	s.runSweep()
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SweepsSkipped))
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SweepsStarted))

	close(resolver.release)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("sweep did not finish")
	}

	// Once idle, the next trigger runs again.
	s.runSweep()
	assert.Equal(t, float64(2), testutil.ToFloat64(metrics.SweepsStarted))
}

func TestRunSweep_EmptyDirectoryIsANoop(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := pipeline.NewService(&blockingResolver{started: make(chan struct{}), release: make(chan struct{})}, stubFetcher{}, stubSender{}, metrics, 1)

	s := New("07:00", time.UTC, user.NewMemoryDirectory(), svc, metrics)

	// Must return without touching the resolver.
	s.runSweep()
	assert.Equal(t, float64(1), testutil.ToFloat64(metrics.SweepsStarted))
}

func TestStart_RejectsBadTime(t *testing.T) {
	metrics := observability.NewMetrics(prometheus.NewRegistry())
	svc := pipeline.NewService(&blockingResolver{started: make(chan struct{}), release: make(chan struct{})}, stubFetcher{}, stubSender{}, metrics, 1)

	s := New("25:99", time.UTC, user.NewMemoryDirectory(), svc, metrics)
	defer s.Stop()

	assert.Error(t, s.Start())
}
