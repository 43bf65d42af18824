package pipeline

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/skysnap/skysnap/internal/geocode"
	"github.com/skysnap/skysnap/internal/observability"
	"github.com/skysnap/skysnap/internal/user"
	"github.com/skysnap/skysnap/internal/weather"
)

// Resolver turns a user's location text into coordinates.
type Resolver interface {
	Resolve(ctx context.Context, location string) (geocode.Coordinates, error)
}

// Fetcher supplies current conditions and the raw 3-hourly forecast.
type Fetcher interface {
	Current(ctx context.Context, coords geocode.Coordinates) (weather.Snapshot, error)
	Forecast(ctx context.Context, coords geocode.Coordinates) ([]weather.ForecastEntry, error)
}

// Sender delivers a weather tip to a recipient.
type Sender interface {
	Send(recipient, tip, location string) error
}

// Status classifies how a single user's pipeline run ended.
type Status string

const (
	StatusNotified         Status = "notified"
	StatusNoAlert          Status = "no_alert"
	StatusResolutionFailed Status = "resolution_failed"
	StatusFetchFailed      Status = "fetch_failed"
	StatusDeliveryFailed   Status = "delivery_failed"
)

// Outcome records one user's result within a sweep. A failure here is a
// logged outcome, never a sweep failure.
type Outcome struct {
	Email     string `json:"email"`
	Location  string `json:"location"`
	Status    Status `json:"status"`
	Delivered bool   `json:"delivered"`
	Tip       string `json:"tip,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Report summarizes one full batch sweep.
type Report struct {
	ID         string    `json:"id"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcomes   []Outcome `json:"outcomes"`
}

// Notified counts outcomes that delivered a tip.
func (r Report) Notified() int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Delivered {
			n++
		}
	}
	return n
}

// Failed counts outcomes that ended in a resolution, fetch, or delivery failure.
func (r Report) Failed() int {
	n := 0
	for _, o := range r.Outcomes {
		switch o.Status {
		case StatusResolutionFailed, StatusFetchFailed, StatusDeliveryFailed:
			n++
		}
	}
	return n
}

// Result is the interactive pipeline's displayable product.
type Result struct {
	Snapshot weather.Snapshot        `json:"snapshot"`
	Forecast []weather.ForecastEntry `json:"forecast,omitempty"`
	Alert    weather.Alert           `json:"alert"`
	Outcome  *Outcome                `json:"outcome,omitempty"`
}

// Service sequences Resolver, Fetcher, Evaluator, and Sender for single users
// and batch sweeps.
type Service struct {
	resolver Resolver
	fetcher  Fetcher
	sender   Sender
	evaluate func(weather.Snapshot) weather.Alert
	metrics  *observability.Metrics
	clock    clockwork.Clock
	workers  int
}

// NewService creates a pipeline Service. workers bounds sweep concurrency.
func NewService(r Resolver, f Fetcher, s Sender, m *observability.Metrics, workers int) *Service {
	if workers < 1 {
		workers = 1
	}
	return &Service{
		resolver: r,
		fetcher:  f,
		sender:   s,
		evaluate: weather.Evaluate,
		metrics:  m,
		clock:    clockwork.NewRealClock(),
		workers:  workers,
	}
}

// SetClock swaps the time source. Tests inject a fake for deterministic reports.
func (s *Service) SetClock(c clockwork.Clock) {
	if c == nil {
		c = clockwork.NewRealClock()
	}
	s.clock = c
}

// RunInteractive executes one synchronous pipeline run for a single user:
// resolve, fetch, evaluate, sample the 5-day forecast, and optionally notify.
// Resolution and fetch errors halt this request only and are surfaced typed;
// a delivery failure is reported in the result's outcome.
func (s *Service) RunInteractive(ctx context.Context, u user.User, notify bool) (Result, error) {
	coords, err := s.resolver.Resolve(ctx, u.Location)
	if err != nil {
		return Result{}, err
	}

	snapshot, err := s.fetcher.Current(ctx, coords)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Snapshot: snapshot,
		Alert:    s.evaluate(snapshot),
	}

	// The forecast is display-only; its failure does not void the alert.
	entries, err := s.fetcher.Forecast(ctx, coords)
	if err != nil {
		log.Printf("pipeline: forecast fetch failed for %s: %v", u.Location, err)
	} else {
		result.Forecast = weather.DailyForecast(entries)
	}

	if notify && result.Alert.Notify {
		outcome := s.dispatch(u, result.Alert.Tip)
		result.Outcome = &outcome
	}

	return result, nil
}

// RunSweep runs the per-user pipeline for every user in the snapshot taken at
// sweep start, up to the configured number of workers at a time. One user's
// failure is recorded and the sweep continues; the sweep itself never fails.
func (s *Service) RunSweep(ctx context.Context, users []user.User) Report {
	report := Report{
		ID:        uuid.NewString(),
		StartedAt: s.clock.Now(),
		Outcomes:  make([]Outcome, len(users)),
	}

	jobs := make(chan int)

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				report.Outcomes[i] = s.processUser(ctx, users[i])
			}
		}()
	}

	for i := range users {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	report.FinishedAt = s.clock.Now()
	if s.metrics != nil {
		s.metrics.SweepDuration.Observe(report.FinishedAt.Sub(report.StartedAt).Seconds())
	}
	log.Printf("pipeline: sweep %s finished: %d users, %d notified, %d failed",
		report.ID, len(report.Outcomes), report.Notified(), report.Failed())
	return report
}

// processUser runs one isolated pipeline pass. It never panics out: any fault
// becomes an Outcome so the sweep's run loop keeps going.
func (s *Service) processUser(ctx context.Context, u user.User) (out Outcome) {
	out = Outcome{Email: u.Email, Location: u.Location}

	defer func() {
		if r := recover(); r != nil {
			log.Printf("pipeline: panic processing %s: %v", u.Email, r)
			out.Status = StatusFetchFailed
			out.Error = "internal error"
		}
		s.countOutcome(out.Status)
	}()

	coords, err := s.resolver.Resolve(ctx, u.Location)
	if err != nil {
		log.Printf("pipeline: resolve failed for %s (%s): %v", u.Email, u.Location, err)
		out.Status = StatusResolutionFailed
		out.Error = err.Error()
		return out
	}

	snapshot, err := s.fetcher.Current(ctx, coords)
	if err != nil {
		log.Printf("pipeline: weather fetch failed for %s (%s): %v", u.Email, u.Location, err)
		out.Status = StatusFetchFailed
		out.Error = err.Error()
		return out
	}

	alert := s.evaluate(snapshot)
	if !alert.Notify {
		out.Status = StatusNoAlert
		return out
	}

	return s.dispatch(u, alert.Tip)
}

// dispatch sends the tip and records the delivery outcome.
func (s *Service) dispatch(u user.User, tip string) Outcome {
	out := Outcome{Email: u.Email, Location: u.Location, Tip: tip}

	if err := s.sender.Send(u.Email, tip, u.Location); err != nil {
		log.Printf("pipeline: delivery failed for %s: %v", u.Email, err)
		out.Status = StatusDeliveryFailed
		out.Error = err.Error()
		if s.metrics != nil {
			s.metrics.NotificationsFailed.Inc()
		}
		return out
	}

	out.Status = StatusNotified
	out.Delivered = true
	if s.metrics != nil {
		s.metrics.NotificationsSent.Inc()
	}
	return out
}

func (s *Service) countOutcome(status Status) {
	if s.metrics == nil || status == "" {
		return
	}
	s.metrics.UserOutcomes.WithLabelValues(string(status)).Inc()
}
