package scheduler

import (
	"context"
	"log"
	"sync/atomic"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/skysnap/skysnap/internal/observability"
	"github.com/skysnap/skysnap/internal/pipeline"
	"github.com/skysnap/skysnap/internal/user"
)

// Scheduler fires one batch sweep per day at a fixed wall-clock time.
type Scheduler struct {
	scheduler *gocron.Scheduler
	service   *pipeline.Service
	directory user.Directory
	metrics   *observability.Metrics
	at        string
	tz        *time.Location

	// running enforces at most one sweep in flight; the trigger source has
	// no mutual exclusion of its own.
	running atomic.Bool
}

// New creates a Scheduler that triggers at the "HH:MM" time of day, evaluated
// in the given timezone.
func New(at string, tz *time.Location, directory user.Directory, service *pipeline.Service, metrics *observability.Metrics) *Scheduler {
	if tz == nil {
		tz = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(tz),
		service:   service,
		directory: directory,
		metrics:   metrics,
		at:        at,
		tz:        tz,
	}
}

// Start schedules the daily job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(1).Day().At(s.at).Do(s.runSweep)
	if err != nil {
		return err
	}
	s.scheduler.StartAsync()
	log.Printf("scheduler: daily sweep scheduled at %s (%s)", s.at, s.tz)
	return nil
}

// Stop stops the scheduler and cancels any future triggers.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}

// runSweep is the trigger callback. A trigger that fires while a previous
// sweep is still running is ignored. Nothing in here may escape as a panic
// or error; a failed iteration must not kill the run loop.
func (s *Scheduler) runSweep() {
	if !s.running.CompareAndSwap(false, true) {
		log.Println("scheduler: previous sweep still running; skipping trigger")
		if s.metrics != nil {
			s.metrics.SweepsSkipped.Inc()
		}
		return
	}
	defer s.running.Store(false)

	if s.metrics != nil {
		s.metrics.SweepsStarted.Inc()
		s.metrics.SweepRunning.Set(1)
		defer s.metrics.SweepRunning.Set(0)
	}

	log.Println("scheduler: starting batch sweep")

	ctx := context.Background()
	users, err := s.directory.ListAll(ctx)
	if err != nil {
		log.Printf("scheduler: could not list users: %v", err)
		return
	}
	if len(users) == 0 {
		log.Println("scheduler: no registered users; nothing to sweep")
		return
	}

	report := s.service.RunSweep(ctx, users)
	log.Printf("scheduler: sweep %s done (%d users)", report.ID, len(report.Outcomes))
}
