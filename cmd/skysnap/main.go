package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpapi "github.com/skysnap/skysnap/internal/api/http"
	"github.com/skysnap/skysnap/internal/config"
	"github.com/skysnap/skysnap/internal/geocode"
	"github.com/skysnap/skysnap/internal/mail"
	"github.com/skysnap/skysnap/internal/observability"
	"github.com/skysnap/skysnap/internal/pipeline"
	"github.com/skysnap/skysnap/internal/scheduler"
	"github.com/skysnap/skysnap/internal/user"
	"github.com/skysnap/skysnap/internal/weather"
)

func main() {
	// Load configuration once; every component receives it explicitly.
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	tz, err := time.LoadLocation(cfg.ScheduleTimezone)
	if err != nil {
		log.Fatalf("invalid schedule timezone: %v", err)
	}

	// Shared HTTP client for outbound geocoding and weather calls. The
	// timeout bounds every upstream call so a hung server cannot stall a run.
	httpClient := &http.Client{
		Timeout: cfg.HTTPTimeout,
	}

	directory, err := user.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open user directory: %v", err)
	}

	metrics := observability.NewMetrics(prometheus.DefaultRegisterer)

	resolver := geocode.NewClient(httpClient, cfg.OpenCageAPIKey, cfg.GeocodeCountry)
	fetcher := weather.NewClient(httpClient, cfg.OpenWeatherAPIKey)
	sender := mail.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPFrom, cfg.SMTPPassword)

	service := pipeline.NewService(resolver, fetcher, sender, metrics, cfg.SweepWorkers)

	// Daily sweep trigger.
	sched := scheduler.New(cfg.ScheduleTime, tz, directory, service, metrics)
	if err := sched.Start(); err != nil {
		log.Fatalf("failed to start scheduler: %v", err)
	}
	defer sched.Stop()

	// Basic app configuration
	app := fiber.New(fiber.Config{
		AppName:               "skysnap",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          10 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Centralized error response
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": err.Error(),
			})
		},
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "skysnap",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, directory, service)

	// Start server with graceful shutdown
	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.Port
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("fiber server stopped: %v", err)
		}
	}()

	// Wait for termination signal
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
}
