package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	OpenCageAPIKey    string
	OpenWeatherAPIKey string

	// GeocodeCountry is appended to every location query before resolving.
	GeocodeCountry string

	// Mail transport credentials, loaded once at startup.
	SMTPHost     string
	SMTPPort     int
	SMTPFrom     string
	SMTPPassword string

	// ScheduleTime is the daily sweep trigger as "HH:MM".
	ScheduleTime string
	// ScheduleTimezone names the IANA zone the trigger time is evaluated in.
	ScheduleTimezone string

	// SweepWorkers bounds concurrent per-user pipelines during a sweep.
	SweepWorkers int

	// HTTPTimeout applies to every outbound geocoding/weather call.
	HTTPTimeout time.Duration

	DBPath string
	Port   string
}

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		log.Printf("INFO: No .env file found or error loading it: %v", err)
	}
	cfg := &AppConfig{}

	cfg.OpenCageAPIKey = os.Getenv("OPENCAGE_API_KEY")
	cfg.OpenWeatherAPIKey = os.Getenv("OPENWEATHER_API_KEY")
	cfg.GeocodeCountry = getenvDefault("GEOCODE_COUNTRY", "India")

	cfg.SMTPHost = getenvDefault("SMTP_HOST", "smtp.gmail.com")
	cfg.SMTPPort = getenvInt("SMTP_PORT", 587)
	cfg.SMTPFrom = os.Getenv("SMTP_FROM")
	cfg.SMTPPassword = os.Getenv("SMTP_PASSWORD")

	cfg.ScheduleTime = getenvDefault("SCHEDULE_TIME", "07:00")
	if err := ValidateScheduleTime(cfg.ScheduleTime); err != nil {
		return nil, err
	}
	cfg.ScheduleTimezone = getenvDefault("SCHEDULE_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(cfg.ScheduleTimezone); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULE_TIMEZONE: %w", err)
	}

	cfg.SweepWorkers = getenvInt("SWEEP_WORKERS", 4)
	if cfg.SweepWorkers < 1 {
		cfg.SweepWorkers = 1
	}

	timeoutStr := getenvDefault("HTTP_TIMEOUT", "10s")
	timeout, err := time.ParseDuration(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid HTTP_TIMEOUT: %w", err)
	}
	cfg.HTTPTimeout = timeout

	cfg.DBPath = getenvDefault("DB_PATH", "skysnap.db")
	cfg.Port = getenvDefault("PORT", "8080")

	return cfg, nil
}

// ValidateScheduleTime checks that s is a wall-clock time in "HH:MM" form.
func ValidateScheduleTime(s string) error {
	if _, err := time.Parse("15:04", s); err != nil {
		return fmt.Errorf("invalid SCHEDULE_TIME %q: want HH:MM: %w", s, err)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}
