package weather

import "time"

// Snapshot is the current-conditions payload at the moment of a single fetch.
// It is transient; one is produced per pipeline run and never cached.
type Snapshot struct {
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Description string    `json:"description"` // lower-cased for rule matching
	Humidity    float64   `json:"humidityPercent"`
	Pressure    float64   `json:"pressureHpa"`
	WindSpeed   float64   `json:"windSpeedMS"`
	Sunrise     time.Time `json:"sunrise"`
	Sunset      time.Time `json:"sunset"`
	Icon        string    `json:"icon"`
}

// WindSpeedKMH converts the snapshot's wind speed from m/s for display.
func (s Snapshot) WindSpeedKMH() float64 {
	return s.WindSpeed * 3.6
}

// IconURL returns the upstream icon image for this snapshot.
func (s Snapshot) IconURL() string {
	return iconURL(s.Icon)
}

// ForecastEntry is one sampled future period from the 5-day forecast feed.
type ForecastEntry struct {
	Timestamp   time.Time `json:"timestamp"`
	Temperature float64   `json:"temperatureC"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
}

// IconURL returns the upstream icon image for this entry.
func (e ForecastEntry) IconURL() string {
	return iconURL(e.Icon)
}

func iconURL(icon string) string {
	if icon == "" {
		return ""
	}
	return "https://openweathermap.org/img/wn/" + icon + ".png"
}
