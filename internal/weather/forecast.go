package weather

// Upstream forecast entries arrive every 3 hours; taking every 8th entry
// yields one per calendar day, capped at 5 days.
const (
	forecastStride  = 8
	forecastMaxDays = 5
)

// DailyForecast selects one entry per day from the raw 3-hourly feed:
// source indices 0, 8, 16, 24, 32. The stride is a fixed upstream contract.
func DailyForecast(entries []ForecastEntry) []ForecastEntry {
	daily := make([]ForecastEntry, 0, forecastMaxDays)
	for i := 0; i < len(entries) && len(daily) < forecastMaxDays; i += forecastStride {
		daily = append(daily, entries[i])
	}
	return daily
}
