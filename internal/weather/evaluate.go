package weather

import "github.com/skysnap/skysnap/internal/common"

// Tip texts sent to users. The no-alert text is shown interactively only.
const (
	TipRain    = "It's raining! Wear waterproof clothing, carry an umbrella, and avoid slippery areas."
	TipCloud   = "It's cloudy! It might rain later, so carry an umbrella just in case."
	TipHeat    = "It's very hot! Stay indoors, drink plenty of water, and avoid strenuous activities during peak hours."
	TipNoAlert = "The weather is fine. No alerts to send via email."
)

// heatThresholdC is exclusive: a notification fires only strictly above it.
const heatThresholdC = 35.0

// Alert is the outcome of evaluating a snapshot against the alerting rules.
type Alert struct {
	Tip    string `json:"tip"`
	Notify bool   `json:"notify"`
}

// Evaluate derives an alert decision from a snapshot. It is a pure function of
// the snapshot's description and temperature. Rule order is a deliberate
// tie-break: rain outranks cloud outranks heat.
func Evaluate(s Snapshot) Alert {
	switch {
	case common.HasAny(s.Description, "rain"):
		return Alert{Tip: TipRain, Notify: true}
	case common.HasAny(s.Description, "cloud"):
		return Alert{Tip: TipCloud, Notify: true}
	case s.Temperature > heatThresholdC:
		return Alert{Tip: TipHeat, Notify: true}
	default:
		return Alert{Tip: TipNoAlert, Notify: false}
	}
}
