package domain

import "time"

// Weather is the WeatherClient's canonical reading, adapted from the
// upstream provider's richer payload down to the fields the
// FeatureAssembler's stagnation/dispersion indices need.
type Weather struct {
	TemperatureC float64   `json:"temperatureC"`
	HumidityPct  float64   `json:"humidityPct"`
	WindSpeedMs  float64   `json:"windSpeedMs"`
	PressureHpa  float64   `json:"pressureHpa"`
	CloudCoverPct float64  `json:"cloudCoverPct"`
	ObservedAt   time.Time `json:"observedAt"`
	FromMock     bool      `json:"fromMock"`
}
