package domain

import "time"

// PredictionMethod names how an HourPrediction was produced. Only
// "statistical" is implemented; "model" is an extension point for a
// future ML-backed predictor (spec §9 treats this as out of scope).
type PredictionMethod string

const (
	MethodStatistical PredictionMethod = "statistical"
	MethodModel       PredictionMethod = "model"
)

// HourPrediction is a single pollutant's projected concentration at a
// future hour offset.
type HourPrediction struct {
	Hour          int              `json:"hour"`
	Concentration float64          `json:"concentration"`
	At            time.Time        `json:"at"`
	Method        PredictionMethod `json:"method"`
}

// AqiPrediction is the projected overall AQI at a future hour offset.
type AqiPrediction struct {
	Hour int       `json:"hour"`
	AQI  int       `json:"aqi"`
	Level Level    `json:"level"`
	At   time.Time `json:"at"`
}

// Band is a confidence interval around one HourPrediction.
type Band struct {
	Hour       int     `json:"hour"`
	Lower      float64 `json:"lower"`
	Upper      float64 `json:"upper"`
	Confidence float64 `json:"confidence"`
}

// AlertKind names the category of a derived Alert.
type AlertKind string

const (
	AlertAQIEmergency       AlertKind = "aqi-emergency"
	AlertAQICritical        AlertKind = "aqi-critical"
	AlertAQIWarning         AlertKind = "aqi-warning"
	AlertPollutantWarning   AlertKind = "pollutant-warning"
	AlertPollutantCritical  AlertKind = "pollutant-critical"
	AlertInfo               AlertKind = "info"
)

// Severity orders Alert/AqiPrediction urgency for threshold comparisons.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityWarning
	SeverityCritical
	SeverityEmergency
)

// Alert is a single derived warning attached to a Forecast.
type Alert struct {
	Kind       AlertKind  `json:"kind"`
	Pollutant  Pollutant  `json:"pollutant,omitempty"`
	HoursUntil int        `json:"hoursUntil"`
	AQI        int        `json:"aqi,omitempty"`
	Value      float64    `json:"value,omitempty"`
	Severity   Severity   `json:"severity"`
	Message    string     `json:"message"`
	At         time.Time  `json:"at"`
}

// Recommendation is a health-guidance bundle keyed to an AQI level at a
// given future hour. Consecutive identical recommendations are not
// deduplicated here; that is the caller's concern (spec §4.6).
type Recommendation struct {
	Hour    int       `json:"hour"`
	Level   Level     `json:"level"`
	At      time.Time `json:"at"`
	Message string    `json:"message"`
}

// SourceAvailability marks whether a provider category contributed to a
// Forecast's inputs.
type SourceAvailability string

const (
	SourceAvailable   SourceAvailability = "available"
	SourceUnavailable SourceAvailability = "unavailable"
)

// DataSources reports, per upstream category, whether it contributed to
// the Forecast backing this response.
type DataSources struct {
	Satellite SourceAvailability `json:"satellite"`
	Ground    SourceAvailability `json:"ground"`
	Weather   SourceAvailability `json:"weather"`
}

// Forecast is the ForecastEngine's output: hourly per-pollutant
// projections plus derived AQI trajectory, confidence bands, alerts and
// recommendations.
type Forecast struct {
	Location      Location                        `json:"location"`
	HorizonHours  int                             `json:"horizonHours"`
	GeneratedAt   time.Time                       `json:"generatedAt"`
	PerPollutant  map[Pollutant][]HourPrediction  `json:"perPollutant"`
	AQI           []AqiPrediction                 `json:"aqi"`
	Confidence    map[Pollutant][]Band            `json:"confidence"`
	Alerts        []Alert                         `json:"alerts"`
	Recommendations []Recommendation              `json:"recommendations"`
	DataSources   DataSources                     `json:"dataSources"`
}

// Trend classifies the direction of an AQI trajectory.
type Trend string

const (
	TrendIncreasing Trend = "increasing"
	TrendDecreasing Trend = "decreasing"
	TrendStable     Trend = "stable"
)

// AqiSummary is the aqi-forecast endpoint's derived rollup over a
// Forecast's AQI trajectory.
type AqiSummary struct {
	Current   int     `json:"current"`
	Peak      int     `json:"peak"`
	Average   float64 `json:"average"`
	Trend     Trend   `json:"trend"`
	WorstHour int     `json:"worstHour"`
}
