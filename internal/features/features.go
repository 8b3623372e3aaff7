// Package features builds the 24-row feature matrix the ForecastEngine
// projects from.
package features

import (
	"time"

	"github.com/airwatch/aqcore/pkg/geo"
)

// Row is one hour of the fixed-shape feature record spec.md §4.5 and
// §9 require: a stable 12-column contract, never a dynamic bag.
type Row struct {
	HourOfDay    int
	DayOfWeek    int
	MonthOfYear  int
	TemperatureC float64
	HumidityPct  float64
	WindSpeedMs  float64
	PressureHpa  float64
	NO2          float64
	O3           float64
	SO2          float64
	Stagnation   float64
	Dispersion   float64
	At           time.Time
}

// Weather is the subset of a current reading the FeatureAssembler
// consumes; internal/upstream's domain.Weather satisfies this shape.
type Weather struct {
	TemperatureC  float64
	HumidityPct   float64
	WindSpeedMs   float64
	PressureHpa   float64
	CloudCoverPct float64
}

// Current is the current pollutant snapshot values the assembler
// broadcasts across the 24-row window.
type Current struct {
	NO2 float64
	O3  float64
	SO2 float64
}

// Assemble builds the 24-row matrix for hours [now-23h .. now], index 0
// being 23 hours ago and index 23 being now.
//
// Historical weather is not available from any upstream provider in
// this deployment, so every row is approximated from the single
// current Weather reading (spec.md §9's documented limitation) rather
// than a real history feed. Pollutant columns are likewise the current
// snapshot's values broadcast across the window; only hourOfDay,
// dayOfWeek and monthOfYear vary genuinely per row.
func Assemble(now time.Time, w Weather, cur Current) [24]Row {
	var rows [24]Row
	for i := 0; i < 24; i++ {
		hoursAgo := 23 - i
		at := now.Add(-time.Duration(hoursAgo) * time.Hour)
		rows[i] = Row{
			HourOfDay:    at.Hour(),
			DayOfWeek:    int(at.Weekday()),
			MonthOfYear:  int(at.Month()),
			TemperatureC: w.TemperatureC,
			HumidityPct:  w.HumidityPct,
			WindSpeedMs:  w.WindSpeedMs,
			PressureHpa:  w.PressureHpa,
			NO2:          cur.NO2,
			O3:           cur.O3,
			SO2:          cur.SO2,
			Stagnation:   stagnation(w.WindSpeedMs, w.PressureHpa),
			Dispersion:   dispersion(w.WindSpeedMs, w.CloudCoverPct),
			At:           at,
		}
	}
	return rows
}

// stagnation implements spec.md §4.5's formula: low wind and high
// pressure both indicate a stagnant, pollutant-trapping atmosphere.
func stagnation(windSpeedMs, pressureHpa float64) float64 {
	v := geo.Clamp(1-windSpeedMs/5, 0, 1)
	if pressureHpa > 1020 {
		v += 0.3
	}
	return v
}

// dispersion implements spec.md §4.5's formula.
func dispersion(windSpeedMs, cloudCoverPct float64) float64 {
	return windSpeedMs/10 + cloudCoverPct/100
}
