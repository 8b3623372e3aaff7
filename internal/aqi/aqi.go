// Package aqi computes the US EPA Air Quality Index from a pollutant
// concentration via piecewise-linear breakpoint interpolation. It is
// pure and stateless: every function here is safe to call from any
// goroutine with no shared state.
package aqi

import (
	"math"

	"github.com/airwatch/aqcore/internal/domain"
)

// breakpoint is one row of an EPA table: a concentration range mapped
// onto an index range.
type breakpoint struct {
	cLow, cHigh float64
	iLow, iHigh int
}

// Tables reproduces spec.md §4.1 exactly. The teacher's own pm25ToAQI
// used the Feb-2024 revised PM2.5 table; this module intentionally
// keeps the pre-2024 table instead, per the documented open-question
// decision to follow the canonical spec table rather than the
// teacher's revision.
var tables = map[domain.Pollutant][]breakpoint{
	domain.PM25: {
		{0, 12.0, 0, 50},
		{12.1, 35.4, 51, 100},
		{35.5, 55.4, 101, 150},
		{55.5, 150.4, 151, 200},
		{150.5, 250.4, 201, 300},
		{250.5, 350.4, 301, 400},
		{350.5, 500.4, 401, 500},
	},
	domain.PM10: {
		{0, 54, 0, 50},
		{55, 154, 51, 100},
		{155, 254, 101, 150},
		{255, 354, 151, 200},
		{355, 424, 201, 300},
		{425, 504, 301, 400},
		{505, 604, 401, 500},
	},
	domain.O3: {
		{0, 54, 0, 50},
		{55, 70, 51, 100},
		{71, 85, 101, 150},
		{86, 105, 151, 200},
		{106, 200, 201, 300},
	},
	domain.NO2: {
		{0, 53, 0, 50},
		{54, 100, 51, 100},
		{101, 360, 101, 150},
		{361, 649, 151, 200},
		{650, 1249, 201, 300},
		{1250, 1649, 301, 400},
		{1650, 2049, 401, 500},
	},
	domain.SO2: {
		{0, 35, 0, 50},
		{36, 75, 51, 100},
		{76, 185, 101, 150},
		{186, 304, 151, 200},
		{305, 604, 201, 300},
	},
	domain.CO: {
		{0, 4.4, 0, 50},
		{4.5, 9.4, 51, 100},
		{9.5, 12.4, 101, 150},
		{12.5, 15.4, 151, 200},
		{15.5, 30.4, 201, 300},
		{30.5, 40.4, 301, 400},
		{40.5, 50.4, 401, 500},
	},
	domain.HCHO: {
		{0, 10, 0, 50},
		{11, 20, 51, 100},
		{21, 50, 101, 150},
		{51, 100, 151, 200},
		{101, 200, 201, 300},
	},
}

// AQI maps a concentration (in the pollutant's canonical unit) to an
// index in [0, 500]. Unknown pollutants return 0 rather than failing,
// per spec.md §4.1's "does not fail" contract.
func AQI(pollutant domain.Pollutant, concentration float64) int {
	rows, ok := tables[pollutant]
	if !ok || len(rows) == 0 {
		return 0
	}
	if concentration < 0 {
		return 0
	}

	first := rows[0]
	if concentration < first.cLow {
		return round(float64(first.iLow) * concentration / first.cLow)
	}

	for _, row := range rows {
		if concentration >= row.cLow && concentration <= row.cHigh {
			return clampIndex(interpolate(row, concentration))
		}
	}

	return 500
}

func interpolate(row breakpoint, c float64) int {
	scale := float64(row.iHigh-row.iLow) / (row.cHigh - row.cLow)
	return round(scale*(c-row.cLow) + float64(row.iLow))
}

func round(v float64) int {
	return int(math.Round(v))
}

func clampIndex(v int) int {
	if v > 500 {
		return 500
	}
	if v < 0 {
		return 0
	}
	return v
}

// Level buckets an AQI value into the canonical six-tier scale.
func Level(value int) domain.Level {
	switch {
	case value <= 50:
		return domain.LevelGood
	case value <= 100:
		return domain.LevelModerate
	case value <= 150:
		return domain.LevelUnhealthySensitive
	case value <= 200:
		return domain.LevelUnhealthy
	case value <= 300:
		return domain.LevelVeryUnhealthy
	default:
		return domain.LevelHazardous
	}
}
