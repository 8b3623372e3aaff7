package upstream

import (
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/pkg/geo"
)

// baseConcentration is the default concentration a pollutant takes
// before urban/time-of-day multipliers, per spec.md §4.6.
var baseConcentration = map[domain.Pollutant]float64{
	domain.NO2:  20,
	domain.O3:   50,
	domain.SO2:  10,
	domain.HCHO: 5,
	domain.CO:   1.0,
	domain.PM25: 15,
	domain.PM10: 25,
}

// cityCenter is a fixed urban reference point for the mock's urban
// multiplier.
type cityCenter struct {
	name     string
	lat, lng float64
}

// urbanCenters is a small fixed list of large-city centers. Concentrations
// within 0.5 degrees of one of these scale up, approximating real-world
// urban pollution loading.
var urbanCenters = []cityCenter{
	{"new-york", 40.71, -74.01},
	{"los-angeles", 34.05, -118.24},
	{"london", 51.51, -0.13},
	{"delhi", 28.61, 77.21},
	{"beijing", 39.90, 116.40},
	{"sao-paulo", -23.55, -46.63},
}

// urbanMultiplier returns the pollutant-specific multiplier in [0.8,1.5]
// applied when (lat,lng) falls within 0.5 degrees of a known city
// center, or 1.0 otherwise.
func urbanMultiplier(p domain.Pollutant, lat, lng float64) float64 {
	near := false
	for _, c := range urbanCenters {
		if math.Abs(lat-c.lat) <= 0.5 && math.Abs(lng-c.lng) <= 0.5 {
			near = true
			break
		}
	}
	if !near {
		return 1.0
	}
	switch p {
	case domain.NO2, domain.CO:
		return 1.5
	case domain.PM25, domain.PM10:
		return 1.3
	case domain.O3:
		return 0.8 // urban NOx titration suppresses ozone locally
	default:
		return 1.1
	}
}

// timeOfDayMultiplier approximates diurnal pollutant patterns: NO2
// peaks at rush hours, O3 peaks midday, others stay near baseline.
func timeOfDayMultiplier(p domain.Pollutant, localHour int) float64 {
	switch p {
	case domain.NO2:
		if (localHour >= 7 && localHour <= 9) || (localHour >= 17 && localHour <= 19) {
			return 1.4
		}
		return 0.9
	case domain.O3:
		if localHour >= 11 && localHour <= 16 {
			return 1.3
		}
		return 0.8
	default:
		return 1.0
	}
}

// seed derives a deterministic uint64 seed from the mock's governing
// inputs: 2-decimal-rounded coordinates and the pollutant. Identical
// inputs always produce an identical seed, and therefore an identical
// mock value, per spec.md §4.2's idempotence requirement.
func seed(lat, lng float64, pollutant domain.Pollutant) uint64 {
	q := geo.Quantize(lat)
	r := geo.Quantize(lng)
	key := []byte{}
	key = appendFloat(key, q)
	key = appendFloat(key, r)
	key = append(key, []byte(pollutant)...)
	return xxhash.Sum64(key)
}

func appendFloat(b []byte, v float64) []byte {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b = append(b, byte(bits>>(8*i)))
	}
	return b
}

// deterministicUnitInterval maps a seed to a value in [0,1) using the
// same hash-then-scale technique the forecast package reuses for its
// own seeded noise.
func deterministicUnitInterval(s uint64) float64 {
	return float64(s%1_000_000) / 1_000_000.0
}

// mockConcentration produces the deterministic fallback concentration
// for one pollutant at one location and local hour.
func mockConcentration(p domain.Pollutant, lat, lng float64, localHour int) float64 {
	base, ok := baseConcentration[p]
	if !ok {
		return 0
	}
	s := seed(lat, lng, p)
	jitter := 0.9 + deterministicUnitInterval(s)*0.2 // +-10% deterministic spread
	value := base * urbanMultiplier(p, lat, lng) * timeOfDayMultiplier(p, localHour) * jitter
	if value < 0 {
		return 0
	}
	return value
}

// MockPayload builds the deterministic fallback Payload for a query,
// covering every canonical pollutant a provider category is
// responsible for.
func MockPayload(provider string, q Query, pollutants []domain.Pollutant, now time.Time) Payload {
	localHour := now.Hour()
	out := Payload{Provider: provider, FromMock: true}
	for _, p := range pollutants {
		out.Measurements = append(out.Measurements, domain.Measurement{
			Pollutant:     p,
			Concentration: mockConcentration(p, q.Lat, q.Lng, localHour),
			Unit:          p.CanonicalUnit(),
			Source:        provider,
			ObservedAt:    now,
		})
	}
	return out
}
