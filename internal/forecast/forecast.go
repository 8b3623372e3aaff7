// Package forecast implements the ForecastEngine: a deterministic
// statistical projection from the current snapshot and feature window
// to an hourly AQI trajectory with confidence bands, alerts and
// recommendations.
package forecast

import (
	"math"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/airwatch/aqcore/internal/aqi"
	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/features"
)

// baseConcentration lists every pollutant the engine projects, and their
// default base concentration (spec.md §4.6) used when the snapshot
// lacks a reading for that pollutant.
var baseConcentration = map[domain.Pollutant]float64{
	domain.NO2:  20,
	domain.O3:   50,
	domain.SO2:  10,
	domain.HCHO: 5,
	domain.PM25: 15,
	domain.PM10: 25,
	domain.CO:   1.0,
}

// Input bundles everything Generate needs to produce a Forecast.
// Features carries the FeatureAssembler's 24-row window; the current
// statistical baseline doesn't consume it (spec.md §9 open question 3),
// but it is threaded through so a future model-backed predictor has it
// to hand without changing this struct's shape.
type Input struct {
	Location            domain.Location
	HorizonHours        int
	GeneratedAt         time.Time
	Snapshot            domain.Snapshot
	DataSources         domain.DataSources
	Thresholds          domain.AQIThresholds
	PollutantThresholds map[domain.Pollutant]domain.PollutantThresholds
	Features            [24]features.Row
}

// Generate produces a deterministic Forecast for in. Running Generate
// twice with identical Input and identical GeneratedAt yields a
// byte-identical Forecast (spec.md §8 invariant 7); the only source of
// variation is the seeded PRNG, whose seed is itself derived from the
// inputs.
func Generate(in Input) domain.Forecast {
	perPollutant := map[domain.Pollutant][]domain.HourPrediction{}
	confidence := map[domain.Pollutant][]domain.Band{}

	for p, base := range baseConcentration {
		start := base
		if m, ok := in.Snapshot.Pollutants[p]; ok {
			start = m.Concentration
		}
		preds, bands := projectPollutant(in.Location, p, start, in.HorizonHours, in.GeneratedAt)
		perPollutant[p] = preds
		confidence[p] = bands
	}

	aqiSeq := trajectory(perPollutant, in.GeneratedAt)

	thresholds := in.Thresholds
	if thresholds == (domain.AQIThresholds{}) {
		thresholds = domain.DefaultAQIThresholds
	}
	pollutantThresholds := in.PollutantThresholds
	if len(pollutantThresholds) == 0 {
		pollutantThresholds = domain.DefaultPollutantThresholds
	}

	alerts := deriveAlerts(aqiSeq, perPollutant, thresholds, pollutantThresholds)
	recs := deriveRecommendations(aqiSeq)

	return domain.Forecast{
		Location:        in.Location,
		HorizonHours:    in.HorizonHours,
		GeneratedAt:     in.GeneratedAt,
		PerPollutant:    perPollutant,
		AQI:             aqiSeq,
		Confidence:      confidence,
		Alerts:          alerts,
		Recommendations: recs,
		DataSources:     in.DataSources,
	}
}

// projectPollutant implements spec.md §4.6's per-hour formula:
// c_p(h) = max(0, B_p * (1 + trend(h) + r)).
func projectPollutant(loc domain.Location, p domain.Pollutant, base float64, horizon int, generatedAt time.Time) ([]domain.HourPrediction, []domain.Band) {
	preds := make([]domain.HourPrediction, 0, horizon)
	bands := make([]domain.Band, 0, horizon)

	for h := 1; h <= horizon; h++ {
		trend := math.Sin(float64(h)*math.Pi/12) * 0.1
		r := noise(loc, p, generatedAt, h)
		c := base * (1 + trend + r)
		if c < 0 {
			c = 0
		}
		at := generatedAt.Add(time.Duration(h) * time.Hour)

		preds = append(preds, domain.HourPrediction{
			Hour:          h,
			Concentration: c,
			At:            at,
			Method:        domain.MethodStatistical,
		})
		// Confidence band widens slightly with h but never narrows
		// below the spec-mandated 0.8x/1.2x floor/ceiling.
		widen := 1 + float64(h)/float64(horizon)*0.05
		bands = append(bands, domain.Band{
			Hour:       h,
			Lower:      0.8 * c / widen,
			Upper:      1.2 * c * widen,
			Confidence: 0.8,
		})
	}
	return preds, bands
}

// noise returns a deterministic value in [-0.1, 0.1] seeded on
// (location, pollutant, day-of-generation, hour). Identical inputs and
// identical clock always reproduce the same value.
func noise(loc domain.Location, p domain.Pollutant, generatedAt time.Time, hour int) float64 {
	day := generatedAt.Truncate(24 * time.Hour).Unix()
	key := make([]byte, 0, 32)
	key = appendFloat(key, loc.Lat)
	key = appendFloat(key, loc.Lng)
	key = append(key, []byte(p)...)
	key = appendInt(key, day)
	key = appendInt(key, int64(hour))

	h := xxhash.Sum64(key)
	u := float64(h%1_000_000) / 1_000_000.0 // in [0,1)
	return (u*2 - 1) * 0.1                  // in [-0.1, 0.1]
}

func appendFloat(b []byte, v float64) []byte {
	bits := math.Float64bits(v)
	for i := 0; i < 8; i++ {
		b = append(b, byte(bits>>(8*i)))
	}
	return b
}

func appendInt(b []byte, v int64) []byte {
	for i := 0; i < 8; i++ {
		b = append(b, byte(v>>(8*i)))
	}
	return b
}

// trajectory computes the max-over-pollutants AQI at each hour.
// Pollutants with no forecast at an hour are skipped, not imputed as 0
// (spec.md §4.6).
func trajectory(perPollutant map[domain.Pollutant][]domain.HourPrediction, generatedAt time.Time) []domain.AqiPrediction {
	horizon := 0
	for _, preds := range perPollutant {
		if len(preds) > horizon {
			horizon = len(preds)
		}
	}

	out := make([]domain.AqiPrediction, 0, horizon)
	for h := 1; h <= horizon; h++ {
		max := 0
		for p, preds := range perPollutant {
			idx := h - 1
			if idx >= len(preds) {
				continue
			}
			if v := aqi.AQI(p, preds[idx].Concentration); v > max {
				max = v
			}
		}
		out = append(out, domain.AqiPrediction{
			Hour:  h,
			AQI:   max,
			Level: aqi.Level(max),
			At:    generatedAt.Add(time.Duration(h) * time.Hour),
		})
	}
	return out
}
