package canonical

import (
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

func dist(m float64) *float64 { return &m }

// S3 from spec.md §8: nearer OpenAQ station wins over farther EPA station.
func TestCanonicalizePrefersNearerStation(t *testing.T) {
	now := time.Now().UTC()
	in := Input{
		Location:         domain.Location{Lat: 40.7, Lng: -74.0},
		ObservedAt:       now,
		SatellitePresent: false,
		GroundPresent:    true,
		Measurements: []domain.Measurement{
			{Pollutant: domain.PM25, Concentration: 15, Unit: "µg/m³", Source: "EPA", ObservedAt: now, DistanceMeters: dist(8000)},
			{Pollutant: domain.PM25, Concentration: 22, Unit: "µg/m³", Source: "OpenAQ", ObservedAt: now, DistanceMeters: dist(2000)},
		},
	}

	snap := Canonicalize(in)

	got := snap.Pollutants[domain.PM25]
	if got.Concentration != 22 {
		t.Errorf("concentration = %v, want 22", got.Concentration)
	}
	if got.Source != "OpenAQ" {
		t.Errorf("source = %s, want OpenAQ", got.Source)
	}
	if snap.AQI != 72 {
		t.Errorf("aqi = %d, want 72", snap.AQI)
	}
}

func TestCanonicalizeEmptyInput(t *testing.T) {
	snap := Canonicalize(Input{Location: domain.Location{Lat: 1, Lng: 2}, ObservedAt: time.Now()})
	if snap.AQI != 0 {
		t.Errorf("aqi = %d, want 0", snap.AQI)
	}
	if snap.Level != domain.LevelGood {
		t.Errorf("level = %s, want good", snap.Level)
	}
	if snap.DataQuality.Confidence != domain.ConfidenceLow {
		t.Errorf("confidence = %s, want low", snap.DataQuality.Confidence)
	}
}

func TestCanonicalizeTieBreakNewestThenSource(t *testing.T) {
	older := time.Now().Add(-time.Hour)
	newer := time.Now()
	in := Input{
		Location:   domain.Location{Lat: 0, Lng: 0},
		ObservedAt: newer,
		Measurements: []domain.Measurement{
			{Pollutant: domain.NO2, Concentration: 10, Source: "alpha", ObservedAt: older, DistanceMeters: dist(100)},
			{Pollutant: domain.NO2, Concentration: 20, Source: "zeta", ObservedAt: newer, DistanceMeters: dist(100)},
		},
	}
	snap := Canonicalize(in)
	if snap.Pollutants[domain.NO2].Source != "zeta" {
		t.Errorf("expected newer observation to win regardless of source, got %s", snap.Pollutants[domain.NO2].Source)
	}

	sameTime := Input{
		Location:   domain.Location{Lat: 0, Lng: 0},
		ObservedAt: newer,
		Measurements: []domain.Measurement{
			{Pollutant: domain.NO2, Concentration: 10, Source: "zeta", ObservedAt: newer, DistanceMeters: dist(100)},
			{Pollutant: domain.NO2, Concentration: 20, Source: "alpha", ObservedAt: newer, DistanceMeters: dist(100)},
		},
	}
	if got := Canonicalize(sameTime).Pollutants[domain.NO2].Source; got != "alpha" {
		t.Errorf("expected alphabetical source to break an equal-time tie, got %s", got)
	}
}

// Idempotence: re-feeding a canonicalized snapshot's own measurements
// as a single source reproduces the same selection (spec.md §8
// invariant 8).
func TestCanonicalizeIdempotent(t *testing.T) {
	now := time.Now().UTC()
	in := Input{
		Location:   domain.Location{Lat: 0, Lng: 0},
		ObservedAt: now,
		Measurements: []domain.Measurement{
			{Pollutant: domain.O3, Concentration: 60, Source: "a", ObservedAt: now, DistanceMeters: dist(500)},
		},
	}
	first := Canonicalize(in)

	var remeasured []domain.Measurement
	for _, m := range first.Pollutants {
		remeasured = append(remeasured, m)
	}
	second := Canonicalize(Input{Location: in.Location, ObservedAt: now, Measurements: remeasured})

	if first.AQI != second.AQI {
		t.Errorf("not idempotent: aqi %d != %d", first.AQI, second.AQI)
	}
	if first.Pollutants[domain.O3].Concentration != second.Pollutants[domain.O3].Concentration {
		t.Errorf("not idempotent: concentration mismatch")
	}
}
