package forecast

import (
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

func baseInput(horizon int) Input {
	return Input{
		Location:     domain.Location{Lat: 40.7, Lng: -74.0},
		HorizonHours: horizon,
		GeneratedAt:  time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC),
		Snapshot:     domain.NewEmptySnapshot(domain.Location{Lat: 40.7, Lng: -74.0}, time.Now()),
		DataSources:  domain.DataSources{Satellite: domain.SourceAvailable, Ground: domain.SourceUnavailable, Weather: domain.SourceUnavailable},
	}
}

// Invariant 5: len(aqi) == H, aqi[i].hour == i+1, strictly increasing timestamps.
func TestGenerateAqiLengthAndHours(t *testing.T) {
	for _, h := range []int{1, 24, 72} {
		f := Generate(baseInput(h))
		if len(f.AQI) != h {
			t.Fatalf("horizon %d: len(aqi) = %d, want %d", h, len(f.AQI), h)
		}
		var prevAt time.Time
		for i, pred := range f.AQI {
			if pred.Hour != i+1 {
				t.Errorf("horizon %d: aqi[%d].hour = %d, want %d", h, i, pred.Hour, i+1)
			}
			if i > 0 && !pred.At.After(prevAt) {
				t.Errorf("horizon %d: timestamps not strictly increasing at %d", h, i)
			}
			prevAt = pred.At
		}
	}
}

// Invariant 6: 0 <= lower <= c <= upper for every prediction.
func TestConfidenceBandBounds(t *testing.T) {
	f := Generate(baseInput(24))
	for p, bands := range f.Confidence {
		preds := f.PerPollutant[p]
		for i, b := range bands {
			c := preds[i].Concentration
			if !(0 <= b.Lower && b.Lower <= c && c <= b.Upper) {
				t.Errorf("%s hour %d: band [%v,%v] does not bound c=%v", p, b.Hour, b.Lower, b.Upper, c)
			}
		}
	}
}

// Invariant 7: determinism.
func TestGenerateDeterministic(t *testing.T) {
	in := baseInput(24)
	a := Generate(in)
	b := Generate(in)

	for p := range a.PerPollutant {
		for i := range a.PerPollutant[p] {
			if a.PerPollutant[p][i].Concentration != b.PerPollutant[p][i].Concentration {
				t.Fatalf("non-deterministic output for %s at hour %d", p, i+1)
			}
		}
	}
	for i := range a.AQI {
		if a.AQI[i].AQI != b.AQI[i].AQI {
			t.Fatalf("non-deterministic aqi trajectory at hour %d", i+1)
		}
	}
}

func TestHorizonBoundaries(t *testing.T) {
	for _, h := range []int{1, 72} {
		f := Generate(baseInput(h))
		if len(f.AQI) != h {
			t.Errorf("horizon %d failed to produce full trajectory", h)
		}
	}
}

func TestSummarizeTrend(t *testing.T) {
	increasing := []domain.AqiPrediction{{Hour: 1, AQI: 50}, {Hour: 2, AQI: 70}}
	if s := Summarize(increasing); s.Trend != domain.TrendIncreasing {
		t.Errorf("expected increasing, got %s", s.Trend)
	}

	decreasing := []domain.AqiPrediction{{Hour: 1, AQI: 70}, {Hour: 2, AQI: 50}}
	if s := Summarize(decreasing); s.Trend != domain.TrendDecreasing {
		t.Errorf("expected decreasing, got %s", s.Trend)
	}

	stable := []domain.AqiPrediction{{Hour: 1, AQI: 60}, {Hour: 2, AQI: 65}}
	if s := Summarize(stable); s.Trend != domain.TrendStable {
		t.Errorf("expected stable, got %s", s.Trend)
	}
}
