package aqi

import (
	"testing"

	"github.com/airwatch/aqcore/internal/domain"
)

func TestAQIZeroIsZero(t *testing.T) {
	for _, p := range domain.AllPollutants {
		if got := AQI(p, 0); got != 0 {
			t.Errorf("AQI(%s, 0) = %d, want 0", p, got)
		}
	}
}

func TestAQIMonotone(t *testing.T) {
	steps := []float64{0, 1, 5, 10, 20, 50, 100, 200, 400, 800, 2000, 5000}
	for _, p := range domain.AllPollutants {
		prev := -1
		for _, c := range steps {
			got := AQI(p, c)
			if got < prev {
				t.Errorf("%s: AQI not monotone at c=%v: got %d after %d", p, c, got, prev)
			}
			prev = got
		}
	}
}

func TestAQIBounded(t *testing.T) {
	for _, p := range domain.AllPollutants {
		for _, c := range []float64{0, 100, 10000, 1e9} {
			got := AQI(p, c)
			if got < 0 || got > 500 {
				t.Errorf("%s: AQI(%v) = %d out of [0,500]", p, c, got)
			}
		}
	}
}

// S1 from spec.md §8: PM2.5 = 20.0 ug/m3 -> 68.
func TestAQIScenarioS1(t *testing.T) {
	if got := AQI(domain.PM25, 20.0); got != 68 {
		t.Errorf("AQI(PM25, 20.0) = %d, want 68", got)
	}
}

// S2 from spec.md §8: PM10 = 700 -> capped at 500.
func TestAQIScenarioS2(t *testing.T) {
	if got := AQI(domain.PM10, 700); got != 500 {
		t.Errorf("AQI(PM10, 700) = %d, want 500", got)
	}
}

func TestAQIUnknownPollutant(t *testing.T) {
	if got := AQI(domain.Pollutant("XYZ"), 50); got != 0 {
		t.Errorf("AQI(unknown, 50) = %d, want 0", got)
	}
}

func TestAQIBoundaryConvention(t *testing.T) {
	// c == cHigh of a row belongs to that row, not the next.
	got := AQI(domain.PM25, 12.0)
	if got != 50 {
		t.Errorf("AQI(PM25, 12.0) = %d, want 50 (boundary belongs to lower segment)", got)
	}
}

func TestLevelBuckets(t *testing.T) {
	cases := []struct {
		aqi  int
		want domain.Level
	}{
		{0, domain.LevelGood},
		{50, domain.LevelGood},
		{51, domain.LevelModerate},
		{100, domain.LevelModerate},
		{101, domain.LevelUnhealthySensitive},
		{150, domain.LevelUnhealthySensitive},
		{151, domain.LevelUnhealthy},
		{200, domain.LevelUnhealthy},
		{201, domain.LevelVeryUnhealthy},
		{300, domain.LevelVeryUnhealthy},
		{301, domain.LevelHazardous},
		{500, domain.LevelHazardous},
	}
	for _, c := range cases {
		if got := Level(c.aqi); got != c.want {
			t.Errorf("Level(%d) = %s, want %s", c.aqi, got, c.want)
		}
	}
}
