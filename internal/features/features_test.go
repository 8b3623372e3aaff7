package features

import (
	"testing"
	"time"
)

func TestAssembleProducesTwentyFourRows(t *testing.T) {
	now := time.Date(2026, 3, 15, 14, 0, 0, 0, time.UTC)
	rows := Assemble(now, Weather{TemperatureC: 20, HumidityPct: 40, WindSpeedMs: 3, PressureHpa: 1015, CloudCoverPct: 50}, Current{NO2: 10, O3: 30, SO2: 5})

	if rows[23].HourOfDay != now.Hour() {
		t.Errorf("last row hourOfDay = %d, want %d (index 23 is now)", rows[23].HourOfDay, now.Hour())
	}
	wantFirst := now.Add(-23 * time.Hour).Hour()
	if rows[0].HourOfDay != wantFirst {
		t.Errorf("first row hourOfDay = %d, want %d (index 0 is 23h ago)", rows[0].HourOfDay, wantFirst)
	}
}

func TestStagnationBounds(t *testing.T) {
	v := stagnation(0, 1030)
	if v != 1.3 {
		t.Errorf("stagnation(0, 1030) = %v, want 1.3", v)
	}
	v = stagnation(10, 1000)
	if v != 0 {
		t.Errorf("stagnation(10, 1000) = %v, want 0", v)
	}
}

func TestDispersionFormula(t *testing.T) {
	if got := dispersion(10, 50); got != 1.5 {
		t.Errorf("dispersion(10, 50) = %v, want 1.5", got)
	}
}
