package upstream

import (
	"context"
	"testing"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

func TestQueryValidate(t *testing.T) {
	cases := []struct {
		name string
		q    Query
		ok   bool
	}{
		{"valid", Query{Lat: 40, Lng: -74, RadiusKm: 25, HorizonHours: 24}, true},
		{"bad lat", Query{Lat: 91, Lng: 0, RadiusKm: 1, HorizonHours: 1}, false},
		{"bad lng", Query{Lat: 0, Lng: 181, RadiusKm: 1, HorizonHours: 1}, false},
		{"zero radius", Query{Lat: 0, Lng: 0, RadiusKm: 0, HorizonHours: 1}, false},
		{"radius too big", Query{Lat: 0, Lng: 0, RadiusKm: 101, HorizonHours: 1}, false},
		{"horizon zero", Query{Lat: 0, Lng: 0, RadiusKm: 1, HorizonHours: 0}, false},
		{"horizon too big", Query{Lat: 0, Lng: 0, RadiusKm: 1, HorizonHours: 73}, false},
		{"horizon boundary 1", Query{Lat: 0, Lng: 0, RadiusKm: 1, HorizonHours: 1}, true},
		{"horizon boundary 72", Query{Lat: 0, Lng: 0, RadiusKm: 1, HorizonHours: 72}, true},
	}
	for _, c := range cases {
		err := c.q.Validate()
		if c.ok && err != nil {
			t.Errorf("%s: expected valid, got %v", c.name, err)
		}
		if !c.ok && err == nil {
			t.Errorf("%s: expected invalid, got nil", c.name)
		}
	}
}

func TestMockPayloadDeterministic(t *testing.T) {
	q := Query{Lat: 40.7101, Lng: -74.0089, RadiusKm: 25, HorizonHours: 24}
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)

	a := MockPayload("satellite", q, satellitePollutants, now)
	b := MockPayload("satellite", q, satellitePollutants, now)

	if len(a.Measurements) != len(b.Measurements) {
		t.Fatalf("mismatched measurement counts")
	}
	for i := range a.Measurements {
		if a.Measurements[i].Concentration != b.Measurements[i].Concentration {
			t.Errorf("mock not deterministic at %d: %v != %v", i, a.Measurements[i].Concentration, b.Measurements[i].Concentration)
		}
	}
}

func TestMockPayloadVariesBySeed(t *testing.T) {
	now := time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)
	a := MockPayload("satellite", Query{Lat: 40.71, Lng: -74.01, RadiusKm: 25, HorizonHours: 24}, []domain.Pollutant{domain.NO2}, now)
	b := MockPayload("satellite", Query{Lat: 51.51, Lng: -0.13, RadiusKm: 25, HorizonHours: 24}, []domain.Pollutant{domain.NO2}, now)
	if a.Measurements[0].Concentration == b.Measurements[0].Concentration {
		t.Errorf("expected different concentrations for different locations")
	}
}

func TestSatelliteClientFallsBackToMock(t *testing.T) {
	c := NewSatelliteClient("")
	payload, err := c.Fetch(context.Background(), Query{Lat: 40, Lng: -74, RadiusKm: 25, HorizonHours: 24})
	if err != nil {
		t.Fatalf("expected mock fallback without error, got %v", err)
	}
	if !payload.FromMock {
		t.Errorf("expected FromMock true")
	}
	if len(payload.Measurements) == 0 {
		t.Errorf("expected mock measurements")
	}
}

func TestGroundClientAInvalidQueryIsBadRequest(t *testing.T) {
	c := NewGroundClientA("")
	_, err := c.Fetch(context.Background(), Query{Lat: 200, Lng: 0, RadiusKm: 1, HorizonHours: 1})
	if err != domain.ErrBadRequest {
		t.Errorf("expected ErrBadRequest, got %v", err)
	}
}

func TestWeatherClientMockFallback(t *testing.T) {
	c := NewWeatherClient("")
	w, err := c.Fetch(context.Background(), Query{Lat: 40, Lng: -74, RadiusKm: 25, HorizonHours: 24})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !w.FromMock {
		t.Errorf("expected FromMock true")
	}
}
