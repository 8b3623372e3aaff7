package domain

import "time"

// Measurement is a single pollutant reading from one provider.
type Measurement struct {
	Pollutant      Pollutant `json:"pollutant"`
	Concentration  float64   `json:"concentration"`
	Unit           string    `json:"unit"`
	Source         string    `json:"source"`
	StationID      string    `json:"stationId,omitempty"`
	ObservedAt     time.Time `json:"observedAt"`
	DistanceMeters *float64  `json:"distanceMeters,omitempty"`
}

// Valid reports whether the measurement satisfies spec.md §3's invariants:
// non-negative concentration and a unit matching the pollutant's canonical
// unit.
func (m Measurement) Valid() bool {
	return m.Concentration >= 0 && m.Unit == m.Pollutant.CanonicalUnit()
}

// Station is an immutable (after canonicalization) monitoring station
// reference. Identity is the (ID, Source) pair.
type Station struct {
	ID             string  `json:"id"`
	Source         string  `json:"source"`
	Name           string  `json:"name"`
	Lat            float64 `json:"lat"`
	Lng            float64 `json:"lng"`
	DistanceMeters float64 `json:"distanceMeters"`
}

// Key returns the (ID, Source) identity tuple used for station dedup.
func (s Station) Key() string {
	return s.Source + ":" + s.ID
}
