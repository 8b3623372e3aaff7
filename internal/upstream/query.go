package upstream

import (
	"github.com/airwatch/aqcore/internal/domain"
)

// Query is a validated geographic request shared by every client and
// by the public transport layer.
type Query struct {
	Lat          float64
	Lng          float64
	RadiusKm     float64
	HorizonHours int
}

// Validate checks the bounds spec.md §4.2 requires of every upstream
// query: lat in [-90,90], lng in [-180,180], radius in (0,100], horizon
// in [1,72].
func (q Query) Validate() error {
	if q.Lat < -90 || q.Lat > 90 {
		return domain.ErrBadRequest
	}
	if q.Lng < -180 || q.Lng > 180 {
		return domain.ErrBadRequest
	}
	if q.RadiusKm <= 0 || q.RadiusKm > 100 {
		return domain.ErrBadRequest
	}
	if q.HorizonHours < 1 || q.HorizonHours > 72 {
		return domain.ErrBadRequest
	}
	return nil
}

// Payload is the common shape every upstream client returns once it
// has parsed its provider-specific wire format: a bag of measurements
// plus, where the provider is station-based, the stations that
// produced them.
type Payload struct {
	Provider     string
	Measurements []domain.Measurement
	Stations     []domain.Station
	FromMock     bool
}
