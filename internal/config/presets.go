package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/airwatch/aqcore/internal/domain"
)

// LocationPreset is one named, pre-registered monitoring point a
// deployment wants the Scheduler to treat as permanently hot, grounded
// on the pack's declarative YAML location-config idiom.
type LocationPreset struct {
	Name     string  `yaml:"name"`
	Lat      float64 `yaml:"latitude"`
	Lng      float64 `yaml:"longitude"`
	RadiusKm float64 `yaml:"radius_km"`
}

// Presets is the top-level YAML document shape.
type Presets struct {
	Locations []LocationPreset `yaml:"locations"`
}

// LoadPresets reads and validates a declarative location-presets file.
// An empty path is not an error: it simply means no presets are
// configured.
func LoadPresets(path string) (*Presets, error) {
	if path == "" {
		return &Presets{}, nil
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read presets file: %w", err)
	}

	var p Presets
	if err := yaml.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("config: failed to parse presets file: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks every preset names a location and uses in-bounds
// coordinates, per the upstream Query validation rules.
func (p *Presets) Validate() error {
	for _, loc := range p.Locations {
		if loc.Name == "" {
			return errors.New("config: preset location missing a name")
		}
		if loc.Lat < -90 || loc.Lat > 90 {
			return fmt.Errorf("config: preset %q has out-of-range latitude", loc.Name)
		}
		if loc.Lng < -180 || loc.Lng > 180 {
			return fmt.Errorf("config: preset %q has out-of-range longitude", loc.Name)
		}
	}
	return nil
}

// AsLocations converts every preset to a domain.Location, defaulting
// RadiusKm to 25 (the current-air-quality endpoint's own default) when
// unset.
func (p *Presets) AsLocations() []domain.Location {
	out := make([]domain.Location, 0, len(p.Locations))
	for _, l := range p.Locations {
		radius := l.RadiusKm
		if radius <= 0 {
			radius = 25
		}
		out = append(out, domain.Location{Lat: l.Lat, Lng: l.Lng, RadiusKm: radius})
	}
	return out
}
