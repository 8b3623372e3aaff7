// Package canonical merges raw provider payloads into the canonical
// Snapshot model, resolving per-pollutant conflicts and deriving
// overall AQI and data-quality metadata.
package canonical

import (
	"sort"
	"time"

	"github.com/airwatch/aqcore/internal/aqi"
	"github.com/airwatch/aqcore/internal/domain"
)

// Input bundles the optional per-provider contributions the
// Canonicalizer reconciles. Any field may be the zero value when that
// provider did not contribute (timed out, errored with a null
// fallback policy, or was never queried).
type Input struct {
	Location        domain.Location
	ObservedAt      time.Time
	SatellitePresent bool
	GroundPresent    bool
	Measurements    []domain.Measurement
	Stations        []domain.Station
}

// Canonicalize merges in.Measurements/in.Stations into a Snapshot,
// applying the nearest-station-wins conflict policy per pollutant.
// Never fails: a fully-empty Input yields NewEmptySnapshot.
func Canonicalize(in Input) domain.Snapshot {
	if len(in.Measurements) == 0 && len(in.Stations) == 0 {
		return domain.NewEmptySnapshot(in.Location, in.ObservedAt)
	}

	selected := selectByPollutant(in.Measurements)
	stations := dedupStations(in.Stations)
	sources := unionSources(in.Measurements)

	snap := domain.Snapshot{
		Location:   in.Location,
		ObservedAt: in.ObservedAt,
		Pollutants: selected,
		Stations:   stations,
		Sources:    sources,
		DataQuality: domain.DataQuality{
			Confidence: confidence(in.SatellitePresent, in.GroundPresent),
			Coverage:   coverage(len(selected)),
			Resolution: "station",
		},
	}
	snap.AQI, snap.Level = overallAQI(selected)
	return snap
}

// selectByPollutant implements spec.md §4.4 step 2: for each
// pollutant, the measurement with the smallest distanceMeters wins;
// ties broken by newest observedAt, then alphabetical source.
func selectByPollutant(measurements []domain.Measurement) map[domain.Pollutant]domain.Measurement {
	best := map[domain.Pollutant]domain.Measurement{}
	for _, m := range measurements {
		p := m.Pollutant
		if p == "" {
			continue
		}
		current, ok := best[p]
		if !ok || wins(m, current) {
			best[p] = m
		}
	}
	return best
}

// wins reports whether candidate should replace incumbent as the
// selected measurement for a pollutant.
func wins(candidate, incumbent domain.Measurement) bool {
	cd, id := distance(candidate), distance(incumbent)
	if cd != id {
		return cd < id
	}
	if !candidate.ObservedAt.Equal(incumbent.ObservedAt) {
		return candidate.ObservedAt.After(incumbent.ObservedAt)
	}
	return candidate.Source < incumbent.Source
}

func distance(m domain.Measurement) float64 {
	if m.DistanceMeters == nil {
		return 0
	}
	return *m.DistanceMeters
}

// dedupStations unions stations, deduping on (id, source).
func dedupStations(stations []domain.Station) []domain.Station {
	seen := map[string]bool{}
	var out []domain.Station
	for _, s := range stations {
		key := s.Key()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, s)
	}
	return out
}

// unionSources returns the distinct measurement sources, in order of
// first contribution.
func unionSources(measurements []domain.Measurement) []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range measurements {
		if m.Source == "" || seen[m.Source] {
			continue
		}
		seen[m.Source] = true
		out = append(out, m.Source)
	}
	return out
}

// overallAQI is the max AQI over every selected pollutant, or (0, good)
// when none are present.
func overallAQI(selected map[domain.Pollutant]domain.Measurement) (int, domain.Level) {
	max := 0
	for p, m := range selected {
		if v := aqi.AQI(p, m.Concentration); v > max {
			max = v
		}
	}
	return max, aqi.Level(max)
}

// confidence implements spec.md §4.4 step 6.
func confidence(satellite, ground bool) domain.Confidence {
	switch {
	case satellite && ground:
		return domain.ConfidenceHigh
	case satellite || ground:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

func coverage(selectedCount int) domain.Coverage {
	if selectedCount >= len(domain.AllPollutants) {
		return domain.CoverageFull
	}
	return domain.CoveragePartial
}

// SortedStations returns stations ordered by ascending distance, the
// deterministic ordering Snapshot's "ordered set" invariant requires.
func SortedStations(stations []domain.Station) []domain.Station {
	out := make([]domain.Station, len(stations))
	copy(out, stations)
	sort.Slice(out, func(i, j int) bool { return out[i].DistanceMeters < out[j].DistanceMeters })
	return out
}
