// Package pipeline wires the upstream clients, CacheLayer, Canonicalizer,
// FeatureAssembler and ForecastEngine into the single refresh path the
// Scheduler drives and request handlers call on demand.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/airwatch/aqcore/internal/cache"
	"github.com/airwatch/aqcore/internal/canonical"
	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/features"
	"github.com/airwatch/aqcore/internal/forecast"
	"github.com/airwatch/aqcore/internal/metrics"
	"github.com/airwatch/aqcore/internal/storage"
	"github.com/airwatch/aqcore/internal/upstream"
	"github.com/airwatch/aqcore/pkg/geo"
)

// cacheKey is a quantized, radius-aware key so nearby queries at the
// same effective resolution coalesce through a single CacheLayer entry
// instead of each minting its own singleflight group.
type cacheKey struct {
	lat, lng, radius float64
}

func (k cacheKey) String() string {
	return fmt.Sprintf("%.2f,%.2f,%.1f", geo.Quantize(k.lat), geo.Quantize(k.lng), k.radius)
}

// Pipeline performs the per-location refresh: fetch every upstream
// provider (through the cache layer), canonicalize, assemble features,
// and generate a forecast. It satisfies scheduler.Pipeline and is also
// called directly by on-demand request handlers.
type Pipeline struct {
	satellite *upstream.SatelliteClient
	groundA   *upstream.GroundClientA
	groundB   *upstream.GroundClientB
	weather   *upstream.WeatherClient

	satelliteCache *cache.Cache[cacheKey, upstream.Payload]
	groundACache   *cache.Cache[cacheKey, upstream.Payload]
	groundBCache   *cache.Cache[cacheKey, upstream.Payload]
	weatherCache   *cache.Cache[cacheKey, domain.Weather]

	snapshotsMu sync.RWMutex
	snapshots   map[string]domain.Snapshot

	sink storage.Sink
}

// Config bundles the upstream clients a Pipeline wires together. Any
// client may be nil; its contribution is simply skipped.
type Config struct {
	Satellite *upstream.SatelliteClient
	GroundA   *upstream.GroundClientA
	GroundB   *upstream.GroundClientB
	Weather   *upstream.WeatherClient
	Sink      storage.Sink
}

// New builds a Pipeline, allocating one CacheLayer per provider so each
// keeps its own TTL and singleflight group.
func New(cfg Config) *Pipeline {
	keyFn := func(k cacheKey) string { return k.String() }

	sink := cfg.Sink
	if sink == nil {
		sink = storage.NewNoopSink()
	}
	return &Pipeline{
		satellite:      cfg.Satellite,
		groundA:        cfg.GroundA,
		groundB:        cfg.GroundB,
		weather:        cfg.Weather,
		satelliteCache: cache.New[cacheKey, upstream.Payload](15*time.Minute, keyFn),
		groundACache:   cache.New[cacheKey, upstream.Payload](10*time.Minute, keyFn),
		groundBCache:   cache.New[cacheKey, upstream.Payload](10*time.Minute, keyFn),
		weatherCache:   cache.New[cacheKey, domain.Weather](30*time.Minute, keyFn),
		snapshots:      make(map[string]domain.Snapshot),
		sink:           sink,
	}
}

// Snapshot performs satellite + ground fetches (through the cache
// layer), canonicalizes them, and records the audit sink entry. It is
// the current-air-quality endpoint's implementation and the first half
// of RefreshLocation.
func (p *Pipeline) Snapshot(ctx context.Context, loc domain.Location) (domain.Snapshot, error) {
	q := upstream.Query{Lat: loc.Lat, Lng: loc.Lng, RadiusKm: loc.RadiusKm, HorizonHours: 1}
	if err := q.Validate(); err != nil {
		return domain.Snapshot{}, err
	}
	key := cacheKey{lat: loc.Lat, lng: loc.Lng, radius: loc.RadiusKm}

	var satPayload, gaPayload, gbPayload upstream.Payload
	satPresent, groundPresent := false, false

	if p.satellite != nil {
		if v, hit := p.satelliteCache.Get(key); hit {
			metrics.CacheHits.WithLabelValues("satellite").Inc()
			satPayload, satPresent = v, true
		} else if v, err := p.satelliteCache.GetOrCompute(ctx, key, func(ctx context.Context) (upstream.Payload, error) {
			metrics.CacheMisses.WithLabelValues("satellite").Inc()
			return p.satellite.Fetch(ctx, q)
		}); err == nil {
			satPayload, satPresent = v, true
		} else {
			log.Warn().Err(err).Msg("satellite fetch failed")
		}
	}
	if p.groundA != nil {
		if v, hit := p.groundACache.Get(key); hit {
			metrics.CacheHits.WithLabelValues("epa-ground").Inc()
			gaPayload, groundPresent = v, true
		} else if v, err := p.groundACache.GetOrCompute(ctx, key, func(ctx context.Context) (upstream.Payload, error) {
			metrics.CacheMisses.WithLabelValues("epa-ground").Inc()
			return p.groundA.Fetch(ctx, q)
		}); err == nil {
			gaPayload, groundPresent = v, true
		}
	}
	if p.groundB != nil {
		if v, hit := p.groundBCache.Get(key); hit {
			metrics.CacheHits.WithLabelValues("openaq-ground").Inc()
			gbPayload, groundPresent = v, true
		} else if v, err := p.groundBCache.GetOrCompute(ctx, key, func(ctx context.Context) (upstream.Payload, error) {
			metrics.CacheMisses.WithLabelValues("openaq-ground").Inc()
			return p.groundB.Fetch(ctx, q)
		}); err == nil {
			gbPayload, groundPresent = v, true
		}
	}

	var measurements []domain.Measurement
	var stations []domain.Station
	measurements = append(measurements, satPayload.Measurements...)
	measurements = append(measurements, gaPayload.Measurements...)
	measurements = append(measurements, gbPayload.Measurements...)
	stations = append(stations, gaPayload.Stations...)
	stations = append(stations, gbPayload.Stations...)

	snap := canonical.Canonicalize(canonical.Input{
		Location:         loc,
		ObservedAt:       time.Now().UTC(),
		SatellitePresent: satPresent,
		GroundPresent:    groundPresent,
		Measurements:     measurements,
		Stations:         stations,
	})

	p.snapshotsMu.Lock()
	p.snapshots[key.String()] = snap
	p.snapshotsMu.Unlock()

	if err := p.sink.RecordSnapshot(ctx, snap); err != nil {
		log.Warn().Err(err).Msg("audit sink failed to record snapshot")
	}
	return snap, nil
}

// Forecast runs Snapshot, fetches current weather, assembles the
// feature window, and generates a Forecast. It is the forecast and
// aqi-forecast endpoints' shared implementation.
func (p *Pipeline) Forecast(ctx context.Context, loc domain.Location, horizonHours int) (domain.Forecast, error) {
	snap, err := p.Snapshot(ctx, loc)
	if err != nil {
		return domain.Forecast{}, err
	}

	q := upstream.Query{Lat: loc.Lat, Lng: loc.Lng, RadiusKm: loc.RadiusKm, HorizonHours: horizonHours}
	if err := q.Validate(); err != nil {
		return domain.Forecast{}, err
	}

	var w domain.Weather
	weatherAvailable := domain.SourceUnavailable
	if p.weather != nil {
		key := cacheKey{lat: loc.Lat, lng: loc.Lng, radius: loc.RadiusKm}
		if v, hit := p.weatherCache.Get(key); hit {
			metrics.CacheHits.WithLabelValues("weather").Inc()
			w, weatherAvailable = v, domain.SourceAvailable
		} else if v, err := p.weatherCache.GetOrCompute(ctx, key, func(ctx context.Context) (domain.Weather, error) {
			metrics.CacheMisses.WithLabelValues("weather").Inc()
			return p.weather.Fetch(ctx, q)
		}); err == nil {
			w, weatherAvailable = v, domain.SourceAvailable
		}
	}

	cur := features.Current{}
	if m, ok := snap.Pollutants[domain.NO2]; ok {
		cur.NO2 = m.Concentration
	}
	if m, ok := snap.Pollutants[domain.O3]; ok {
		cur.O3 = m.Concentration
	}
	if m, ok := snap.Pollutants[domain.SO2]; ok {
		cur.SO2 = m.Concentration
	}
	rows := features.Assemble(time.Now().UTC(), features.Weather{
		TemperatureC:  w.TemperatureC,
		HumidityPct:   w.HumidityPct,
		WindSpeedMs:   w.WindSpeedMs,
		PressureHpa:   w.PressureHpa,
		CloudCoverPct: w.CloudCoverPct,
	}, cur)

	f := forecast.Generate(forecast.Input{
		Location:     loc,
		HorizonHours: horizonHours,
		GeneratedAt:  time.Now().UTC(),
		Snapshot:     snap,
		DataSources: domain.DataSources{
			Satellite: sourceAvailability(contains(snap.Sources, "satellite")),
			Ground:    sourceAvailability(len(snap.Stations) > 0),
			Weather:   weatherAvailable,
		},
		Features: rows,
	})
	metrics.ForecastGenerations.Inc()
	return f, nil
}

func sourceAvailability(present bool) domain.SourceAvailability {
	if present {
		return domain.SourceAvailable
	}
	return domain.SourceUnavailable
}

// RefreshLocation satisfies scheduler.Pipeline: it regenerates the
// cached snapshot and forecast for loc, priming the CacheLayer for the
// next request.
func (p *Pipeline) RefreshLocation(ctx context.Context, loc domain.Location) error {
	_, err := p.Forecast(ctx, loc, 24)
	return err
}

// Sweep evicts expired entries from every provider cache. Satisfies
// scheduler.Sweeper (spec.md §4.9 step 1: "sweep all caches").
func (p *Pipeline) Sweep() {
	p.satelliteCache.Sweep()
	p.groundACache.Sweep()
	p.groundBCache.Sweep()
	p.weatherCache.Sweep()
}

func contains(ss []string, v string) bool {
	for _, s := range ss {
		if s == v {
			return true
		}
	}
	return false
}
