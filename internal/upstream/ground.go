package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

// groundPollutants are the species both ground networks report.
var groundPollutants = []domain.Pollutant{domain.PM25, domain.PM10, domain.O3, domain.NO2, domain.SO2, domain.CO}

// GroundClientA models an EPA-style ground-station network. Fallback
// policy: null — on failure it is simply skipped by the Canonicalizer,
// per spec.md §4.2.
type GroundClientA struct {
	httpConfig
}

func NewGroundClientA(baseURL string) *GroundClientA {
	return &GroundClientA{httpConfig{
		name:    "epa-ground",
		baseURL: baseURL,
		timeout: 15 * time.Second,
		ttl:     10 * time.Minute,
		doer:    newHTTPDoer("epa-ground", 15*time.Second),
	}}
}

func (c *GroundClientA) Name() string       { return c.name }
func (c *GroundClientA) TTL() time.Duration { return c.ttl }

type epaStationResponse struct {
	Stations []struct {
		ID       string  `json:"id"`
		Name     string  `json:"name"`
		Lat      float64 `json:"lat"`
		Lng      float64 `json:"lng"`
		Readings []struct {
			Pollutant     string  `json:"parameter"`
			Concentration float64 `json:"value"`
			Unit          string  `json:"unit"`
			ObservedAt    string  `json:"observedAt"`
		} `json:"readings"`
	} `json:"stations"`
}

// Fetch implements Client. Because GroundClientA's fallback is "null",
// it returns the original error unchanged on any failure; callers must
// treat a non-nil error as "skip this provider", not as fatal.
func (c *GroundClientA) Fetch(ctx context.Context, q Query) (Payload, error) {
	if err := q.Validate(); err != nil {
		return Payload{}, err
	}
	if c.baseURL == "" {
		return Payload{}, domain.ErrUpstream
	}

	url := fmt.Sprintf("%s/stations?lat=%f&lng=%f&radius=%f", c.baseURL, q.Lat, q.Lng, q.RadiusKm)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return Payload{}, domain.ErrInternal
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return Payload{}, domain.ErrTimeout
		}
		return Payload{}, domain.ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Payload{}, domain.ErrUpstream
	}

	var parsed epaStationResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Payload{}, domain.ErrUpstream
	}

	payload := Payload{Provider: c.name}
	for _, st := range parsed.Stations {
		station := domain.Station{ID: st.ID, Source: c.name, Name: st.Name, Lat: st.Lat, Lng: st.Lng}
		payload.Stations = append(payload.Stations, station)
		for _, r := range st.Readings {
			p := domain.NormalizePollutant(r.Pollutant)
			if p == "" {
				continue
			}
			observedAt, err := time.Parse(time.RFC3339, r.ObservedAt)
			if err != nil {
				observedAt = time.Now().UTC()
			}
			payload.Measurements = append(payload.Measurements, domain.Measurement{
				Pollutant:     p,
				Concentration: r.Concentration,
				Unit:          p.CanonicalUnit(),
				Source:        c.name,
				StationID:     st.ID,
				ObservedAt:    observedAt,
			})
		}
	}
	return payload, nil
}

// GroundClientB models an OpenAQ-style community ground network.
// Fallback policy: deterministic mock.
type GroundClientB struct {
	httpConfig
}

func NewGroundClientB(baseURL string) *GroundClientB {
	return &GroundClientB{httpConfig{
		name:    "openaq-ground",
		baseURL: baseURL,
		timeout: 15 * time.Second,
		ttl:     10 * time.Minute,
		doer:    newHTTPDoer("openaq-ground", 15*time.Second),
	}}
}

func (c *GroundClientB) Name() string       { return c.name }
func (c *GroundClientB) TTL() time.Duration { return c.ttl }

type openAQResponse struct {
	Results []struct {
		Location   string  `json:"location"`
		Parameter  string  `json:"parameter"`
		Value      float64 `json:"value"`
		Unit       string  `json:"unit"`
		Date       string  `json:"date"`
		Coordinates struct {
			Lat float64 `json:"latitude"`
			Lng float64 `json:"longitude"`
		} `json:"coordinates"`
	} `json:"results"`
}

func (c *GroundClientB) Fetch(ctx context.Context, q Query) (Payload, error) {
	if err := q.Validate(); err != nil {
		return Payload{}, err
	}
	if c.baseURL == "" {
		return MockPayload(c.name, q, groundPollutants, time.Now().UTC()), nil
	}

	url := fmt.Sprintf("%s/measurements?coordinates=%f,%f&radius=%f", c.baseURL, q.Lat, q.Lng, q.RadiusKm*1000)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return MockPayload(c.name, q, groundPollutants, time.Now().UTC()), nil
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return MockPayload(c.name, q, groundPollutants, time.Now().UTC()), domain.ErrTimeout
		}
		return MockPayload(c.name, q, groundPollutants, time.Now().UTC()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MockPayload(c.name, q, groundPollutants, time.Now().UTC()), nil
	}

	var parsed openAQResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return MockPayload(c.name, q, groundPollutants, time.Now().UTC()), nil
	}

	payload := Payload{Provider: c.name}
	stationSeen := map[string]bool{}
	for _, r := range parsed.Results {
		p := domain.NormalizePollutant(r.Parameter)
		if p == "" {
			continue
		}
		if !stationSeen[r.Location] {
			stationSeen[r.Location] = true
			payload.Stations = append(payload.Stations, domain.Station{
				ID: r.Location, Source: c.name, Name: r.Location,
				Lat: r.Coordinates.Lat, Lng: r.Coordinates.Lng,
			})
		}
		observedAt, err := time.Parse(time.RFC3339, r.Date)
		if err != nil {
			observedAt = time.Now().UTC()
		}
		payload.Measurements = append(payload.Measurements, domain.Measurement{
			Pollutant:     p,
			Concentration: r.Value,
			Unit:          p.CanonicalUnit(),
			Source:        c.name,
			StationID:     r.Location,
			ObservedAt:    observedAt,
		})
	}
	return payload, nil
}
