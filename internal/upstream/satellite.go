package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

// satellitePollutants are the species the satellite product reports.
var satellitePollutants = []domain.Pollutant{domain.NO2, domain.O3, domain.SO2, domain.HCHO}

// SatelliteClient fetches satellite-derived column concentrations.
// Fallback policy: deterministic mock (spec.md §4.2 defaults table).
type SatelliteClient struct {
	httpConfig
}

// NewSatelliteClient builds a SatelliteClient pointed at baseURL (empty
// makes Fetch always return the deterministic mock), with the 15min/30s
// defaults.
func NewSatelliteClient(baseURL string) *SatelliteClient {
	return &SatelliteClient{httpConfig{
		name:    "satellite",
		baseURL: baseURL,
		timeout: 30 * time.Second,
		ttl:     15 * time.Minute,
		doer:    newHTTPDoer("satellite", 30*time.Second),
	}}
}

func (c *SatelliteClient) Name() string        { return c.name }
func (c *SatelliteClient) TTL() time.Duration  { return c.ttl }

type satelliteResponse struct {
	Cells []struct {
		Pollutant     string  `json:"pollutant"`
		Concentration float64 `json:"concentration"`
		ObservedAt    string  `json:"observedAt"`
	} `json:"cells"`
}

// Fetch implements Client. On transport error, non-2xx or parse failure
// it returns the deterministic mock with a nil error. If ctx is done
// when the request fails, it returns the mock together with
// domain.ErrTimeout.
func (c *SatelliteClient) Fetch(ctx context.Context, q Query) (Payload, error) {
	if err := q.Validate(); err != nil {
		return Payload{}, err
	}
	if c.baseURL == "" {
		return MockPayload(c.name, q, satellitePollutants, time.Now().UTC()), nil
	}

	url := fmt.Sprintf("%s/column?lat=%f&lng=%f&radius=%f", c.baseURL, q.Lat, q.Lng, q.RadiusKm)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return MockPayload(c.name, q, satellitePollutants, time.Now().UTC()), nil
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return MockPayload(c.name, q, satellitePollutants, time.Now().UTC()), domain.ErrTimeout
		}
		return MockPayload(c.name, q, satellitePollutants, time.Now().UTC()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return MockPayload(c.name, q, satellitePollutants, time.Now().UTC()), nil
	}

	var parsed satelliteResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return MockPayload(c.name, q, satellitePollutants, time.Now().UTC()), nil
	}

	payload := Payload{Provider: c.name}
	for _, cell := range parsed.Cells {
		p := domain.NormalizePollutant(cell.Pollutant)
		if p == "" {
			continue
		}
		observedAt, err := time.Parse(time.RFC3339, cell.ObservedAt)
		if err != nil {
			observedAt = time.Now().UTC()
		}
		payload.Measurements = append(payload.Measurements, domain.Measurement{
			Pollutant:     p,
			Concentration: cell.Concentration,
			Unit:          p.CanonicalUnit(),
			Source:        c.name,
			ObservedAt:    observedAt,
		})
	}
	return payload, nil
}
