package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/airwatch/aqcore/internal/domain"
)

// WeatherClient fetches the current weather reading used by the
// FeatureAssembler's stagnation/dispersion indices. Its payload shape
// differs from the pollutant clients, so it does not implement Client.
// Fallback policy: null — the forecast
// proceeds without weather input, per spec.md §4.2.
type WeatherClient struct {
	httpConfig
}

func NewWeatherClient(baseURL string) *WeatherClient {
	return &WeatherClient{httpConfig{
		name:    "weather",
		baseURL: baseURL,
		timeout: 15 * time.Second,
		ttl:     30 * time.Minute,
		doer:    newHTTPDoer("weather", 15*time.Second),
	}}
}

func (c *WeatherClient) Name() string       { return c.name }
func (c *WeatherClient) TTL() time.Duration { return c.ttl }

type openMeteoResponse struct {
	Current struct {
		Temperature2m   float64 `json:"temperature_2m"`
		RelativeHumidity float64 `json:"relative_humidity_2m"`
		WindSpeed10m    float64 `json:"wind_speed_10m"`
		SurfacePressure float64 `json:"surface_pressure"`
		CloudCover      float64 `json:"cloud_cover"`
		Time            string  `json:"time"`
	} `json:"current"`
}

// Fetch returns the current weather reading. An invalid query returns
// domain.ErrBadRequest. With an empty baseURL, or when the request
// cannot be built, it returns the deterministic mock. A transport
// error, non-2xx status or parse failure returns a zero Weather with
// domain.ErrTimeout (if ctx is done) or domain.ErrUpstream.
func (c *WeatherClient) Fetch(ctx context.Context, q Query) (domain.Weather, error) {
	if err := q.Validate(); err != nil {
		return domain.Weather{}, err
	}
	if c.baseURL == "" {
		return mockWeather(q.Lat, q.Lng, time.Now().UTC()), nil
	}

	url := fmt.Sprintf("%s/v1/forecast?latitude=%f&longitude=%f&current=temperature_2m,relative_humidity_2m,wind_speed_10m,surface_pressure,cloud_cover",
		c.baseURL, q.Lat, q.Lng)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return mockWeather(q.Lat, q.Lng, time.Now().UTC()), nil
	}

	resp, err := c.doer.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return domain.Weather{}, domain.ErrTimeout
		}
		return domain.Weather{}, domain.ErrUpstream
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Weather{}, domain.ErrUpstream
	}

	var parsed openMeteoResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return domain.Weather{}, domain.ErrUpstream
	}

	observedAt, err := time.Parse("2006-01-02T15:04", parsed.Current.Time)
	if err != nil {
		observedAt = time.Now().UTC()
	}

	return domain.Weather{
		TemperatureC:  parsed.Current.Temperature2m,
		HumidityPct:   parsed.Current.RelativeHumidity,
		WindSpeedMs:   parsed.Current.WindSpeed10m,
		PressureHpa:   parsed.Current.SurfacePressure,
		CloudCoverPct: parsed.Current.CloudCover,
		ObservedAt:    observedAt,
	}, nil
}

// mockWeather produces a deterministic synthetic weather reading from
// the same quantize-then-hash technique the pollutant mocks use.
func mockWeather(lat, lng float64, now time.Time) domain.Weather {
	s := seed(lat, lng, domain.Pollutant("weather"))
	u := deterministicUnitInterval(s)

	hour := float64(now.Hour())
	diurnalTemp := 8 * math.Sin((hour-6)*math.Pi/12)

	return domain.Weather{
		TemperatureC:  15 + diurnalTemp + (u-0.5)*4,
		HumidityPct:   50 + u*30,
		WindSpeedMs:   2 + u*6,
		PressureHpa:   1005 + u*25,
		CloudCoverPct: u * 100,
		ObservedAt:    now,
		FromMock:      true,
	}
}
