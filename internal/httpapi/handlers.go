// Package httpapi implements the transport boundary: Fiber handlers for
// every External Interface, translating validated query/body params
// into pipeline/registry/dispatcher calls and canonical errors into the
// bad-request/internal split the rest of the system never leaks past.
package httpapi

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/airwatch/aqcore/internal/alert"
	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/forecast"
	"github.com/airwatch/aqcore/internal/pipeline"
	"github.com/airwatch/aqcore/internal/subscription"
)

// Toucher marks a location as recently requested, keeping it "hot"
// (glossary) for the scheduler's recency window even with no
// subscribers there.
type Toucher interface {
	Touch(loc domain.Location)
}

// Handler owns every dependency the route handlers call into.
type Handler struct {
	pipeline   *pipeline.Pipeline
	registry   *subscription.Registry
	dispatcher *alert.Dispatcher
	toucher    Toucher
}

// NewHandler builds a Handler. toucher may be nil; a nil toucher
// simply means on-demand requests never mark a location hot.
func NewHandler(p *pipeline.Pipeline, reg *subscription.Registry, disp *alert.Dispatcher, toucher Toucher) *Handler {
	return &Handler{pipeline: p, registry: reg, dispatcher: disp, toucher: toucher}
}

func (h *Handler) touch(loc domain.Location) {
	if h.toucher != nil {
		h.toucher.Touch(loc)
	}
}

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "service": "aqcore"})
}

func parseLocation(c *fiber.Ctx, defaultRadius float64) (domain.Location, error) {
	lat := c.QueryFloat("lat", 0)
	lng := c.QueryFloat("lng", 0)
	radius := c.QueryFloat("radiusKm", defaultRadius)
	if !c.Request().URI().QueryArgs().Has("lat") || !c.Request().URI().QueryArgs().Has("lng") {
		return domain.Location{}, domain.ErrBadRequest
	}
	loc := domain.Location{Lat: lat, Lng: lng, RadiusKm: radius}
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 || radius <= 0 || radius > 100 {
		return domain.Location{}, domain.ErrBadRequest
	}
	return loc, nil
}

func writeError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrBadRequest):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "bad_request", "message": err.Error()})
	default:
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal", "message": "internal error"})
	}
}

// CurrentAirQuality implements GET current-air-quality.
func (h *Handler) CurrentAirQuality(c *fiber.Ctx) error {
	loc, err := parseLocation(c, 25)
	if err != nil {
		return writeError(c, err)
	}
	h.touch(loc)
	snap, err := h.pipeline.Snapshot(c.Context(), loc)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(snap)
}

func parseHorizon(c *fiber.Ctx) (int, error) {
	horizon := c.QueryInt("horizonHours", 24)
	if horizon < 1 || horizon > 72 {
		return 0, domain.ErrBadRequest
	}
	return horizon, nil
}

// Forecast implements GET forecast.
func (h *Handler) Forecast(c *fiber.Ctx) error {
	loc, err := parseLocation(c, 25)
	if err != nil {
		return writeError(c, err)
	}
	horizon, err := parseHorizon(c)
	if err != nil {
		return writeError(c, err)
	}
	h.touch(loc)
	f, err := h.pipeline.Forecast(c.Context(), loc, horizon)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(f)
}

// PollutantForecast implements GET pollutant-forecast, narrowing a full
// Forecast down to a single pollutant's predictions, bands, alerts and
// recommendations (spec.md §6).
func (h *Handler) PollutantForecast(c *fiber.Ctx) error {
	loc, err := parseLocation(c, 25)
	if err != nil {
		return writeError(c, err)
	}
	horizon, err := parseHorizon(c)
	if err != nil {
		return writeError(c, err)
	}
	p := domain.NormalizePollutant(c.Query("pollutant"))
	if p == "" {
		return writeError(c, domain.ErrBadRequest)
	}
	h.touch(loc)

	f, err := h.pipeline.Forecast(c.Context(), loc, horizon)
	if err != nil {
		return writeError(c, err)
	}

	alerts := filterAlertsByPollutant(f.Alerts, p)
	recs := filterRecommendationsByHours(f.Recommendations, alertHours(alerts))

	return c.JSON(fiber.Map{
		"location":        f.Location,
		"pollutant":       p,
		"horizonHours":    f.HorizonHours,
		"generatedAt":     f.GeneratedAt,
		"predictions":     f.PerPollutant[p],
		"confidence":      f.Confidence[p],
		"alerts":          alerts,
		"recommendations": recs,
	})
}

// filterAlertsByPollutant narrows a Forecast's alerts down to the ones
// raised for pollutant p; AQI-level alerts (empty Pollutant) aren't
// about any single pollutant and are excluded.
func filterAlertsByPollutant(alerts []domain.Alert, p domain.Pollutant) []domain.Alert {
	var out []domain.Alert
	for _, a := range alerts {
		if a.Pollutant == p {
			out = append(out, a)
		}
	}
	return out
}

// alertHours collects the distinct hoursUntil an alert set touches.
func alertHours(alerts []domain.Alert) map[int]bool {
	hours := make(map[int]bool, len(alerts))
	for _, a := range alerts {
		hours[a.HoursUntil] = true
	}
	return hours
}

// filterRecommendationsByHours narrows the AQI-level recommendation
// list down to the hours pollutant-specific alerts actually fired at,
// since Recommendation itself carries no per-pollutant attribution.
func filterRecommendationsByHours(recs []domain.Recommendation, hours map[int]bool) []domain.Recommendation {
	var out []domain.Recommendation
	for _, r := range recs {
		if hours[r.Hour] {
			out = append(out, r)
		}
	}
	return out
}

// AqiForecast implements GET aqi-forecast: the AQI trajectory, its
// alerts/recommendations, and the derived rollup summary.
func (h *Handler) AqiForecast(c *fiber.Ctx) error {
	loc, err := parseLocation(c, 25)
	if err != nil {
		return writeError(c, err)
	}
	horizon, err := parseHorizon(c)
	if err != nil {
		return writeError(c, err)
	}
	h.touch(loc)
	f, err := h.pipeline.Forecast(c.Context(), loc, horizon)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(fiber.Map{
		"aqi":             f.AQI,
		"alerts":          f.Alerts,
		"recommendations": f.Recommendations,
		"summary":         forecast.Summarize(f.AQI),
	})
}

type subscribeRequest struct {
	SubscriberID string          `json:"subscriberId"`
	Location     domain.Location `json:"location"`
	Prefs        domain.Prefs    `json:"prefs"`
}

// Subscribe implements POST subscribe.
func (h *Handler) Subscribe(c *fiber.Ctx) error {
	var req subscribeRequest
	if err := c.BodyParser(&req); err != nil || req.SubscriberID == "" {
		return writeError(c, domain.ErrBadRequest)
	}
	if req.Location.Lat < -90 || req.Location.Lat > 90 || req.Location.Lng < -180 || req.Location.Lng > 180 {
		return writeError(c, domain.ErrBadRequest)
	}
	sub := h.registry.Subscribe(req.SubscriberID, req.Location, req.Prefs)
	return c.JSON(sub)
}

// Unsubscribe implements DELETE unsubscribe.
func (h *Handler) Unsubscribe(c *fiber.Ctx) error {
	id := c.Query("subscriberId")
	if id == "" {
		return writeError(c, domain.ErrBadRequest)
	}
	h.registry.Unsubscribe(id)
	return c.JSON(fiber.Map{"acknowledged": true})
}

type prefsRequest struct {
	SubscriberID           string                                          `json:"subscriberId"`
	AQIThresholds          *domain.AQIThresholds                           `json:"aqiThresholds"`
	PerPollutantThresholds map[domain.Pollutant]domain.PollutantThresholds `json:"perPollutantThresholds"`
	Channels               []domain.Channel                                `json:"channels"`
	Enabled                *bool                                           `json:"enabled"`
}

// Prefs implements PUT prefs.
func (h *Handler) Prefs(c *fiber.Ctx) error {
	var req prefsRequest
	if err := c.BodyParser(&req); err != nil || req.SubscriberID == "" {
		return writeError(c, domain.ErrBadRequest)
	}
	sub, err := h.registry.UpdatePrefs(req.SubscriberID, subscription.PrefsPatch{
		AQIThresholds:          req.AQIThresholds,
		PerPollutantThresholds: req.PerPollutantThresholds,
		Channels:               req.Channels,
		Enabled:                req.Enabled,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(sub)
}

// History implements GET history.
func (h *Handler) History(c *fiber.Ctx) error {
	id := c.Query("subscriberId")
	if id == "" {
		return writeError(c, domain.ErrBadRequest)
	}
	limit := c.QueryInt("limit", 100)
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	return c.JSON(fiber.Map{"entries": h.dispatcher.History(id, limit)})
}

// Test implements POST test: a synthetic alert bypassing cooldown, used
// to let a client verify its channel wiring end to end.
func (h *Handler) Test(c *fiber.Ctx) error {
	id := c.Query("subscriberId")
	if id == "" {
		return writeError(c, domain.ErrBadRequest)
	}
	sub, ok := h.registry.Get(id)
	if !ok {
		return writeError(c, domain.ErrBadRequest)
	}
	alerts := h.dispatcher.Test(sub, sub.Location, time.Now().UTC())
	return c.JSON(fiber.Map{"alerts": alerts})
}
