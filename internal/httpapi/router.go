package httpapi

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airwatch/aqcore/internal/alert"
	"github.com/airwatch/aqcore/internal/pipeline"
	"github.com/airwatch/aqcore/internal/subscription"
)

// SetupRoutes registers every External Interface route (spec.md §6)
// plus a health check and the Prometheus scrape endpoint. toucher may
// be nil.
func SetupRoutes(app *fiber.App, p *pipeline.Pipeline, reg *subscription.Registry, disp *alert.Dispatcher, toucher Toucher) {
	handler := NewHandler(p, reg, disp, toucher)

	app.Get("/health", handler.HealthCheck)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api/v1")
	api.Get("/current-air-quality", handler.CurrentAirQuality)
	api.Get("/forecast", handler.Forecast)
	api.Get("/pollutant-forecast", handler.PollutantForecast)
	api.Get("/aqi-forecast", handler.AqiForecast)

	api.Post("/subscribe", handler.Subscribe)
	api.Delete("/unsubscribe", handler.Unsubscribe)
	api.Put("/prefs", handler.Prefs)
	api.Get("/history", handler.History)
	api.Post("/test", handler.Test)
}
