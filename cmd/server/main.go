// Command server wires every core component (upstream clients, cache,
// canonicalizer, forecast engine, subscription registry, alert
// dispatcher, push bus, scheduler) behind the Fiber transport shell,
// grounded on the teacher's cmd/server/main.go dependency-injection
// style: build leaves first, hand capability handles down, never let a
// callee retain a back-reference it does not need (spec.md §9).
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/airwatch/aqcore/internal/alert"
	"github.com/airwatch/aqcore/internal/config"
	"github.com/airwatch/aqcore/internal/domain"
	"github.com/airwatch/aqcore/internal/httpapi"
	"github.com/airwatch/aqcore/internal/pipeline"
	"github.com/airwatch/aqcore/internal/pushbus"
	"github.com/airwatch/aqcore/internal/scheduler"
	"github.com/airwatch/aqcore/internal/storage"
	"github.com/airwatch/aqcore/internal/subscription"
	"github.com/airwatch/aqcore/internal/upstream"
)

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	cfg := config.Load()
	if cfg.Env == "production" {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	presets, err := config.LoadPresets(cfg.LocationPresetsPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load location presets")
	}

	sink := buildSink(cfg)

	p := pipeline.New(pipeline.Config{
		Satellite: upstream.NewSatelliteClient(cfg.SatelliteBaseURL),
		GroundA:   upstream.NewGroundClientA(cfg.GroundABaseURL),
		GroundB:   upstream.NewGroundClientB(cfg.GroundBBaseURL),
		Weather:   upstream.NewWeatherClient(cfg.WeatherBaseURL),
		Sink:      sink,
	})

	registry := subscription.NewRegistry()
	bus := pushbus.New(cfg.PushOutboxCapacity)
	dispatcher := alert.New(bus, alert.NewLogSink("email"), alert.NewLogSink("sms"), cfg.AlertCooldown)
	broadcaster := pipeline.NewBroadcaster(p, bus, registry, dispatcher, sink)

	hotSource := &presetUnion{registry: registry, presets: presets.AsLocations()}
	hotTracker := scheduler.NewHotLocationTracker(hotSource, cfg.SchedulerInterval)

	sched := scheduler.New(broadcaster, hotTracker, scheduler.Config{
		Interval:     cfg.SchedulerInterval,
		ShutdownWait: 30 * time.Second,
	})

	rootCtx, rootCancel := context.WithCancel(context.Background())
	defer rootCancel()
	sched.Start(rootCtx)

	app := fiber.New(fiber.Config{
		AppName:      "aqcore v1",
		ReadTimeout:  45 * time.Second,
		WriteTimeout: 45 * time.Second,
		ErrorHandler: customErrorHandler,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${status} - ${method} ${path} (${latency})\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))
	app.Use(limiter.New(limiter.Config{
		Max:        120,
		Expiration: time.Minute,
	}))

	httpapi.SetupRoutes(app, p, registry, dispatcher, hotTracker)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("aqcore starting")
		if err := app.Listen(":" + cfg.Port); err != nil {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down")
	sched.Stop()
	if err := app.ShutdownWithTimeout(5 * time.Second); err != nil {
		log.Warn().Err(err).Msg("server forced to shut down")
	}
	log.Info().Msg("exited gracefully")
}

// buildSink selects the Postgres-backed audit sink when a database URL
// is configured, falling back to the in-memory no-op (spec.md §1: the
// core's state is in-memory; persistence is an optional collaborator).
func buildSink(cfg *config.Config) storage.Sink {
	if cfg.DatabaseURL == "" {
		return storage.NewNoopSink()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("could not connect to postgres, falling back to in-memory audit sink")
		return storage.NewNoopSink()
	}
	pgSink := storage.NewPostgresSink(pool)
	if err := pgSink.Migrate(ctx); err != nil {
		log.Warn().Err(err).Msg("postgres audit table migration failed, falling back to in-memory audit sink")
		pool.Close()
		return storage.NewNoopSink()
	}
	log.Info().Msg("connected to postgres audit sink")
	return pgSink
}

// presetUnion feeds the Scheduler's HotLocationTracker both the live
// subscriber set and the deployment's static presets, so a location
// with no subscribers yet (e.g. a city dashboard with no alert
// subscribers) still refreshes on the fixed cadence.
type presetUnion struct {
	registry *subscription.Registry
	presets  []domain.Location
}

func (u *presetUnion) AllLocations() []domain.Location {
	out := append([]domain.Location{}, u.presets...)
	return append(out, u.registry.AllLocations()...)
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "internal error"

	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	return c.Status(code).JSON(fiber.Map{"error": true, "message": message})
}
