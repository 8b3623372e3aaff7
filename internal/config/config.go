// Package config loads process-wide configuration at startup: secrets
// and endpoints from the environment (godotenv + os.Getenv, the
// teacher's idiom), plus optional declarative location presets from a
// YAML file. Rotation requires a restart; no secret is ever logged.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is the process-wide configuration loaded once at startup.
type Config struct {
	Port string
	Env  string

	SatelliteBaseURL string
	GroundABaseURL   string
	GroundBBaseURL   string
	WeatherBaseURL   string

	DatabaseURL string

	AllowMocks bool

	SchedulerInterval time.Duration
	AlertCooldown     time.Duration

	PushOutboxCapacity int

	LocationPresetsPath string
}

// Load reads .env (if present, logging and continuing on absence) then
// populates Config from the environment, applying the teacher's
// defaults-with-override pattern.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Info().Msg("no .env file found, using process environment")
	}

	return &Config{
		Port: getEnv("PORT", "8080"),
		Env:  getEnv("GO_ENV", "development"),

		SatelliteBaseURL: getEnv("SATELLITE_BASE_URL", ""),
		GroundABaseURL:   getEnv("GROUND_A_BASE_URL", ""),
		GroundBBaseURL:   getEnv("GROUND_B_BASE_URL", ""),
		WeatherBaseURL:   getEnv("WEATHER_BASE_URL", ""),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		AllowMocks: getEnvBool("ALLOW_MOCKS", true),

		SchedulerInterval: getEnvDuration("SCHEDULER_INTERVAL", 15*time.Minute),
		AlertCooldown:     getEnvDuration("ALERT_COOLDOWN", time.Hour),

		PushOutboxCapacity: getEnvInt("PUSH_OUTBOX_CAPACITY", 64),

		LocationPresetsPath: getEnv("LOCATION_PRESETS_PATH", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvInt(key string, defaultValue int) int {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return defaultValue
	}
	return d
}
