package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config is the process configuration, read once at startup.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string
	LogLevel    string
	HTTPAddr    string

	DBDriver string
	DBDSN    string

	SnowflakeNode int64

	// DayBoundaryTZ names the location in which calendar days start.
	DayBoundaryTZ string

	ReliabilityJob      JobConfig
	MonthlyResetJob     JobConfig
	LeaderboardCacheTTL time.Duration

	Tracing TracingConfig
}

type JobConfig struct {
	Enabled     bool
	Interval    time.Duration
	Concurrency int
}

type TracingConfig struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	SamplingRatio    float64
}

// Load reads .env when present and then the process environment.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:       getenv("APP_NAME", "voltway"),
		AppVersion:    getenv("APP_VERSION", "dev"),
		Environment:   getenv("APP_ENV", "development"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		HTTPAddr:      getenv("HTTP_ADDR", ":8080"),
		DBDriver:      strings.ToLower(getenv("DB_DRIVER", "sqlite")),
		DBDSN:         getenv("DB_DSN", "voltway.db"),
		SnowflakeNode: getenvInt64("SNOWFLAKE_NODE", 1),
		DayBoundaryTZ: getenv("DAY_BOUNDARY_TZ", "UTC"),
		ReliabilityJob: JobConfig{
			Enabled:     getenvBool("RELIABILITY_JOB_ENABLED", true),
			Interval:    getenvDuration("RELIABILITY_JOB_INTERVAL", 24*time.Hour),
			Concurrency: int(getenvInt64("RELIABILITY_JOB_CONCURRENCY", 4)),
		},
		MonthlyResetJob: JobConfig{
			Enabled:  getenvBool("MONTHLY_RESET_JOB_ENABLED", true),
			Interval: getenvDuration("MONTHLY_RESET_JOB_INTERVAL", time.Minute),
		},
		LeaderboardCacheTTL: getenvDuration("LEADERBOARD_CACHE_TTL", 15*time.Second),
		Tracing: TracingConfig{
			Enabled:          getenvBool("OTEL_ENABLED", false),
			ExporterEndpoint: getenv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			ExporterProtocol: getenv("OTEL_EXPORTER_OTLP_PROTOCOL", "grpc"),
			SamplingRatio:    getenvFloat("OTEL_SAMPLING_RATIO", 0.1),
		},
	}
}

func (c Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

// DayBoundaryLocation resolves DayBoundaryTZ, falling back to UTC.
func (c Config) DayBoundaryLocation() *time.Location {
	name := strings.TrimSpace(c.DayBoundaryTZ)
	if name == "" || strings.EqualFold(name, "UTC") {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getenvInt64(key string, def int64) int64 {
	v, err := strconv.ParseInt(getenv(key, ""), 10, 64)
	if err != nil {
		return def
	}
	return v
}

func getenvFloat(key string, def float64) float64 {
	v, err := strconv.ParseFloat(getenv(key, ""), 64)
	if err != nil {
		return def
	}
	return v
}

func getenvBool(key string, def bool) bool {
	v, err := strconv.ParseBool(getenv(key, ""))
	if err != nil {
		return def
	}
	return v
}

func getenvDuration(key string, def time.Duration) time.Duration {
	v, err := time.ParseDuration(getenv(key, ""))
	if err != nil || v < 0 {
		return def
	}
	return v
}
