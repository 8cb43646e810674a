package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

// Cache backends.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Config holds environment-based settings
type Config struct {
	Environment   string
	ServerAddress string

	JWTSecret         string
	AdminPasswordHash string

	CacheBackend   string
	DatabaseURL    string
	MigrationsPath string
	RedisAddress   string
	RedisUsername  string
	RedisPassword  string

	MQTTBrokerURL string
	DeviceID      string

	AladhanBaseURL string
	Method         int
	School         int
	FetchRate      float64
	FetchBurst     int

	TimeZone        string
	TickInterval    time.Duration
	RefreshCron     string
	DefaultLocation *model.Location
}

// Development reports whether APP_ENV selects human-readable logs.
func (c *Config) Development() bool {
	return c.Environment == "development"
}

// Zone loads TIMEZONE, or the system zone when unset.
func (c *Config) Zone() (*time.Location, error) {
	if c.TimeZone == "" {
		return time.Local, nil
	}
	zone, err := time.LoadLocation(c.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("TIMEZONE %q: %w", c.TimeZone, err)
	}
	return zone, nil
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Environment:       os.Getenv("APP_ENV"),
		ServerAddress:     getenv("SERVER_ADDRESS", ":8080"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		AdminPasswordHash: os.Getenv("ADMIN_PASSWORD_HASH"),
		CacheBackend:      getenv("CACHE_BACKEND", BackendMemory),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		MigrationsPath:    getenv("MIGRATIONS_PATH", "./migrations"),
		RedisAddress:      os.Getenv("REDIS_ADDRESS"),
		RedisUsername:     os.Getenv("REDIS_USERNAME"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		MQTTBrokerURL:     os.Getenv("MQTT_BROKER_URL"),
		DeviceID:          getenv("DEVICE_ID", "default"),
		AladhanBaseURL:    os.Getenv("ALADHAN_BASE_URL"),
		TimeZone:          os.Getenv("TIMEZONE"),
		RefreshCron:       getenv("REFRESH_CRON", "1 0 * * *"),
	}

	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	switch cfg.CacheBackend {
	case BackendMemory:
	case BackendRedis:
		if cfg.RedisAddress == "" {
			return nil, fmt.Errorf("REDIS_ADDRESS is required for the redis cache backend")
		}
	case BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required for the postgres cache backend")
		}
	default:
		return nil, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	var err error
	if cfg.Method, err = getint("METHOD", 2); err != nil {
		return nil, err
	}
	if cfg.School, err = getint("SCHOOL", 1); err != nil {
		return nil, err
	}
	if cfg.School != 0 && cfg.School != 1 {
		return nil, fmt.Errorf("SCHOOL must be 0 (Shafi) or 1 (Hanafi), got %d", cfg.School)
	}
	if cfg.FetchBurst, err = getint("FETCH_BURST", 3); err != nil {
		return nil, err
	}
	if cfg.FetchRate, err = getfloat("FETCH_RATE", 1); err != nil {
		return nil, err
	}

	tick := getenv("TICK_INTERVAL", "30s")
	if cfg.TickInterval, err = time.ParseDuration(tick); err != nil || cfg.TickInterval <= 0 {
		return nil, fmt.Errorf("invalid TICK_INTERVAL %q", tick)
	}

	if _, err := cfg.Zone(); err != nil {
		return nil, err
	}

	if cfg.DefaultLocation, err = defaultLocation(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// defaultLocation is set only when both DEFAULT_CITY and DEFAULT_COUNTRY are.
func defaultLocation() (*model.Location, error) {
	city, country := os.Getenv("DEFAULT_CITY"), os.Getenv("DEFAULT_COUNTRY")
	if city == "" || country == "" {
		return nil, nil
	}
	lat, err := getfloat("DEFAULT_LATITUDE", 0)
	if err != nil {
		return nil, err
	}
	lon, err := getfloat("DEFAULT_LONGITUDE", 0)
	if err != nil {
		return nil, err
	}
	return &model.Location{
		Name:      city,
		Admin:     os.Getenv("DEFAULT_ADMIN"),
		Country:   country,
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getint(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getfloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return f, nil
}
