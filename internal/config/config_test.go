package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Nixie-Tech-LLC/athan/internal/model"
)

var allKeys = []string{
	"APP_ENV", "SERVER_ADDRESS", "JWT_SECRET", "ADMIN_PASSWORD_HASH",
	"CACHE_BACKEND", "DATABASE_URL", "MIGRATIONS_PATH",
	"REDIS_ADDRESS", "REDIS_USERNAME", "REDIS_PASSWORD",
	"MQTT_BROKER_URL", "DEVICE_ID", "ALADHAN_BASE_URL",
	"METHOD", "SCHOOL", "FETCH_RATE", "FETCH_BURST",
	"TIMEZONE", "TICK_INTERVAL", "REFRESH_CRON",
	"DEFAULT_CITY", "DEFAULT_ADMIN", "DEFAULT_COUNTRY", "DEFAULT_LATITUDE", "DEFAULT_LONGITUDE",
}

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, k := range allKeys {
		t.Setenv(k, "")
	}
	t.Setenv("JWT_SECRET", "secret")
}

func TestLoadDefaults(t *testing.T) {
	cleanEnv(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.ServerAddress)
	assert.Equal(t, BackendMemory, cfg.CacheBackend)
	assert.Equal(t, "./migrations", cfg.MigrationsPath)
	assert.Equal(t, "default", cfg.DeviceID)
	assert.Equal(t, 2, cfg.Method)
	assert.Equal(t, 1, cfg.School)
	assert.Equal(t, 30*time.Second, cfg.TickInterval)
	assert.Equal(t, "1 0 * * *", cfg.RefreshCron)
	assert.Nil(t, cfg.DefaultLocation)
	assert.False(t, cfg.Development())

	zone, err := cfg.Zone()
	require.NoError(t, err)
	assert.Equal(t, time.Local, zone)
}

func TestLoadRequiresSecret(t *testing.T) {
	cleanEnv(t)
	t.Setenv("JWT_SECRET", "")

	_, err := Load()
	assert.ErrorContains(t, err, "JWT_SECRET")
}

func TestLoadBackendRequirements(t *testing.T) {
	tests := []struct {
		backend string
		env     map[string]string
		wantErr string
	}{
		{backend: "redis", wantErr: "REDIS_ADDRESS"},
		{backend: "redis", env: map[string]string{"REDIS_ADDRESS": "localhost:6379"}},
		{backend: "postgres", wantErr: "DATABASE_URL"},
		{backend: "postgres", env: map[string]string{"DATABASE_URL": "postgres://localhost/athan"}},
		{backend: "etcd", wantErr: "unknown CACHE_BACKEND"},
	}
	for _, tt := range tests {
		t.Run(tt.backend+"/"+tt.wantErr, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv("CACHE_BACKEND", tt.backend)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			cfg, err := Load()
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.backend, cfg.CacheBackend)
		})
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"METHOD":        "isna",
		"SCHOOL":        "3",
		"TICK_INTERVAL": "soon",
		"TIMEZONE":      "Nowhere/Special",
		"FETCH_RATE":    "fast",
	}
	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			cleanEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			assert.ErrorContains(t, err, key)
		})
	}
}

func TestLoadDefaultLocation(t *testing.T) {
	cleanEnv(t)
	t.Setenv("DEFAULT_CITY", "Toronto")
	t.Setenv("DEFAULT_ADMIN", "Ontario")
	t.Setenv("DEFAULT_COUNTRY", "CA")
	t.Setenv("DEFAULT_LATITUDE", "43.6532")
	t.Setenv("DEFAULT_LONGITUDE", "-79.3832")
	t.Setenv("TIMEZONE", "America/Toronto")
	t.Setenv("APP_ENV", "development")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, &model.Location{
		Name: "Toronto", Admin: "Ontario", Country: "CA",
		Latitude: 43.6532, Longitude: -79.3832,
	}, cfg.DefaultLocation)
	assert.True(t, cfg.Development())

	zone, err := cfg.Zone()
	require.NoError(t, err)
	assert.Equal(t, "America/Toronto", zone.String())
}
