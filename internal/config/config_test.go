package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoad(t *testing.T) {
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DB_HOST", "test-host")
	t.Setenv("DB_MAX_OPEN_CONNS", "20")
	t.Setenv("PAGE_SIZE_MAX", "50")
	t.Setenv("OTEL_SDK_DISABLED", "true")

	cfg := Load()

	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "test-host", cfg.Database.Host)
	assert.Equal(t, 20, cfg.Database.MaxOpenConns)
	assert.Equal(t, 50, cfg.Paging.MaxPageSize)
	assert.Equal(t, 10, cfg.Paging.DefaultPageSize)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "libapi", cfg.Tracing.ServiceName)
}

func TestLocation(t *testing.T) {
	cfg := &AppConfig{Timezone: "UTC"}
	assert.Equal(t, time.UTC, cfg.Location())

	cfg.Timezone = "Not/AZone"
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestEnvHelpers(t *testing.T) {
	t.Setenv("LIBAPI_STR", "value")
	t.Setenv("LIBAPI_BOOL", "false")
	t.Setenv("LIBAPI_BAD_BOOL", "maybe")
	t.Setenv("LIBAPI_INT", "123")
	t.Setenv("LIBAPI_BAD_INT", "twelve")

	assert.Equal(t, "value", getEnv("LIBAPI_STR", "default"))
	assert.Equal(t, "default", getEnv("LIBAPI_UNSET", "default"))

	assert.False(t, getEnvBool("LIBAPI_BOOL", true))
	assert.True(t, getEnvBool("LIBAPI_BAD_BOOL", true))
	assert.True(t, getEnvBool("LIBAPI_UNSET", true))

	assert.Equal(t, 123, getEnvInt("LIBAPI_INT", 0))
	assert.Equal(t, 10, getEnvInt("LIBAPI_BAD_INT", 10))
	assert.Equal(t, 10, getEnvInt("LIBAPI_UNSET", 10))
}
