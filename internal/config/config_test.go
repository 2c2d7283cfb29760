package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		HTTPPort:            8080,
		JWTSecret:           "0123456789abcdef0123456789abcdef",
		JWTExpiry:           24 * time.Hour,
		CodeTTL:             24 * time.Hour,
		SignupRatePerMinute: 5,
		SignupBurst:         5,
		LogLevel:            "debug",
		LogFormat:           "text",
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, 24*time.Hour, cfg.CodeTTL)
	assert.Equal(t, time.Minute, cfg.CodeResendAfter)
	assert.Equal(t, 5, cfg.SignupRatePerMinute)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigRequiresSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("JWT_EXPIRY", "1h")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	short := validConfig()
	short.JWTSecret = "short"
	assert.Error(t, short.Validate())

	badPort := validConfig()
	badPort.HTTPPort = 0
	assert.Error(t, badPort.Validate())

	badLevel := validConfig()
	badLevel.LogLevel = "verbose"
	assert.Error(t, badLevel.Validate())

	badTTL := validConfig()
	badTTL.CodeTTL = 0
	assert.Error(t, badTTL.Validate())
}
