package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_DefaultValues(t *testing.T) {
	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, ":8000", cfg.Addr)
	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, DriverFile, cfg.Store.Driver)
	assert.Equal(t, "users.json", cfg.Store.Path)
	assert.Equal(t, "devsecret", cfg.JWT.Secret)
	assert.Equal(t, "facelike", cfg.JWT.Issuer)
	assert.Equal(t, 24, cfg.JWT.TTLHours)
	assert.Equal(t, 12, cfg.Bcrypt.Cost)
}

func TestNew_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "addr and log level override",
			envVars: map[string]string{
				"ADDR":      ":9090",
				"LOG_LEVEL": "-4",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, ":9090", cfg.Addr)
				assert.Equal(t, -4, cfg.LogLevel)
			},
		},
		{
			name: "store config override",
			envVars: map[string]string{
				"STORE_DRIVER": "sqlite",
				"STORE_DSN":    "file:custom.db",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, DriverSQLite, cfg.Store.Driver)
				assert.Equal(t, "file:custom.db", cfg.Store.DSN)
			},
		},
		{
			name: "jwt config override",
			envVars: map[string]string{
				"JWT_SECRET":    "customsecret",
				"JWT_ISSUER":    "facelike-test",
				"JWT_TTL_HOURS": "1",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "customsecret", cfg.JWT.Secret)
				assert.Equal(t, "facelike-test", cfg.JWT.Issuer)
				assert.Equal(t, 1, cfg.JWT.TTLHours)
			},
		},
		{
			name: "bcrypt config override",
			envVars: map[string]string{
				"BCRYPT_COST": "4",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, 4, cfg.Bcrypt.Cost)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for key, value := range tt.envVars {
				t.Setenv(key, value)
			}

			cfg, err := New()
			require.NoError(t, err)

			tt.expected(cfg)
		})
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "mongodb")

	_, err := New()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown store driver")
}
