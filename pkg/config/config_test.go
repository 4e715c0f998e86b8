package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	viper.Reset()
	t.Setenv("ODDS_API_KEY", "")
	t.Setenv("ENV", "development")
	t.Setenv("PORT", "8080")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Second, cfg.ExternalAPITimeout)
	assert.Equal(t, "60s", cfg.RefreshInterval)
	assert.Equal(t, 14, cfg.LookaheadDays)
	assert.Equal(t, "https://statsapi.mlb.com/api/v1", cfg.MLBStatsBaseURL)
	assert.Empty(t, cfg.OddsAPIKey)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	viper.Reset()
	t.Setenv("PORT", "9090")
	t.Setenv("ENV", "production")
	t.Setenv("ODDS_API_KEY", "abc")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("EXTERNAL_API_TIMEOUT", "3s")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "abc", cfg.OddsAPIKey)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CorsOrigins)
	assert.Equal(t, 3*time.Second, cfg.ExternalAPITimeout)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"valid", Config{Port: "8080", ExternalAPITimeout: time.Second, RefreshInterval: "60s"}, false},
		{"empty port", Config{ExternalAPITimeout: time.Second}, true},
		{"zero timeout", Config{Port: "8080"}, true},
		{"bad interval", Config{Port: "8080", ExternalAPITimeout: time.Second, RefreshInterval: "soon"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateFillsLookahead(t *testing.T) {
	cfg := Config{Port: "8080", ExternalAPITimeout: time.Second}
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 14, cfg.LookaheadDays)
	assert.Equal(t, 5, cfg.CircuitBreakerThreshold)
}
