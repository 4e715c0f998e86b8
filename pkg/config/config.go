package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	// Server
	Port     string `mapstructure:"PORT"`
	Env      string `mapstructure:"ENV"`
	LogLevel string `mapstructure:"LOG_LEVEL"`

	// Database
	DatabaseURL string `mapstructure:"DATABASE_URL"`

	// Redis (empty disables redis and uses the in-process cache)
	RedisURL string `mapstructure:"REDIS_URL"`

	// CORS
	CorsOrigins []string `mapstructure:"CORS_ORIGINS"`

	// External APIs
	MLBStatsBaseURL    string `mapstructure:"MLB_STATS_BASE_URL"`
	OddsAPIBaseURL     string `mapstructure:"ODDS_API_BASE_URL"`
	OddsAPIKey         string `mapstructure:"ODDS_API_KEY"`
	OddsRateLimit      int    `mapstructure:"ODDS_RATE_LIMIT"`
	BallDontLieBaseURL string `mapstructure:"BALLDONTLIE_BASE_URL"`
	BallDontLieAPIKey  string `mapstructure:"BALLDONTLIE_API_KEY"`
	BallDontLieRPM     int    `mapstructure:"BALLDONTLIE_RATE_LIMIT"`
	SavantURL          string `mapstructure:"SAVANT_URL"`
	Season             int    `mapstructure:"SEASON"`

	// Resilience
	ExternalAPITimeout      time.Duration `mapstructure:"EXTERNAL_API_TIMEOUT"`
	CircuitBreakerThreshold int           `mapstructure:"CIRCUIT_BREAKER_THRESHOLD"`

	// Background refresh
	RefreshInterval      string `mapstructure:"REFRESH_INTERVAL"`
	EnableBackgroundJobs bool   `mapstructure:"ENABLE_BACKGROUND_JOBS"`
	LookaheadDays        int    `mapstructure:"LOOKAHEAD_DAYS"`

	// Feature Flags
	EnableProxy  bool `mapstructure:"ENABLE_PROXY"`
	EnablePprof  bool `mapstructure:"ENABLE_PPROF"`
	SkipLiveData bool `mapstructure:"SKIP_LIVE_DATA"`
}

func LoadConfig() (*Config, error) {
	// .env values populate the process environment so AutomaticEnv sees them
	// even when the file lives outside viper's search paths.
	_ = godotenv.Load()

	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("..")

	setDefaults()

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if corsStr := viper.GetString("CORS_ORIGINS"); corsStr != "" {
		config.CorsOrigins = strings.Split(corsStr, ",")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("LOG_LEVEL", "")
	viper.SetDefault("DATABASE_URL", "sqlite://hr_parlay.db")
	viper.SetDefault("REDIS_URL", "")
	viper.SetDefault("CORS_ORIGINS", "http://localhost:5173,http://localhost:3000")

	viper.SetDefault("MLB_STATS_BASE_URL", "https://statsapi.mlb.com/api/v1")
	viper.SetDefault("ODDS_API_BASE_URL", "https://api.the-odds-api.com/v4")
	viper.SetDefault("ODDS_API_KEY", "")
	viper.SetDefault("ODDS_RATE_LIMIT", 30) // requests per minute
	viper.SetDefault("BALLDONTLIE_BASE_URL", "https://api.balldontlie.io/mlb/v1")
	viper.SetDefault("BALLDONTLIE_API_KEY", "")
	viper.SetDefault("BALLDONTLIE_RATE_LIMIT", 5) // free tier: 5 requests per minute
	viper.SetDefault("SAVANT_URL", "")
	viper.SetDefault("SEASON", time.Now().Year())

	viper.SetDefault("EXTERNAL_API_TIMEOUT", "10s")
	viper.SetDefault("CIRCUIT_BREAKER_THRESHOLD", 5)

	viper.SetDefault("REFRESH_INTERVAL", "60s")
	viper.SetDefault("ENABLE_BACKGROUND_JOBS", true)
	viper.SetDefault("LOOKAHEAD_DAYS", 14)

	viper.SetDefault("ENABLE_PROXY", true)
	viper.SetDefault("ENABLE_PPROF", false)
	viper.SetDefault("SKIP_LIVE_DATA", false)
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	if c.ExternalAPITimeout <= 0 {
		return fmt.Errorf("EXTERNAL_API_TIMEOUT must be positive, got %s", c.ExternalAPITimeout)
	}
	if c.RefreshInterval != "" {
		if _, err := time.ParseDuration(c.RefreshInterval); err != nil {
			return fmt.Errorf("invalid REFRESH_INTERVAL %q: %w", c.RefreshInterval, err)
		}
	}
	if c.LookaheadDays < 1 {
		c.LookaheadDays = 14
	}
	if c.CircuitBreakerThreshold < 1 {
		c.CircuitBreakerThreshold = 5
	}
	return nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
