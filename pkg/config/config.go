package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	DatabaseURL   string
	Port          string
	IsProduction  bool
	EnableDBCheck bool
	JWTSecret     string
	JWTIssuer     string

	// PayPeriodAnchor is the epoch date biweekly pay-period boundaries are
	// anchored to. Deployments with a different pay cycle start override it.
	PayPeriodAnchor time.Time

	// Clock session controller timings.
	GPSPollInterval     time.Duration
	ElapsedTickInterval time.Duration
	GPSTimeout          time.Duration

	// ClockRateLimit is a ulule/limiter formatted rate, e.g. "30-M".
	ClockRateLimit string

	// CORSAllowedOrigins is the comma separated origin list served by the
	// CORS middleware. Empty means allow all, which only makes sense outside
	// production.
	CORSAllowedOrigins []string
}

const defaultPayPeriodAnchor = "2024-01-07"

// LoadConfig loads configuration from environment variables and .env file if present.
func LoadConfig() (*Config, error) {
	// Attempt to load .env file, ignore error if it doesn't exist
	_ = godotenv.Load()

	viper.SetDefault("PGSQL_URL", "")
	viper.SetDefault("PORT", "8080")
	viper.SetDefault("IS_PRODUCTION", false)
	viper.SetDefault("ENABLE_DB_CHECK", false)
	viper.SetDefault("JWT_SECRET", "a-very-secret-key-should-be-longer-and-random")
	viper.SetDefault("JWT_ISSUER", "caretrack-app")
	viper.SetDefault("PAY_PERIOD_ANCHOR", defaultPayPeriodAnchor)
	viper.SetDefault("GPS_POLL_INTERVAL", "30s")
	viper.SetDefault("ELAPSED_TICK_INTERVAL", "60s")
	viper.SetDefault("GPS_TIMEOUT", "10s")
	viper.SetDefault("CLOCK_RATE_LIMIT", "30-M")

	viper.AutomaticEnv()

	cfg := &Config{}

	cfg.DatabaseURL = viper.GetString("PGSQL_URL")
	if cfg.DatabaseURL == "" {
		log.Println("Warning: PGSQL_URL environment variable not set.")
	}

	cfg.Port = viper.GetString("PORT")
	cfg.IsProduction = viper.GetBool("IS_PRODUCTION")
	cfg.EnableDBCheck = viper.GetBool("ENABLE_DB_CHECK")

	cfg.JWTSecret = viper.GetString("JWT_SECRET")
	if cfg.JWTSecret == "a-very-secret-key-should-be-longer-and-random" {
		log.Println("Warning: JWT_SECRET environment variable not set. Using default insecure key.")
	}
	cfg.JWTIssuer = viper.GetString("JWT_ISSUER")

	anchorStr := viper.GetString("PAY_PERIOD_ANCHOR")
	anchor, err := time.Parse("2006-01-02", anchorStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PAY_PERIOD_ANCHOR %q (want YYYY-MM-DD): %w", anchorStr, err)
	}
	cfg.PayPeriodAnchor = anchor

	cfg.GPSPollInterval = parseDurationOrDefault("GPS_POLL_INTERVAL", 30*time.Second)
	cfg.ElapsedTickInterval = parseDurationOrDefault("ELAPSED_TICK_INTERVAL", 60*time.Second)
	cfg.GPSTimeout = parseDurationOrDefault("GPS_TIMEOUT", 10*time.Second)

	cfg.ClockRateLimit = viper.GetString("CLOCK_RATE_LIMIT")

	if origins := viper.GetString("CORS_ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, o)
			}
		}
	}

	return cfg, nil
}

func parseDurationOrDefault(key string, fallback time.Duration) time.Duration {
	raw := viper.GetString(key)
	d, err := time.ParseDuration(raw)
	if err != nil {
		log.Printf("Warning: Invalid value for %s (%q). Defaulting to %s.\n", key, raw, fallback)
		return fallback
	}
	return d
}
