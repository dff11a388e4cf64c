package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/dzoniops/booking-service/db"
	"github.com/dzoniops/booking-service/pricing"
	"github.com/dzoniops/booking-service/utils"
)

type Config struct {
	Port        string `validate:"required,numeric"`
	MetricsPort string `validate:"required,numeric"`

	DBDriver   string `validate:"oneof=postgres sqlite"`
	DSN        string `validate:"required"`
	SQLitePath string

	AdminJWTSecret string
	// AdminToken is what the client commands send as bearer token.
	AdminToken string

	CleaningFee       int64 `validate:"min=0"`
	ServiceFeePercent int64 `validate:"min=0,max=100"`

	StoreTimeout  time.Duration `validate:"gt=0"`
	ClientTimeout time.Duration `validate:"gt=0"`

	LogLevel    string `validate:"oneof=debug info warn error"`
	TraceStdout bool

	BookingAddr string `validate:"required"`
}

// Load reads an optional .env file and then the process environment.
func Load(files ...string) (*Config, error) {
	if err := godotenv.Load(files...); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("config: %w", err)
	}

	var err error
	c := &Config{
		Port:           env("PORT", "8080"),
		MetricsPort:    env("METRICS_PORT", "9090"),
		DBDriver:       env("DB_DRIVER", db.DriverPostgres),
		SQLitePath:     env("SQLITE_PATH", "booking.db"),
		AdminJWTSecret: os.Getenv("ADMIN_JWT_SECRET"),
		AdminToken:     os.Getenv("ADMIN_TOKEN"),
		LogLevel:       env("LOG_LEVEL", "info"),
		BookingAddr:    env("BOOKING_ADDR", "localhost:8080"),
	}
	if c.CleaningFee, err = envInt("CLEANING_FEE", 75); err != nil {
		return nil, err
	}
	if c.ServiceFeePercent, err = envInt("SERVICE_FEE_PERCENT", 14); err != nil {
		return nil, err
	}
	if c.StoreTimeout, err = envDuration("STORE_TIMEOUT", 5*time.Second); err != nil {
		return nil, err
	}
	if c.ClientTimeout, err = envDuration("CLIENT_TIMEOUT", 10*time.Second); err != nil {
		return nil, err
	}
	if c.TraceStdout, err = envBool("TRACE_STDOUT", false); err != nil {
		return nil, err
	}

	switch c.DBDriver {
	case db.DriverSQLite:
		c.DSN = c.SQLitePath
	default:
		c.DSN = os.Getenv("DATABASE_URL")
		if c.DSN == "" {
			c.DSN = db.PostgresDSN(
				env("PGHOST", "localhost"),
				env("PGPORT", "5432"),
				os.Getenv("PGUSER"),
				os.Getenv("PGPASSWORD"),
				os.Getenv("PGDATABASE"),
			)
		}
	}

	if err := utils.Validate.Struct(c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return c, nil
}

func (c *Config) Fees() pricing.Fees {
	return pricing.Fees{Flat: c.CleaningFee, Percent: c.ServiceFeePercent}
}

func env(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}

func envInt(key string, def int64) (int64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return n, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("config: %s: %w", key, err)
	}
	return d, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s: %w", key, err)
	}
	return b, nil
}
