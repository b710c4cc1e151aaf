package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverMySQL    = "mysql"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	AppPort string `mapstructure:"APP_PORT"`

	DBDriver string `mapstructure:"DB_DRIVER"`

	MySQLHost string `mapstructure:"MYSQL_HOST"`
	MySQLPort string `mapstructure:"MYSQL_PORT"`
	MySQLDB   string `mapstructure:"MYSQL_DB"`
	MySQLUser string `mapstructure:"MYSQL_USER"`
	MySQLPass string `mapstructure:"MYSQL_PASS"`

	PostgresDSN string `mapstructure:"POSTGRES_DSN"`
	SQLitePath  string `mapstructure:"SQLITE_PATH"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisDB       int    `mapstructure:"REDIS_DB"`
	EventsChannel string `mapstructure:"EVENTS_CHANNEL"`

	IdempTTLSecs       int    `mapstructure:"IDEMPOTENCY_TTL_SECONDS"`
	RequestTimeoutSecs int    `mapstructure:"REQUEST_TIMEOUT_SECONDS"`
	PaymentWindowHours int    `mapstructure:"PAYMENT_WINDOW_HOURS"`
	ExpirySweepSpec    string `mapstructure:"EXPIRY_SWEEP_SPEC"`
	ExpirySweepBatch   int    `mapstructure:"EXPIRY_SWEEP_BATCH"`

	LogLevel       string `mapstructure:"LOG_LEVEL"`
	TracingEnabled bool   `mapstructure:"TRACING_ENABLED"`
}

var defaults = map[string]any{
	"APP_PORT":                "8080",
	"DB_DRIVER":               DriverMySQL,
	"MYSQL_HOST":              "mysql",
	"MYSQL_PORT":              "3306",
	"MYSQL_DB":                "registrar",
	"MYSQL_USER":              "registrar",
	"MYSQL_PASS":              "registrar",
	"POSTGRES_DSN":            "",
	"SQLITE_PATH":             "registrar.db",
	"REDIS_ADDR":              "redis:6379",
	"REDIS_DB":                0,
	"EVENTS_CHANNEL":          "registrar:events",
	"IDEMPOTENCY_TTL_SECONDS": 300,
	"REQUEST_TIMEOUT_SECONDS": 15,
	"PAYMENT_WINDOW_HOURS":    72,
	"EXPIRY_SWEEP_SPEC":       "@every 5m",
	"EXPIRY_SWEEP_BATCH":      100,
	"LOG_LEVEL":               "info",
	"TRACING_ENABLED":         false,
}

// Load reads an optional .env file, then the environment. Environment
// values win over .env values, which win over defaults.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	for k, d := range defaults {
		v.SetDefault(k, d)
	}
	v.AutomaticEnv()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	c.DBDriver = strings.ToLower(strings.TrimSpace(c.DBDriver))
	return &c, nil
}

func (c *Config) Validate() error {
	if c.AppPort == "" {
		return errors.New("missing APP_PORT")
	}
	switch c.DBDriver {
	case DriverMySQL:
		if c.MySQLHost == "" || c.MySQLPort == "" || c.MySQLDB == "" || c.MySQLUser == "" {
			return errors.New("missing MySQL config (MYSQL_HOST/PORT/DB/USER)")
		}
		if _, err := net.LookupPort("tcp", c.MySQLPort); err != nil {
			return fmt.Errorf("invalid MYSQL_PORT %q: %w", c.MySQLPort, err)
		}
	case DriverPostgres:
		if c.PostgresDSN == "" {
			return errors.New("missing POSTGRES_DSN")
		}
	case DriverSQLite:
		if c.SQLitePath == "" {
			return errors.New("missing SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	if c.PaymentWindowHours < 0 {
		return fmt.Errorf("PAYMENT_WINDOW_HOURS must not be negative, got %d", c.PaymentWindowHours)
	}
	if c.ExpirySweepBatch <= 0 {
		return fmt.Errorf("EXPIRY_SWEEP_BATCH must be positive, got %d", c.ExpirySweepBatch)
	}
	if c.RequestTimeoutSecs <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT_SECONDS must be positive, got %d", c.RequestTimeoutSecs)
	}
	if c.IdempTTLSecs <= 0 {
		return fmt.Errorf("IDEMPOTENCY_TTL_SECONDS must be positive, got %d", c.IdempTTLSecs)
	}
	return nil
}

// LoadValidated is Load followed by Validate; binaries start from it.
func LoadValidated() (*Config, error) {
	c, err := Load()
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return c, nil
}

func (c *Config) mysqlAddr() string { return net.JoinHostPort(c.MySQLHost, c.MySQLPort) }

func (c *Config) MySQLDSN() string {
	// multiStatements=true is handy for migrations; parseTime needed for DATETIME
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?multiStatements=true&parseTime=true&charset=utf8mb4,utf8&loc=UTC",
		c.MySQLUser, c.MySQLPass, c.mysqlAddr(), c.MySQLDB)
}

// DSN returns the connection string for the configured driver.
func (c *Config) DSN() string {
	switch c.DBDriver {
	case DriverPostgres:
		return c.PostgresDSN
	case DriverSQLite:
		return c.SQLitePath
	default:
		return c.MySQLDSN()
	}
}

func (c *Config) PaymentWindow() time.Duration {
	return time.Duration(c.PaymentWindowHours) * time.Hour
}

func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.RequestTimeoutSecs) * time.Second
}

func (c *Config) IdempotencyTTL() time.Duration {
	return time.Duration(c.IdempTTLSecs) * time.Second
}
