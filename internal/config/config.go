package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPAddr       string   `yaml:"http_addr"`
	MaxConnections int      `yaml:"http_max_connections"`
	CORSOrigins    []string `yaml:"cors_allowed_origins"`

	DBDriver    string `yaml:"db_driver"`
	DatabaseURL string `yaml:"database_url"`
	DBHost      string `yaml:"db_host"`
	DBPort      int    `yaml:"db_port"`
	DBUser      string `yaml:"db_user"`
	DBPassword  string `yaml:"db_password"`
	DBName      string `yaml:"db_name"`
	DBSSLMode   string `yaml:"db_sslmode"`
	SQLitePath  string `yaml:"sqlite_path"`

	GeminiAPIKey    string        `yaml:"gemini_api_key"`
	GeminiModel     string        `yaml:"gemini_model"`
	GenerateTimeout time.Duration `yaml:"generate_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	AnalyticsSink string `yaml:"analytics_sink"`
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

func defaults() *Config {
	return &Config{
		HTTPAddr:        ":8080",
		CORSOrigins:     []string{"*"},
		DBDriver:        DriverPostgres,
		DBPort:          5432,
		DBSSLMode:       "disable",
		SQLitePath:      "tasks.db",
		GeminiModel:     "gemini-2.5-flash",
		GenerateTimeout: 60 * time.Second,
		LogLevel:        "info",
		LogFormat:       "json",
		AnalyticsSink:   "log",
	}
}

// Load builds the configuration from defaults, then the optional YAML file at
// path, then environment variables. Environment always wins.
func Load(path string) (*Config, error) {
	cfg := defaults()

	if path == "" {
		path = os.Getenv("CONFIG_FILE")
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	applyEnv(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applyEnv(c *Config) {
	setString(&c.HTTPAddr, "HTTP_ADDR")
	setInt(&c.MaxConnections, "HTTP_MAX_CONNECTIONS")
	if v := os.Getenv("CORS_ALLOWED_ORIGINS"); v != "" {
		c.CORSOrigins = splitList(v)
	}

	setString(&c.DBDriver, "DB_DRIVER")
	setString(&c.DatabaseURL, "DATABASE_URL")
	setString(&c.DBHost, "DB_HOST")
	setInt(&c.DBPort, "DB_PORT")
	setString(&c.DBUser, "DB_USER")
	setString(&c.DBPassword, "DB_PASSWORD")
	setString(&c.DBName, "DB_NAME")
	setString(&c.DBSSLMode, "DB_SSLMODE")
	setString(&c.SQLitePath, "SQLITE_PATH")

	setString(&c.GeminiAPIKey, "GEMINI_API_KEY")
	setString(&c.GeminiModel, "GEMINI_MODEL")
	if v := os.Getenv("GENERATE_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			c.GenerateTimeout = d
		}
	}

	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFormat, "LOG_FORMAT")
	setString(&c.AnalyticsSink, "ANALYTICS_SINK")
}

func (c *Config) Validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q (want %s or %s)", c.DBDriver, DriverPostgres, DriverSQLite)
	}
	switch c.AnalyticsSink {
	case "log", "db", "off":
	default:
		return fmt.Errorf("unsupported ANALYTICS_SINK %q", c.AnalyticsSink)
	}
	if c.GenerateTimeout <= 0 {
		return fmt.Errorf("GENERATE_TIMEOUT must be positive")
	}
	return nil
}

// DSN returns the data source name for the configured driver.
func (c *Config) DSN() string {
	if c.DBDriver == DriverSQLite {
		return "file:" + c.SQLitePath + "?_time_format=sqlite&_pragma=busy_timeout(5000)"
	}
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.ConnString()
}

func (c *Config) ConnString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	v := os.Getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return // keep fallback
	}
	*dst = n
}

func splitList(v string) []string {
	var out []string
	for _, p := range strings.Split(v, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
