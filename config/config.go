// Package config loads application settings from .env, an optional YAML file
// and the process environment, in that order of increasing precedence.
// File: config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go-hackhub/logger"
	"gopkg.in/yaml.v3"
)

// Config holds all the configuration variables for the application.
type Config struct {
	Env            string   `yaml:"env"`
	Port           string   `yaml:"port"`
	ApplicationURL string   `yaml:"applicationUrl"`
	SessionSecret  string   `yaml:"sessionSecret"`
	SessionName    string   `yaml:"sessionName"`
	SessionMaxAge  int      `yaml:"sessionMaxAge"`
	CookieSecure   bool     `yaml:"cookieSecure"`
	DBDriver       string   `yaml:"dbDriver"`
	DBDSN          string   `yaml:"dbDsn"`
	AllowedOrigins []string `yaml:"allowedOrigins"`
	LogDir         string   `yaml:"logDir"`

	MetricsEnabled   bool   `yaml:"metricsEnabled"`
	MetricsNamespace string `yaml:"metricsNamespace"`
	TracingEnabled   bool   `yaml:"tracingEnabled"`
}

// Default returns the settings used for local development.
func Default() *Config {
	return &Config{
		Env:              "development",
		Port:             "8080",
		ApplicationURL:   "http://localhost:3000",
		SessionSecret:    "secret",
		SessionName:      "hackhub",
		SessionMaxAge:    86400 * 7,
		DBDriver:         "memory",
		AllowedOrigins:   []string{"http://localhost:3000"},
		MetricsNamespace: "HackHub",
	}
}

// Load reads the configuration. A missing .env file is not an error; a
// HACKHUB_CONFIG file that cannot be parsed is.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug.Println("[config.Load] No .env file found, using system environment variables")
	}

	cfg := Default()
	if path := os.Getenv("HACKHUB_CONFIG"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}
	cfg.applyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	logger.Info.Printf("[config.Load] Loaded config file %s", path)
	return nil
}

// applyEnv overrides fields from environment variables. lookup is
// os.LookupEnv outside of tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				logger.Warn.Printf("[config.Load] Ignoring %s=%q: %v", key, v, err)
				return
			}
			*dst = b
		}
	}

	str("ENV", &c.Env)
	str("PORT", &c.Port)
	str("APPLICATION_URL", &c.ApplicationURL)
	str("SESSION_SECRET", &c.SessionSecret)
	str("SESSION_NAME", &c.SessionName)
	str("DB_DRIVER", &c.DBDriver)
	str("DB_DSN", &c.DBDSN)
	str("LOG_DIR", &c.LogDir)
	str("METRICS_NAMESPACE", &c.MetricsNamespace)
	boolean("COOKIE_SECURE", &c.CookieSecure)
	boolean("METRICS_ENABLED", &c.MetricsEnabled)
	boolean("TRACING_ENABLED", &c.TracingEnabled)

	if v, ok := lookup("SESSION_MAX_AGE"); ok && v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SessionMaxAge = n
		} else {
			logger.Warn.Printf("[config.Load] Ignoring SESSION_MAX_AGE=%q: %v", v, err)
		}
	}
	if v, ok := lookup("ALLOWED_ORIGINS"); ok && v != "" {
		var origins []string
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		c.AllowedOrigins = origins
	}
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "memory":
	case "sqlite", "postgres":
		if c.DBDSN == "" {
			return fmt.Errorf("DB_DSN is required for driver %q", c.DBDriver)
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DBDriver)
	}
	if c.IsProduction() && c.SessionSecret == "secret" {
		return fmt.Errorf("SESSION_SECRET must be set in production")
	}
	return nil
}

// IsProduction reports whether the server runs with production settings.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}
