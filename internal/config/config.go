package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Portal holds all environment-based configuration for the portal server.
type Portal struct {
	ListenAddr string `env:"PORTAL_LISTEN_ADDR" envDefault:":8080"`

	// Base URL of the remote course-schedule API
	APIBaseURL string `env:"API_BASE_URL"`

	// Session cookie attributes. Lifetimes are in seconds and are not
	// derived from the credentials' own expiry.
	CookieSecure        bool   `env:"COOKIE_SECURE" envDefault:"true"`
	CookieDomain        string `env:"COOKIE_DOMAIN"`
	AccessCookieMaxAge  int    `env:"ACCESS_COOKIE_MAX_AGE" envDefault:"3600"`
	RefreshCookieMaxAge int    `env:"REFRESH_COOKIE_MAX_AGE" envDefault:"604800"`

	LoginPath   string `env:"LOGIN_PATH" envDefault:"/auth/login"`
	LandingPath string `env:"LANDING_PATH" envDefault:"/user/dashboard"`

	// Zero leaves request deadlines to the transport
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"0s"`

	SingleFlightRefresh bool `env:"SINGLE_FLIGHT_REFRESH" envDefault:"true"`

	// Session events are published only when a Redis URL is configured
	RedisURL    string `env:"REDIS_URL"`
	EventsTopic string `env:"EVENTS_TOPIC" envDefault:"portal.session"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// DevAPI holds configuration for the local stand-in of the remote API.
type DevAPI struct {
	ListenAddr string        `env:"DEVAPI_LISTEN_ADDR" envDefault:":9000"`
	SigningKey string        `env:"DEVAPI_SIGNING_KEY"`
	AccessTTL  time.Duration `env:"DEVAPI_ACCESS_TTL" envDefault:"1h"`
	RefreshTTL time.Duration `env:"DEVAPI_REFRESH_TTL" envDefault:"168h"`

	// Refresh revocations are kept in memory when empty
	RedisURL string `env:"REDIS_URL"`

	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadPortal reads portal configuration from the environment.
// It first attempts to load a .env file if present, then parses env vars.
func LoadPortal() (*Portal, error) {
	_ = godotenv.Load()
	return ParsePortal(env.Options{})
}

// ParsePortal parses and validates portal configuration with explicit options
func ParsePortal(opts env.Options) (*Portal, error) {
	cfg := &Portal{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.APIBaseURL = strings.TrimRight(cfg.APIBaseURL, "/")

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func (c *Portal) validate() error {
	if c.APIBaseURL == "" {
		return errors.New("API_BASE_URL is required")
	}
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("API_BASE_URL %q is not an absolute URL", c.APIBaseURL)
	}
	if c.AccessCookieMaxAge <= 0 {
		return errors.New("ACCESS_COOKIE_MAX_AGE must be positive")
	}
	if c.RefreshCookieMaxAge < c.AccessCookieMaxAge {
		return errors.New("REFRESH_COOKIE_MAX_AGE must not be shorter than ACCESS_COOKIE_MAX_AGE")
	}
	if !strings.HasPrefix(c.LoginPath, "/") || !strings.HasPrefix(c.LandingPath, "/") {
		return errors.New("LOGIN_PATH and LANDING_PATH must be absolute paths")
	}
	if c.RequestTimeout < 0 {
		return errors.New("REQUEST_TIMEOUT must not be negative")
	}
	return nil
}

// AccessMaxAge is the access cookie lifetime
func (c *Portal) AccessMaxAge() time.Duration {
	return time.Duration(c.AccessCookieMaxAge) * time.Second
}

// RefreshMaxAge is the refresh cookie lifetime
func (c *Portal) RefreshMaxAge() time.Duration {
	return time.Duration(c.RefreshCookieMaxAge) * time.Second
}

// LoadDevAPI reads dev API configuration from the environment
func LoadDevAPI() (*DevAPI, error) {
	_ = godotenv.Load()
	return ParseDevAPI(env.Options{})
}

// ParseDevAPI parses and validates dev API configuration with explicit options
func ParseDevAPI(opts env.Options) (*DevAPI, error) {
	cfg := &DevAPI{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if len(cfg.SigningKey) < 32 {
		return nil, errors.New("validating config: DEVAPI_SIGNING_KEY must be at least 32 bytes")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= cfg.AccessTTL {
		return nil, errors.New("validating config: DEVAPI_REFRESH_TTL must exceed a positive DEVAPI_ACCESS_TTL")
	}

	return cfg, nil
}
