package config

import (
	"testing"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePortal_Defaults(t *testing.T) {
	cfg, err := ParsePortal(env.Options{Environment: map[string]string{
		"API_BASE_URL": "https://api.example.com/",
	}})
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, "https://api.example.com", cfg.APIBaseURL)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, time.Hour, cfg.AccessMaxAge())
	assert.Equal(t, 7*24*time.Hour, cfg.RefreshMaxAge())
	assert.Equal(t, "/auth/login", cfg.LoginPath)
	assert.Equal(t, "/user/dashboard", cfg.LandingPath)
	assert.True(t, cfg.SingleFlightRefresh)
	assert.Equal(t, time.Duration(0), cfg.RequestTimeout)
	assert.Equal(t, "portal.session", cfg.EventsTopic)
}

func TestParsePortal_Overrides(t *testing.T) {
	cfg, err := ParsePortal(env.Options{Environment: map[string]string{
		"API_BASE_URL":           "http://localhost:9000",
		"COOKIE_SECURE":          "false",
		"COOKIE_DOMAIN":          "portal.example",
		"ACCESS_COOKIE_MAX_AGE":  "60",
		"REFRESH_COOKIE_MAX_AGE": "120",
		"REQUEST_TIMEOUT":        "5s",
		"SINGLE_FLIGHT_REFRESH":  "false",
	}})
	require.NoError(t, err)

	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, "portal.example", cfg.CookieDomain)
	assert.Equal(t, time.Minute, cfg.AccessMaxAge())
	assert.Equal(t, 2*time.Minute, cfg.RefreshMaxAge())
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.SingleFlightRefresh)
}

func TestParsePortal_Invalid(t *testing.T) {
	tests := []struct {
		name string
		vars map[string]string
	}{
		{"missing base url", map[string]string{}},
		{"relative base url", map[string]string{"API_BASE_URL": "/api"}},
		{"zero access age", map[string]string{"API_BASE_URL": "http://api", "ACCESS_COOKIE_MAX_AGE": "0"}},
		{"refresh shorter than access", map[string]string{"API_BASE_URL": "http://api", "ACCESS_COOKIE_MAX_AGE": "600", "REFRESH_COOKIE_MAX_AGE": "60"}},
		{"relative login path", map[string]string{"API_BASE_URL": "http://api", "LOGIN_PATH": "auth/login"}},
		{"negative timeout", map[string]string{"API_BASE_URL": "http://api", "REQUEST_TIMEOUT": "-1s"}},
		{"bad bool", map[string]string{"API_BASE_URL": "http://api", "COOKIE_SECURE": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePortal(env.Options{Environment: tt.vars})
			assert.Error(t, err)
		})
	}
}

func TestParseDevAPI(t *testing.T) {
	cfg, err := ParseDevAPI(env.Options{Environment: map[string]string{
		"DEVAPI_SIGNING_KEY": "0123456789abcdef0123456789abcdef",
	}})
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, time.Hour, cfg.AccessTTL)
	assert.Equal(t, 168*time.Hour, cfg.RefreshTTL)

	_, err = ParseDevAPI(env.Options{Environment: map[string]string{"DEVAPI_SIGNING_KEY": "short"}})
	assert.Error(t, err)

	_, err = ParseDevAPI(env.Options{Environment: map[string]string{
		"DEVAPI_SIGNING_KEY": "0123456789abcdef0123456789abcdef",
		"DEVAPI_ACCESS_TTL":  "2h",
		"DEVAPI_REFRESH_TTL": "1h",
	}})
	assert.Error(t, err)
}
