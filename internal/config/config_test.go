package config_test

import (
	"testing"
	"time"

	"github.com/jrsteele09/aicp-web/internal/config"
	"github.com/stretchr/testify/require"
)

func TestConfig_Defaults(t *testing.T) {
	t.Setenv("AICP_API_HOST", "http://backend:8000/")
	t.Setenv("PORT", "")
	t.Setenv("SESSION_STORE", "")

	c := config.New()
	require.Equal(t, ":8080", c.GetPort())
	require.Equal(t, "http://backend:8000", c.GetAPIHost())
	require.Equal(t, config.SessionStoreMemory, c.GetSessionStore())
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
	require.Equal(t, 30*time.Minute, c.GetCacheMaxIdle())
	require.False(t, c.GetTrustProxyHeaders())
	require.NoError(t, c.Validate())
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing api host", func(t *testing.T) {
		t.Setenv("AICP_API_HOST", "")
		err := config.New().Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "AICP_API_HOST")
	})

	t.Run("redis without address", func(t *testing.T) {
		t.Setenv("AICP_API_HOST", "http://backend")
		t.Setenv("SESSION_STORE", "redis")
		t.Setenv("REDIS_ADDR", "")
		err := config.New().Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "REDIS_ADDR")
	})

	t.Run("redis with short secret", func(t *testing.T) {
		t.Setenv("AICP_API_HOST", "http://backend")
		t.Setenv("SESSION_STORE", "redis")
		t.Setenv("REDIS_ADDR", "localhost:6379")
		t.Setenv("SESSION_SECRET", "short")
		err := config.New().Validate()
		require.Error(t, err)
		require.Contains(t, err.Error(), "SESSION_SECRET")
	})

	t.Run("unknown store", func(t *testing.T) {
		t.Setenv("AICP_API_HOST", "http://backend")
		t.Setenv("SESSION_STORE", "disk")
		require.Error(t, config.New().Validate())
	})
}

func TestConfig_InvalidValuesFallBack(t *testing.T) {
	t.Setenv("API_TIMEOUT", "soon")
	t.Setenv("LOGIN_RATE_PER_MINUTE", "lots")
	c := config.New()
	require.Equal(t, 15*time.Second, c.GetAPITimeout())
	require.Equal(t, 10, c.GetLoginRatePerMinute())
	require.True(t, c.GetEnableRateLimiting())
}

func TestAllowedOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")
	origins := config.New().GetAllowedOrigins()
	require.True(t, origins.IsAllowedOrigin("https://a.example.com"))
	require.True(t, origins.IsAllowedOrigin("https://b.example.com"))
	require.False(t, origins.IsAllowedOrigin("https://c.example.com"))
}

func TestTrustProxyHeaders(t *testing.T) {
	for _, v := range []string{"true", "TRUE", "1", "yes"} {
		t.Setenv("TRUST_PROXY_HEADERS", v)
		require.True(t, config.New().GetTrustProxyHeaders(), v)
	}
	t.Setenv("TRUST_PROXY_HEADERS", "off")
	require.False(t, config.New().GetTrustProxyHeaders())
}
