package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv unsets every variable the config reads, restoring them afterwards
func clearEnv(t *testing.T) {
	t.Helper()
	keys := []string{
		"API_KEY", "HOST", "PORT", "READ_TIMEOUT", "WRITE_TIMEOUT", "BODY_LIMIT",
		"CORS_ORIGINS", "DENIED_HOSTS", "ENABLE_PPROF", "SHUTDOWN_TIMEOUT",
		"YTDLP_PATH", "EXTRACT_TIMEOUT", "YTDLP_COOKIES", "INSTAGRAM_COOKIES",
		"YTDLP_COOKIES_CONTENT", "YTDLP_USER_AGENT", "YTDLP_PROXY",
		"PROXY_RATE_LIMIT", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "CACHE_TTL",
		"LOG_LEVEL", "LOG_FORMAT", "LOG_FILE", "LOG_MAX_SIZE_MB", "LOG_MAX_BACKUPS", "LOG_MAX_AGE_DAYS",
	}
	for _, k := range keys {
		if v, ok := os.LookupEnv(k); ok {
			t.Cleanup(func() { os.Setenv(k, v) })
			os.Unsetenv(k)
		}
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "secret", cfg.API.APIKey)
	assert.Equal(t, "0.0.0.0:8000", cfg.ListenAddr())
	assert.Empty(t, cfg.API.CORSOrigins)
	assert.Equal(t, []string{"youtube.com", "youtu.be", "tiktok.com"}, cfg.API.DeniedHosts)
	assert.Equal(t, 1<<20, cfg.API.BodyLimit)
	assert.Equal(t, "yt-dlp", cfg.Extractor.YtdlpPath)
	assert.Equal(t, 20*time.Second, cfg.Extractor.Timeout)
	assert.Equal(t, 0, cfg.Proxy.RateLimit)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 5*time.Minute, cfg.Cache.TTL)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, 15*time.Second, cfg.API.ShutdownTimeout)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("API_KEY", "secret")
	t.Setenv("HOST", "127.0.0.1")
	t.Setenv("PORT", "9090")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com,")
	t.Setenv("INSTAGRAM_COOKIES", "/run/secrets/cookies.txt")
	t.Setenv("EXTRACT_TIMEOUT", "5s")
	t.Setenv("REDIS_ADDR", "localhost:6379")
	t.Setenv("PROXY_RATE_LIMIT", "120")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1:9090", cfg.ListenAddr())
	assert.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.API.CORSOrigins)
	assert.Equal(t, "/run/secrets/cookies.txt", cfg.Extractor.CookiesFile)
	assert.Equal(t, 5*time.Second, cfg.Extractor.Timeout)
	assert.True(t, cfg.CacheEnabled())
	assert.Equal(t, 120, cfg.Proxy.RateLimit)
}

func TestLoadRequiresAPIKey(t *testing.T) {
	clearEnv(t)

	_, err := Load()
	assert.Error(t, err)

	t.Setenv("API_KEY", "   ")
	_, err = Load()
	assert.ErrorContains(t, err, "API_KEY is required")
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			API: APIConfig{
				APIKey:          "k",
				Port:            8000,
				BodyLimit:       1024,
				ShutdownTimeout: time.Second,
			},
			Extractor: ExtractorConfig{YtdlpPath: "yt-dlp", Timeout: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"port out of range", func(c *Config) { c.API.Port = 70000 }, "PORT"},
		{"origin with path", func(c *Config) { c.API.CORSOrigins = []string{"https://a.example/app"} }, "CORS_ORIGINS"},
		{"origin without scheme", func(c *Config) { c.API.CORSOrigins = []string{"a.example"} }, "CORS_ORIGINS"},
		{"origin trailing slash", func(c *Config) { c.API.CORSOrigins = []string{"https://a.example/"} }, ""},
		{"both cookie sources", func(c *Config) {
			c.Extractor.CookiesFile = "/tmp/c.txt"
			c.Extractor.CookiesContent = "x"
		}, "YTDLP_COOKIES"},
		{"negative rate limit", func(c *Config) { c.Proxy.RateLimit = -1 }, "PROXY_RATE_LIMIT"},
		{"zero timeout", func(c *Config) { c.Extractor.Timeout = 0 }, "EXTRACT_TIMEOUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
			} else {
				assert.ErrorContains(t, err, tt.errMsg)
			}
		})
	}
}
