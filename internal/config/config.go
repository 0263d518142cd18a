package config

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all application configuration. It is loaded once at start-up
// and never modified afterwards.
type Config struct {
	// API Configuration
	API APIConfig

	// Extractor Configuration
	Extractor ExtractorConfig

	// Proxy Configuration
	Proxy ProxyConfig

	// Cache Configuration
	Cache CacheConfig

	// Logging Configuration
	Logger LoggerConfig
}

// APIConfig holds API server configuration
type APIConfig struct {
	APIKey          string        `env:"API_KEY" env-required:"true" env-description:"Shared secret expected in X-API-Key"`
	Host            string        `env:"HOST" env-default:"0.0.0.0" env-description:"Listen address"`
	Port            int           `env:"PORT" env-default:"8000" env-description:"Listen port"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"30s" env-description:"Request read timeout"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"0s" env-description:"Response write timeout, 0 disables it for long streams"`
	BodyLimit       int           `env:"BODY_LIMIT" env-default:"1048576" env-description:"Max request body size in bytes"`
	CORSOrigins     []string      `env:"CORS_ORIGINS" env-description:"Comma-separated allowed origins, empty allows all"`
	DeniedHosts     []string      `env:"DENIED_HOSTS" env-default:"youtube.com,youtu.be,tiktok.com" env-description:"Source domains refused for extraction"`
	EnablePprof     bool          `env:"ENABLE_PPROF" env-default:"false" env-description:"Expose /debug/pprof"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"15s" env-description:"Graceful shutdown budget"`
}

// ExtractorConfig holds yt-dlp configuration
type ExtractorConfig struct {
	YtdlpPath      string        `env:"YTDLP_PATH" env-default:"yt-dlp" env-description:"yt-dlp executable"`
	Timeout        time.Duration `env:"EXTRACT_TIMEOUT" env-default:"20s" env-description:"Hard deadline for one extraction"`
	CookiesFile    string        `env:"YTDLP_COOKIES" env-description:"Netscape cookies file passed to yt-dlp"`
	LegacyCookies  string        `env:"INSTAGRAM_COOKIES" env-description:"Deprecated alias of YTDLP_COOKIES"`
	CookiesContent string        `env:"YTDLP_COOKIES_CONTENT" env-description:"Inline cookies file, raw or base64"`
	UserAgent      string        `env:"YTDLP_USER_AGENT" env-description:"User-Agent yt-dlp sends"`
	Proxy          string        `env:"YTDLP_PROXY" env-description:"Proxy URL yt-dlp uses"`
}

// ProxyConfig holds stream proxy configuration
type ProxyConfig struct {
	RateLimit int `env:"PROXY_RATE_LIMIT" env-default:"0" env-description:"Proxy requests per minute per IP, 0 disables"`
}

// CacheConfig holds response cache configuration
type CacheConfig struct {
	RedisAddr     string        `env:"REDIS_ADDR" env-description:"Redis address, empty disables the response cache"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" env-default:"0"`
	TTL           time.Duration `env:"CACHE_TTL" env-default:"5m" env-description:"Lifetime of cached responses"`
}

// LoggerConfig holds logger configuration
type LoggerConfig struct {
	Level      string `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	Format     string `env:"LOG_FORMAT" env-default:"json" env-description:"json or text"`
	File       string `env:"LOG_FILE" env-description:"Rotated log file, empty logs to stdout only"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"5"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"30"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}

	cfg.normalize()

	// Validate critical configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// normalize trims list entries and resolves aliases
func (c *Config) normalize() {
	c.API.CORSOrigins = cleanList(c.API.CORSOrigins)
	c.API.DeniedHosts = cleanList(c.API.DeniedHosts)
	c.API.APIKey = strings.TrimSpace(c.API.APIKey)

	if c.Extractor.CookiesFile == "" {
		c.Extractor.CookiesFile = c.Extractor.LegacyCookies
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.API.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}

	if c.API.Port < 1 || c.API.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", c.API.Port)
	}

	if c.API.BodyLimit < 1 {
		return fmt.Errorf("BODY_LIMIT must be positive")
	}

	for _, origin := range c.API.CORSOrigins {
		if err := validateOrigin(origin); err != nil {
			return fmt.Errorf("CORS_ORIGINS: %w", err)
		}
	}

	if c.Extractor.YtdlpPath == "" {
		return fmt.Errorf("YTDLP_PATH is required")
	}

	if c.Extractor.Timeout <= 0 {
		return fmt.Errorf("EXTRACT_TIMEOUT must be positive")
	}

	if c.Extractor.CookiesFile != "" && c.Extractor.CookiesContent != "" {
		return fmt.Errorf("set only one of YTDLP_COOKIES and YTDLP_COOKIES_CONTENT")
	}

	if c.Proxy.RateLimit < 0 {
		return fmt.Errorf("PROXY_RATE_LIMIT must be >= 0")
	}

	if c.Cache.RedisAddr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("CACHE_TTL must be positive when REDIS_ADDR is set")
	}

	if c.API.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}

	return nil
}

// ListenAddr returns host:port for the HTTP server
func (c *Config) ListenAddr() string {
	return net.JoinHostPort(c.API.Host, strconv.Itoa(c.API.Port))
}

// CacheEnabled reports whether the Redis response cache is configured
func (c *Config) CacheEnabled() bool {
	return c.Cache.RedisAddr != ""
}

// validateOrigin accepts scheme://host[:port] with nothing after it
func validateOrigin(origin string) error {
	u, err := url.Parse(origin)
	if err != nil {
		return fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid origin %q: expected scheme://host", origin)
	}
	if (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return fmt.Errorf("invalid origin %q: must not contain a path", origin)
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
