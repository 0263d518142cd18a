package app

import (
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/KeremKalyoncu/vidgate/internal/cache"
	"github.com/KeremKalyoncu/vidgate/internal/config"
	"github.com/KeremKalyoncu/vidgate/internal/extractor"
	"github.com/KeremKalyoncu/vidgate/internal/metrics"
	"github.com/KeremKalyoncu/vidgate/internal/pool"
	"github.com/KeremKalyoncu/vidgate/internal/proxy"
	"github.com/KeremKalyoncu/vidgate/internal/validation"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Metrics     *metrics.Metrics
	HTTPClients *pool.HTTPClientPool
	Extractor   extractor.Extractor
	YtdlpPath   string
	Validator   *validation.Validator
	Streamer    *proxy.Streamer
	Cache       cache.ResponseCache // nil when caching is disabled

	// cookiesFile is a temp file written from inline cookie content
	cookiesFile string
}

// NewContainer creates and initializes a new application container
func NewContainer(cfg *config.Config, logger *zap.Logger) (*Container, error) {
	logger.Info("Configuration loaded successfully",
		zap.String("listen_addr", cfg.ListenAddr()),
		zap.Int("cors_origins", len(cfg.API.CORSOrigins)),
		zap.Strings("denied_hosts", cfg.API.DeniedHosts),
		zap.Bool("cache_enabled", cfg.CacheEnabled()),
	)

	c := &Container{
		Config:    cfg,
		Logger:    logger,
		Metrics:   metrics.New(),
		YtdlpPath: cfg.Extractor.YtdlpPath,
		Validator: validation.New(cfg.API.DeniedHosts),
	}

	cookiesFile := cfg.Extractor.CookiesFile
	if cfg.Extractor.CookiesContent != "" {
		path, err := extractor.WriteCookiesFile(cfg.Extractor.CookiesContent)
		if err != nil {
			return nil, fmt.Errorf("failed to prepare cookies: %w", err)
		}
		cookiesFile = path
		c.cookiesFile = path
		logger.Info("Cookies written from YTDLP_COOKIES_CONTENT", zap.String("path", path))
	}

	ytdlp := extractor.NewYtDlp(extractor.Options{
		BinaryPath:  cfg.Extractor.YtdlpPath,
		Timeout:     cfg.Extractor.Timeout,
		CookiesFile: cookiesFile,
		UserAgent:   cfg.Extractor.UserAgent,
		Proxy:       cfg.Extractor.Proxy,
	}, logger)

	// Concurrent requests for the same URL share one yt-dlp run
	c.Extractor = extractor.NewCoalescing(ytdlp)

	c.HTTPClients = pool.NewHTTPClientPool()
	c.Streamer = proxy.NewStreamer(c.HTTPClients.Client(), logger)

	if cfg.CacheEnabled() {
		rc, err := cache.NewRedisCache(cache.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
			TTL:      cfg.Cache.TTL,
		}, logger)
		if err != nil {
			// Continue without cache
			logger.Warn("Failed to initialize response cache", zap.Error(err))
		} else {
			// Stop waiting on Redis after repeated failures
			c.Cache = cache.NewGuarded(rc, nil, logger)
		}
	}

	return c, nil
}

// Close closes all resources
func (c *Container) Close() error {
	c.Logger.Info("Closing application container")

	var firstErr error

	if c.Cache != nil {
		if err := c.Cache.Close(); err != nil {
			firstErr = fmt.Errorf("failed to close cache: %w", err)
		}
	}

	if c.HTTPClients != nil {
		c.HTTPClients.Close()
	}

	if c.cookiesFile != "" {
		if err := os.Remove(c.cookiesFile); err != nil && !os.IsNotExist(err) && firstErr == nil {
			firstErr = fmt.Errorf("failed to remove cookies file: %w", err)
		}
	}

	return firstErr
}
