package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"ydkpoints/internal/language"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateSources(); err != nil {
		return err
	}
	if err := c.validateResolve(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateSources() error {
	for name, raw := range map[string]string{
		"sources.ygoprodeck_base_url": c.Sources.YGOProDeckBaseURL,
		"sources.konami_base_url":     c.Sources.KonamiBaseURL,
	} {
		parsed, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("%s must be an http(s) URL, got %q", name, raw)
		}
	}
	if !language.Supported(c.Sources.LocalizedLanguage) {
		return fmt.Errorf("sources.localized_language %q is not one of %s", c.Sources.LocalizedLanguage, strings.Join(language.Codes(), ", "))
	}
	if c.Sources.PrimaryTimeoutSeconds <= 0 {
		return errors.New("sources.primary_timeout_seconds must be positive")
	}
	if c.Sources.SecondaryTimeoutSeconds <= 0 {
		return errors.New("sources.secondary_timeout_seconds must be positive")
	}
	return nil
}

func (c *Config) validateResolve() error {
	if c.Resolve.Workers < 1 || c.Resolve.Workers > MaxWorkers {
		return fmt.Errorf("resolve.workers must be between 1 and %d", MaxWorkers)
	}
	return nil
}

func (c *Config) validateCache() error {
	switch c.Cache.Backend {
	case CacheBackendJSON, CacheBackendSQLite:
		return nil
	default:
		return fmt.Errorf("cache.backend: unsupported value %q (want %q or %q)", c.Cache.Backend, CacheBackendJSON, CacheBackendSQLite)
	}
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
