package config

import (
	"fmt"
	"os"
	"strings"

	"ydkpoints/internal/language"
)

func (c *Config) normalize() error {
	c.normalizeSources()
	c.normalizeCache()
	c.normalizeLogging()
	return c.normalizePaths()
}

func (c *Config) normalizePaths() error {
	if strings.TrimSpace(c.Paths.ScoreTable) == "" {
		if value, ok := os.LookupEnv("YDKPOINTS_SCORE_TABLE"); ok {
			c.Paths.ScoreTable = strings.TrimSpace(value)
		}
	}
	if strings.TrimSpace(c.Paths.CachePath) == "" {
		c.Paths.CachePath = defaultJSONCachePath
		if c.Cache.Backend == CacheBackendSQLite {
			c.Paths.CachePath = defaultSQLiteCachePath
		}
	}

	var err error
	if c.Paths.DeckDir, err = expandPath(strings.TrimSpace(c.Paths.DeckDir)); err != nil {
		return fmt.Errorf("paths.deck_dir: %w", err)
	}
	if c.Paths.ScoreTable, err = expandPath(strings.TrimSpace(c.Paths.ScoreTable)); err != nil {
		return fmt.Errorf("paths.score_table: %w", err)
	}
	if c.Paths.ScoreTableDir, err = expandPath(strings.TrimSpace(c.Paths.ScoreTableDir)); err != nil {
		return fmt.Errorf("paths.score_table_dir: %w", err)
	}
	if c.Paths.CachePath, err = expandPath(strings.TrimSpace(c.Paths.CachePath)); err != nil {
		return fmt.Errorf("paths.cache_path: %w", err)
	}
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

func (c *Config) normalizeSources() {
	c.Sources.YGOProDeckBaseURL = strings.TrimRight(strings.TrimSpace(c.Sources.YGOProDeckBaseURL), "/")
	if c.Sources.YGOProDeckBaseURL == "" {
		c.Sources.YGOProDeckBaseURL = defaultYGOProDeckBaseURL
	}
	c.Sources.KonamiBaseURL = strings.TrimRight(strings.TrimSpace(c.Sources.KonamiBaseURL), "/")
	if c.Sources.KonamiBaseURL == "" {
		c.Sources.KonamiBaseURL = defaultKonamiBaseURL
	}
	c.Sources.UserAgent = strings.TrimSpace(c.Sources.UserAgent)
	if c.Sources.UserAgent == "" {
		c.Sources.UserAgent = defaultUserAgent
	}
	c.Sources.LocalizedLanguage = strings.ToLower(strings.TrimSpace(c.Sources.LocalizedLanguage))
	if c.Sources.LocalizedLanguage == "" {
		c.Sources.LocalizedLanguage = defaultLocalizedLanguage
	}
	if code := language.ToISO2(c.Sources.LocalizedLanguage); code != "" {
		c.Sources.LocalizedLanguage = code
	}
}

func (c *Config) normalizeCache() {
	c.Cache.Backend = strings.ToLower(strings.TrimSpace(c.Cache.Backend))
	if c.Cache.Backend == "" {
		c.Cache.Backend = defaultCacheBackend
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
