package config

const (
	defaultConfigPath              = "~/.config/ydkpoints/config.toml"
	defaultDeckDir                 = "~/ydk"
	defaultScoreTableDir           = "~/.config/ydkpoints/tables"
	defaultJSONCachePath           = "~/.cache/ydkpoints/cache.json"
	defaultSQLiteCachePath         = "~/.cache/ydkpoints/cache.db"
	defaultYGOProDeckBaseURL       = "https://db.ygoprodeck.com/api/v7"
	defaultKonamiBaseURL           = "https://www.db.yugioh-card.com"
	defaultUserAgent               = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	defaultLocalizedLanguage       = "ko"
	defaultPrimaryTimeoutSeconds   = 5
	defaultSecondaryTimeoutSeconds = 10
	defaultWorkers                 = 10
	defaultCacheBackend            = "json"
	defaultLogFormat               = "console"
	defaultLogLevel                = "info"

	// MaxWorkers bounds resolve.workers.
	MaxWorkers = 64

	// CacheBackendJSON and CacheBackendSQLite name the supported cache backends.
	CacheBackendJSON   = "json"
	CacheBackendSQLite = "sqlite"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			DeckDir:       defaultDeckDir,
			ScoreTableDir: defaultScoreTableDir,
		},
		Sources: Sources{
			YGOProDeckBaseURL:       defaultYGOProDeckBaseURL,
			KonamiBaseURL:           defaultKonamiBaseURL,
			UserAgent:               defaultUserAgent,
			LocalizedLanguage:       defaultLocalizedLanguage,
			PrimaryTimeoutSeconds:   defaultPrimaryTimeoutSeconds,
			SecondaryTimeoutSeconds: defaultSecondaryTimeoutSeconds,
		},
		Resolve: Resolve{
			Workers:                 defaultWorkers,
			UseLocalizationFallback: true,
		},
		Cache: Cache{
			Enabled: true,
			Backend: defaultCacheBackend,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
