package app

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings represents configuration loaded from config.yaml.
// Field names match snake_case YAML keys.
type Settings struct {
	DBPath       string `yaml:"db_path"`
	APIBaseURL   string `yaml:"api_base_url"`
	APIKey       string `yaml:"api_key"`
	VsCurrency   string `yaml:"vs_currency"`
	PollInterval string `yaml:"poll_interval"`
	CacheTTL     string `yaml:"cache_ttl"`
	LogLevel     string `yaml:"log_level"`
	EventBuffer  int    `yaml:"event_buffer"`
}

// FeedSettings are effective runtime values for the market data feed and watcher.
type FeedSettings struct {
	BaseURL      string        `json:"base_url"`
	APIKey       string        `json:"-"`
	VsCurrency   string        `json:"vs_currency"`
	PollInterval time.Duration `json:"poll_interval"`
	CacheTTL     time.Duration `json:"cache_ttl"`
	EventBuffer  int           `json:"event_buffer"`
}

const (
	DefaultAPIBaseURL   = "https://api.coingecko.com/api/v3"
	defaultVsCurrency   = "usd"
	defaultPollInterval = time.Minute
	defaultCacheTTL     = 30 * time.Second
	defaultEventBuffer  = 16

	minPollInterval = 10 * time.Second
	maxCacheTTL     = 10 * time.Minute
)

// EffectiveFeedSettings returns validated feed settings with defaults.
// Invalid or missing config values fall back to safe defaults.
// The API URL follows the same precedence as the database path.
func EffectiveFeedSettings() FeedSettings {
	cfg := FeedSettings{
		BaseURL:      DefaultAPIBaseURL,
		VsCurrency:   defaultVsCurrency,
		PollInterval: defaultPollInterval,
		CacheTTL:     defaultCacheTTL,
		EventBuffer:  defaultEventBuffer,
	}

	s, err := LoadSettings()
	if err == nil {
		if s.APIBaseURL != "" {
			cfg.BaseURL = s.APIBaseURL
		}
		cfg.APIKey = s.APIKey
		if s.VsCurrency != "" {
			cfg.VsCurrency = strings.ToLower(strings.TrimSpace(s.VsCurrency))
		}
		if d, err := time.ParseDuration(s.PollInterval); err == nil && d > 0 {
			cfg.PollInterval = d
		}
		if d, err := time.ParseDuration(s.CacheTTL); err == nil && d >= 0 {
			cfg.CacheTTL = d
		}
		if s.EventBuffer > 0 {
			cfg.EventBuffer = s.EventBuffer
		}
	}

	if envURL := os.Getenv("COINWATCH_API_URL"); envURL != "" {
		cfg.BaseURL = envURL
	}
	if override := getAPIURLOverride(); override != "" {
		cfg.BaseURL = override
	}
	if envKey := os.Getenv("COINWATCH_API_KEY"); envKey != "" {
		cfg.APIKey = envKey
	}

	if cfg.PollInterval < minPollInterval {
		cfg.PollInterval = minPollInterval
	}
	if cfg.CacheTTL > maxCacheTTL {
		cfg.CacheTTL = maxCacheTTL
	}
	if cfg.EventBuffer > 1024 {
		cfg.EventBuffer = 1024
	}
	return cfg
}

// LogLevel resolves the log level: COINWATCH_LOG_LEVEL, then log_level, then "info".
func LogLevel() string {
	if v := os.Getenv("COINWATCH_LOG_LEVEL"); v != "" {
		return strings.ToLower(v)
	}
	if s, err := LoadSettings(); err == nil && s.LogLevel != "" {
		return strings.ToLower(s.LogLevel)
	}
	return "info"
}

// settingsOnce, settings, settingsErr implement the sync.Once lazy-load singleton for config.
// The override pairs implement mutex-protected process-wide overrides for CLI flags.
//
//nolint:gochecknoglobals // sync.Once singleton + RWMutex override are intentional process-wide state
var (
	settingsOnce sync.Once
	settings     Settings
	settingsErr  error

	overrideMu     sync.RWMutex
	dbPathOverride string
	apiURLOverride string
)

// SetDBPathOverride sets a process-wide database path override.
// Intended for CLI flag support (e.g. --db-path).
func SetDBPathOverride(path string) {
	overrideMu.Lock()
	dbPathOverride = path
	overrideMu.Unlock()
}

func getDBPathOverride() string {
	overrideMu.RLock()
	v := dbPathOverride
	overrideMu.RUnlock()
	return v
}

// SetAPIURLOverride sets a process-wide market data API override (--api-url).
func SetAPIURLOverride(url string) {
	overrideMu.Lock()
	apiURLOverride = url
	overrideMu.Unlock()
}

func getAPIURLOverride() string {
	overrideMu.RLock()
	v := apiURLOverride
	overrideMu.RUnlock()
	return v
}

// LoadSettings loads configuration once using the documented lookup order.
// Lookup order (first found wins):
// 1) ~/.config/coinwatch/config.yaml
// 2) /etc/coinwatch/config.yaml
// 3) ./config.yaml (lowest priority; allows repo-local overrides if desired)
// Environment variables are handled separately.
func LoadSettings() (Settings, error) {
	settingsOnce.Do(func() {
		settings = Settings{}

		paths, err := settingsPaths()
		if err != nil {
			settingsErr = err
			return
		}

		for _, p := range paths {
			s, err := loadSettingsFile(p)
			if err == nil {
				settings = s
				return
			}
			if !errors.Is(err, os.ErrNotExist) {
				settingsErr = err
				return
			}
		}
	})

	return settings, settingsErr
}

func settingsPaths() ([]string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return nil, err
	}
	return []string{
		filepath.Join(dir, "config.yaml"),
		filepath.Join(string(os.PathSeparator), "etc", "coinwatch", "config.yaml"),
		"config.yaml",
	}, nil
}

func loadSettingsFile(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}

	var s Settings
	if err := yaml.Unmarshal(b, &s); err != nil {
		return Settings{}, err
	}
	return s, nil
}
