package app

import (
	"os"
	"path/filepath"
)

// ConfigDir returns ~/.config/coinwatch/ on all platforms.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "coinwatch"), nil
}

// EnsureConfigDir creates the config directory and default config.yaml if missing.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return err
	}

	configFile := filepath.Join(dir, "config.yaml")
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		return os.WriteFile(configFile, []byte(defaultConfig), 0600)
	}
	return nil
}

const defaultConfig = `# coinwatch configuration
# Run: coinwatch --help

# Optional: override the SQLite database location.
# Can also be set via COINWATCH_DB_PATH or --db-path.
# db_path: ~/.config/coinwatch/coinwatch.db

# Market data API (CoinGecko compatible). Can also be set via COINWATCH_API_URL or --api-url.
# api_base_url: https://api.coingecko.com/api/v3
# api_key: ""

# vs_currency: usd
# poll_interval: 1m
# cache_ttl: 30s
# log_level: info
`
