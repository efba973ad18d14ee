package config

import (
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/steamdex/steamdex/internal/logging"
)

// Region describes one storefront market: its code, a display name and
// the currency prices are quoted in there.
type Region struct {
	Code     string `yaml:"code"`
	Name     string `yaml:"name"`
	Currency string `yaml:"currency"`
}

// SteamConfig holds storefront API settings.
type SteamConfig struct {
	DetailURL    string `yaml:"detail_url"`
	SearchURL    string `yaml:"search_url"`
	MaxPages     int    `yaml:"max_pages"`
	PageDelayMS  int    `yaml:"page_delay_ms"`
	FetchDelayMS int    `yaml:"fetch_delay_ms"`
}

// Config holds application configuration.
type Config struct {
	DBPath            string             `yaml:"db_path"`
	ReferenceCurrency string             `yaml:"reference_currency"`
	Regions           []Region           `yaml:"regions"`
	Rates             map[string]float64 `yaml:"rates"`
	Steam             SteamConfig        `yaml:"steam"`
	Logging           logging.Config     `yaml:"logging"`
}

// DefaultConfig returns configuration with default values. The region and
// rate tables are the fixed reference set the price normalizer works from;
// rates are a rough static conversion, not a live FX feed.
func DefaultConfig() *Config {
	return &Config{
		DBPath:            "steamdex.db",
		ReferenceCurrency: "TWD",
		Regions: []Region{
			{Code: "tw", Name: "Taiwan", Currency: "TWD"},
			{Code: "us", Name: "United States", Currency: "USD"},
			{Code: "jp", Name: "Japan", Currency: "JPY"},
			{Code: "gb", Name: "United Kingdom", Currency: "GBP"},
			{Code: "de", Name: "Germany", Currency: "EUR"},
			{Code: "br", Name: "Brazil", Currency: "BRL"},
			{Code: "ru", Name: "Russia", Currency: "RUB"},
		},
		Rates: map[string]float64{
			"TWD": 1.0,
			"USD": 30.0,
			"JPY": 0.2,
			"GBP": 38.0,
			"EUR": 33.0,
			"BRL": 6.0,
			"RUB": 0.35,
		},
		Steam: SteamConfig{
			DetailURL:    "https://store.steampowered.com/api/appdetails",
			SearchURL:    "https://store.steampowered.com/search/?filter=topsellers",
			MaxPages:     20,
			PageDelayMS:  400,
			FetchDelayMS: 100,
		},
		Logging: logging.DefaultConfig(),
	}
}

// configPaths returns the list of paths to search for config file.
func configPaths() []string {
	paths := []string{
		".steamdex.yaml",
		".steamdex.yml",
	}

	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "steamdex", "config.yaml"),
			filepath.Join(home, ".config", "steamdex", "config.yml"),
			filepath.Join(home, ".steamdex.yaml"),
		)
	}

	return paths
}

// Load loads configuration from file or returns defaults.
// Priority: env STEAMDEX_CONFIG > search paths > defaults
func Load() (*Config, error) {
	cfg := DefaultConfig()

	if envPath := os.Getenv("STEAMDEX_CONFIG"); envPath != "" {
		if err := cfg.loadFromFile(envPath); err != nil {
			return nil, err
		}
		cfg.applyEnvOverrides()
		return cfg, nil
	}

	for _, path := range configPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := cfg.loadFromFile(path); err != nil {
				return nil, err
			}
			break
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

func (c *Config) loadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func (c *Config) applyEnvOverrides() {
	if dbPath := os.Getenv("STEAMDEX_DB"); dbPath != "" {
		c.DBPath = dbPath
	}
}

// GetDBPath returns the database path, applying defaults.
func (c *Config) GetDBPath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return "steamdex.db"
}

// GetReferenceCurrency returns the reference currency code, applying defaults.
func (c *Config) GetReferenceCurrency() string {
	if c.ReferenceCurrency != "" {
		return c.ReferenceCurrency
	}
	return "TWD"
}

// RegionCodes returns region codes in configured order. Ingestion iterates
// regions in this order, so the first successful region's metadata wins
// deterministically.
func (c *Config) RegionCodes() []string {
	codes := make([]string, 0, len(c.Regions))
	for _, r := range c.Regions {
		codes = append(codes, r.Code)
	}
	return codes
}

// RegionNames returns the region code to display name table.
func (c *Config) RegionNames() map[string]string {
	names := make(map[string]string, len(c.Regions))
	for _, r := range c.Regions {
		names[r.Code] = r.Name
	}
	return names
}

// RegionCurrencies returns the region code to currency code table.
func (c *Config) RegionCurrencies() map[string]string {
	currencies := make(map[string]string, len(c.Regions))
	for _, r := range c.Regions {
		currencies[r.Code] = r.Currency
	}
	return currencies
}
