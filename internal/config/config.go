package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
)

const (
	defaultConfigPath   = "storesync.toml"
	defaultAPIBaseURL   = "http://127.0.0.1:8000/api"
	defaultPollInterval = 30 * time.Second
	defaultCachePath    = "storesync.db"
)

type Config struct {
	APIBaseURL   string
	APIToken     string
	PollInterval time.Duration
	CachePath    string
	AppEnv       string
}

// fileConfig is the optional TOML file shape. Env vars override it.
type fileConfig struct {
	APIBaseURL  string `toml:"api_base_url"`
	APIToken    string `toml:"api_token"`
	PollSeconds int    `toml:"poll_seconds"`
	CachePath   string `toml:"cache_path"`
	AppEnv      string `toml:"app_env"`
}

// LoadConfig reads the optional TOML config file, then .env / environment
// variables on top of it. A missing file is not an error.
func LoadConfig() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		APIBaseURL:   defaultAPIBaseURL,
		PollInterval: defaultPollInterval,
		CachePath:    defaultCachePath,
	}

	path := os.Getenv("STORESYNC_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}
	applyFile(cfg, path)

	if v := os.Getenv("API_BASE_URL"); v != "" {
		cfg.APIBaseURL = v
	}
	if v := os.Getenv("API_TOKEN"); v != "" {
		cfg.APIToken = v
	}
	if v := os.Getenv("POLL_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.PollInterval = time.Duration(n) * time.Second
		}
	}
	if v := os.Getenv("CACHE_PATH"); v != "" {
		cfg.CachePath = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.AppEnv = v
	}

	return cfg
}

func applyFile(cfg *Config, path string) {
	// Missing or unreadable config files degrade to env-only configuration.
	raw, err := os.ReadFile(path)
	if err != nil {
		return
	}

	var fc fileConfig
	if err := toml.Unmarshal(raw, &fc); err != nil {
		return
	}

	if fc.APIBaseURL != "" {
		cfg.APIBaseURL = fc.APIBaseURL
	}
	if fc.APIToken != "" {
		cfg.APIToken = fc.APIToken
	}
	if fc.PollSeconds > 0 {
		cfg.PollInterval = time.Duration(fc.PollSeconds) * time.Second
	}
	if fc.CachePath != "" {
		cfg.CachePath = fc.CachePath
	}
	if fc.AppEnv != "" {
		cfg.AppEnv = fc.AppEnv
	}
}
