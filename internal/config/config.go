package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Catalog CatalogConfig `mapstructure:"catalog"`
	Feed    FeedConfig    `mapstructure:"feed"`
	Session SessionConfig `mapstructure:"session"`
	UI      UIConfig      `mapstructure:"ui"`
	Keys    KeyConfig     `mapstructure:"keys"`
	Media   MediaConfig   `mapstructure:"media"`
	Log     LogConfig     `mapstructure:"log"`
}

// APIConfig points at the CineConnect content service.
type APIConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	HTTPTimeout time.Duration `mapstructure:"http_timeout"`
	UserAgent   string        `mapstructure:"user_agent"`
}

// CatalogConfig points at the external movie catalog. The catalog is rate
// limited upstream, so the client carries its own limiter and a fan-out cap.
type CatalogConfig struct {
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	HTTPTimeout       time.Duration `mapstructure:"http_timeout"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	MaxLookups        int           `mapstructure:"max_lookups"`
}

type FeedConfig struct {
	PublicLimit      int    `mapstructure:"public_limit"`
	RecommendedQuery string `mapstructure:"recommended_query"`
}

type SessionConfig struct {
	Path string `mapstructure:"path"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

type UIConfig struct {
	Colors UIColors `mapstructure:"colors"`
}

type UIColors struct {
	Primary    string `mapstructure:"primary"`
	Secondary  string `mapstructure:"secondary"`
	Accent     string `mapstructure:"accent"`
	Text       string `mapstructure:"text"`
	Muted      string `mapstructure:"muted"`
	Error      string `mapstructure:"error"`
	Success    string `mapstructure:"success"`
	Highlight  string `mapstructure:"highlight"`
	Background string `mapstructure:"background"`
}

type KeyConfig struct {
	Modifier string      `mapstructure:"modifier"`
	Bindings KeyBindings `mapstructure:"bindings"`
}

type KeyBindings struct {
	Quit        string `mapstructure:"quit"`
	Refresh     string `mapstructure:"refresh"`
	Discover    string `mapstructure:"discover"`
	SearchFeed  string `mapstructure:"search_feed"`
	Profile     string `mapstructure:"profile"`
	Login       string `mapstructure:"login"`
	Bookmark    string `mapstructure:"bookmark"`
	Follow      string `mapstructure:"follow"`
	OpenPoster  string `mapstructure:"open_poster"`
	WriteReview string `mapstructure:"write_review"`
	WritePost   string `mapstructure:"write_post"`
	Back        string `mapstructure:"back"`
}

// MediaConfig lists per-OS opener commands for posters and catalog pages.
type MediaConfig struct {
	Darwin        []string `mapstructure:"darwin"`
	Linux         []string `mapstructure:"linux"`
	Windows       []string `mapstructure:"windows"`
	DefaultOpener string   `mapstructure:"default_opener"`
	OverridesPath string   `mapstructure:"overrides_path"`
}

func defaultConfig() *Config {
	homeDir, _ := os.UserHomeDir()
	sessionPath := filepath.Join(homeDir, ".cinefeed", "session.db")

	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:4000",
			HTTPTimeout: 15 * time.Second,
			UserAgent:   "cinefeed/1.0 (github.com/cineconnect/cinefeed)",
		},
		Catalog: CatalogConfig{
			BaseURL:           "https://www.omdbapi.com",
			HTTPTimeout:       10 * time.Second,
			RequestsPerSecond: 10,
			Burst:             5,
			MaxLookups:        5,
		},
		Feed: FeedConfig{
			PublicLimit:      3,
			RecommendedQuery: "superman",
		},
		Session: SessionConfig{
			Path: sessionPath,
		},
		UI: UIConfig{
			Colors: UIColors{
				Primary:    "#F5C518",
				Secondary:  "#4ECDC4",
				Accent:     "#95E1D3",
				Text:       "#EAEAEA",
				Muted:      "#94A3B8",
				Error:      "#F87171",
				Success:    "#4ADE80",
				Highlight:  "#FF6B6B",
				Background: "#1A1A2E",
			},
		},
		Keys: KeyConfig{
			Modifier: "ctrl",
			Bindings: KeyBindings{
				Quit:        "q",
				Refresh:     "r",
				Discover:    "d",
				SearchFeed:  "s",
				Profile:     "p",
				Login:       "l",
				Bookmark:    "b",
				Follow:      "f",
				OpenPoster:  "o",
				WriteReview: "w",
				WritePost:   "t",
				Back:        "esc",
			},
		},
		Media: MediaConfig{
			Darwin:        []string{"open"},
			Linux:         []string{"xdg-open"},
			Windows:       []string{"start"},
			DefaultOpener: getDefaultOpener(),
		},
		Log: LogConfig{
			Level: "off",
		},
	}
}

func getDefaultOpener() string {
	switch runtime.GOOS {
	case "darwin":
		return "open"
	case "linux":
		return "xdg-open"
	case "windows":
		return "start"
	default:
		return "open"
	}
}

func Load(configPath string) (*Config, error) {
	v := viper.New()

	cfg := defaultConfig()
	v.SetDefault("api", cfg.API)
	v.SetDefault("catalog", cfg.Catalog)
	v.SetDefault("feed", cfg.Feed)
	v.SetDefault("session", cfg.Session)
	v.SetDefault("ui", cfg.UI)
	v.SetDefault("keys", cfg.Keys)
	v.SetDefault("media", cfg.Media)
	v.SetDefault("log", cfg.Log)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		homeDir, _ := os.UserHomeDir()
		configDir := filepath.Join(homeDir, ".config", "cinefeed")

		v.SetConfigName("config")
		v.SetConfigType("toml")
		v.AddConfigPath(configDir)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("CINEFEED")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	expandPaths(&config)

	return &config, nil
}

// expandPath expands ~ to home directory and converts to absolute path
func expandPath(path string) string {
	if path == "" {
		return path
	}

	if len(path) >= 2 && path[:2] == "~/" {
		home, _ := os.UserHomeDir()
		path = filepath.Join(home, path[2:])
	}

	if !filepath.IsAbs(path) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
	}

	return path
}

func expandPaths(cfg *Config) {
	cfg.Session.Path = expandPath(cfg.Session.Path)
	cfg.Log.Path = expandPath(cfg.Log.Path)
	cfg.Media.OverridesPath = expandPath(cfg.Media.OverridesPath)
}

func Save(config *Config, path string) error {
	v := viper.New()

	// Durations as strings for TOML readability.
	apiCfg := map[string]interface{}{
		"base_url":     config.API.BaseURL,
		"http_timeout": config.API.HTTPTimeout.String(),
		"user_agent":   config.API.UserAgent,
	}

	catalogCfg := map[string]interface{}{
		"base_url":            config.Catalog.BaseURL,
		"api_key":             config.Catalog.APIKey,
		"http_timeout":        config.Catalog.HTTPTimeout.String(),
		"requests_per_second": config.Catalog.RequestsPerSecond,
		"burst":               config.Catalog.Burst,
		"max_lookups":         config.Catalog.MaxLookups,
	}

	v.Set("api", apiCfg)
	v.Set("catalog", catalogCfg)
	v.Set("feed", config.Feed)
	v.Set("session", config.Session)
	v.Set("ui", config.UI)
	v.Set("keys", config.Keys)
	v.Set("media", config.Media)
	v.Set("log", config.Log)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	return v.WriteConfigAs(path)
}

func GenerateDefaultConfig(path string) error {
	return Save(defaultConfig(), path)
}
