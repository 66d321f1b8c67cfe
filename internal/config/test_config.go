package config

import "time"

// TestConfig returns a config suitable for testing
func TestConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL:     "http://localhost:4000",
			HTTPTimeout: 5 * time.Second,
			UserAgent:   "cinefeed-test/1.0",
		},
		Catalog: CatalogConfig{
			BaseURL:           "http://localhost:4001",
			APIKey:            "test-key",
			HTTPTimeout:       5 * time.Second,
			RequestsPerSecond: 0,
			MaxLookups:        2,
		},
		Feed: FeedConfig{
			PublicLimit:      3,
			RecommendedQuery: "superman",
		},
		Session: SessionConfig{
			Path: "",
		},
		UI:    defaultConfig().UI,
		Keys:  defaultConfig().Keys,
		Media: defaultConfig().Media,
		Log:   LogConfig{Level: "off"},
	}
}
