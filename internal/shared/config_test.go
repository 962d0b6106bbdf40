package shared

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.Database.Path != "./libmirror.db" {
			t.Errorf("expected database path ./libmirror.db, got %s", config.Database.Path)
		}
		if config.API.PageSize != 1000 {
			t.Errorf("expected page size 1000, got %d", config.API.PageSize)
		}
		if !config.Cache.Tracks || !config.Cache.Entries {
			t.Error("expected caching enabled by default")
		}
		if err := config.Validate(); err != nil {
			t.Errorf("expected default config to validate, got %v", err)
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}
		if config.Database.Path != DefaultConfig().Database.Path {
			t.Errorf("created config database path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		testConfig := `[api]
base_url = "http://localhost:9090"
token = "file-token"
page_size = 50

[cache]
tracks = false

[database]
path = "/custom/path.db"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "http://localhost:9090" {
			t.Errorf("expected base url http://localhost:9090, got %s", config.API.BaseURL)
		}
		if config.API.PageSize != 50 {
			t.Errorf("expected page size 50, got %d", config.API.PageSize)
		}
		if config.Cache.Tracks {
			t.Error("expected track caching disabled")
		}
		if !config.Cache.Entries {
			t.Error("expected entry caching to keep its default")
		}
		if config.Database.Path != "/custom/path.db" {
			t.Errorf("expected database path /custom/path.db, got %s", config.Database.Path)
		}
	})

	t.Run("LoadConfig Token From Environment", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		if err := os.WriteFile(configPath, []byte("[api]\ntoken = \"file-token\"\n"), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		t.Setenv("LIBMIRROR_TOKEN", "env-token")

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}
		if config.API.Token != "env-token" {
			t.Errorf("expected env token to win, got %s", config.API.Token)
		}
	})

	t.Run("LoadConfig Missing File", func(t *testing.T) {
		if _, err := LoadConfig("/nonexistent/config.toml"); err == nil {
			t.Error("expected error for missing file")
		}
	})

	t.Run("Validate", func(t *testing.T) {
		tt := []struct {
			name   string
			mutate func(*Config)
		}{
			{"empty base url", func(c *Config) { c.API.BaseURL = "" }},
			{"negative page size", func(c *Config) { c.API.PageSize = -1 }},
			{"negative rate", func(c *Config) { c.API.RequestsPerSecond = -2 }},
		}

		for _, tc := range tt {
			t.Run(tc.name, func(t *testing.T) {
				config := DefaultConfig()
				tc.mutate(config)
				if err := config.Validate(); !errors.Is(err, ErrInvalidConfig) {
					t.Errorf("expected ErrInvalidConfig, got %v", err)
				}
			})
		}
	})
}
