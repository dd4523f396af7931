package shared

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:8000" {
			t.Errorf("expected default base_url, got %q", config.API.BaseURL)
		}
		if config.API.TimeoutSeconds != 30 {
			t.Errorf("expected timeout 30, got %d", config.API.TimeoutSeconds)
		}
		if config.API.RateLimit != 5.0 {
			t.Errorf("expected rate limit 5.0, got %f", config.API.RateLimit)
		}
		if config.Auth.TokenPath != "~/.scout/token.json" {
			t.Errorf("unexpected token path %q", config.Auth.TokenPath)
		}
		if config.Database.Path != "~/.scout/scout.db" {
			t.Errorf("unexpected database path %q", config.Database.Path)
		}
		if config.Database.MaxOpenConns != 5 {
			t.Errorf("expected max open conns 5, got %d", config.Database.MaxOpenConns)
		}
		if config.Stream.BufferSize != 64 {
			t.Errorf("expected buffer size 64, got %d", config.Stream.BufferSize)
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		t.Run("parses a valid file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			content := `
[api]
base_url = "https://discovery.example.com"
timeout_seconds = 10
rate_limit = 2.5

[stream]
buffer_size = 16
`
			if err := os.WriteFile(path, []byte(content), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if config.API.BaseURL != "https://discovery.example.com" {
				t.Errorf("unexpected base_url %q", config.API.BaseURL)
			}
			if config.API.RateLimit != 2.5 {
				t.Errorf("unexpected rate limit %f", config.API.RateLimit)
			}
			if config.Stream.BufferSize != 16 {
				t.Errorf("unexpected buffer size %d", config.Stream.BufferSize)
			}
		})

		t.Run("fails for a missing file", func(t *testing.T) {
			_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.toml"))
			if err == nil {
				t.Fatal("expected error for missing file")
			}
			if !strings.Contains(err.Error(), "failed to read config file") {
				t.Errorf("unexpected error %v", err)
			}
		})

		t.Run("fails for invalid TOML", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("[api\nbase_url"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			_, err := LoadConfig(path)
			if err == nil {
				t.Fatal("expected parse error")
			}
			if !strings.Contains(err.Error(), "failed to parse config") {
				t.Errorf("unexpected error %v", err)
			}
		})
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		t.Run("writes the embedded template", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")

			if err := CreateConfigFile(path); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			config, err := LoadConfig(path)
			if err != nil {
				t.Fatalf("created config does not load: %v", err)
			}
			if config.API.BaseURL != "http://localhost:8000" {
				t.Errorf("unexpected base_url %q", config.API.BaseURL)
			}
		})

		t.Run("refuses to overwrite an existing file", func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte("# existing"), 0644); err != nil {
				t.Fatalf("failed to write config: %v", err)
			}

			if err := CreateConfigFile(path); err == nil {
				t.Fatal("expected error for existing file")
			}

			data, err := os.ReadFile(path)
			if err != nil {
				t.Fatalf("failed to read config: %v", err)
			}
			if string(data) != "# existing" {
				t.Error("existing file was modified")
			}
		})
	})
}
