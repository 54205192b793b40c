// # internal/config/config_test.go
package config

import (
	"os"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	content := `
watch_paths = ["./src"]

[exclude]
dirs = [".git"]
files = ["*.log"]

[watch]
debounce = "1s"

[resolve]
strict = true

[output]
dot = "calls.dot"
tsv = "symbols.tsv"

[history]
path = "skein.db"

[telemetry]
metrics_addr = ":9090"
`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	if _, err := tmpfile.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := tmpfile.Close(); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(cfg.WatchPaths) != 1 || cfg.WatchPaths[0] != "./src" {
		t.Errorf("Unexpected WatchPaths: %v", cfg.WatchPaths)
	}
	if cfg.Watch.Debounce != time.Second {
		t.Errorf("Expected debounce 1s, got %v", cfg.Watch.Debounce)
	}
	if !cfg.Resolve.Strict {
		t.Error("Expected strict mode enabled")
	}
	if cfg.Output.DOT != "calls.dot" {
		t.Errorf("Expected DOT calls.dot, got %s", cfg.Output.DOT)
	}
	if cfg.History.Path != "skein.db" {
		t.Errorf("Expected history path skein.db, got %s", cfg.History.Path)
	}
	if cfg.Telemetry.MetricsAddr != ":9090" {
		t.Errorf("Expected metrics addr :9090, got %s", cfg.Telemetry.MetricsAddr)
	}
}

func TestLoadDefaults(t *testing.T) {
	content := `[resolve]
strict = false`
	tmpfile, err := os.CreateTemp("", "config*.toml")
	if err != nil {
		t.Fatal(err)
	}
	defer os.Remove(tmpfile.Name())

	tmpfile.Write([]byte(content))
	tmpfile.Close()

	cfg, err := Load(tmpfile.Name())
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Watch.Debounce != 500*time.Millisecond {
		t.Errorf("Expected default debounce 500ms, got %v", cfg.Watch.Debounce)
	}
	if len(cfg.WatchPaths) != 1 || cfg.WatchPaths[0] != "." {
		t.Errorf("Expected default watch path ., got %v", cfg.WatchPaths)
	}
	if len(cfg.Exclude.Dirs) == 0 {
		t.Error("Expected default excluded dirs")
	}
}

func TestLoadError(t *testing.T) {
	_, err := Load("nonexistent.toml")
	if err == nil {
		t.Error("Expected error for nonexistent file")
	}

	tmpfile, _ := os.CreateTemp("", "badconfig*.toml")
	defer os.Remove(tmpfile.Name())
	tmpfile.Write([]byte("bad = toml = format"))
	tmpfile.Close()

	_, err = Load(tmpfile.Name())
	if err == nil {
		t.Error("Expected error for malformed TOML")
	}
}
