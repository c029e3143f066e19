package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func chdir(t *testing.T, dir string) {
	t.Helper()
	oldWd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Chdir(oldWd) })
}

func TestLoad(t *testing.T) {
	// No config file: defaults
	chdir(t, t.TempDir())

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error loading defaults, got %v", err)
	}

	if cfg.Workers != 4 {
		t.Errorf("expected default workers 4, got %d", cfg.Workers)
	}
	if cfg.Output.Format != FormatText {
		t.Errorf("expected default format text, got %s", cfg.Output.Format)
	}
	if cfg.Watch.Debounce != 100*time.Millisecond {
		t.Errorf("expected default debounce 100ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Log.Level)
	}
	if cfg.Cache.Backend != "memory" {
		t.Errorf("expected default cache backend memory, got %s", cfg.Cache.Backend)
	}
}

func TestLoadWithConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	configContent := `
package: demo_msgs
workers: 8
output:
  format: json
watch:
  debounce: 250ms
  addr: 127.0.0.1:7070
log:
  level: debug
cache:
  backend: sqlite
  dsn: .msgidl/cache.db
  ttl: 1h
`
	if err := os.WriteFile(filepath.Join(tmpDir, FileName), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if cfg.Package != "demo_msgs" {
		t.Errorf("expected package demo_msgs, got %s", cfg.Package)
	}
	if cfg.Workers != 8 {
		t.Errorf("expected workers 8, got %d", cfg.Workers)
	}
	if cfg.Output.Format != FormatJSON {
		t.Errorf("expected format json, got %s", cfg.Output.Format)
	}
	if cfg.Watch.Debounce != 250*time.Millisecond {
		t.Errorf("expected debounce 250ms, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.Addr != "127.0.0.1:7070" {
		t.Errorf("expected watch addr, got %s", cfg.Watch.Addr)
	}

	opts := cfg.CacheOptions()
	if opts.Backend != "sqlite" || opts.DSN != ".msgidl/cache.db" || opts.TTL != time.Hour {
		t.Errorf("unexpected cache options: %+v", opts)
	}
}

func TestLoadExplicitPath(t *testing.T) {
	chdir(t, t.TempDir())

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing explicit config file")
	}

	path := filepath.Join(t.TempDir(), "custom.yaml")
	if err := os.WriteFile(path, []byte("workers: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Workers != 2 {
		t.Errorf("expected workers 2, got %d", cfg.Workers)
	}
}

func TestLoadEnvOverride(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MSGIDL_WORKERS", "16")
	t.Setenv("MSGIDL_OUTPUT_FORMAT", "yaml")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cfg.Workers != 16 {
		t.Errorf("expected workers 16 from env, got %d", cfg.Workers)
	}
	if cfg.Output.Format != FormatYAML {
		t.Errorf("expected format yaml from env, got %s", cfg.Output.Format)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"bad format", func(c *Config) { c.Output.Format = "xml" }, true},
		{"negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"negative debounce", func(c *Config) { c.Watch.Debounce = -time.Second }, true},
		{"bad log level", func(c *Config) { c.Log.Level = "loud" }, true},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "etcd" }, true},
		{"redis without dsn", func(c *Config) { c.Cache.Backend = "redis" }, true},
		{"redis with dsn", func(c *Config) {
			c.Cache.Backend = "redis"
			c.Cache.DSN = "localhost:6379"
		}, false},
		{"no cache", func(c *Config) { c.Cache.Backend = "none" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteThenLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)

	cfg := Default()
	cfg.Package = "nav_msgs"
	cfg.Workers = 3
	cfg.Watch.Debounce = 2 * time.Second
	if err := Write(path, cfg); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.Package != "nav_msgs" || loaded.Workers != 3 {
		t.Errorf("unexpected config after round trip: %+v", loaded)
	}
	if loaded.Watch.Debounce != 2*time.Second {
		t.Errorf("expected debounce 2s, got %s", loaded.Watch.Debounce)
	}
}

func TestFindPackageRoot(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "package.xml"), []byte("<package/>"), 0o644); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "msg")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}

	found, err := FindPackageRoot(nested)
	if err != nil {
		t.Fatalf("FindPackageRoot() error = %v", err)
	}
	want, _ := filepath.EvalSymlinks(root)
	got, _ := filepath.EvalSymlinks(found)
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
