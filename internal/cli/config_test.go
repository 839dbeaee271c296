package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/laneview/pkg/cache"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "/tmp/xdg-cache")

	cfg, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), false)
	if err != nil {
		t.Fatalf("loadConfig(missing, implicit) error: %v", err)
	}
	if cfg.Store.Backend != cache.BackendFile || cfg.Store.Dir != filepath.Join("/tmp/xdg-cache", appName) {
		t.Errorf("Store = %+v, want file store in the XDG cache dir", cfg.Store)
	}
	if cfg.Store.TTL.Duration != defaultStoreTTL || cfg.Server.Addr != defaultAddr || cfg.Server.Sessions != "store" {
		t.Errorf("defaults = %+v", cfg)
	}

	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.toml"), true); err == nil {
		t.Error("loadConfig(missing, explicit) should fail")
	}
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, `
[store]
backend = "redis"
redis_addr = "cache:6379"
redis_db = 2
ttl = "90m"

[server]
addr = ":9000"
session_ttl = "2h"
sessions = "memory"
`)
	cfg, err := loadConfig(path, true)
	if err != nil {
		t.Fatalf("loadConfig() error: %v", err)
	}
	if cfg.Store.Backend != "redis" || cfg.Store.RedisAddr != "cache:6379" || cfg.Store.RedisDB != 2 {
		t.Errorf("Store = %+v", cfg.Store)
	}
	if cfg.Store.TTL.Duration != 90*time.Minute {
		t.Errorf("Store.TTL = %v, want 90m", cfg.Store.TTL)
	}
	if cfg.Server.Addr != ":9000" || cfg.Server.SessionTTL.Duration != 2*time.Hour || cfg.Server.Sessions != "memory" {
		t.Errorf("Server = %+v", cfg.Server)
	}

	opts := cfg.Store.cacheOptions()
	if opts.Backend != "redis" || opts.Redis.Addr != "cache:6379" || opts.Redis.DB != 2 {
		t.Errorf("cacheOptions() = %+v", opts)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"unknown key", "[store]\ncolour = 1\n", "unknown key"},
		{"bad duration", "[store]\nttl = \"soon\"\n", "ttl"},
		{"bad sessions", "[server]\nsessions = \"disk\"\n", "server.sessions"},
		{"not toml", "[store", "load config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := loadConfig(writeConfig(t, tt.body), true)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("loadConfig() error = %v, want it to mention %q", err, tt.want)
			}
		})
	}
}
