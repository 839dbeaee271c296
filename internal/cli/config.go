package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/laneview/pkg/cache"
)

// Config is the optional laneview.toml file.
//
//	[store]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//	session_ttl = "2h"
type Config struct {
	Store  StoreConfig  `toml:"store"`
	Server ServerConfig `toml:"server"`
}

// StoreConfig selects where snapshots, cached results and server sessions
// are kept.
type StoreConfig struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	MongoURI      string   `toml:"mongo_uri"`
	MongoDatabase string   `toml:"mongo_database"`
	TTL           duration `toml:"ttl"`
}

// ServerConfig configures the serve command.
type ServerConfig struct {
	Addr       string   `toml:"addr"`
	SessionTTL duration `toml:"session_ttl"`
	// Sessions is "store" to keep sessions in the configured store or
	// "memory" to keep them in process.
	Sessions string `toml:"sessions"`
}

const (
	defaultAddr     = "127.0.0.1:8080"
	defaultStoreTTL = 7 * 24 * time.Hour
)

// duration decodes TOML strings such as "90m".
type duration struct{ time.Duration }

func (d *duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

// defaultConfig stores everything in the XDG cache directory.
func defaultConfig() Config {
	cfg := Config{
		Store: StoreConfig{
			Backend: cache.BackendFile,
			TTL:     duration{defaultStoreTTL},
		},
		Server: ServerConfig{
			Addr:     defaultAddr,
			Sessions: "store",
		},
	}
	if dir, err := cacheDir(); err == nil {
		cfg.Store.Dir = dir
	} else {
		cfg.Store.Backend = cache.BackendNone
	}
	return cfg
}

// loadConfig reads path on top of the defaults. A missing file is not an
// error unless the path was given explicitly.
func loadConfig(path string, explicit bool) (Config, error) {
	cfg := defaultConfig()
	if path == "" {
		return cfg, nil
	}
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if os.IsNotExist(err) && !explicit {
			return defaultConfig(), nil
		}
		return cfg, fmt.Errorf("load config %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return cfg, fmt.Errorf("load config %s: unknown key %q", path, undecoded[0].String())
	}
	if cfg.Store.TTL.Duration <= 0 {
		cfg.Store.TTL = duration{defaultStoreTTL}
	}
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = defaultAddr
	}
	switch cfg.Server.Sessions {
	case "":
		cfg.Server.Sessions = "store"
	case "store", "memory":
	default:
		return cfg, fmt.Errorf("load config %s: server.sessions must be \"store\" or \"memory\", got %q", path, cfg.Server.Sessions)
	}
	return cfg, nil
}

// cacheOptions converts the store section for cache.Open.
func (s StoreConfig) cacheOptions() cache.Options {
	return cache.Options{
		Backend: s.Backend,
		Dir:     s.Dir,
		Redis:   cache.RedisOptions{Addr: s.RedisAddr, Password: s.RedisPassword, DB: s.RedisDB},
		Mongo:   cache.MongoOptions{URI: s.MongoURI, Database: s.MongoDatabase},
	}
}

// cacheDir returns the cache directory using XDG standard (~/.cache/laneview/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// configPath returns the default config file (~/.config/laneview/config.toml).
func configPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}
