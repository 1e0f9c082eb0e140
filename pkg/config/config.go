// Package config loads routesim settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/routesim/config.toml (or
// ~/.config/routesim/config.toml) unless --config names another path. A
// missing default file is not an error; every setting has a default.
//
//	capacity  = 15
//	algorithm = "centralized"
//
//	[cache]
//	backend    = "file"        # file, redis or none
//	ttl        = "168h"
//	redis_addr = "localhost:6379"
//
//	[store]
//	backend = "bolt"           # file, bolt or mongo
//	mongo_uri = "mongodb://localhost:27017"
//
//	[server]
//	addr = ":8080"
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/routesim/pkg/cache"
	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/network"
	"github.com/matzehuels/routesim/pkg/pipeline"
	"github.com/matzehuels/routesim/pkg/routing"
	"github.com/matzehuels/routesim/pkg/storage"
)

// AppName names the configuration, cache and data directories.
const AppName = "routesim"

// DefaultAddr is the HTTP listen address used by "routesim serve".
const DefaultAddr = ":8080"

// Config holds all settings.
type Config struct {
	Capacity  int               `toml:"capacity"`
	Algorithm routing.Algorithm `toml:"algorithm"`
	Cache     CacheConfig       `toml:"cache"`
	Store     StoreConfig       `toml:"store"`
	Server    ServerConfig      `toml:"server"`
}

// CacheConfig selects the result cache.
type CacheConfig struct {
	Backend       string        `toml:"backend"`
	Dir           string        `toml:"dir"`
	TTL           time.Duration `toml:"ttl"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisDB       int           `toml:"redis_db"`
	RedisPassword string        `toml:"redis_password"`
}

// StoreConfig selects the topology store.
type StoreConfig struct {
	Backend         string `toml:"backend"`
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the configuration used when no file exists.
// Directories are left empty and resolved by ResolveDirs.
func Default() Config {
	return Config{
		Capacity:  network.DefaultCapacity,
		Algorithm: routing.DefaultAlgorithm,
		Cache: CacheConfig{
			Backend:   cache.BackendFile,
			TTL:       pipeline.DefaultTTL,
			RedisAddr: "localhost:6379",
		},
		Store: StoreConfig{
			Backend:         storage.BackendFile,
			MongoDatabase:   storage.DefaultMongoDatabase,
			MongoCollection: storage.DefaultMongoCollection,
		},
		Server: ServerConfig{Addr: DefaultAddr},
	}
}

// Load reads the TOML file at path on top of Default. An empty path selects
// DefaultPath, which may be missing; an explicit path must exist. Unknown
// keys are rejected.
func Load(path string) (Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, cfg.ResolveDirs()
		}
		path = p
	}

	md, err := toml.DecodeFile(path, &cfg)
	if errors.Is(err, fs.ErrNotExist) && !explicit {
		cfg = Default()
		return cfg, cfg.ResolveDirs()
	}
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, apperr.Wrap(apperr.ErrCodeNotFound, err, "config file %s", path)
	}
	if err != nil {
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidFormat, err, "parse config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, apperr.New(apperr.ErrCodeInvalidInput, "unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, cfg.ResolveDirs()
}

// Validate checks value ranges and backend names.
func (c *Config) Validate() error {
	if c.Capacity <= 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "capacity must be positive, got %d", c.Capacity)
	}
	if _, err := c.Algorithm.Solver(); err != nil {
		return err
	}
	switch c.Cache.Backend {
	case cache.BackendFile, cache.BackendRedis, cache.BackendNone:
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 {
		return apperr.New(apperr.ErrCodeInvalidInput, "cache ttl cannot be negative")
	}
	switch c.Store.Backend {
	case storage.BackendFile, storage.BackendBolt:
	case storage.BackendMongo:
		if c.Store.MongoURI == "" {
			return apperr.New(apperr.ErrCodeInvalidInput, "store backend mongo requires mongo_uri")
		}
	default:
		return apperr.New(apperr.ErrCodeInvalidInput, "unknown store backend %q", c.Store.Backend)
	}
	return nil
}

// ResolveDirs fills empty cache and store directories with the XDG defaults.
func (c *Config) ResolveDirs() error {
	if c.Cache.Dir == "" {
		dir, err := CacheDir()
		if err != nil {
			return fmt.Errorf("get cache dir: %w", err)
		}
		c.Cache.Dir = dir
	}
	if c.Store.Dir == "" {
		dir, err := DataDir()
		if err != nil {
			return fmt.Errorf("get data dir: %w", err)
		}
		c.Store.Dir = filepath.Join(dir, "topologies")
	}
	return nil
}

// CacheOptions converts the cache section for cache.Open.
func (c *Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			DB:       c.Cache.RedisDB,
			Password: c.Cache.RedisPassword,
		},
	}
}

// StoreOptions converts the store section for storage.Open.
func (c *Config) StoreOptions() storage.Options {
	return storage.Options{
		Backend: c.Store.Backend,
		Dir:     c.Store.Dir,
		Mongo: storage.MongoOptions{
			URI:        c.Store.MongoURI,
			Database:   c.Store.MongoDatabase,
			Collection: c.Store.MongoCollection,
		},
	}
}

// Write encodes the configuration as TOML.
func (c *Config) Write(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// =============================================================================
// Paths
// =============================================================================

// DefaultPath returns $XDG_CONFIG_HOME/routesim/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// CacheDir returns the cache directory using XDG standard (~/.cache/routesim/).
func CacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", AppName), nil
}

// DataDir returns the data directory using XDG standard (~/.local/share/routesim/).
func DataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, AppName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", AppName), nil
}
