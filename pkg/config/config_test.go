package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/matzehuels/routesim/pkg/cache"
	apperr "github.com/matzehuels/routesim/pkg/errors"
	"github.com/matzehuels/routesim/pkg/routing"
	"github.com/matzehuels/routesim/pkg/storage"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func isolateXDG(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(root, "config"))
	t.Setenv("XDG_CACHE_HOME", filepath.Join(root, "cache"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(root, "data"))
	return root
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	root := isolateXDG(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Capacity != 15 {
		t.Errorf("Capacity = %d, want 15", cfg.Capacity)
	}
	if cfg.Algorithm != routing.CentralizedAlgorithm {
		t.Errorf("Algorithm = %q", cfg.Algorithm)
	}
	if cfg.Cache.Dir != filepath.Join(root, "cache", AppName) {
		t.Errorf("Cache.Dir = %q", cfg.Cache.Dir)
	}
	if cfg.Store.Dir != filepath.Join(root, "data", AppName, "topologies") {
		t.Errorf("Store.Dir = %q", cfg.Store.Dir)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadFile(t *testing.T) {
	isolateXDG(t)
	path := writeConfig(t, `
capacity = 8
algorithm = "bellman-ford"

[cache]
backend = "redis"
ttl = "1h30m"
redis_addr = "cache:6379"
redis_db = 2

[store]
backend = "mongo"
mongo_uri = "mongodb://db:27017"

[server]
addr = "127.0.0.1:9000"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Capacity != 8 {
		t.Errorf("Capacity = %d", cfg.Capacity)
	}
	if cfg.Algorithm != routing.DecentralizedAlgorithm {
		t.Errorf("Algorithm = %q, want alias resolved", cfg.Algorithm)
	}
	if cfg.Cache.TTL != 90*time.Minute {
		t.Errorf("TTL = %v", cfg.Cache.TTL)
	}

	co := cfg.CacheOptions()
	if co.Backend != cache.BackendRedis || co.Redis.Addr != "cache:6379" || co.Redis.DB != 2 {
		t.Errorf("CacheOptions = %+v", co)
	}
	so := cfg.StoreOptions()
	if so.Backend != storage.BackendMongo || so.Mongo.URI != "mongodb://db:27017" {
		t.Errorf("StoreOptions = %+v", so)
	}
	if so.Mongo.Database != storage.DefaultMongoDatabase {
		t.Errorf("Mongo.Database = %q, want default kept", so.Mongo.Database)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" {
		t.Errorf("Server.Addr = %q", cfg.Server.Addr)
	}
}

func TestLoadErrors(t *testing.T) {
	isolateXDG(t)
	tests := []struct {
		name string
		body string
		code apperr.Code
	}{
		{"syntax", "capacity = ", apperr.ErrCodeInvalidFormat},
		{"unknown key", "capactiy = 3", apperr.ErrCodeInvalidInput},
		{"unknown algorithm", `algorithm = "ospf"`, apperr.ErrCodeInvalidFormat},
		{"zero capacity", "capacity = 0", apperr.ErrCodeInvalidInput},
		{"cache backend", "[cache]\nbackend = \"memcached\"", apperr.ErrCodeInvalidInput},
		{"store backend", "[store]\nbackend = \"sqlite\"", apperr.ErrCodeInvalidInput},
		{"mongo without uri", "[store]\nbackend = \"mongo\"", apperr.ErrCodeInvalidInput},
		{"negative ttl", "[cache]\nttl = \"-1h\"", apperr.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.body))
			if err == nil {
				t.Fatal("expected error")
			}
			if got := apperr.GetCode(err); got != tt.code {
				t.Errorf("code = %q, want %q (%v)", got, tt.code, err)
			}
		})
	}
}

func TestLoadExplicitMissingFile(t *testing.T) {
	isolateXDG(t)
	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if !apperr.Is(err, apperr.ErrCodeNotFound) {
		t.Errorf("err = %v, want NOT_FOUND", err)
	}
}

func TestExplicitDirsKept(t *testing.T) {
	isolateXDG(t)
	path := writeConfig(t, "[cache]\ndir = \"/tmp/c\"\n[store]\ndir = \"/tmp/s\"\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Cache.Dir != "/tmp/c" || cfg.Store.Dir != "/tmp/s" {
		t.Errorf("dirs = %q, %q", cfg.Cache.Dir, cfg.Store.Dir)
	}
}

func TestWriteRoundTrip(t *testing.T) {
	isolateXDG(t)
	cfg := Default()
	cfg.Capacity = 6
	cfg.Algorithm = routing.DecentralizedAlgorithm

	var buf bytes.Buffer
	if err := cfg.Write(&buf); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), `algorithm = "decentralized"`) {
		t.Errorf("encoded config missing algorithm:\n%s", buf.String())
	}

	got, err := Load(writeConfig(t, buf.String()))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Capacity != 6 || got.Algorithm != routing.DecentralizedAlgorithm || got.Cache.TTL != cfg.Cache.TTL {
		t.Errorf("round trip = %+v", got)
	}
}

func TestDefaultPath(t *testing.T) {
	root := isolateXDG(t)
	p, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(root, "config", AppName, "config.toml"); p != want {
		t.Errorf("DefaultPath = %q, want %q", p, want)
	}
}
