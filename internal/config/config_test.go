package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/unkn0wn-root/msgpackhttp"
	"github.com/unkn0wn-root/msgpackhttp/codec"
)

func writeTOML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "msgpackd.toml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Payload.Limit != msgpackhttp.DefaultLimit || cfg.Store.Kind != "ristretto" || cfg.Policy() != codec.Named {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := writeTOML(t, `
addr = ":9090"

[log]
backend = "slog"
level = "debug"

[payload]
limit = 1024
upload_limit = 65536
policy = "compact"

[store]
kind = "bigcache"
ttl = "30m"
max_record = 4096
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Addr != ":9090" || cfg.Log.Backend != "slog" || cfg.Log.Level != "debug" {
		t.Fatalf("addr/log: %+v", cfg)
	}
	if cfg.Payload.Limit != 1024 || cfg.Payload.UploadLimit != 65536 || cfg.Policy() != codec.Compact {
		t.Fatalf("payload: %+v", cfg.Payload)
	}
	if cfg.Store.Kind != "bigcache" || cfg.Store.TTL != 30*time.Minute || cfg.Store.MaxRecord != 4096 {
		t.Fatalf("store: %+v", cfg.Store)
	}
	// untouched keys keep their defaults
	if cfg.Store.Prefix != "msgpackd:" {
		t.Fatalf("prefix default lost: %q", cfg.Store.Prefix)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := writeTOML(t, "[payload]\nlimt = 10\n")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "unknown keys") {
		t.Fatalf("expected unknown keys error, got %v", err)
	}
}

func TestEnvOverridesFile(t *testing.T) {
	path := writeTOML(t, "[payload]\nlimit = 1024\n")
	t.Setenv("MSGPACKD_PAYLOAD_LIMIT", "2048")
	t.Setenv("MSGPACKD_STORE_KIND", "redis")
	t.Setenv("MSGPACKD_REDIS_ADDR", "cache:6379")
	t.Setenv("MSGPACKD_STORE_TTL", "not-a-duration")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Payload.Limit != 2048 {
		t.Fatalf("limit %d", cfg.Payload.Limit)
	}
	if cfg.Store.Kind != "redis" || cfg.Store.RedisAddr != "cache:6379" {
		t.Fatalf("store: %+v", cfg.Store)
	}
	if cfg.Store.TTL != time.Hour {
		t.Fatalf("unparseable ttl should keep default, got %v", cfg.Store.TTL)
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"addr", func(c *Config) { c.Addr = " " }, "addr is required"},
		{"limit", func(c *Config) { c.Payload.Limit = 0 }, "payload.limit"},
		{"upload", func(c *Config) { c.Payload.UploadLimit = -1 }, "payload.upload_limit"},
		{"policy", func(c *Config) { c.Payload.Policy = "tuple" }, "payload.policy"},
		{"backend", func(c *Config) { c.Log.Backend = "stdout" }, "log.backend"},
		{"kind", func(c *Config) { c.Store.Kind = "memcached" }, "store.kind"},
		{"redis", func(c *Config) { c.Store.Kind = "redis"; c.Store.RedisAddr = "" }, "redis_addr"},
		{"ttl", func(c *Config) { c.Store.TTL = -time.Second }, "store.ttl"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			tc.mut(&cfg)
			err := Validate(cfg)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("Validate err=%v, want containing %q", err, tc.want)
			}
		})
	}
	if err := Validate(Default()); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
