// Package config loads msgpackd settings: defaults, then an optional TOML
// file, then MSGPACKD_* environment overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/unkn0wn-root/msgpackhttp"
	"github.com/unkn0wn-root/msgpackhttp/codec"
)

type Config struct {
	Addr    string        `toml:"addr"`
	Log     LogConfig     `toml:"log"`
	Payload PayloadConfig `toml:"payload"`
	Store   StoreConfig   `toml:"store"`
}

type LogConfig struct {
	Backend string `toml:"backend"` // zap | logrus | slog
	Level   string `toml:"level"`   // debug | info | warn | error
}

type PayloadConfig struct {
	Limit       int64  `toml:"limit"`        // default budget for /v1/records
	UploadLimit int64  `toml:"upload_limit"` // budget for /v1/uploads
	Policy      string `toml:"policy"`       // named | compact
}

type StoreConfig struct {
	Kind      string        `toml:"kind"` // ristretto | bigcache | redis
	TTL       time.Duration `toml:"ttl"`
	MaxRecord int           `toml:"max_record"` // bytes; largest stored entry accepted on read
	MaxCost   int64         `toml:"max_cost"`   // ristretto total bytes
	RedisAddr string        `toml:"redis_addr"`
	Prefix    string        `toml:"prefix"`
}

func Default() Config {
	return Config{
		Addr: ":8080",
		Log:  LogConfig{Backend: "zap", Level: "info"},
		Payload: PayloadConfig{
			Limit:       msgpackhttp.DefaultLimit,
			UploadLimit: 4 << 20,
			Policy:      "named",
		},
		Store: StoreConfig{
			Kind:      "ristretto",
			TTL:       time.Hour,
			MaxRecord: 8 << 20,
			MaxCost:   256 << 20,
			RedisAddr: "127.0.0.1:6379",
			Prefix:    "msgpackd:",
		},
	}
}

// Load returns Default() overlaid with the TOML file at path (if path is not
// empty) and the environment.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return Config{}, fmt.Errorf("config parse failed (%s): %w", path, err)
		}
		if undec := md.Undecoded(); len(undec) > 0 {
			return Config{}, fmt.Errorf("config parse failed (%s): unknown keys %v", path, undec)
		}
	}
	applyEnvOverrides(&cfg)
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MSGPACKD_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("MSGPACKD_LOG_BACKEND"); v != "" {
		cfg.Log.Backend = v
	}
	if v := os.Getenv("MSGPACKD_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("MSGPACKD_PAYLOAD_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Payload.Limit = n
		}
	}
	if v := os.Getenv("MSGPACKD_PAYLOAD_UPLOAD_LIMIT"); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			cfg.Payload.UploadLimit = n
		}
	}
	if v := os.Getenv("MSGPACKD_PAYLOAD_POLICY"); v != "" {
		cfg.Payload.Policy = v
	}
	if v := os.Getenv("MSGPACKD_STORE_KIND"); v != "" {
		cfg.Store.Kind = v
	}
	if v := os.Getenv("MSGPACKD_STORE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Store.TTL = d
		}
	}
	if v := os.Getenv("MSGPACKD_REDIS_ADDR"); v != "" {
		cfg.Store.RedisAddr = v
	}
}

func Validate(cfg Config) error {
	if strings.TrimSpace(cfg.Addr) == "" {
		return fmt.Errorf("config: addr is required")
	}
	if cfg.Payload.Limit <= 0 {
		return fmt.Errorf("config: payload.limit must be > 0 (got %d)", cfg.Payload.Limit)
	}
	if cfg.Payload.UploadLimit <= 0 {
		return fmt.Errorf("config: payload.upload_limit must be > 0 (got %d)", cfg.Payload.UploadLimit)
	}
	if _, err := codec.ParsePolicy(cfg.Payload.Policy); err != nil {
		return fmt.Errorf("config: payload.policy: %w", err)
	}
	switch cfg.Log.Backend {
	case "zap", "logrus", "slog":
	default:
		return fmt.Errorf("config: unknown log.backend %q", cfg.Log.Backend)
	}
	switch cfg.Store.Kind {
	case "ristretto", "bigcache":
	case "redis":
		if cfg.Store.RedisAddr == "" {
			return fmt.Errorf("config: store.redis_addr is required for redis")
		}
	default:
		return fmt.Errorf("config: unknown store.kind %q", cfg.Store.Kind)
	}
	if cfg.Store.TTL < 0 {
		return fmt.Errorf("config: store.ttl must be >= 0")
	}
	return nil
}

// Policy returns the parsed response policy. Call after Validate.
func (c Config) Policy() codec.Policy {
	p, _ := codec.ParsePolicy(c.Payload.Policy)
	return p
}
