// Package config provides configuration loading.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/peoplekit/inbox-sync/internal/colors"
)

// Config is the full inbox-sync configuration.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Auth      AuthConfig      `toml:"auth"`
	Reconnect ReconnectConfig `toml:"reconnect"`
	Log       LogConfig       `toml:"log"`
}

// ServerConfig locates the inbox backend.
type ServerConfig struct {
	// BaseURL is the REST base, e.g. http://localhost:8080/api/v1.
	BaseURL string `toml:"base_url"`
	// SocketURL is the push channel endpoint. When empty it is derived
	// from BaseURL: scheme swapped to ws(s), path /ws/notifications.
	SocketURL string `toml:"socket_url"`
}

// AuthConfig holds the bearer credential.
type AuthConfig struct {
	Token string `toml:"token"`
}

// ReconnectConfig tunes the connection retry policy. Delays are in
// milliseconds to keep the TOML surface plain.
type ReconnectConfig struct {
	MaxAttempts  int `toml:"max_attempts"`
	FloorDelayMS int `toml:"floor_delay_ms"`
	CapDelayMS   int `toml:"cap_delay_ms"`
}

// LogConfig controls structured logging.
type LogConfig struct {
	Level string `toml:"level"`
}

// Default returns the configuration defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			BaseURL: "http://localhost:8080/api/v1",
		},
		Reconnect: ReconnectConfig{
			MaxAttempts:  5,
			FloorDelayMS: 1000,
			CapDelayMS:   30000,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// DefaultPath returns the default config file path,
// $XDG_CONFIG_HOME/inbox-sync/config.toml.
func DefaultPath() string {
	xdgConfigHome := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfigHome == "" {
		home, _ := os.UserHomeDir()
		xdgConfigHome = filepath.Join(home, ".config")
	}
	return filepath.Join(xdgConfigHome, "inbox-sync", "config.toml")
}

// Load reads the configuration from path, applies environment overrides
// and normalizes invalid values back to defaults. A missing file is not
// an error; defaults plus environment apply.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	case os.IsNotExist(err):
		// fall through to env overrides
	default:
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	applyEnv(&cfg)
	normalize(&cfg)
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("INBOX_SYNC_BASE_URL"); v != "" {
		cfg.Server.BaseURL = v
	}
	if v := os.Getenv("INBOX_SYNC_SOCKET_URL"); v != "" {
		cfg.Server.SocketURL = v
	}
	if v := os.Getenv("INBOX_SYNC_TOKEN"); v != "" {
		cfg.Auth.Token = v
	}
	if v := os.Getenv("INBOX_SYNC_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// normalize validates values in place, warning and falling back to the
// default for anything out of range.
func normalize(cfg *Config) {
	def := Default()

	cfg.Server.BaseURL = strings.TrimRight(cfg.Server.BaseURL, "/")
	if cfg.Server.SocketURL == "" {
		cfg.Server.SocketURL = deriveSocketURL(cfg.Server.BaseURL)
	}

	if cfg.Reconnect.MaxAttempts <= 0 {
		warnDefault("reconnect.max_attempts", cfg.Reconnect.MaxAttempts, def.Reconnect.MaxAttempts)
		cfg.Reconnect.MaxAttempts = def.Reconnect.MaxAttempts
	}
	if cfg.Reconnect.FloorDelayMS <= 0 {
		warnDefault("reconnect.floor_delay_ms", cfg.Reconnect.FloorDelayMS, def.Reconnect.FloorDelayMS)
		cfg.Reconnect.FloorDelayMS = def.Reconnect.FloorDelayMS
	}
	if cfg.Reconnect.CapDelayMS < cfg.Reconnect.FloorDelayMS {
		// The cap is clamped to the floor, not reset to the default: a
		// floor raised above the default cap must stay the lower bound.
		warnDefault("reconnect.cap_delay_ms", cfg.Reconnect.CapDelayMS, cfg.Reconnect.FloorDelayMS)
		cfg.Reconnect.CapDelayMS = cfg.Reconnect.FloorDelayMS
	}

	switch strings.ToLower(cfg.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
		cfg.Log.Level = strings.ToLower(cfg.Log.Level)
	default:
		warnDefault("log.level", cfg.Log.Level, def.Log.Level)
		cfg.Log.Level = def.Log.Level
	}
}

func warnDefault(key string, got any, fallback any) {
	colors.Warning(fmt.Sprintf("invalid %s value '%v', using default: %v", key, got, fallback))
}

// deriveSocketURL turns a REST base URL into the push channel endpoint
// on the same host.
func deriveSocketURL(baseURL string) string {
	u, err := url.Parse(baseURL)
	if err != nil || u.Host == "" {
		return ""
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws/notifications"
	u.RawQuery = ""
	return u.String()
}
