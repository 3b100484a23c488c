package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
)

// ServerConfig is the process configuration. Every field has a working
// default so the server runs with no config file at all.
type ServerConfig struct {
	Addr string `json:"addr"`
	// TableGraceSeconds is how long a fully disconnected table survives
	// before it is deleted.
	TableGraceSeconds int `json:"table_grace_seconds"`
	// AllowAnyOrigin disables the websocket origin check for local and
	// cross-origin development setups.
	AllowAnyOrigin bool   `json:"allow_any_origin"`
	StaticDir      string `json:"static_dir"`
	LogLevel       string `json:"log_level"`
}

func defaults() ServerConfig {
	return ServerConfig{
		Addr:              ":8080",
		TableGraceSeconds: 300,
		StaticDir:         "web",
		LogLevel:          "info",
	}
}

// Load reads the configuration from path, falling back to defaults when
// path is empty, then applies environment overrides. Environment keys:
// TFS_ADDR, TFS_TABLE_GRACE_SECONDS, TFS_ALLOW_ANY_ORIGIN, TFS_STATIC_DIR,
// TFS_LOG_LEVEL.
func Load(path string) (*ServerConfig, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read server config: %w", err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal server config: %w", err)
		}
	}

	applyEnv(&cfg)

	if cfg.TableGraceSeconds <= 0 {
		return nil, fmt.Errorf("table_grace_seconds must be > 0, got %d", cfg.TableGraceSeconds)
	}
	return &cfg, nil
}

func applyEnv(cfg *ServerConfig) {
	if v := os.Getenv("TFS_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TFS_TABLE_GRACE_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TableGraceSeconds = n
		}
	}
	if v := os.Getenv("TFS_ALLOW_ANY_ORIGIN"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AllowAnyOrigin = b
		}
	}
	if v := os.Getenv("TFS_STATIC_DIR"); v != "" {
		cfg.StaticDir = v
	}
	if v := os.Getenv("TFS_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}
