package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"

	"github.com/five82/hoard/internal/hoarder"
)

// Config captures everything hoard reads from config.toml.
type Config struct {
	ServerURL  string
	AuthScheme hoarder.AuthScheme
	Timeout    time.Duration
	PageSize   int
	LogDir     string
	LogLevel   string
	PrettyLog  bool
	BridgeAddr string
}

const (
	defaultConfigPath = "~/.config/hoard/config.toml"
	defaultLogDir     = "~/.local/share/hoard/logs"
	defaultLogLevel   = "info"
	defaultTimeout    = 15 * time.Second
	defaultPageSize   = 20
	maxPageSize       = 100
	defaultBridgeAddr = "127.0.0.1:7611"

	envServerURL = "HOARD_SERVER_URL"
	envLogLevel  = "HOARD_LOG_LEVEL"
)

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		AuthScheme: hoarder.AuthAPIKey,
		Timeout:    defaultTimeout,
		PageSize:   defaultPageSize,
		LogDir:     mustExpand(defaultLogDir),
		LogLevel:   defaultLogLevel,
		BridgeAddr: defaultBridgeAddr,
	}
}

// Load locates and parses config.toml, falling back to defaults when missing.
// HOARD_SERVER_URL and HOARD_LOG_LEVEL override the file.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			applyEnv(&cfg)
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw struct {
		ServerURL  string `toml:"server_url"`
		AuthHeader string `toml:"auth_header"`
		Timeout    string `toml:"timeout"`
		PageSize   int    `toml:"page_size"`
		LogDir     string `toml:"log_dir"`
		LogLevel   string `toml:"log_level"`
		PrettyLog  bool   `toml:"pretty_log"`
		BridgeAddr string `toml:"bridge_addr"`
	}
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}

	cfg.ServerURL = strings.TrimSpace(raw.ServerURL)

	scheme, err := hoarder.ParseAuthScheme(raw.AuthHeader)
	if err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	cfg.AuthScheme = scheme

	if timeout := strings.TrimSpace(raw.Timeout); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return Config{}, fmt.Errorf("parse config: timeout: %w", err)
		}
		if d > 0 {
			cfg.Timeout = d
		}
	}

	switch {
	case raw.PageSize <= 0:
		cfg.PageSize = defaultPageSize
	case raw.PageSize > maxPageSize:
		cfg.PageSize = maxPageSize
	default:
		cfg.PageSize = raw.PageSize
	}

	if logDir := strings.TrimSpace(raw.LogDir); logDir != "" {
		cfg.LogDir = mustExpand(logDir)
	}
	if level := strings.TrimSpace(raw.LogLevel); level != "" {
		cfg.LogLevel = strings.ToLower(level)
	}
	cfg.PrettyLog = raw.PrettyLog
	if addr := strings.TrimSpace(raw.BridgeAddr); addr != "" {
		cfg.BridgeAddr = addr
	}

	applyEnv(&cfg)
	return cfg, nil
}

// DefaultPath returns the unexpanded default config location.
func DefaultPath() string {
	return defaultConfigPath
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(envServerURL)); v != "" {
		cfg.ServerURL = v
	}
	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = strings.ToLower(v)
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}
