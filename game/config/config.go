package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/goccy/go-yaml"

	"github.com/wricardo/stonescissorspaper/game/session"
)

var (
	ErrConfigNotFound = errors.New("configuration not found")
	ErrInvalidConfig  = errors.New("invalid configuration")
)

// EnvPrefix prefixes every environment variable read by Load
const EnvPrefix = "SSP_"

// Config holds the client settings
type Config struct {
	APIBaseURL     string        `yaml:"api_base_url" env:"API_BASE_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT"`

	Storage     string `yaml:"storage" env:"STORAGE"`
	StoragePath string `yaml:"storage_path" env:"STORAGE_PATH"`

	Host      string `yaml:"host" env:"HOST"`
	Port      int    `yaml:"port" env:"PORT"`
	StaticDir string `yaml:"static_dir" env:"STATIC_DIR"`

	Ngrok NgrokConfig `yaml:"ngrok" envPrefix:"NGROK_"`

	Debug bool `yaml:"debug" env:"DEBUG"`
}

// NgrokConfig controls the optional public tunnel of the board server
type NgrokConfig struct {
	Enabled   bool   `yaml:"enabled" env:"ENABLED"`
	Authtoken string `yaml:"authtoken" env:"AUTHTOKEN"`
	Domain    string `yaml:"domain" env:"DOMAIN"`
}

// Default returns the built-in settings
func Default() *Config {
	return &Config{
		APIBaseURL:     "http://localhost:8080/api",
		RequestTimeout: 10 * time.Second,
		Storage:        session.BackendFile,
		Host:           "localhost",
		Port:           8090,
		StaticDir:      "./static",
	}
}

// Load builds the configuration from defaults, the YAML file at path (when
// path is not empty) and SSP_* environment variables, in that order
func Load(path string) (*Config, error) {
	return load(path, nil)
}

// load reads env from the process when environ is nil
func load(path string, environ map[string]string) (*Config, error) {
	cfg := Default()

	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	opts := env.Options{Prefix: EnvPrefix}
	if environ != nil {
		opts.Environment = environ
	}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return nil
}

// Validate checks the settings are usable
func (c *Config) Validate() error {
	u, err := url.Parse(c.APIBaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_base_url must be an http(s) URL, got %q", ErrInvalidConfig, c.APIBaseURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive", ErrInvalidConfig)
	}

	switch c.Storage {
	case session.BackendFile, session.BackendBolt, session.BackendMemory:
	default:
		return fmt.Errorf("%w: storage must be one of file, bolt, memory, got %q", ErrInvalidConfig, c.Storage)
	}

	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d out of range", ErrInvalidConfig, c.Port)
	}

	if c.Ngrok.Domain != "" && !c.Ngrok.Enabled {
		return fmt.Errorf("%w: ngrok domain set but ngrok is disabled", ErrInvalidConfig)
	}

	return nil
}

// ResolvedStoragePath returns StoragePath, or the default location for the
// configured backend under the user's config directory
func (c *Config) ResolvedStoragePath() string {
	if c.StoragePath != "" || c.Storage == session.BackendMemory {
		return c.StoragePath
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		dir = "."
	}

	name := "session.json"
	if c.Storage == session.BackendBolt {
		name = "session.db"
	}
	return filepath.Join(dir, "ssp", name)
}

// Addr returns the board server listen address
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
