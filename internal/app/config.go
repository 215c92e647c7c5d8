package app

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"sealchat/internal/store"
	"sealchat/internal/transport"
)

const configFile = "config.yaml"

// Config holds runtime wiring options for building the app.
type Config struct {
	Home       string `yaml:"-"` // config directory, e.g. $HOME/.sealchat
	Passphrase string `yaml:"-"` // protects the key files; never written to disk

	RelayURL    string          `yaml:"relay_url"`
	Identity    string          `yaml:"identity"`
	LogLevel    string          `yaml:"log_level"`
	LogFormat   string          `yaml:"log_format"`
	Reconnect   ReconnectConfig `yaml:"reconnect"`
	DialTimeout time.Duration   `yaml:"dial_timeout"`
	Keystore    KeystoreConfig  `yaml:"keystore"`
}

type ReconnectConfig struct {
	Floor   time.Duration `yaml:"floor"`
	Ceiling time.Duration `yaml:"ceiling"`
}

type KeystoreConfig struct {
	ScryptN int `yaml:"scrypt_n"`
}

// DefaultHome returns $HOME/.sealchat.
func DefaultHome() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, ".sealchat"), nil
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		RelayURL:    "ws://127.0.0.1:8080/ws",
		LogLevel:    "info",
		LogFormat:   "text",
		Reconnect:   ReconnectConfig{Floor: transport.DefaultFloor, Ceiling: transport.DefaultCeiling},
		DialTimeout: transport.DefaultDialTimeout,
		Keystore:    KeystoreConfig{ScryptN: store.DefaultScryptParams().N},
	}
}

// LoadConfig layers defaults, <home>/config.yaml and SEALCHAT_* environment
// variables. A missing file is not an error.
func LoadConfig(home string) (Config, error) {
	cfg := DefaultConfig()
	cfg.Home = home

	data, err := os.ReadFile(filepath.Join(home, configFile))
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		var parsed Config
		if err := yaml.Unmarshal(data, &parsed); err != nil {
			return Config{}, fmt.Errorf("parse %s: %w", configFile, err)
		}
		merge(&cfg, parsed)
	}

	if err := ApplyEnvOverrides(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func merge(dst *Config, src Config) {
	if src.RelayURL != "" {
		dst.RelayURL = src.RelayURL
	}
	if src.Identity != "" {
		dst.Identity = src.Identity
	}
	if src.LogLevel != "" {
		dst.LogLevel = src.LogLevel
	}
	if src.LogFormat != "" {
		dst.LogFormat = src.LogFormat
	}
	if src.Reconnect.Floor != 0 {
		dst.Reconnect.Floor = src.Reconnect.Floor
	}
	if src.Reconnect.Ceiling != 0 {
		dst.Reconnect.Ceiling = src.Reconnect.Ceiling
	}
	if src.DialTimeout != 0 {
		dst.DialTimeout = src.DialTimeout
	}
	if src.Keystore.ScryptN != 0 {
		dst.Keystore.ScryptN = src.Keystore.ScryptN
	}
}

// ApplyEnvOverrides reads SEALCHAT_RELAY_URL, SEALCHAT_IDENTITY,
// SEALCHAT_LOG_LEVEL, SEALCHAT_RECONNECT_FLOOR, SEALCHAT_RECONNECT_CEILING
// and SEALCHAT_PASSPHRASE.
func ApplyEnvOverrides(cfg *Config) error {
	if v := env("SEALCHAT_RELAY_URL"); v != "" {
		cfg.RelayURL = v
	}
	if v := env("SEALCHAT_IDENTITY"); v != "" {
		cfg.Identity = v
	}
	if v := env("SEALCHAT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("SEALCHAT_PASSPHRASE"); v != "" {
		cfg.Passphrase = v
	}
	for name, dst := range map[string]*time.Duration{
		"SEALCHAT_RECONNECT_FLOOR":   &cfg.Reconnect.Floor,
		"SEALCHAT_RECONNECT_CEILING": &cfg.Reconnect.Ceiling,
	} {
		v := env(name)
		if v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*dst = d
	}
	return nil
}

func env(name string) string { return strings.TrimSpace(os.Getenv(name)) }

// Validate checks the values the transport and key store depend on.
func (c Config) Validate() error {
	if c.Reconnect.Floor <= 0 {
		return errors.New("reconnect.floor must be positive")
	}
	if c.Reconnect.Ceiling < c.Reconnect.Floor {
		return errors.New("reconnect.ceiling must not be below reconnect.floor")
	}
	if c.DialTimeout <= 0 {
		return errors.New("dial_timeout must be positive")
	}
	if n := c.Keystore.ScryptN; n < 2 || n&(n-1) != 0 {
		return fmt.Errorf("keystore.scrypt_n must be a power of two above 1, got %d", n)
	}
	return nil
}

// Save writes the file-backed fields to <home>/config.yaml.
func (c Config) Save() error {
	if err := os.MkdirAll(c.Home, 0o700); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(c.Home, configFile), data, 0o600)
}

// ScryptParams returns the key store parameters for this config.
func (c Config) ScryptParams() store.ScryptParams {
	p := store.DefaultScryptParams()
	p.N = c.Keystore.ScryptN
	return p
}
