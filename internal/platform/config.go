package platform

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	// ConfigFile is the name of the project configuration file.
	ConfigFile = "noot.yaml"

	DefaultCanisterID = "rrkah-fqaaa-aaaaa-aaaaq-cai"
	NetworkIC         = "ic"
	NetworkLocal      = "local"

	mainnetHost = "https://ic0.app"
	localHost   = "http://localhost:4943"
)

// ErrConfigNotFound is returned by FindConfig when no noot.yaml exists in
// the start directory or any of its parents.
var ErrConfigNotFound = errors.New("config not found")

// Config selects the actor deployment and local files.
type Config struct {
	Network    string `yaml:"network"`
	CanisterID string `yaml:"canister_id"`
	// Host overrides the network's default gateway.
	Host string `yaml:"host,omitempty"`
	// CredentialFile defaults to <user config dir>/noot/credentials.yaml.
	CredentialFile string `yaml:"credential_file,omitempty"`
	EventBuffer    int    `yaml:"event_buffer,omitempty"`
}

// DefaultConfig targets the local replica.
func DefaultConfig() Config {
	return Config{
		Network:    NetworkLocal,
		CanisterID: DefaultCanisterID,
	}
}

// GatewayHost returns the HTTP gateway for the configured network.
func (c Config) GatewayHost() string {
	if c.Host != "" {
		return c.Host
	}
	if c.Network == NetworkIC {
		return mainnetHost
	}
	return localHost
}

// CredentialPath returns where the credential file lives.
func (c Config) CredentialPath() (string, error) {
	if c.CredentialFile != "" {
		return c.CredentialFile, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locate user config dir: %w", err)
	}
	return filepath.Join(dir, "noot", "credentials.yaml"), nil
}

// LoadConfig reads the configuration from path. An empty path looks for
// noot.yaml from the working directory upwards and falls back to defaults.
// Environment variables override the file.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return cfg, err
		}
		found, err := FindConfig(wd)
		if err != nil && !errors.Is(err, ErrConfigNotFound) {
			return cfg, err
		}
		path = found
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
		if cfg.CredentialFile != "" && !filepath.IsAbs(cfg.CredentialFile) {
			cfg.CredentialFile = filepath.Join(filepath.Dir(path), cfg.CredentialFile)
		}
	}

	applyEnv(&cfg)
	if cfg.CanisterID == "" {
		cfg.CanisterID = DefaultCanisterID
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv("NOOT_NETWORK")); v != "" {
		cfg.Network = v
	}
	if v := strings.TrimSpace(os.Getenv("NOOT_CANISTER_ID")); v != "" {
		cfg.CanisterID = v
	}
	if v := strings.TrimSpace(os.Getenv("NOOT_HOST")); v != "" {
		cfg.Host = v
	}
}

// FindConfig looks upwards from startDir for noot.yaml and returns its
// absolute path.
func FindConfig(startDir string) (string, error) {
	abs, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for dir := abs; ; {
		candidate := filepath.Join(dir, ConfigFile)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", ErrConfigNotFound
		}
		dir = parent
	}
}
