// Package config loads the gateway configuration from a YAML file with
// environment overrides for deployment-specific values.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration wraps time.Duration so YAML values like "5m" parse naturally.
type Duration time.Duration

// UnmarshalYAML accepts either a Go duration string or integer nanoseconds.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var n int64
	if err := value.Decode(&n); err != nil {
		return fmt.Errorf("invalid duration value: %w", err)
	}
	*d = Duration(n)
	return nil
}

// Std converts back to time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

// Config is the gateway's full configuration.
type Config struct {
	// Listen is the HTTP bind address.
	Listen string `yaml:"listen"`

	// ServerName is embedded in challenge messages and user identifiers.
	ServerName string `yaml:"server_name"`

	// RedisURL selects the Redis backends; empty means in-memory.
	RedisURL string `yaml:"redis_url"`

	Auth        AuthConfig        `yaml:"auth"`
	Provisioner ProvisionerConfig `yaml:"provisioner"`
}

// AuthConfig controls wallet authentication.
type AuthConfig struct {
	Enabled        *bool    `yaml:"enabled"`
	ChallengeTTL   Duration `yaml:"challenge_ttl"`
	MaxNonces      int      `yaml:"max_nonces"`
	ChallengeRPS   float64  `yaml:"challenge_rps"`
	ChallengeBurst int      `yaml:"challenge_burst"`
}

// ProvisionerConfig controls the built-in account provisioner.
type ProvisionerConfig struct {
	AccessTTL Duration `yaml:"access_ttl"`

	// AutoJoinRoom is parsed and passed through but currently has no
	// effect; the behavior is reserved.
	AutoJoinRoom string `yaml:"auto_join_room"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	enabled := true
	return Config{
		Listen:     ":9000",
		ServerName: "localhost",
		Auth: AuthConfig{
			Enabled:        &enabled,
			ChallengeTTL:   Duration(5 * time.Minute),
			MaxNonces:      10_000,
			ChallengeRPS:   1,
			ChallengeBurst: 5,
		},
		Provisioner: ProvisionerConfig{
			AccessTTL: Duration(24 * time.Hour),
		},
	}
}

// Load reads the config file at path (or defaults if path is empty and no
// candidate file exists) and applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	candidates := []string{path}
	if path == "" {
		candidates = []string{"walletgate.yaml", "configs/walletgate.yaml"}
	}

	for _, candidate := range candidates {
		if candidate == "" {
			continue
		}
		data, err := os.ReadFile(candidate)
		if err != nil {
			if path != "" {
				return cfg, fmt.Errorf("failed to read config %s: %w", candidate, err)
			}
			continue
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", candidate, err)
		}
		break
	}

	if v := os.Getenv("WALLETGATE_LISTEN"); v != "" {
		cfg.Listen = v
	}
	if v := os.Getenv("WALLETGATE_SERVER_NAME"); v != "" {
		cfg.ServerName = v
	}
	if v := os.Getenv("REDIS_URL"); v != "" {
		cfg.RedisURL = v
	}

	return cfg.normalize(), nil
}

func (c Config) normalize() Config {
	defaults := Default()
	if c.Listen == "" {
		c.Listen = defaults.Listen
	}
	if c.ServerName == "" {
		c.ServerName = defaults.ServerName
	}
	if c.Auth.Enabled == nil {
		c.Auth.Enabled = defaults.Auth.Enabled
	}
	if c.Auth.ChallengeTTL <= 0 {
		c.Auth.ChallengeTTL = defaults.Auth.ChallengeTTL
	}
	if c.Auth.MaxNonces <= 0 {
		c.Auth.MaxNonces = defaults.Auth.MaxNonces
	}
	if c.Provisioner.AccessTTL <= 0 {
		c.Provisioner.AccessTTL = defaults.Provisioner.AccessTTL
	}
	return c
}

// AuthEnabled reports the administrative gate.
func (c Config) AuthEnabled() bool {
	return c.Auth.Enabled == nil || *c.Auth.Enabled
}
