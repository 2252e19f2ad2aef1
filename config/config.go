// Package config loads ioredir's TOML configuration file: the set of
// osocks relay servers it may use, the local redirect endpoint it
// listens on, and a handful of operational knobs.
package config

import (
	"errors"
	"fmt"

	"github.com/BurntSushi/toml"

	"blitter.com/go/ioredir/osocks"
)

// DefaultPoolSize matches the reference implementation's fixed
// connection-record pool capacity.
const DefaultPoolSize = 64

// MaxServers is the upper bound on [[server]] entries, matching the
// reference implementation's fixed servers[MAX_SERVER] array.
const MaxServers = 64

// ServerConfig is one entry in the osocks relay server table.
type ServerConfig struct {
	Address string `toml:"address"`
	Port    string `toml:"port"`
	Secret  string `toml:"secret"`
}

// RedirectConfig is the local address ioredir listens on for
// NAT-redirected connections.
type RedirectConfig struct {
	Address string `toml:"address"`
	Port    string `toml:"port"`
}

// MetricsConfig controls the optional VictoriaMetrics exposition
// endpoint. Listen empty disables metrics entirely.
type MetricsConfig struct {
	Listen string `toml:"listen"`
}

// Config is the fully decoded, defaulted, and validated configuration.
type Config struct {
	Servers  []ServerConfig `toml:"server"`
	Redirect RedirectConfig `toml:"redirect"`
	Metrics  MetricsConfig  `toml:"metrics"`
	Debug    bool           `toml:"debug"`
	PoolSize int            `toml:"pool_size"`
}

// LoadConfig decodes the TOML file at path, applies defaults, and
// validates the result.
func LoadConfig(path string) (*Config, error) {
	var c Config
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	c.applyDefaults()
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) applyDefaults() {
	if c.Redirect.Address == "" {
		c.Redirect.Address = "127.0.0.1"
	}
	if c.Redirect.Port == "" {
		c.Redirect.Port = "1081"
	}
	if c.PoolSize == 0 {
		c.PoolSize = DefaultPoolSize
	}
	for i := range c.Servers {
		if c.Servers[i].Address == "" {
			c.Servers[i].Address = "0.0.0.0"
		}
		if c.Servers[i].Port == "" {
			c.Servers[i].Port = "1205"
		}
		if len(c.Servers[i].Secret) > osocks.MaxSecretSize {
			c.Servers[i].Secret = c.Servers[i].Secret[:osocks.MaxSecretSize]
		}
	}
}

func (c *Config) validate() error {
	if len(c.Servers) == 0 {
		return errors.New("config: at least one [[server]] entry is required")
	}
	if len(c.Servers) > MaxServers {
		return fmt.Errorf("config: %d [[server]] entries exceeds the maximum of %d", len(c.Servers), MaxServers)
	}
	for i, s := range c.Servers {
		if s.Secret == "" {
			return fmt.Errorf("config: server[%d] (%s:%s) has an empty secret", i, s.Address, s.Port)
		}
	}
	if c.PoolSize <= 0 {
		return errors.New("config: pool_size must be positive")
	}
	return nil
}
