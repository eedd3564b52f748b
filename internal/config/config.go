// Package config loads the YAML configuration shared by the kiosk server
// and the robot bridge.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	Server struct {
		Port        int `yaml:"port"`
		MetricsPort int `yaml:"metrics_port"`
	} `yaml:"server"`

	Store struct {
		RedisURL string `yaml:"redis_url"`
	} `yaml:"store"`

	Robot struct {
		// BridgeURL is the rosbridge websocket endpoint.
		BridgeURL    string `yaml:"bridge_url"`
		PollInterval string `yaml:"poll_interval"`
	} `yaml:"robot"`

	Admin struct {
		Password string `yaml:"password"`
	} `yaml:"admin"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.Server.Port = 8080
	// 9090 is taken by the conventional rosbridge port.
	cfg.Server.MetricsPort = 9100
	cfg.Store.RedisURL = "redis://localhost:6379/0"
	cfg.Robot.BridgeURL = "ws://localhost:9090"
	cfg.Robot.PollInterval = "1s"
	cfg.Admin.Password = "1234"
	return cfg
}

// Load reads a YAML config file on top of the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// PollInterval parses the bridge polling interval, falling back to one
// second on a missing or malformed value.
func (c *Config) PollInterval() time.Duration {
	d, err := time.ParseDuration(c.Robot.PollInterval)
	if err != nil || d <= 0 {
		return time.Second
	}
	return d
}
