// Package config loads the YAML configuration shared by the arcus-game and
// arcus-agent binaries, the way the teacher's pkg/config loads a node's
// protocol/application YAML.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigPath is used by both cmd entry points when no --config flag
// is given.
const DefaultConfigPath = "./config/arcus.yml"

// Config is the top-level document loaded from YAML.
type Config struct {
	Server Server `yaml:"Server"`
	Client Client `yaml:"Client"`
	Logger Logger `yaml:"Logger"`
}

// Server configures the arcus-game binary's Server façade.
type Server struct {
	ListenPort            int           `yaml:"ListenPort"`
	HandshakeTimeout      time.Duration `yaml:"HandshakeTimeout"`
	HealthSendInterval    time.Duration `yaml:"HealthSendInterval"`
	HealthReceiveInterval time.Duration `yaml:"HealthReceiveInterval"`
	IncomingQueueCapacity int           `yaml:"IncomingQueueCapacity"`
	OutgoingQueueCapacity int           `yaml:"OutgoingQueueCapacity"`
	MetricsAddr           string        `yaml:"MetricsAddr"`
}

// Validate returns an error if Server configuration is not valid.
func (s Server) Validate() error {
	if s.ListenPort < 0 || s.ListenPort > 65535 {
		return fmt.Errorf("invalid Server.ListenPort: %d", s.ListenPort)
	}
	if s.HandshakeTimeout < 0 {
		return fmt.Errorf("invalid Server.HandshakeTimeout: %s", s.HandshakeTimeout)
	}
	return nil
}

// Client configures the arcus-agent binary's Client façade.
type Client struct {
	ServerAddress         string        `yaml:"ServerAddress"`
	ServerPort            int           `yaml:"ServerPort"`
	ReconnectInterval     time.Duration `yaml:"ReconnectInterval"`
	HandshakeTimeout      time.Duration `yaml:"HandshakeTimeout"`
	HealthSendInterval    time.Duration `yaml:"HealthSendInterval"`
	HealthReceiveInterval time.Duration `yaml:"HealthReceiveInterval"`
}

// Validate returns an error if Client configuration is not valid.
func (c Client) Validate() error {
	if c.ServerAddress == "" {
		return fmt.Errorf("Client.ServerAddress is required")
	}
	if c.ServerPort <= 0 || c.ServerPort > 65535 {
		return fmt.Errorf("invalid Client.ServerPort: %d", c.ServerPort)
	}
	return nil
}

// Validate runs every sub-struct's Validate.
func (c Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Client.Validate(); err != nil {
		return err
	}
	return c.Logger.Validate()
}

// LoadFile reads and validates a Config from path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: reading %s: %w", path, err)
	}
	var c Config
	if err := yaml.Unmarshal(data, &c); err != nil {
		return Config{}, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}
