// Package config contains the simulator's YAML configuration model.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Version is the version of the node, set at build time.
var Version string

// Config is the top level struct representing the config for the simulator.
type Config struct {
	ProtocolConfiguration    ProtocolConfiguration    `yaml:"ProtocolConfiguration"`
	ApplicationConfiguration ApplicationConfiguration `yaml:"ApplicationConfiguration"`
}

// LoadFile loads the config from the given path and validates it.
func LoadFile(configPath string) (Config, error) {
	configData, err := os.ReadFile(configPath)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}

	config := Config{
		ProtocolConfiguration:    DefaultProtocolConfiguration(),
		ApplicationConfiguration: DefaultApplicationConfiguration(),
	}

	if err := yaml.Unmarshal(configData, &config); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}

	if err := config.ProtocolConfiguration.Validate(); err != nil {
		return Config{}, err
	}

	return config, nil
}
