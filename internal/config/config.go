// Package config loads the bledemo settings: which controller to bind,
// the advertised name, the default scan and serve budgets, and where to
// publish scan results.
package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Config holds all bledemo settings.
type Config struct {
	// Adapter is the HCI controller index to bind. -1 probes hci0 and
	// hci1 in order.
	Adapter int `yaml:"adapter"`
	// Name is the device name carried in the advertising payload.
	Name string `yaml:"name"`
	// Hello is served by the readable GATT characteristic.
	Hello string `yaml:"hello"`
	// ScanMillis and ServeMillis are the default wall-clock budgets for
	// the scan and serve commands.
	ScanMillis  int `yaml:"scan_ms"`
	ServeMillis int `yaml:"serve_ms"`

	MQTT MQTTConfig `yaml:"mqtt"`
}

// MQTTConfig points the publish command at a broker.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Adapter:     -1,
		Name:        "bledemo",
		Hello:       "Hello from bledemo!",
		ScanMillis:  3000,
		ServeMillis: 60000,
		MQTT: MQTTConfig{
			Broker:   "tcp://127.0.0.1:1883",
			ClientID: "bledemo",
			Topic:    "bledemo/scan",
		},
	}
}

// Load reads a YAML file over the defaults: fields absent from the file
// keep their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(err, "parse config")
	}
	return cfg, nil
}

// Validate checks the configuration for values no command could use.
func (c *Config) Validate() error {
	if c.Adapter < -1 {
		return errors.Errorf("adapter must be -1 (probe) or a controller index, got %d", c.Adapter)
	}
	if c.Name == "" {
		return errors.New("name must not be empty")
	}
	if c.ScanMillis <= 0 {
		return errors.Errorf("scan_ms must be positive, got %d", c.ScanMillis)
	}
	if c.ServeMillis <= 0 {
		return errors.Errorf("serve_ms must be positive, got %d", c.ServeMillis)
	}
	if c.MQTT.Broker == "" {
		return errors.New("mqtt.broker must not be empty")
	}
	return nil
}

// ScanDuration returns the default scan budget.
func (c *Config) ScanDuration() time.Duration {
	return time.Duration(c.ScanMillis) * time.Millisecond
}

// ServeDuration returns the default GATT serve budget.
func (c *Config) ServeDuration() time.Duration {
	return time.Duration(c.ServeMillis) * time.Millisecond
}
