package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Adapter != -1 {
		t.Errorf("Adapter = %d, want -1", cfg.Adapter)
	}
	if cfg.Name != "bledemo" {
		t.Errorf("Name = %q, want %q", cfg.Name, "bledemo")
	}
	if cfg.Hello == "" {
		t.Error("Hello should not be empty")
	}
	if cfg.ScanMillis != 3000 {
		t.Errorf("ScanMillis = %d, want 3000", cfg.ScanMillis)
	}
	if cfg.ServeMillis != 60000 {
		t.Errorf("ServeMillis = %d, want 60000", cfg.ServeMillis)
	}
	if cfg.MQTT.Broker != "tcp://127.0.0.1:1883" {
		t.Errorf("MQTT.Broker = %q, want %q", cfg.MQTT.Broker, "tcp://127.0.0.1:1883")
	}
	if cfg.MQTT.Topic != "bledemo/scan" {
		t.Errorf("MQTT.Topic = %q, want %q", cfg.MQTT.Topic, "bledemo/scan")
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config does not validate: %v", err)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
adapter: 1
name: lab-beacon
scan_ms: 500
mqtt:
  broker: tcp://broker.lab:1883
`
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Adapter != 1 {
		t.Errorf("Adapter = %d, want 1", cfg.Adapter)
	}
	if cfg.Name != "lab-beacon" {
		t.Errorf("Name = %q, want %q", cfg.Name, "lab-beacon")
	}
	if cfg.ScanMillis != 500 {
		t.Errorf("ScanMillis = %d, want 500", cfg.ScanMillis)
	}
	if cfg.MQTT.Broker != "tcp://broker.lab:1883" {
		t.Errorf("MQTT.Broker = %q, want %q", cfg.MQTT.Broker, "tcp://broker.lab:1883")
	}

	// Fields absent from the file keep their defaults.
	if cfg.ServeMillis != 60000 {
		t.Errorf("ServeMillis = %d, want default 60000", cfg.ServeMillis)
	}
	if cfg.Hello != Default().Hello {
		t.Errorf("Hello = %q, want default %q", cfg.Hello, Default().Hello)
	}
	if cfg.MQTT.Topic != "bledemo/scan" {
		t.Errorf("MQTT.Topic = %q, want default %q", cfg.MQTT.Topic, "bledemo/scan")
	}
}

func TestLoadFileNotFound(t *testing.T) {
	if _, err := Load("/nonexistent/config.yaml"); err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestLoadBadYAML(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("adapter: [not an int"), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}
	if _, err := Load(cfgPath); err == nil {
		t.Error("Load() should return error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "explicit adapter index",
			modify:  func(c *Config) { c.Adapter = 1 },
			wantErr: false,
		},
		{
			name:    "adapter below probe sentinel",
			modify:  func(c *Config) { c.Adapter = -2 },
			wantErr: true,
		},
		{
			name:    "empty name",
			modify:  func(c *Config) { c.Name = "" },
			wantErr: true,
		},
		{
			name:    "zero scan budget",
			modify:  func(c *Config) { c.ScanMillis = 0 },
			wantErr: true,
		},
		{
			name:    "negative serve budget",
			modify:  func(c *Config) { c.ServeMillis = -1 },
			wantErr: true,
		},
		{
			name:    "empty broker",
			modify:  func(c *Config) { c.MQTT.Broker = "" },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestDurations(t *testing.T) {
	cfg := Default()
	cfg.ScanMillis = 1500
	cfg.ServeMillis = 250

	if got := cfg.ScanDuration(); got != 1500*time.Millisecond {
		t.Errorf("ScanDuration() = %v, want 1.5s", got)
	}
	if got := cfg.ServeDuration(); got != 250*time.Millisecond {
		t.Errorf("ServeDuration() = %v, want 250ms", got)
	}
}
