package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML overlay layout.
type fileConfig struct {
	Flash flashOverlay `yaml:"flash"`
}

// flashOverlay uses strings so "1500ms" and "10s" both read naturally.
type flashOverlay struct {
	AgentSocket     string `yaml:"agent_socket"`
	ProbeTimeout    string `yaml:"probe_timeout"`
	DispatchTimeout string `yaml:"dispatch_timeout"`
	UploadDeadline  string `yaml:"upload_deadline"`
}

func loadFile(path string) (fileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return fileConfig{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fileConfig{}, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Flash.validate(); err != nil {
		return fileConfig{}, err
	}
	return cfg, nil
}

func (o flashOverlay) validate() error {
	for name, raw := range map[string]string{
		"probe_timeout":    o.ProbeTimeout,
		"dispatch_timeout": o.DispatchTimeout,
		"upload_deadline":  o.UploadDeadline,
	} {
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("flash.%s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("flash.%s must be positive", name)
		}
	}
	return nil
}

// over applies the overlay's set fields on top of base. validate has
// already run, so parse errors cannot occur here.
func (o flashOverlay) over(base FlashConfig) FlashConfig {
	if o.AgentSocket != "" {
		base.AgentSocket = o.AgentSocket
	}
	if d, err := time.ParseDuration(o.ProbeTimeout); err == nil {
		base.ProbeTimeout = d
	}
	if d, err := time.ParseDuration(o.DispatchTimeout); err == nil {
		base.DispatchTimeout = d
	}
	if d, err := time.ParseDuration(o.UploadDeadline); err == nil {
		base.UploadDeadline = d
	}
	return base
}
