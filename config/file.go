package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// FileConfig is the YAML overlay shape. Every field is optional; zero values
// leave the corresponding env-derived setting untouched.
type FileConfig struct {
	Server struct {
		Port         string        `yaml:"port,omitempty"`
		ReadTimeout  time.Duration `yaml:"read_timeout,omitempty"`
		WriteTimeout time.Duration `yaml:"write_timeout,omitempty"`
		IdleTimeout  time.Duration `yaml:"idle_timeout,omitempty"`
	} `yaml:"server,omitempty"`
	Backend struct {
		BaseURL string        `yaml:"base_url,omitempty"`
		Timeout time.Duration `yaml:"timeout,omitempty"`
	} `yaml:"backend,omitempty"`
	Session struct {
		Store           string        `yaml:"store,omitempty"`
		TTL             time.Duration `yaml:"ttl,omitempty"`
		CleanupInterval time.Duration `yaml:"cleanup_interval,omitempty"`
		CookieName      string        `yaml:"cookie_name,omitempty"`
	} `yaml:"session,omitempty"`
	Logging struct {
		Level  string `yaml:"level,omitempty"`
		Format string `yaml:"format,omitempty"`
	} `yaml:"logging,omitempty"`
	Features struct {
		AlwaysFetchFlow       *bool  `yaml:"always_fetch_flow,omitempty"`
		RouteInfoPayloadShape string `yaml:"route_info_payload_shape,omitempty"`
	} `yaml:"features,omitempty"`
}

// ApplyFile reads a YAML overlay and applies its non-zero fields onto cfg.
func ApplyFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	var fc FileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return err
	}

	if fc.Server.Port != "" {
		cfg.Server.Port = fc.Server.Port
	}
	if fc.Server.ReadTimeout > 0 {
		cfg.Server.ReadTimeout = fc.Server.ReadTimeout
	}
	if fc.Server.WriteTimeout > 0 {
		cfg.Server.WriteTimeout = fc.Server.WriteTimeout
	}
	if fc.Server.IdleTimeout > 0 {
		cfg.Server.IdleTimeout = fc.Server.IdleTimeout
	}
	if fc.Backend.BaseURL != "" {
		cfg.Backend.BaseURL = fc.Backend.BaseURL
	}
	if fc.Backend.Timeout > 0 {
		cfg.Backend.Timeout = fc.Backend.Timeout
	}
	if fc.Session.Store != "" {
		cfg.Session.Store = fc.Session.Store
	}
	if fc.Session.TTL > 0 {
		cfg.Session.TTL = fc.Session.TTL
	}
	if fc.Session.CleanupInterval > 0 {
		cfg.Session.CleanupInterval = fc.Session.CleanupInterval
	}
	if fc.Session.CookieName != "" {
		cfg.Session.CookieName = fc.Session.CookieName
	}
	if fc.Logging.Level != "" {
		cfg.Logging.Level = fc.Logging.Level
	}
	if fc.Logging.Format != "" {
		cfg.Logging.Format = fc.Logging.Format
	}
	if fc.Features.AlwaysFetchFlow != nil {
		cfg.Features.AlwaysFetchFlow = *fc.Features.AlwaysFetchFlow
	}
	if fc.Features.RouteInfoPayloadShape != "" {
		cfg.Features.RouteInfoPayloadShape = fc.Features.RouteInfoPayloadShape
	}

	return nil
}
