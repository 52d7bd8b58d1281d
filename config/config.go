package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultSweepInterval  = 30 * time.Second
	DefaultFatalTimeout   = 5 * time.Second
	DefaultFatalExitCode  = 1
	DefaultHTTPPort       = 8099
	DefaultStreamInterval = 5 * time.Second
)

// Config holds the support-layer configuration parsed from the `support:`
// section of config.yaml.
type Config struct {
	Support SupportConfig `yaml:"support"`
}

// SupportConfig groups all support-layer settings.
type SupportConfig struct {
	// Registry controls the in-flight record store.
	Registry RegistryConfig `yaml:"registry"`

	// Fatal controls the fatal-shutdown sequence.
	Fatal FatalConfig `yaml:"fatal"`

	// Introspect controls the HTTP/WebSocket introspection surface.
	Introspect IntrospectConfig `yaml:"introspect"`
}

// RegistryConfig controls the in-flight record store.
type RegistryConfig struct {
	// Sweep arms the background sweeper that prunes expired records.
	Sweep bool `yaml:"sweep"`

	// SweepInterval is how often the sweeper runs (default 30s).
	SweepInterval time.Duration `yaml:"sweep_interval"`
}

// FatalConfig controls the fatal-shutdown sequence.
type FatalConfig struct {
	// Timeout bounds the shutdown hook sequence (default 5s).
	Timeout time.Duration `yaml:"timeout"`

	// ExitCode is the process exit code after a fatal (default 1).
	ExitCode int `yaml:"exit_code"`
}

// IntrospectConfig controls the introspection surface.
type IntrospectConfig struct {
	// HTTPPort is the port the introspection handlers listen on (default 8099).
	HTTPPort int `yaml:"http_port"`

	// StreamInterval is how often the websocket hub broadcasts (default 5s).
	StreamInterval time.Duration `yaml:"stream_interval"`
}

// Load reads and parses the config file at path. Missing fields are filled
// with defaults before validation.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("support config: read %q: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("support config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("support config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Support: SupportConfig{
			Registry: RegistryConfig{
				Sweep:         true,
				SweepInterval: DefaultSweepInterval,
			},
			Fatal: FatalConfig{
				Timeout:  DefaultFatalTimeout,
				ExitCode: DefaultFatalExitCode,
			},
			Introspect: IntrospectConfig{
				HTTPPort:       DefaultHTTPPort,
				StreamInterval: DefaultStreamInterval,
			},
		},
	}
}

// validate checks structural constraints on the parsed configuration.
func validate(cfg *Config) error {
	s := cfg.Support
	if s.Registry.SweepInterval < 0 {
		return fmt.Errorf("support.registry.sweep_interval must not be negative")
	}
	if s.Registry.Sweep && s.Registry.SweepInterval == 0 {
		return fmt.Errorf("support.registry.sweep_interval must be positive when sweep is enabled")
	}
	if s.Fatal.Timeout <= 0 {
		return fmt.Errorf("support.fatal.timeout must be positive")
	}
	if s.Fatal.ExitCode < 0 || s.Fatal.ExitCode > 255 {
		return fmt.Errorf("support.fatal.exit_code %d is out of range [0, 255]", s.Fatal.ExitCode)
	}
	if s.Introspect.HTTPPort <= 0 || s.Introspect.HTTPPort > 65535 {
		return fmt.Errorf("support.introspect.http_port %d is out of range [1, 65535]", s.Introspect.HTTPPort)
	}
	if s.Introspect.StreamInterval <= 0 {
		return fmt.Errorf("support.introspect.stream_interval must be positive")
	}
	return nil
}
