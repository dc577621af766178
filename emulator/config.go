package emulator

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

type yamlEmulatorConfig struct {
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
	Function struct {
		Name       string `yaml:"name"`
		Version    string `yaml:"version"`
		MemorySize int    `yaml:"memorySize"`
		Timeout    int    `yaml:"timeout"`
	} `yaml:"function"`
	Region  string `yaml:"region"`
	TraceID string `yaml:"traceID"`
}

func optionFromEmulatorConfig(cfg yamlEmulatorConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Mode.Debug
		if cfg.Function.Name != "" {
			o.FunctionName = cfg.Function.Name
		}
		if cfg.Function.Version != "" {
			o.FunctionVersion = cfg.Function.Version
		}
		if cfg.Function.MemorySize != 0 {
			o.MemorySize = cfg.Function.MemorySize
		}
		if cfg.Function.Timeout != 0 {
			o.FunctionTimeout = time.Duration(cfg.Function.Timeout) * time.Second
		}
		if cfg.Region != "" {
			o.Region = cfg.Region
		}
		if cfg.TraceID != "" {
			o.TraceID = cfg.TraceID
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlEmulatorConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return optionFromEmulatorConfig(cfg), nil
}

// WithConfig parses YAML bytes following emulator.yml structure and
// applies it to Options. It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("emulator.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options.
// It panics if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("emulator.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
