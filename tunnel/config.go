package tunnel

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

type yamlTunnelConfig struct {
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
	Locator string `yaml:"locator"`
}

func optionFromTunnelConfig(cfg yamlTunnelConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Mode.Debug
		if cfg.Locator != "" {
			o.Locator = cfg.Locator
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlTunnelConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return optionFromTunnelConfig(cfg), nil
}

// WithConfig parses YAML bytes following the tunnel section of
// bootstrap.yml and applies it to Options. It panics if the YAML is
// invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("tunnel.WithConfig: %w", err))
		})
	}
	return opt
}

// WithConfigFile loads a YAML file and applies it to Options. It panics
// if the file cannot be read or YAML is invalid.
func WithConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("tunnel.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}
