package runtime

import (
	"fmt"
	"os"
	"path/filepath"

	yaml "gopkg.in/yaml.v2"
)

type yamlRuntimeConfig struct {
	Mode struct {
		Debug bool `yaml:"debug"`
	} `yaml:"mode"`
	Version    string `yaml:"version"`
	RuntimeAPI string `yaml:"runtimeAPI"`
}

func optionFromRuntimeConfig(cfg yamlRuntimeConfig) Option {
	return OptionFunc(func(o *Options) {
		o.DebugMode = cfg.Mode.Debug
		if cfg.Version != "" {
			o.Version = cfg.Version
		}
		if cfg.RuntimeAPI != "" {
			o.RuntimeAPI = cfg.RuntimeAPI
		}
	})
}

func optionFromConfigBytes(b []byte) (Option, error) {
	var cfg yamlRuntimeConfig
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, err
	}
	return optionFromRuntimeConfig(cfg), nil
}

// WithConfig parses YAML bytes following bootstrap.yml structure and
// applies it to Options. It panics if the YAML is invalid.
func WithConfig(yamlBytes []byte) Option {
	opt, err := optionFromConfigBytes(yamlBytes)
	if err != nil {
		return OptionFunc(func(*Options) {
			panic(fmt.Errorf("runtime.WithConfig: %w", err))
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
			panic(fmt.Errorf("runtime.WithConfigFile(%s): %w", path, err))
		})
	}
	return WithConfig(b)
}

// DefaultConfigCandidates returns relative paths that will be checked
// (in order) when searching for a default bootstrap config.
func DefaultConfigCandidates() []string {
	return []string{
		"bootstrap.yaml",
		"bootstrap.yml",
		"runtime.yaml",
		"runtime.yml",
	}
}

// FindDefaultConfigFile searches for a bootstrap config file in a small
// set of well-known locations (CWD then executable directory).
func FindDefaultConfigFile() (string, error) {
	candidates := DefaultConfigCandidates()

	dirs := []string{"."}
	if exe, err := os.Executable(); err == nil {
		dirs = append(dirs, filepath.Dir(exe))
	}

	for _, dir := range dirs {
		for _, rel := range candidates {
			p := rel
			if dir != "." {
				p = filepath.Join(dir, rel)
			}
			if st, err := os.Stat(p); err == nil && !st.IsDir() {
				return p, nil
			}
		}
	}

	return "", fmt.Errorf("bootstrap config not found (expected %v)", candidates)
}

// WithDefaultConfigFile finds and loads the default bootstrap config.
// It panics when no candidate file exists.
func WithDefaultConfigFile() Option {
	p, err := FindDefaultConfigFile()
	if err != nil {
		panic(fmt.Errorf("runtime.WithDefaultConfigFile: %w", err))
	}
	return WithConfigFile(p)
}
