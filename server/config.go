package server

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/aura-studio/bootstrap/dynamic"
	"github.com/aura-studio/bootstrap/runtime"
	"github.com/aura-studio/bootstrap/tunnel"
	yaml "gopkg.in/yaml.v2"
)

type yamlServerConfig struct {
	Runtime any `yaml:"runtime"`
	Tunnel  any `yaml:"tunnel"`
	Dynamic any `yaml:"dynamic"`
}

type Option interface {
	Apply(*Options)
}

// Options aggregates the per-package options the composite bootstrap
// forwards to the runtime engine, the tunnel handler and the package
// loader.
type Options struct {
	Runtime []runtime.Option
	Tunnel  []tunnel.Option
	Dynamic []dynamic.Option
}

type serveOptionFunc func(*Options)

func (f serveOptionFunc) Apply(o *Options) { f(o) }

// WithRuntimeOptions forwards options to the runtime engine.
func WithRuntimeOptions(opts ...runtime.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Runtime = append(o.Runtime, opts...)
	})
}

// WithTunnelOptions forwards options to the tunnel handler.
func WithTunnelOptions(opts ...tunnel.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Tunnel = append(o.Tunnel, opts...)
	})
}

// WithDynamicOptions forwards options to the package loader.
func WithDynamicOptions(opts ...dynamic.Option) Option {
	return serveOptionFunc(func(o *Options) {
		o.Dynamic = append(o.Dynamic, opts...)
	})
}

type serveConfigOption struct {
	runtimeOpt runtime.Option
	tunnelOpt  tunnel.Option
	dynOpt     dynamic.Option
}

func (o serveConfigOption) Apply(opts *Options) {
	if o.runtimeOpt != nil {
		opts.Runtime = append(opts.Runtime, o.runtimeOpt)
	}
	if o.tunnelOpt != nil {
		opts.Tunnel = append(opts.Tunnel, o.tunnelOpt)
	}
	if o.dynOpt != nil {
		opts.Dynamic = append(opts.Dynamic, o.dynOpt)
	}
}

// WithServeConfig parses YAML bytes following bootstrap.yml structure
// and forwards each section to its package.
func WithServeConfig(yamlBytes []byte) Option {
	var cfg yamlServerConfig
	if err := yaml.Unmarshal(yamlBytes, &cfg); err != nil {
		panic(fmt.Errorf("server.WithServeConfig: %w", err))
	}

	var runtimeOpt runtime.Option
	if cfg.Runtime != nil {
		b, err := yaml.Marshal(cfg.Runtime)
		if err != nil {
			panic(fmt.Errorf("server.WithServeConfig: %w", err))
		}
		runtimeOpt = runtime.WithConfig(b)
	}

	var tunnelOpt tunnel.Option
	if cfg.Tunnel != nil {
		b, err := yaml.Marshal(cfg.Tunnel)
		if err != nil {
			panic(fmt.Errorf("server.WithServeConfig: %w", err))
		}
		tunnelOpt = tunnel.WithConfig(b)
	}

	var dynOpt dynamic.Option
	if cfg.Dynamic != nil {
		b, err := yaml.Marshal(cfg.Dynamic)
		if err != nil {
			panic(fmt.Errorf("server.WithServeConfig: %w", err))
		}
		dynOpt = dynamic.WithConfig(b)
	}

	return serveConfigOption{
		runtimeOpt: runtimeOpt,
		tunnelOpt:  tunnelOpt,
		dynOpt:     dynOpt,
	}
}

// WithServeConfigFile loads a YAML file and applies it as an Option.
func WithServeConfigFile(path string) Option {
	b, err := os.ReadFile(path)
	if err != nil {
		panic(fmt.Errorf("server.WithServeConfigFile(%s): %w", path, err))
	}
	return WithServeConfig(b)
}

// DefaultServeConfigCandidates returns relative paths that will be
// checked (in order) when searching for a default bootstrap config.
func DefaultServeConfigCandidates() []string {
	return []string{
		"bootstrap.yaml",
		"bootstrap.yml",
		"lambda.yaml",
		"lambda.yml",
		"server.yaml",
		"server.yml",
		"config.yaml",
		"config.yml",
	}
}

// FindDefaultServeConfigFile searches for a bootstrap config file in a
// small set of well-known locations (CWD then executable directory).
func FindDefaultServeConfigFile() (string, error) {
	candidates := DefaultServeConfigCandidates()

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

// WithDefaultServeConfigFile finds and loads the default bootstrap
// config file as an Option.
func WithDefaultServeConfigFile() Option {
	p, err := FindDefaultServeConfigFile()
	if err != nil {
		panic(fmt.Errorf("server.WithDefaultServeConfigFile: %w", err))
	}
	return WithServeConfigFile(p)
}
