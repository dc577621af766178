package dynamic

import (
	"github.com/mohae/deepcopy"
)

type Option interface {
	Apply(o *Options)
}

type OptionFunc func(*Options)

func (f OptionFunc) Apply(o *Options) { f(o) }

type Options struct {
	Os                    string
	Arch                  string
	Compiler              string
	Variant               string
	LocalWarehouse        string
	RemoteWarehouse       string
	PackageNamespace      string
	PackageDefaultVersion string
	StaticPackages        []*Package
	PreloadPackages       []*Package
}

var defaultOptions = &Options{
	StaticPackages:  []*Package{},
	PreloadPackages: []*Package{},
}

func NewOptions(opts ...Option) *Options {
	options := deepcopy.Copy(defaultOptions).(*Options)
	options.init(opts...)
	return options
}

func (o *Options) init(opts ...Option) {
	for _, opt := range opts {
		if opt != nil {
			opt.Apply(o)
		}
	}
}

// WithToolchain pins the platform quadruple used to locate package
// binaries. Empty parts keep the loader's own detection.
func WithToolchain(os, arch, compiler, variant string) Option {
	return OptionFunc(func(o *Options) {
		o.Os = os
		o.Arch = arch
		o.Compiler = compiler
		o.Variant = variant
	})
}

// WithWarehouse sets the local cache directory and the remote source
// packages are fetched from.
func WithWarehouse(local, remote string) Option {
	return OptionFunc(func(o *Options) {
		o.LocalWarehouse = local
		o.RemoteWarehouse = remote
	})
}

// WithNamespace scopes package names.
func WithNamespace(namespace string) Option {
	return OptionFunc(func(o *Options) {
		o.PackageNamespace = namespace
	})
}

// WithDefaultVersion sets the version used when a package is requested
// without one.
func WithDefaultVersion(version string) Option {
	return OptionFunc(func(o *Options) {
		o.PackageDefaultVersion = version
	})
}

// WithStaticPackage registers a statically linked tunnel, bypassing the
// warehouse for that package.
func WithStaticPackage(p *Package) Option {
	return OptionFunc(func(o *Options) {
		o.StaticPackages = append(o.StaticPackages, p)
	})
}

// WithPreloadPackage loads a package eagerly at install time.
func WithPreloadPackage(p *Package) Option {
	return OptionFunc(func(o *Options) {
		o.PreloadPackages = append(o.PreloadPackages, p)
	})
}
