package dynamic

import (
	"log"

	"github.com/aura-studio/dynamic"
)

// Package names one loadable tunnel. Tunnel is non-nil for statically
// linked packages.
type Package struct {
	Package string
	Version string
	Tunnel  dynamic.Tunnel
}

// Dynamic configures the package loader and resolves tunnels from it.
type Dynamic struct {
	*Options
}

func NewDynamic(opts ...Option) *Dynamic {
	d := &Dynamic{
		Options: NewOptions(opts...),
	}

	d.InstallPackages()

	return d
}

// InstallPackages pushes the configured toolchain, warehouse and
// package set down into the loader. Preload failures only log, the
// package may still load on first use.
func (d *Dynamic) InstallPackages() {
	if d.Os != "" {
		dynamic.DynamicOS = d.Os
	}
	if d.Arch != "" {
		dynamic.DynamicArch = d.Arch
	}
	if d.Compiler != "" {
		dynamic.DynamicCompiler = d.Compiler
	}
	if d.Variant != "" {
		dynamic.DynamicVariant = d.Variant
	}

	dynamic.UseWarehouse(d.LocalWarehouse, d.RemoteWarehouse)

	if d.PackageNamespace != "" {
		dynamic.UseNamespace(d.PackageNamespace)
	}

	if d.PackageDefaultVersion != "" {
		dynamic.UseDefaultVersion(d.PackageDefaultVersion)
	}

	for _, p := range d.StaticPackages {
		dynamic.RegisterPackage(p.Package, p.Version, p.Tunnel)
	}

	for _, p := range d.PreloadPackages {
		if _, err := dynamic.GetPackage(p.Package, p.Version); err != nil {
			log.Printf("[Dynamic] Preload package %s_%s failed: %v", p.Package, p.Version, err)
		}
	}
}

func (d *Dynamic) GetPackage(pkg string, version string) (dynamic.Tunnel, error) {
	return dynamic.GetPackage(pkg, version)
}
