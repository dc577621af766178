package runtime

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWithConfig(t *testing.T) {
	yaml := []byte(`
mode:
  debug: true
version: /2018-06-01
runtimeAPI: 127.0.0.1:9001
`)
	o := NewOptions(WithConfig(yaml))
	if !o.DebugMode {
		t.Error("debug mode not applied")
	}
	if o.Version != "/2018-06-01" {
		t.Errorf("version not applied: %q", o.Version)
	}
	if o.RuntimeAPI != "127.0.0.1:9001" {
		t.Errorf("runtime API not applied: %q", o.RuntimeAPI)
	}
}

func TestWithConfigEmptyKeepsDefaults(t *testing.T) {
	o := NewOptions(WithConfig([]byte(`mode: {debug: false}`)))
	if o.Version != DefaultVersion {
		t.Errorf("unset version must keep the default, got %q", o.Version)
	}
}

func TestWithConfigInvalidPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on invalid YAML")
		}
	}()
	NewOptions(WithConfig([]byte("\t:not yaml")))
}

func TestWithConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap.yml")
	if err := os.WriteFile(path, []byte("runtimeAPI: 127.0.0.1:9100"), 0o644); err != nil {
		t.Fatal(err)
	}

	o := NewOptions(WithConfigFile(path))
	if o.RuntimeAPI != "127.0.0.1:9100" {
		t.Errorf("runtime API not applied: %q", o.RuntimeAPI)
	}
}

func TestFindDefaultConfigFile(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bootstrap.yaml"), []byte("mode: {debug: true}"), 0o644); err != nil {
		t.Fatal(err)
	}

	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	defer os.Chdir(wd)

	p, err := FindDefaultConfigFile()
	if err != nil {
		t.Fatalf("FindDefaultConfigFile failed: %v", err)
	}
	if filepath.Base(p) != "bootstrap.yaml" {
		t.Errorf("unexpected config file: %s", p)
	}
}
