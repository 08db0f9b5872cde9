package gconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xelis-go/funxyvm/internal/gconfig"
)

func TestLoadHostConfigMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := gconfig.LoadHostConfig(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := gconfig.DefaultHostConfig()
	if cfg != want {
		t.Fatalf("got %+v, want defaults %+v", cfg, want)
	}
}

func TestLoadHostConfigOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "host.yaml")
	body := "default_gas_limit: 50000\ntrace_on_failure: false\ncache_path: /tmp/funxy-cache.db\n"
	if err := writeFile(path, body); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	cfg, err := gconfig.LoadHostConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultGasLimit != 50000 {
		t.Fatalf("default_gas_limit = %d, want 50000", cfg.DefaultGasLimit)
	}
	if cfg.TraceOnFailure {
		t.Fatal("trace_on_failure should be false per the override file")
	}
	if cfg.CachePath != "/tmp/funxy-cache.db" {
		t.Fatalf("cache_path = %q, want /tmp/funxy-cache.db", cfg.CachePath)
	}
}

func TestLoadHostConfigPartialOverridePreservesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "partial.yaml")
	if err := writeFile(path, "trace_on_failure: false\n"); err != nil {
		t.Fatalf("unexpected error writing fixture: %v", err)
	}

	cfg, err := gconfig.LoadHostConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.DefaultGasLimit != gconfig.DefaultHostConfig().DefaultGasLimit {
		t.Fatalf("expected default_gas_limit to fall back to the default, got %d", cfg.DefaultGasLimit)
	}
	if cfg.TraceOnFailure {
		t.Fatal("trace_on_failure should be overridden to false")
	}
}

func writeFile(path, body string) error {
	return os.WriteFile(path, []byte(body), 0o644)
}
