package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeModelFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "conf.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestModelLoaderAppliesDefaults(t *testing.T) {
	path := writeModelFile(t, `
llms:
  basic:
    model: qwen3-235b-a22b
    base_url: https://llm.example/v1
    api_key: test-key
`)
	loader := NewModelLoader(path)

	cfg, err := loader.Get("basic")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "qwen3-235b-a22b" {
		t.Errorf("model = %q", cfg.Model)
	}
	if *cfg.Temperature != DefaultTemperature {
		t.Errorf("temperature = %v, want %v", *cfg.Temperature, DefaultTemperature)
	}
	if *cfg.MaxRetries != DefaultMaxRetries {
		t.Errorf("max_retries = %v, want %v", *cfg.MaxRetries, DefaultMaxRetries)
	}
	if *cfg.Streaming {
		t.Error("streaming should default to false")
	}
}

func TestModelLoaderKeepsExplicitValues(t *testing.T) {
	path := writeModelFile(t, `
llms:
  reasoning:
    model: deepseek-r1
    temperature: 0.1
    max_retries: 5
    streaming: true
`)
	loader := NewModelLoader(path)

	cfg, err := loader.Get("reasoning")
	if err != nil {
		t.Fatal(err)
	}
	if *cfg.Temperature != 0.1 || *cfg.MaxRetries != 5 || !*cfg.Streaming {
		t.Errorf("explicit values were overridden: %+v", cfg)
	}
}

func TestModelLoaderUnknownName(t *testing.T) {
	path := writeModelFile(t, "llms:\n  basic:\n    model: m\n")
	loader := NewModelLoader(path)

	if _, err := loader.Get("missing"); err == nil {
		t.Fatal("expected error for unknown model name")
	}
}

func TestModelLoaderMissingFile(t *testing.T) {
	loader := NewModelLoader(filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := loader.Get("basic")
	if err == nil {
		t.Fatal("expected error for missing file")
	}
	if !errors.Is(err, ErrConfiguration) {
		t.Errorf("error %v should wrap ErrConfiguration", err)
	}
}

func TestModelLoaderReload(t *testing.T) {
	path := writeModelFile(t, "llms:\n  basic:\n    model: before\n")
	loader := NewModelLoader(path)

	cfg, err := loader.Get("basic")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "before" {
		t.Fatalf("model = %q", cfg.Model)
	}

	if err := os.WriteFile(path, []byte("llms:\n  basic:\n    model: after\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	// Cached until Reload is called.
	cfg, _ = loader.Get("basic")
	if cfg.Model != "before" {
		t.Fatalf("expected cached value, got %q", cfg.Model)
	}

	loader.Reload()
	cfg, err = loader.Get("basic")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Model != "after" {
		t.Fatalf("model after reload = %q", cfg.Model)
	}
}
