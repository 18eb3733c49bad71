package projectconfig

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestNew_ReturnsAllDefaults(t *testing.T) {
	cfg := New()

	// Paths
	assertEqual(t, "Paths.Profile", "brand.yaml", cfg.Paths.Profile)
	assertEqual(t, "Paths.Results", "results/", cfg.Paths.Results)

	// Defaults
	assertEqualInt(t, "Defaults.Concurrency", 5, cfg.Defaults.Concurrency)
	assertEqualInt(t, "Defaults.Timeout", 120, cfg.Defaults.Timeout)
	assertEqualInt(t, "Defaults.TargetPrompts", 60, cfg.Defaults.TargetPrompts)
	assertEqual(t, "Defaults.JudgeBackend", "", cfg.Defaults.JudgeBackend)
	assertBoolPtr(t, "Defaults.Verbose", false, cfg.Defaults.Verbose)

	// Cache
	assertBoolPtr(t, "Cache.Enabled", false, cfg.Cache.Enabled)
	assertEqual(t, "Cache.Dir", ".beacon-cache", cfg.Cache.Dir)

	// Store
	assertBoolPtr(t, "Store.Enabled", true, cfg.Store.Enabled)
	assertEqual(t, "Store.Path", ".beacon/runs.db", cfg.Store.Path)

	if len(cfg.Backends) != 0 {
		t.Error("Backends should be empty by default")
	}
}

func TestLoad_FullConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".beacon.yaml", `
paths:
  profile: "profiles/acme.yaml"
  results: "out/"
defaults:
  concurrency: 8
  timeout: 300
  target_prompts: 30
  judge_backend: gemini
  extract_backend: openai
  verbose: true
cache:
  enabled: true
  dir: ".my-cache"
store:
  enabled: false
  path: "history.db"
backends:
  - kind: openai
    name: openai
    model: gpt-4o-mini
  - kind: gemini
    model: gemini-2.0-flash
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Paths.Profile", "profiles/acme.yaml", cfg.Paths.Profile)
	assertEqual(t, "Paths.Results", "out/", cfg.Paths.Results)
	assertEqualInt(t, "Defaults.Concurrency", 8, cfg.Defaults.Concurrency)
	assertEqualInt(t, "Defaults.Timeout", 300, cfg.Defaults.Timeout)
	assertEqualInt(t, "Defaults.TargetPrompts", 30, cfg.Defaults.TargetPrompts)
	assertEqual(t, "Defaults.JudgeBackend", "gemini", cfg.Defaults.JudgeBackend)
	assertEqual(t, "Defaults.ExtractBackend", "openai", cfg.Defaults.ExtractBackend)
	assertBoolPtr(t, "Defaults.Verbose", true, cfg.Defaults.Verbose)
	assertBoolPtr(t, "Cache.Enabled", true, cfg.Cache.Enabled)
	assertEqual(t, "Cache.Dir", ".my-cache", cfg.Cache.Dir)
	assertBoolPtr(t, "Store.Enabled", false, cfg.Store.Enabled)
	assertEqual(t, "Store.Path", "history.db", cfg.Store.Path)

	if len(cfg.Backends) != 2 {
		t.Fatalf("Backends = %d entries, want 2", len(cfg.Backends))
	}
	assertEqual(t, "Backends[0].Kind", "openai", cfg.Backends[0].Kind)
	assertEqual(t, "Backends[0].Model", "gpt-4o-mini", cfg.Backends[0].Model)
	assertEqual(t, "Backends[1].Kind", "gemini", cfg.Backends[1].Kind)

	if got := cfg.Timeout(); got != 300*time.Second {
		t.Errorf("Timeout() = %v, want 300s", got)
	}
}

func TestLoad_PartialConfig(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".beacon.yaml", `
defaults:
  concurrency: 2
`)

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	// Overridden
	assertEqualInt(t, "Defaults.Concurrency", 2, cfg.Defaults.Concurrency)

	// Defaults preserved
	assertEqual(t, "Paths.Profile", "brand.yaml", cfg.Paths.Profile)
	assertEqualInt(t, "Defaults.Timeout", 120, cfg.Defaults.Timeout)
	assertEqualInt(t, "Defaults.TargetPrompts", 60, cfg.Defaults.TargetPrompts)
	assertBoolPtr(t, "Store.Enabled", true, cfg.Store.Enabled)
}

func TestLoad_MissingFile_ReturnsDefaults(t *testing.T) {
	dir := t.TempDir()

	cfg, err := Load(dir)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	defaults := New()
	assertEqualInt(t, "Defaults.Concurrency", defaults.Defaults.Concurrency, cfg.Defaults.Concurrency)
	assertEqualInt(t, "Defaults.Timeout", defaults.Defaults.Timeout, cfg.Defaults.Timeout)
	assertEqual(t, "Cache.Dir", defaults.Cache.Dir, cfg.Cache.Dir)
}

func TestLoad_InvalidYAML_ReturnsError(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, ".beacon.yaml", `
defaults:
  concurrency: [not valid yaml
    this is broken
`)

	_, err := Load(dir)
	if err == nil {
		t.Fatal("Load() should return error for invalid YAML")
	}
}

func TestLoad_WalksUpDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, ".beacon.yaml", `
defaults:
  judge_backend: found-it
`)

	child := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(child, 0o755); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(child)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	assertEqual(t, "Defaults.JudgeBackend", "found-it", cfg.Defaults.JudgeBackend)
	// Other defaults still populated
	assertEqualInt(t, "Defaults.Concurrency", 5, cfg.Defaults.Concurrency)
}

func TestBoolPointerFields(t *testing.T) {
	t.Run("defaults preserved when not set in YAML", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".beacon.yaml", `
defaults:
  concurrency: 3
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		// Verbose not in file, default (false) preserved by merge
		assertBoolPtr(t, "Defaults.Verbose", false, cfg.Defaults.Verbose)
		assertBoolPtr(t, "Store.Enabled", true, cfg.Store.Enabled)
	})

	t.Run("explicitly false", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".beacon.yaml", `
store:
  enabled: false
cache:
  enabled: false
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Store.Enabled", false, cfg.Store.Enabled)
		assertBoolPtr(t, "Cache.Enabled", false, cfg.Cache.Enabled)
	})

	t.Run("explicitly true", func(t *testing.T) {
		dir := t.TempDir()
		writeFile(t, dir, ".beacon.yaml", `
defaults:
  verbose: true
cache:
  enabled: true
`)
		cfg, err := Load(dir)
		if err != nil {
			t.Fatalf("Load() error: %v", err)
		}
		assertBoolPtr(t, "Defaults.Verbose", true, cfg.Defaults.Verbose)
		assertBoolPtr(t, "Cache.Enabled", true, cfg.Cache.Enabled)
	})
}

// --- test helpers ---

func writeFile(t *testing.T, dir, name, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func assertEqual(t *testing.T, field, want, got string) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %q, want %q", field, got, want)
	}
}

func assertEqualInt(t *testing.T, field string, want, got int) {
	t.Helper()
	if got != want {
		t.Errorf("%s = %d, want %d", field, got, want)
	}
}

func assertBoolPtr(t *testing.T, field string, want bool, got *bool) {
	t.Helper()
	if got == nil {
		t.Errorf("%s is nil, want *%v", field, want)
		return
	}
	if *got != want {
		t.Errorf("%s = %v, want %v", field, *got, want)
	}
}
