package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// LoadEnvFiles reads KEY=VALUE pairs and populates the process environment.
func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR=\"beta\"\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath, filepath.Join(dir, "missing.env")); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}

	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta" {
		t.Fatalf("BAR=%q, want beta", got)
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if err := LoadEnvFiles(a, b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestApplyEnvOverrides_FromEnv(t *testing.T) {
	t.Setenv("SEARX_URL", "")
	t.Setenv("SEARXNG_URL", "http://searxng.example")
	t.Setenv("GOOGLE_API_KEY", "k1, k2,,")
	t.Setenv("GOOGLE_SEARCH_ENGINE_ID", "cx")
	t.Setenv("PHRASE_MULTIPLIER", "2.5")
	t.Setenv("SEARCH_CONCURRENCY", "3")
	t.Setenv("REQUEST_TIMEOUT", "45s")
	t.Setenv("PROVIDERS", "file,wikipedia")
	t.Setenv("VERBOSE", "yes")

	cfg := DefaultConfig()
	ApplyEnvOverrides(&cfg)
	if cfg.SearxURL != "http://searxng.example" {
		t.Fatalf("SearxURL=%q, want fallback from SEARXNG_URL", cfg.SearxURL)
	}
	if len(cfg.GoogleKeys) != 2 || cfg.GoogleKeys[1] != "k2" || cfg.GoogleEngineID != "cx" {
		t.Fatalf("google settings: %v %q", cfg.GoogleKeys, cfg.GoogleEngineID)
	}
	if cfg.PhraseMultiplier != 2.5 || cfg.SearchConcurrency != 3 || cfg.RequestTimeout != 45*time.Second {
		t.Fatalf("numeric overrides not applied: %+v", cfg)
	}
	if len(cfg.Providers) != 2 || !cfg.Verbose {
		t.Fatalf("providers/verbose: %v %v", cfg.Providers, cfg.Verbose)
	}
	if cfg.FetchConcurrency != 10 {
		t.Fatalf("unset env should keep default, got %d", cfg.FetchConcurrency)
	}
}
