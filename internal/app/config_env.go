package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides overrides cfg fields with environment variables when the
// corresponding env vars are set. Env takes precedence over a config file;
// flags remain highest precedence.
func ApplyEnvOverrides(cfg *Config) {
	if cfg == nil {
		return
	}

	if v := splitList(os.Getenv("GOOGLE_API_KEY")); len(v) > 0 {
		cfg.GoogleKeys = v
	}
	if v := os.Getenv("GOOGLE_SEARCH_ENGINE_ID"); v != "" {
		cfg.GoogleEngineID = v
	}
	if v := splitList(os.Getenv("BRAVE_API_KEY")); len(v) > 0 {
		cfg.BraveKeys = v
	}
	// Support both SEARX_URL and SEARXNG_URL; prefer SEARX_URL if set
	if v := os.Getenv("SEARXNG_URL"); v != "" {
		cfg.SearxURL = v
	}
	if v := os.Getenv("SEARX_URL"); v != "" {
		cfg.SearxURL = v
	}
	if v := os.Getenv("SEARXNG_KEY"); v != "" {
		cfg.SearxKey = v
	}
	if v := os.Getenv("SEARX_KEY"); v != "" {
		cfg.SearxKey = v
	}
	if v := os.Getenv("SEARCH_FILE"); v != "" {
		cfg.FileSearchPath = v
	}
	if v := splitList(os.Getenv("PROVIDERS")); len(v) > 0 {
		cfg.Providers = v
	}
	if v := os.Getenv("CROSSREF_MAILTO"); v != "" {
		cfg.Mailto = v
	}

	if v := os.Getenv("EMBEDDINGS_BASE_URL"); v != "" {
		cfg.EmbeddingsBaseURL = v
	}
	if v := os.Getenv("EMBEDDINGS_MODEL"); v != "" {
		cfg.EmbeddingsModel = v
	}
	if v := os.Getenv("EMBEDDINGS_API_KEY"); v != "" {
		cfg.EmbeddingsAPIKey = v
	}

	if s := os.Getenv("PHRASE_MULTIPLIER"); s != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			cfg.PhraseMultiplier = f
		}
	}
	setInt(&cfg.SearchConcurrency, "SEARCH_CONCURRENCY")
	setInt(&cfg.FetchConcurrency, "FETCH_CONCURRENCY")

	setDuration(&cfg.RequestTimeout, "REQUEST_TIMEOUT")
	setDuration(&cfg.KeyCooldown, "KEY_COOLDOWN")
	setDuration(&cfg.CacheTTL, "CACHE_TTL")
	setDuration(&cfg.PageCacheTTL, "PAGE_CACHE_TTL")
	setDuration(&cfg.PhraseCacheTTL, "PHRASE_CACHE_TTL")

	setBool(&cfg.RespectRobots, "RESPECT_ROBOTS")
	setBool(&cfg.InsecureTLS, "INSECURE_TLS")
	setBool(&cfg.Verbose, "VERBOSE")
}

func setBool(dst *bool, key string) {
	if s := strings.ToLower(strings.TrimSpace(os.Getenv(key))); s != "" {
		*dst = s == "1" || s == "true" || s == "yes" || s == "on"
	}
}

func setInt(dst *int, key string) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if n, err := strconv.Atoi(s); err == nil {
			*dst = n
		}
	}
}

func setDuration(dst *time.Duration, key string) {
	if s := strings.TrimSpace(os.Getenv(key)); s != "" {
		if d, err := time.ParseDuration(s); err == nil {
			*dst = d
		}
	}
}

// splitList splits a comma separated list, dropping blanks.
func splitList(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
