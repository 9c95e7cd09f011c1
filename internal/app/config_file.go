package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags and env.
type FileConfig struct {
	Google struct {
		Keys     []string `yaml:"keys" json:"keys"`
		EngineID string   `yaml:"engineId" json:"engineId"`
	} `yaml:"google" json:"google"`

	Brave struct {
		Keys []string `yaml:"keys" json:"keys"`
	} `yaml:"brave" json:"brave"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
	} `yaml:"searx" json:"searx"`

	Search struct {
		File      string   `yaml:"file" json:"file"`
		Providers []string `yaml:"providers" json:"providers"`
		Mailto    string   `yaml:"mailto" json:"mailto"`
		UA        string   `yaml:"ua" json:"ua"`
	} `yaml:"search" json:"search"`

	Embeddings struct {
		BaseURL string `yaml:"base" json:"base"`
		Model   string `yaml:"model" json:"model"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"embeddings" json:"embeddings"`

	Pipeline struct {
		PhraseMultiplier  float64       `yaml:"phraseMultiplier" json:"phraseMultiplier"`
		SearchConcurrency int           `yaml:"searchConcurrency" json:"searchConcurrency"`
		FetchConcurrency  int           `yaml:"fetchConcurrency" json:"fetchConcurrency"`
		MaxSources        int           `yaml:"maxSources" json:"maxSources"`
		PerDomain         int           `yaml:"perDomain" json:"perDomain"`
		RequestTimeout    time.Duration `yaml:"requestTimeout" json:"requestTimeout"`
		KeyCooldown       time.Duration `yaml:"keyCooldown" json:"keyCooldown"`
		RetryBudget       int           `yaml:"retryBudget" json:"retryBudget"`
	} `yaml:"pipeline" json:"pipeline"`

	Cache struct {
		TTL       time.Duration `yaml:"ttl" json:"ttl"`
		PageTTL   time.Duration `yaml:"pageTTL" json:"pageTTL"`
		PhraseTTL time.Duration `yaml:"phraseTTL" json:"phraseTTL"`
	} `yaml:"cache" json:"cache"`

	Domains struct {
		Allow []string `yaml:"allow" json:"allow"`
		Deny  []string `yaml:"deny" json:"deny"`
	} `yaml:"domains" json:"domains"`

	InsecureTLS   bool `yaml:"insecureTLS" json:"insecureTLS"`
	RespectRobots bool `yaml:"respectRobots" json:"respectRobots"`
	Verbose       bool `yaml:"verbose" json:"verbose"`
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays every value set in fc onto cfg. Call it on
// defaults before ApplyEnvOverrides and flags.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	setStrings := func(dst *[]string, v []string) {
		if len(v) > 0 {
			*dst = append([]string{}, v...)
		}
	}
	setString := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	setPositive := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	setDur := func(dst *time.Duration, v time.Duration) {
		if v > 0 {
			*dst = v
		}
	}

	setStrings(&cfg.GoogleKeys, fc.Google.Keys)
	setString(&cfg.GoogleEngineID, fc.Google.EngineID)
	setStrings(&cfg.BraveKeys, fc.Brave.Keys)
	setString(&cfg.SearxURL, fc.Searx.URL)
	setString(&cfg.SearxKey, fc.Searx.Key)
	setString(&cfg.FileSearchPath, fc.Search.File)
	setString(&cfg.Mailto, fc.Search.Mailto)
	setString(&cfg.UserAgent, fc.Search.UA)
	setStrings(&cfg.Providers, fc.Search.Providers)

	setString(&cfg.EmbeddingsBaseURL, fc.Embeddings.BaseURL)
	setString(&cfg.EmbeddingsModel, fc.Embeddings.Model)
	setString(&cfg.EmbeddingsAPIKey, fc.Embeddings.APIKey)

	if fc.Pipeline.PhraseMultiplier > 0 {
		cfg.PhraseMultiplier = fc.Pipeline.PhraseMultiplier
	}
	setPositive(&cfg.SearchConcurrency, fc.Pipeline.SearchConcurrency)
	setPositive(&cfg.FetchConcurrency, fc.Pipeline.FetchConcurrency)
	setPositive(&cfg.MaxSourcesPerPhrase, fc.Pipeline.MaxSources)
	setPositive(&cfg.PerDomainCap, fc.Pipeline.PerDomain)
	setPositive(&cfg.RetryBudget, fc.Pipeline.RetryBudget)
	setDur(&cfg.RequestTimeout, fc.Pipeline.RequestTimeout)
	setDur(&cfg.KeyCooldown, fc.Pipeline.KeyCooldown)

	setDur(&cfg.CacheTTL, fc.Cache.TTL)
	setDur(&cfg.PageCacheTTL, fc.Cache.PageTTL)
	setDur(&cfg.PhraseCacheTTL, fc.Cache.PhraseTTL)

	setStrings(&cfg.DomainAllowlist, fc.Domains.Allow)
	setStrings(&cfg.DomainDenylist, fc.Domains.Deny)

	if fc.InsecureTLS {
		cfg.InsecureTLS = true
	}
	if fc.RespectRobots {
		cfg.RespectRobots = true
	}
	if fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal validation of the settings.
func ValidateConfig(cfg Config) error {
	if cfg.PhraseMultiplier <= 0 {
		return errors.New("config: phrase multiplier must be positive")
	}
	if cfg.SearchConcurrency < 0 || cfg.FetchConcurrency < 0 || cfg.MaxSourcesPerPhrase < 0 || cfg.PerDomainCap < 0 || cfg.RetryBudget < 0 || cfg.BatchSize < 0 {
		return errors.New("config: negative limits are not allowed")
	}
	if cfg.RequestTimeout < 0 || cfg.KeyCooldown < 0 || cfg.CacheTTL < 0 || cfg.PageCacheTTL < 0 || cfg.PhraseCacheTTL < 0 {
		return errors.New("config: negative durations are not allowed")
	}
	if len(cfg.GoogleKeys) > 0 && strings.TrimSpace(cfg.GoogleEngineID) == "" {
		return errors.New("config: google keys require an engine id (or set GOOGLE_SEARCH_ENGINE_ID)")
	}
	return nil
}
