// Package config loads tlunit settings from defaults, an optional YAML
// project file, a .env file and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the project file read when Load is given no path.
const DefaultFile = "tlunit.yaml"

// Config holds every setting the CLI needs.
type Config struct {
	TargetLang string `yaml:"target_lang"`
	SourceLang string `yaml:"source_lang"`

	Provider     string `yaml:"provider"` // openai or deepseek
	APIKey       string `yaml:"-"`
	Model        string `yaml:"model"`
	BaseURL      string `yaml:"base_url"`
	SystemPrompt string `yaml:"prompt"`
	Context      string `yaml:"context"`
	Style        string `yaml:"style"`

	ExcludedTerms []string `yaml:"excluded_terms"`
	BlacklistFile string   `yaml:"blacklist_file"`
	GlossaryFile  string   `yaml:"glossary_file"`

	BilingualThreshold int `yaml:"bilingual_threshold"`

	RedisURL    string `yaml:"redis_url"`
	DatabaseURL string `yaml:"database_url"`
	CacheTTL    int    `yaml:"cache_ttl"` // seconds, 0 keeps entries forever

	Workers           int `yaml:"workers"`
	RequestsPerMinute int `yaml:"requests_per_minute"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		TargetLang:         "zh_CN",
		SourceLang:         "en",
		Provider:           "openai",
		Model:              "gpt-4o-mini",
		Style:              "neutral",
		BilingualThreshold: 50,
		Workers:            4,
	}
}

// Load builds the configuration. An empty path reads DefaultFile if it
// exists; an explicit path must exist. A missing .env file is ignored.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	if err := cfg.loadFile(path); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("reading .env: %w", err)
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from the command line
	if err != nil {
		return fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parsing config %s: %w", path, err)
	}

	// Relative file references are resolved against the project file.
	dir := filepath.Dir(path)
	c.BlacklistFile = resolve(dir, c.BlacklistFile)
	c.GlossaryFile = resolve(dir, c.GlossaryFile)
	return nil
}

func resolve(dir, p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(dir, p)
}

func (c *Config) applyEnv() {
	c.TargetLang = getEnv("TLUNIT_TARGET_LANG", c.TargetLang)
	c.SourceLang = getEnv("TLUNIT_SOURCE_LANG", c.SourceLang)
	c.Provider = getEnv("TLUNIT_PROVIDER", c.Provider)
	c.Model = getEnv("TLUNIT_MODEL", c.Model)
	c.BaseURL = getEnv("TLUNIT_BASE_URL", c.BaseURL)
	c.Context = getEnv("TLUNIT_CONTEXT", c.Context)
	c.BlacklistFile = getEnv("TLUNIT_BLACKLIST_FILE", c.BlacklistFile)
	c.GlossaryFile = getEnv("TLUNIT_GLOSSARY_FILE", c.GlossaryFile)
	c.RedisURL = getEnv("TLUNIT_REDIS_URL", c.RedisURL)
	c.DatabaseURL = getEnv("TLUNIT_DATABASE_URL", c.DatabaseURL)
	c.BilingualThreshold = getEnvInt("TLUNIT_BILINGUAL_THRESHOLD", c.BilingualThreshold)
	c.CacheTTL = getEnvInt("TLUNIT_CACHE_TTL", c.CacheTTL)
	c.Workers = getEnvInt("TLUNIT_WORKERS", c.Workers)
	c.RequestsPerMinute = getEnvInt("TLUNIT_REQUESTS_PER_MINUTE", c.RequestsPerMinute)

	fallback := "OPENAI_API_KEY"
	if strings.EqualFold(c.Provider, "deepseek") {
		fallback = "DEEPSEEK_API_KEY"
	}
	c.APIKey = getEnv("TLUNIT_API_KEY", getEnv(fallback, c.APIKey))
}

// Validate rejects settings no command can work with.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Provider) {
	case "openai", "deepseek":
	default:
		return fmt.Errorf("unknown provider %q", c.Provider)
	}
	if c.TargetLang == "" {
		return errors.New("target language is empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.BilingualThreshold < 0 || c.CacheTTL < 0 || c.RequestsPerMinute < 0 {
		return errors.New("thresholds, TTL and rate must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// GlossaryEntry is one preferred translation.
type GlossaryEntry struct {
	Term       string `json:"term" yaml:"term"`
	Definition string `json:"definition" yaml:"definition"`
	Context    string `json:"context,omitempty" yaml:"context,omitempty"`
}

// LoadGlossary reads a glossary file: either a term-to-translation map or a
// list of GlossaryEntry, as JSON or YAML by extension. Later entries win.
func LoadGlossary(path string) (map[string]string, error) {
	data, err := os.ReadFile(path) // #nosec G304 - path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("reading glossary %s: %w", path, err)
	}

	unmarshal := json.Unmarshal
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		unmarshal = yaml.Unmarshal
	}

	var asMap map[string]string
	if err := unmarshal(data, &asMap); err == nil {
		return dropEmpty(asMap), nil
	}

	var entries []GlossaryEntry
	if err := unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing glossary %s: %w", path, err)
	}

	glossary := make(map[string]string, len(entries))
	for _, e := range entries {
		glossary[strings.TrimSpace(e.Term)] = strings.TrimSpace(e.Definition)
	}
	return dropEmpty(glossary), nil
}

func dropEmpty(m map[string]string) map[string]string {
	for k, v := range m {
		if k == "" || v == "" {
			delete(m, k)
		}
	}
	return m
}
