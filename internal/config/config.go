package config

import (
	"embed"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigFS embed.FS

// AIConfig selects the completion provider used for summaries and keywords.
type AIConfig struct {
	Provider string `yaml:"provider"` // "openai" or "claude"
	APIKey   string `yaml:"api_key"`
	Model    string `yaml:"model"`
}

// Output describes the published per-area feed files.
type Output struct {
	Dir         string `yaml:"dir"`
	TitleSuffix string `yaml:"title_suffix"`
	BaseLink    string `yaml:"base_link"`
	Description string `yaml:"description"`
	Language    string `yaml:"language"`
}

type Config struct {
	Feeds        []string  `yaml:"feeds"`
	Areas        []string  `yaml:"areas"`
	Keywords     []string  `yaml:"keywords,omitempty"` // seed keywords merged into every area
	Throttle     string    `yaml:"throttle"`
	FetchWorkers int       `yaml:"fetch_workers"`
	Retention    string    `yaml:"retention,omitempty"`
	DBPath       string    `yaml:"db_path,omitempty"`
	KeywordCache string    `yaml:"keyword_cache,omitempty"`
	AI           *AIConfig `yaml:"ai,omitempty"`
	Output       Output    `yaml:"output"`
}

// AIEnabled returns true if AI is configured with a valid API key.
func (c *Config) AIEnabled() bool {
	return c.AI != nil && c.AIKey() != ""
}

// AIKey returns the resolved API key (config or env var).
func (c *Config) AIKey() string {
	if c.AI != nil && c.AI.APIKey != "" {
		return c.AI.APIKey
	}
	return os.Getenv("CTIC_AI_KEY")
}

// ThrottleDuration returns the minimum interval between oracle calls.
func (c *Config) ThrottleDuration() time.Duration {
	d, err := time.ParseDuration(c.Throttle)
	if err != nil || d < 0 {
		return 10 * time.Second
	}
	return d
}

// RetentionDuration returns the article retention window. Zero means
// articles are kept forever.
func (c *Config) RetentionDuration() time.Duration {
	if c.Retention == "" {
		return 0
	}
	// Support "Nd" day syntax
	if len(c.Retention) > 1 && c.Retention[len(c.Retention)-1] == 'd' {
		var days int
		if _, err := fmt.Sscanf(c.Retention, "%dd", &days); err == nil {
			return time.Duration(days) * 24 * time.Hour
		}
	}
	d, err := time.ParseDuration(c.Retention)
	if err != nil {
		return 0
	}
	return d
}

// Workers returns the fetch worker pool size, defaulting to 4.
func (c *Config) Workers() int {
	if c.FetchWorkers <= 0 {
		return 4
	}
	return c.FetchWorkers
}

func (c *Config) DatabasePath() string {
	if c.DBPath != "" {
		return c.DBPath
	}
	return filepath.Join(xdg.DataHome, "ctic-news-feed", "articles.db")
}

func (c *Config) KeywordCachePath() string {
	if c.KeywordCache != "" {
		return c.KeywordCache
	}
	return filepath.Join(xdg.DataHome, "ctic-news-feed", "keywords.json")
}

func (c *Config) OutputDir() string {
	if c.Output.Dir == "" {
		return "output"
	}
	return c.Output.Dir
}

func (c *Config) Language() string {
	if c.Output.Language == "" {
		return "en"
	}
	return c.Output.Language
}

func DefaultConfigPath() string {
	return filepath.Join(xdg.ConfigHome, "ctic-news-feed", "config.yaml")
}

func loadDefaults() (*Config, error) {
	data, err := defaultConfigFS.ReadFile("default_config.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded config: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded config: %w", err)
	}
	return &cfg, nil
}

func Load(path string) (*Config, error) {
	defaults, err := loadDefaults()
	if err != nil {
		return nil, err
	}

	if path == "" {
		path = DefaultConfigPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// Write defaults to config path on first run
			if err := writeDefaults(path); err != nil {
				// Non-fatal: just use embedded defaults
				return defaults, nil
			}
			return defaults, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func writeDefaults(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, _ := defaultConfigFS.ReadFile("default_config.yaml")
	return os.WriteFile(path, data, 0o644)
}

func validate(cfg *Config) error {
	if len(cfg.Feeds) == 0 {
		return fmt.Errorf("at least one feed url is required")
	}
	for _, f := range cfg.Feeds {
		u, err := url.Parse(f)
		if err != nil {
			return fmt.Errorf("feed %q: invalid url: %w", f, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("feed %q: url scheme must be http or https, got %q", f, u.Scheme)
		}
	}
	for i, a := range cfg.Areas {
		if a == "" {
			return fmt.Errorf("area %d: name is required", i)
		}
	}
	if cfg.AI != nil {
		switch cfg.AI.Provider {
		case "openai", "claude":
		default:
			return fmt.Errorf("unknown AI provider: %q (valid: openai, claude)", cfg.AI.Provider)
		}
	}
	return nil
}
