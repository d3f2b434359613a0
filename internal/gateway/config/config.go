// Package config loads the server configuration once at startup: defaults,
// then an optional YAML file, then .env and process environment overrides.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultPath is read when no path is given; it may be absent.
const DefaultPath = "config.yaml"

const (
	BackendLlamaCpp = "llamacpp"
	BackendProvider = "provider"
)

type Config struct {
	Env         string          `yaml:"env"`
	Timezone    string          `yaml:"timezone"`
	Server      ServerConfig    `yaml:"server"`
	DatabaseURL string          `yaml:"database_url"`
	SQLitePath  string          `yaml:"sqlite_path"`
	LLM         LLMConfig       `yaml:"llm"`
	LlamaCpp    *LlamaCppConfig `yaml:"llamacpp"`
	Provider    *ProviderConfig `yaml:"provider"`
	Pipeline    PipelineConfig  `yaml:"pipeline"`
	Archive     ArchiveConfig   `yaml:"archive"`
	Cache       CacheConfig     `yaml:"cache"`

	location *time.Location
}

type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	UserHeader      string        `yaml:"user_header"`
	DefaultUser     string        `yaml:"default_user"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

type LLMConfig struct {
	Backend string        `yaml:"llm_provider"`
	Timeout time.Duration `yaml:"timeout"`
	RPS     float64       `yaml:"rps"`
	Burst   int           `yaml:"burst"`

	// MaxAttempts counts the first call; 1 disables retries.
	MaxAttempts  int           `yaml:"max_attempts"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

type LlamaCppConfig struct {
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Temperature float64 `yaml:"temperature"`
	APIKey      string  `yaml:"api_key"`
}

// UnmarshalYAML keeps the default temperature when the key is absent.
func (c *LlamaCppConfig) UnmarshalYAML(value *yaml.Node) error {
	type plain LlamaCppConfig
	p := plain{Temperature: defaultTemperature}
	if err := value.Decode(&p); err != nil {
		return err
	}
	*c = LlamaCppConfig(p)
	return nil
}

type ProviderConfig struct {
	BaseURL     string   `yaml:"base_url"`
	ModelID     string   `yaml:"model_id"`
	APIKey      string   `yaml:"api_key"`
	Temperature *float64 `yaml:"temperature"`
}

type PipelineConfig struct {
	DirectThresholdChars int     `yaml:"direct_threshold_chars"`
	ChunkBudgetChars     int     `yaml:"chunk_budget_chars"`
	EntryOverheadChars   int     `yaml:"entry_overhead_chars"`
	MapConcurrency       int     `yaml:"map_concurrency"`
	SummaryTemperature   float64 `yaml:"summary_temperature"`
}

type ArchiveConfig struct {
	Enabled   bool   `yaml:"enabled"`
	Endpoint  string `yaml:"endpoint"`
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	UseSSL    bool   `yaml:"use_ssl"`
}

type CacheConfig struct {
	Size int           `yaml:"size"`
	TTL  time.Duration `yaml:"ttl"`
}

const defaultTemperature = 0.3

func Default() Config {
	return Config{
		Env: "local",
		Server: ServerConfig{
			Addr:            ":8787",
			UserHeader:      "X-User-Id",
			DefaultUser:     "local",
			ShutdownTimeout: 10 * time.Second,
		},
		LLM: LLMConfig{
			Backend:      BackendLlamaCpp,
			Timeout:      120 * time.Second,
			Burst:        1,
			MaxAttempts:  1,
			RetryBackoff: 500 * time.Millisecond,
		},
		Pipeline: PipelineConfig{
			DirectThresholdChars: 18000,
			ChunkBudgetChars:     12000,
			EntryOverheadChars:   64,
			MapConcurrency:       1,
			SummaryTemperature:   0.2,
		},
		Archive: ArchiveConfig{
			Region: "us-east-1",
			Bucket: "lifestream-reports",
		},
		Cache: CacheConfig{
			Size: 1024,
			TTL:  5 * time.Minute,
		},
	}
}

// Load builds the configuration. An empty path means LIFESTREAM_CONFIG or
// DefaultPath, and a missing default file is not an error.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	explicit := strings.TrimSpace(path) != ""
	if !explicit {
		path = strings.TrimSpace(os.Getenv("LIFESTREAM_CONFIG"))
		explicit = path != ""
	}
	if path == "" {
		path = DefaultPath
	}

	cfg := Default()
	raw, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the selected backend's section and resolves the timezone.
func (c *Config) Validate() error {
	switch c.LLM.Backend {
	case BackendLlamaCpp:
		if c.LlamaCpp == nil {
			return fmt.Errorf("llamacpp config is required when llm.llm_provider=llamacpp")
		}
		if err := checkURL("llamacpp.base_url", c.LlamaCpp.BaseURL); err != nil {
			return err
		}
		if strings.TrimSpace(c.LlamaCpp.Model) == "" {
			return fmt.Errorf("llamacpp.model is required")
		}
		if err := checkTemperature("llamacpp.temperature", c.LlamaCpp.Temperature); err != nil {
			return err
		}
	case BackendProvider:
		if c.Provider == nil {
			return fmt.Errorf("provider config is required when llm.llm_provider=provider")
		}
		if err := checkURL("provider.base_url", c.Provider.BaseURL); err != nil {
			return err
		}
		if strings.TrimSpace(c.Provider.ModelID) == "" {
			return fmt.Errorf("provider.model_id is required")
		}
		if strings.TrimSpace(c.Provider.APIKey) == "" {
			return fmt.Errorf("provider.api_key is required")
		}
		if c.Provider.Temperature != nil {
			if err := checkTemperature("provider.temperature", *c.Provider.Temperature); err != nil {
				return err
			}
		}
	default:
		return fmt.Errorf("llm.llm_provider must be %q or %q, got %q", BackendLlamaCpp, BackendProvider, c.LLM.Backend)
	}
	if c.LLM.RPS < 0 || c.LLM.Burst < 0 {
		return fmt.Errorf("llm.rps and llm.burst must not be negative")
	}
	if c.LLM.MaxAttempts < 1 {
		return fmt.Errorf("llm.max_attempts must be at least 1")
	}
	if c.Pipeline.ChunkBudgetChars <= 0 || c.Pipeline.DirectThresholdChars <= 0 {
		return fmt.Errorf("pipeline budgets must be positive")
	}
	if err := checkTemperature("pipeline.summary_temperature", c.Pipeline.SummaryTemperature); err != nil {
		return err
	}
	if c.DatabaseURL != "" && c.SQLitePath != "" {
		return fmt.Errorf("set only one of database_url and sqlite_path")
	}
	if c.Archive.Enabled && (c.Archive.Endpoint == "" || c.Archive.AccessKey == "" || c.Archive.SecretKey == "") {
		return fmt.Errorf("archive.endpoint, archive.access_key and archive.secret_key are required when the archive is enabled")
	}

	loc := time.Local
	if tz := strings.TrimSpace(c.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return fmt.Errorf("timezone %q: %w", tz, err)
		}
		loc = l
	}
	c.location = loc
	return nil
}

// Location is the zone that decides calendar days.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}

// ReportTemperature is the selected backend's sampling temperature.
func (c *Config) ReportTemperature() float64 {
	switch c.LLM.Backend {
	case BackendProvider:
		if c.Provider != nil && c.Provider.Temperature != nil {
			return *c.Provider.Temperature
		}
	case BackendLlamaCpp:
		if c.LlamaCpp != nil {
			return c.LlamaCpp.Temperature
		}
	}
	return defaultTemperature
}

func checkURL(field, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL, got %q", field, raw)
	}
	return nil
}

func checkTemperature(field string, v float64) error {
	if v < 0 || v > 2 {
		return fmt.Errorf("%s must be within [0, 2], got %v", field, v)
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func parseBoolDefault(raw string, def bool) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(raw))
	if err != nil {
		return def
	}
	return v
}
