package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	LogLevelDebug = "debug"
	LogLevelInfo  = "info"
	LogLevelWarn  = "warn"
	LogLevelError = "error"

	defaultListen        = ":8080"
	defaultURL           = "http://localhost:8080"
	defaultRedisURL      = "redis://localhost:6379/0"
	defaultHFBaseURL     = "https://huggingface.co"
	defaultHFTimeout     = 30 * time.Second
	defaultDatasetLimit  = 100
	defaultLocalWorkDir  = "./courses"
	defaultLocalURL      = "/media"
	defaultDescFileName  = "description.md"
	defaultDumpFileName  = "stats.yml"
	defaultRecentLimit   = 6
	defaultPopularLimit  = 5
	defaultSettingsKeyHF = "huggingface"

	envListen     = "EDUVANCE_LISTEN"
	envRedisURL   = "EDUVANCE_REDIS_URL"
	envAdminToken = "EDUVANCE_ADMIN_TOKEN"
	envLogLevel   = "EDUVANCE_LOG_LEVEL"
	envHFToken    = "HF_TOKEN"
)

type HFConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	DatasetLimit int           `yaml:"dataset_limit"`
	SettingsKey  string        `yaml:"settings_key"`
	// SeedToken is used when no token has been stored in settings yet.
	SeedToken string `yaml:"-"`
}

type LocalConfig struct {
	WorkDir      string   `yaml:"work_dir"`
	URL          string   `yaml:"url"`
	DescFileName string   `yaml:"desc_filename"`
	SkipFiles    []string `yaml:"skip_files"`
}

type PortalConfig struct {
	RecentLimit  int `yaml:"recent_limit"`
	PopularLimit int `yaml:"popular_limit"`
}

type Config struct {
	URL          string       `yaml:"url"`
	Listen       string       `yaml:"listen"`
	LogLevel     string       `yaml:"log_level"`
	RedisURL     string       `yaml:"redis_url"`
	AdminToken   string       `yaml:"admin_token"`
	DumpFileName string       `yaml:"dump_filename"`
	HuggingFace  HFConfig     `yaml:"huggingface"`
	Local        LocalConfig  `yaml:"local"`
	Portal       PortalConfig `yaml:"portal"`
}

// MustLoad reads .env (if any), the yaml file and the environment overrides.
// A missing config file is not fatal: defaults and environment are used.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(err)
	}

	return cfg
}

func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("cannot load .env: %w", err)
	}

	cfg := &Config{}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
		}
	case errors.Is(err, os.ErrNotExist):
	default:
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	cfg.applyEnv()
	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() {
	if v := os.Getenv(envListen); v != "" {
		c.Listen = v
	}
	if v := os.Getenv(envRedisURL); v != "" {
		c.RedisURL = v
	}
	if v := os.Getenv(envAdminToken); v != "" {
		c.AdminToken = v
	}
	if v := os.Getenv(envLogLevel); v != "" {
		c.LogLevel = v
	}
	c.HuggingFace.SeedToken = os.Getenv(envHFToken)
}

func (c *Config) SetDefaults() {
	if c.Listen == "" {
		c.Listen = defaultListen
	}
	if c.URL == "" {
		c.URL = defaultURL
	}
	if c.LogLevel == "" {
		c.LogLevel = LogLevelInfo
	}
	if c.RedisURL == "" {
		c.RedisURL = defaultRedisURL
	}
	if c.DumpFileName == "" {
		c.DumpFileName = defaultDumpFileName
	}

	if c.HuggingFace.BaseURL == "" {
		c.HuggingFace.BaseURL = defaultHFBaseURL
	}
	if c.HuggingFace.Timeout == 0 {
		c.HuggingFace.Timeout = defaultHFTimeout
	}
	if c.HuggingFace.DatasetLimit == 0 {
		c.HuggingFace.DatasetLimit = defaultDatasetLimit
	}
	if c.HuggingFace.SettingsKey == "" {
		c.HuggingFace.SettingsKey = defaultSettingsKeyHF
	}

	if c.Local.WorkDir == "" {
		c.Local.WorkDir = defaultLocalWorkDir
	}
	if c.Local.URL == "" {
		c.Local.URL = defaultLocalURL
	}
	if c.Local.DescFileName == "" {
		c.Local.DescFileName = defaultDescFileName
	}

	if c.Portal.RecentLimit == 0 {
		c.Portal.RecentLimit = defaultRecentLimit
	}
	if c.Portal.PopularLimit == 0 {
		c.Portal.PopularLimit = defaultPopularLimit
	}
}

func (c *Config) Validate() error {
	switch c.LogLevel {
	case LogLevelDebug, LogLevelInfo, LogLevelWarn, LogLevelError:
	default:
		return fmt.Errorf("unknown log level %q", c.LogLevel)
	}

	if c.AdminToken == "" {
		return fmt.Errorf("admin_token must be set")
	}

	if c.HuggingFace.DatasetLimit < 1 {
		return fmt.Errorf("huggingface.dataset_limit must be positive, got %d", c.HuggingFace.DatasetLimit)
	}

	if c.HuggingFace.Timeout < 0 {
		return fmt.Errorf("huggingface.timeout must not be negative")
	}

	if c.Portal.RecentLimit < 1 || c.Portal.PopularLimit < 1 {
		return fmt.Errorf("portal limits must be positive")
	}

	return nil
}

func (c *Config) HFConfig() *HFConfig {
	return &c.HuggingFace
}

func (c *Config) LocalConfig() *LocalConfig {
	return &c.Local
}
