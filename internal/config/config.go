package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	DefaultUID       = "6651523309"
	DefaultBaseURL   = "https://m.weibo.cn"
	DefaultUserAgent = "Mozilla/5.0 (iPhone; CPU iPhone OS 17_4 like Mac OS X) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/17.4 Mobile/15E148 Safari/604.1"

	ModePublic = "public"
	ModeMock   = "mock"
)

// Config holds everything the scraper needs for one run
type Config struct {
	UID              string        `yaml:"uid"`
	Mode             string        `yaml:"mode"`
	UserAgent        string        `yaml:"user_agent"`
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	RequestInterval  time.Duration `yaml:"request_interval"`
	MockPostsPerPage int           `yaml:"mock_posts_per_page"`
	LogLevel         string        `yaml:"log_level"`
}

// Overrides carries values set explicitly on the command line
type Overrides struct {
	UID      string
	Mode     string
	LogLevel string
}

func Default() *Config {
	return &Config{
		UID:              DefaultUID,
		Mode:             ModePublic,
		UserAgent:        DefaultUserAgent,
		BaseURL:          DefaultBaseURL,
		Timeout:          10 * time.Second,
		RequestInterval:  time.Second,
		MockPostsPerPage: 10,
		LogLevel:         "info",
	}
}

// Load builds the config from defaults, an optional YAML file, the environment
// (including .env) and finally the command line overrides.
func Load(path string, o Overrides) (*Config, error) {
	_ = godotenv.Load()

	cfg := Default()
	if err := cfg.LoadFromFile(path); err != nil {
		return nil, err
	}
	if err := cfg.LoadFromEnv(); err != nil {
		return nil, err
	}
	cfg.Merge(o)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) LoadFromFile(path string) error {
	if path == "" {
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func (c *Config) LoadFromEnv() error {
	if v := os.Getenv("WEIBO_UID"); v != "" {
		c.UID = v
	}
	if v := os.Getenv("COLLECTOR_MODE"); v != "" {
		c.Mode = v
	}
	if v := os.Getenv("WEIBO_USER_AGENT"); v != "" {
		c.UserAgent = v
	}
	if v := os.Getenv("WEIBO_BASE_URL"); v != "" {
		c.BaseURL = v
	}
	if v := os.Getenv("WEIBO_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WEIBO_TIMEOUT: %w", err)
		}
		c.Timeout = d
	}
	if v := os.Getenv("WEIBO_REQUEST_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("WEIBO_REQUEST_INTERVAL: %w", err)
		}
		c.RequestInterval = d
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

func (c *Config) Merge(o Overrides) {
	if o.UID != "" {
		c.UID = o.UID
	}
	if o.Mode != "" {
		c.Mode = o.Mode
	}
	if o.LogLevel != "" {
		c.LogLevel = o.LogLevel
	}
}

func (c *Config) Validate() error {
	var errs []error

	if c.UID == "" {
		errs = append(errs, errors.New("uid is required"))
	} else if _, err := strconv.ParseUint(c.UID, 10, 64); err != nil {
		errs = append(errs, fmt.Errorf("uid %q is not numeric", c.UID))
	}

	switch c.Mode {
	case ModePublic:
		if c.UserAgent == "" {
			errs = append(errs, errors.New("user agent is required for public mode"))
		}
		if c.BaseURL == "" {
			errs = append(errs, errors.New("base url is required for public mode"))
		}
	case ModeMock:
		if c.MockPostsPerPage < 0 {
			errs = append(errs, errors.New("mock posts per page cannot be negative"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown mode %q (use 'public' or 'mock')", c.Mode))
	}

	if c.Timeout <= 0 {
		errs = append(errs, errors.New("timeout must be positive"))
	}
	if c.RequestInterval < 0 {
		errs = append(errs, errors.New("request interval cannot be negative"))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error", "disabled":
	default:
		errs = append(errs, fmt.Errorf("invalid log level %q", c.LogLevel))
	}

	return errors.Join(errs...)
}
