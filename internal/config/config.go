package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v2"
)

const (
	DefaultConcurrency = 1
	DefaultTimeout     = 30 * time.Second
	DefaultDir         = "configs"
)

type Config struct {
	App      AppConfig      `yaml:"app"`
	Scraping ScrapingConfig `yaml:"scraping"`
}

type AppConfig struct {
	Name       string `yaml:"name"`
	Env        string `yaml:"env"`
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	StatusAddr string `yaml:"status_addr"`
}

type ScrapingConfig struct {
	Headers HeadersConfig `yaml:"headers"`
	Sites   []SiteConfig  `yaml:"sites"`
}

// HeadersConfig is the fixed browser-like header set sent with every request.
type HeadersConfig struct {
	UserAgent               string `yaml:"user_agent"`
	Accept                  string `yaml:"accept"`
	AcceptLanguage          string `yaml:"accept_language"`
	UpgradeInsecureRequests string `yaml:"upgrade_insecure_requests"`
}

type SiteConfig struct {
	Name        string        `yaml:"name"`
	BaseURL     string        `yaml:"base_url"`
	StartPath   string        `yaml:"start_path"`
	Concurrency int           `yaml:"concurrency"`
	Timeout     time.Duration `yaml:"timeout"`
	Delay       time.Duration `yaml:"delay"`
	MaxPages    int           `yaml:"max_pages"`
	Markers     MarkersConfig `yaml:"markers"`
}

// MarkersConfig holds the texts used to classify labeled spans on a detail page.
type MarkersConfig struct {
	Price string `yaml:"price"`
	Area  string `yaml:"area"`
	Rooms string `yaml:"rooms"`
}

// DefaultHeaders mirrors a desktop Chrome request.
func DefaultHeaders() HeadersConfig {
	return HeadersConfig{
		UserAgent:               "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/56.0.2924.87 Safari/537.36",
		Accept:                  "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8",
		AcceptLanguage:          "en-GB,en;q=0.8,en-US;q=0.6,es;q=0.4,ca;q=0.2",
		UpgradeInsecureRequests: "1",
	}
}

func DefaultMarkers() MarkersConfig {
	return MarkersConfig{Price: "€/mes", Area: "m²", Rooms: "hab."}
}

// LoadConfig reads app.yaml and scraping.yaml from CONFIG_DIR (or "configs"),
// loads an optional .env file and applies environment overrides.
func LoadConfig(envPath ...string) (*Config, error) {
	if err := godotenv.Load(envPath...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
	}

	dir := getEnvAsString("CONFIG_DIR", DefaultDir)
	cfg, err := LoadDir(dir)
	if err != nil {
		return nil, err
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadDir reads the YAML files without looking at the environment.
func LoadDir(dir string) (*Config, error) {
	cfg := &Config{}

	basePath := filepath.Join(dir, "app.yaml")
	yamlFile, err := os.ReadFile(basePath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", basePath, err)
	}
	if err := yaml.Unmarshal(yamlFile, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", basePath, err)
	}

	scrapingPath := filepath.Join(dir, "scraping.yaml")
	scrapingFile, err := os.ReadFile(scrapingPath)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", scrapingPath, err)
	}
	if err := yaml.Unmarshal(scrapingFile, &cfg.Scraping); err != nil {
		return nil, fmt.Errorf("parse %s: %w", scrapingPath, err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) applyDefaults() {
	def := DefaultHeaders()
	h := &c.Scraping.Headers
	if h.UserAgent == "" {
		h.UserAgent = def.UserAgent
	}
	if h.Accept == "" {
		h.Accept = def.Accept
	}
	if h.AcceptLanguage == "" {
		h.AcceptLanguage = def.AcceptLanguage
	}
	if h.UpgradeInsecureRequests == "" {
		h.UpgradeInsecureRequests = def.UpgradeInsecureRequests
	}

	markers := DefaultMarkers()
	for i := range c.Scraping.Sites {
		s := &c.Scraping.Sites[i]
		if s.Concurrency <= 0 {
			s.Concurrency = DefaultConcurrency
		}
		if s.Timeout <= 0 {
			s.Timeout = DefaultTimeout
		}
		if s.Markers.Price == "" {
			s.Markers.Price = markers.Price
		}
		if s.Markers.Area == "" {
			s.Markers.Area = markers.Area
		}
		if s.Markers.Rooms == "" {
			s.Markers.Rooms = markers.Rooms
		}
	}
}

func (c *Config) applyEnv() error {
	c.App.LogLevel = getEnvAsString("LOG_LEVEL", c.App.LogLevel)
	c.App.LogFormat = getEnvAsString("LOG_FORMAT", c.App.LogFormat)
	c.App.StatusAddr = getEnvAsString("STATUS_ADDR", c.App.StatusAddr)

	if names := getEnvAsString("CRAWLER_SITE", ""); names != "" {
		sites, err := c.selectSites(strings.Split(names, ","))
		if err != nil {
			return err
		}
		c.Scraping.Sites = sites
	}

	for i := range c.Scraping.Sites {
		s := &c.Scraping.Sites[i]
		var err error
		if s.Concurrency, err = getEnvAsInt("CRAWLER_CONCURRENCY", s.Concurrency); err != nil {
			return err
		}
		if s.MaxPages, err = getEnvAsInt("CRAWLER_MAX_PAGES", s.MaxPages); err != nil {
			return err
		}
		if s.Timeout, err = getEnvAsDuration("CRAWLER_TIMEOUT", s.Timeout); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) selectSites(names []string) ([]SiteConfig, error) {
	var selected []SiteConfig
	for _, raw := range names {
		name := strings.TrimSpace(raw)
		if name == "" {
			continue
		}
		site, ok := c.Site(name)
		if !ok {
			return nil, fmt.Errorf("unknown site %q in CRAWLER_SITE", name)
		}
		selected = append(selected, site)
	}
	return selected, nil
}

// Site looks a site profile up by name.
func (c *Config) Site(name string) (SiteConfig, bool) {
	for _, s := range c.Scraping.Sites {
		if s.Name == name {
			return s, true
		}
	}
	return SiteConfig{}, false
}

// Validate checks the loaded configuration.
func (c *Config) Validate() error {
	if len(c.Scraping.Sites) == 0 {
		return errors.New("no sites configured")
	}
	seen := make(map[string]bool)
	for _, s := range c.Scraping.Sites {
		if s.Name == "" {
			return errors.New("site without a name")
		}
		if seen[s.Name] {
			return fmt.Errorf("duplicate site %q", s.Name)
		}
		seen[s.Name] = true

		if _, err := s.ParsedBaseURL(); err != nil {
			return fmt.Errorf("site %q: %w", s.Name, err)
		}
		if s.StartPath == "" {
			return fmt.Errorf("site %q: start_path is required", s.Name)
		}
		if s.Concurrency < 1 {
			return fmt.Errorf("site %q: concurrency must be at least 1", s.Name)
		}
		if s.MaxPages < 0 {
			return fmt.Errorf("site %q: max_pages cannot be negative", s.Name)
		}
	}
	return nil
}

// ParsedBaseURL returns the base URL, which must be absolute http(s).
func (s SiteConfig) ParsedBaseURL() (*url.URL, error) {
	u, err := url.Parse(s.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base_url %q: %w", s.BaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("base_url %q must be an absolute http(s) URL", s.BaseURL)
	}
	return u, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) (int, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not an integer: %w", key, valueStr, err)
	}
	return valueInt, nil
}

func getEnvAsDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	valueStr, exists := os.LookupEnv(key)
	if !exists || valueStr == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(valueStr)
	if err != nil {
		return 0, fmt.Errorf("%s=%q is not a duration: %w", key, valueStr, err)
	}
	return d, nil
}
