package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testApp = `
app:
  name: test
  log_level: debug
`

const testScraping = `
sites:
  - name: one
    base_url: "https://example.com"
    start_path: "/list/"
  - name: two
    base_url: "https://example.org"
    start_path: "/other/"
    concurrency: 3
    timeout: 5s
    max_pages: 10
    markers:
      price: "$/mo"
`

func writeConfigDir(t *testing.T, app, scraping string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "app.yaml"), []byte(app), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scraping.yaml"), []byte(scraping), 0o644))
	return dir
}

func TestLoadDir_Defaults(t *testing.T) {
	dir := writeConfigDir(t, testApp, testScraping)

	cfg, err := LoadDir(dir)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "test", cfg.App.Name)
	assert.Equal(t, DefaultHeaders(), cfg.Scraping.Headers)
	require.Len(t, cfg.Scraping.Sites, 2)

	one := cfg.Scraping.Sites[0]
	assert.Equal(t, DefaultConcurrency, one.Concurrency)
	assert.Equal(t, DefaultTimeout, one.Timeout)
	assert.Equal(t, DefaultMarkers(), one.Markers)

	two := cfg.Scraping.Sites[1]
	assert.Equal(t, 3, two.Concurrency)
	assert.Equal(t, 5*time.Second, two.Timeout)
	assert.Equal(t, 10, two.MaxPages)
	assert.Equal(t, "$/mo", two.Markers.Price)
	assert.Equal(t, "m²", two.Markers.Area)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	dir := writeConfigDir(t, testApp, testScraping)
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CRAWLER_SITE", "two")
	t.Setenv("CRAWLER_CONCURRENCY", "8")
	t.Setenv("CRAWLER_TIMEOUT", "2s")
	t.Setenv("STATUS_ADDR", ":9999")

	cfg, err := LoadConfig(filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	require.Len(t, cfg.Scraping.Sites, 1)
	site := cfg.Scraping.Sites[0]
	assert.Equal(t, "two", site.Name)
	assert.Equal(t, 8, site.Concurrency)
	assert.Equal(t, 2*time.Second, site.Timeout)
	assert.Equal(t, ":9999", cfg.App.StatusAddr)
}

func TestLoadConfig_DotEnvFile(t *testing.T) {
	dir := writeConfigDir(t, testApp, testScraping)
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("CONFIG_DIR="+dir+"\nCRAWLER_MAX_PAGES=4\n"), 0o644))
	t.Cleanup(func() {
		os.Unsetenv("CONFIG_DIR")
		os.Unsetenv("CRAWLER_MAX_PAGES")
	})

	cfg, err := LoadConfig(envFile)
	require.NoError(t, err)
	for _, s := range cfg.Scraping.Sites {
		assert.Equal(t, 4, s.MaxPages)
	}
}

func TestLoadConfig_UnknownSite(t *testing.T) {
	dir := writeConfigDir(t, testApp, testScraping)
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CRAWLER_SITE", "three")

	_, err := LoadConfig(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown site")
}

func TestLoadConfig_BadInteger(t *testing.T) {
	dir := writeConfigDir(t, testApp, testScraping)
	t.Setenv("CONFIG_DIR", dir)
	t.Setenv("CRAWLER_CONCURRENCY", "many")

	_, err := LoadConfig(filepath.Join(dir, "missing.env"))
	assert.Error(t, err)
}

func TestLoadDir_MissingFile(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := SiteConfig{Name: "a", BaseURL: "https://example.com", StartPath: "/", Concurrency: 1}

	tests := []struct {
		name  string
		sites []SiteConfig
		want  string
	}{
		{"no sites", nil, "no sites"},
		{"relative base", []SiteConfig{{Name: "a", BaseURL: "/x", StartPath: "/", Concurrency: 1}}, "absolute"},
		{"no start path", []SiteConfig{{Name: "a", BaseURL: "https://example.com", Concurrency: 1}}, "start_path"},
		{"zero concurrency", []SiteConfig{{Name: "a", BaseURL: "https://example.com", StartPath: "/"}}, "concurrency"},
		{"duplicate", []SiteConfig{valid, valid}, "duplicate"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{Scraping: ScrapingConfig{Sites: tt.sites}}
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	cfg := &Config{Scraping: ScrapingConfig{Sites: []SiteConfig{valid}}}
	assert.NoError(t, cfg.Validate())
}
