package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default Timeout is 30 seconds", func(t *testing.T) {
		t.Parallel()
		if cfg.Timeout != 30*time.Second {
			t.Errorf("expected Timeout to be 30s, got %v", cfg.Timeout)
		}
	})

	t.Run("default BatchSize is 10", func(t *testing.T) {
		t.Parallel()
		if cfg.BatchSize != 10 {
			t.Errorf("expected BatchSize to be 10, got %d", cfg.BatchSize)
		}
	})

	t.Run("default RenderConcurrency is 5", func(t *testing.T) {
		t.Parallel()
		if cfg.RenderConcurrency != 5 {
			t.Errorf("expected RenderConcurrency to be 5, got %d", cfg.RenderConcurrency)
		}
	})

	t.Run("default renderer is http", func(t *testing.T) {
		t.Parallel()
		if cfg.Renderer != RendererHTTP {
			t.Errorf("expected renderer %q, got %q", RendererHTTP, cfg.Renderer)
		}
	})

	t.Run("results are saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("site configs are never nil", func(t *testing.T) {
		t.Parallel()
		if cfg.SiteConfigs == nil || cfg.SiteConfigs.Sites == nil {
			t.Error("expected an empty configuration file")
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	validConfig := func() *Config {
		cfg := NewConfig()
		cfg.Targets = []string{"https://example.com/guide"}
		return cfg
	}

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{name: "valid config returns nil", modify: func(*Config) {}},
		{name: "no targets", modify: func(c *Config) { c.Targets = nil }, wantErr: ErrNoTarget},
		{name: "zero timeout", modify: func(c *Config) { c.Timeout = 0 }, wantErr: ErrInvalidTimeout},
		{name: "negative scan timeout", modify: func(c *Config) { c.ScanTimeout = -time.Second }, wantErr: ErrInvalidTimeout},
		{name: "zero batch size", modify: func(c *Config) { c.BatchSize = 0 }, wantErr: ErrInvalidBatchSize},
		{name: "zero render concurrency", modify: func(c *Config) { c.RenderConcurrency = 0 }, wantErr: ErrInvalidRenderConcurrency},
		{
			name:    "json and markdown together",
			modify:  func(c *Config) { c.JSONReport, c.MarkdownReport = true, true },
			wantErr: ErrConflictingReportFormats,
		},
		{name: "negative max body size", modify: func(c *Config) { c.MaxBodySize = -1 }, wantErr: ErrInvalidMaxBodySize},
		{name: "unknown renderer", modify: func(c *Config) { c.Renderer = "chromedp" }, wantErr: ErrUnknownRenderer},
		{
			name:    "browserless without endpoint",
			modify:  func(c *Config) { c.Renderer = RendererBrowserless },
			wantErr: ErrNoBrowserlessEndpoint,
		},
		{
			name: "browserless with endpoint",
			modify: func(c *Config) {
				c.Renderer = RendererBrowserless
				c.BrowserlessEndpoint = "https://chrome.example.com"
			},
		},
		{
			name: "cache without ttl",
			modify: func(c *Config) {
				c.CacheAddr = "localhost:6379"
				c.CacheTTL = 0
			},
			wantErr: ErrInvalidCacheTTL,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.modify(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestFileGetSiteConfig tests merging of site settings over defaults.
func TestFileGetSiteConfig(t *testing.T) {
	t.Parallel()

	cf := &File{
		Defaults: SiteConfig{
			Cookie:  "consent=yes",
			Headers: map[string]string{"Accept-Language": "en-US", "X-Team": "seo"},
		},
		Sites: map[string]SiteConfig{
			"example.com": {
				Cookie:         "session=abc",
				Headers:        map[string]string{"X-Team": "content"},
				UserAgent:      "ContentBot/1.0",
				SkipValidation: true,
			},
			"www.blog.example": {UserAgent: "BlogBot/1.0"},
		},
	}

	t.Run("unknown host gets the defaults", func(t *testing.T) {
		t.Parallel()
		sc := cf.GetSiteConfig("other.org")
		if sc.Cookie != "consent=yes" || sc.UserAgent != "" || sc.SkipValidation {
			t.Errorf("got %+v", sc)
		}
		if sc.Headers["Accept-Language"] != "en-US" {
			t.Errorf("got headers %v", sc.Headers)
		}
	})

	t.Run("site entry overrides the defaults", func(t *testing.T) {
		t.Parallel()
		sc := cf.GetSiteConfig("Example.COM")
		if sc.Cookie != "session=abc" || sc.UserAgent != "ContentBot/1.0" || !sc.SkipValidation {
			t.Errorf("got %+v", sc)
		}
		if sc.Headers["X-Team"] != "content" || sc.Headers["Accept-Language"] != "en-US" {
			t.Errorf("got headers %v", sc.Headers)
		}
	})

	t.Run("www prefix is ignored in both directions", func(t *testing.T) {
		t.Parallel()
		if got := cf.GetSiteConfig("www.example.com").UserAgent; got != "ContentBot/1.0" {
			t.Errorf("got user agent %q", got)
		}
		if got := cf.GetSiteConfig("blog.example").UserAgent; got != "BlogBot/1.0" {
			t.Errorf("got user agent %q", got)
		}
	})

	t.Run("merging does not modify the defaults", func(t *testing.T) {
		t.Parallel()
		_ = cf.GetSiteConfig("example.com")
		if cf.Defaults.Headers["X-Team"] != "seo" {
			t.Errorf("defaults were modified: %v", cf.Defaults.Headers)
		}
	})

	t.Run("skip validation and site settings", func(t *testing.T) {
		t.Parallel()
		if !cf.SkipValidation("example.com") || cf.SkipValidation("other.org") {
			t.Error("unexpected SkipValidation result")
		}
		empty := &File{}
		if empty.HasSiteSettings("example.com") {
			t.Error("expected no settings for an empty file")
		}
		if !cf.HasSiteSettings("other.org") {
			t.Error("expected default settings to count")
		}
	})
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	writeConfig := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), DefaultConfigFile)
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		return path
	}

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.contentscale.yaml")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads every section", func(t *testing.T) {
		t.Parallel()

		path := writeConfig(t, `defaults:
  cookie: "consent=yes"
sites:
  example.com:
    skipValidation: true
    headers:
      Authorization: "Bearer token"
validator:
  enabled: false
  model: claude-test
  maxAttempts: 4
  timeout: 45s
render:
  renderer: browserless
  timeout: 20s
  concurrency: 3
  browserless:
    endpoint: https://chrome.example.com
    token: bl-token
cache:
  addr: localhost:6379
  ttl: 30m
database:
  dsn: postgres://scan@db/contentscale
archive:
  bucket: seo-reports
  region: eu-west-1
  usePathStyle: true
watch:
  schedule: "@daily"
  urls:
    - https://example.com/guide
`)

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Defaults.Cookie != "consent=yes" {
			t.Errorf("got defaults %+v", cf.Defaults)
		}
		site := cf.Sites["example.com"]
		if !site.SkipValidation || site.Headers["Authorization"] != "Bearer token" {
			t.Errorf("got site %+v", site)
		}
		if cf.Validator.Enabled == nil || *cf.Validator.Enabled {
			t.Errorf("got validator enabled %v", cf.Validator.Enabled)
		}
		if cf.Validator.Timeout != 45*time.Second || cf.Validator.MaxAttempts != 4 {
			t.Errorf("got validator %+v", cf.Validator)
		}
		if cf.Render.Renderer != RendererBrowserless || cf.Render.Timeout != 20*time.Second ||
			cf.Render.Browserless.Endpoint != "https://chrome.example.com" {
			t.Errorf("got render %+v", cf.Render)
		}
		if cf.Cache.TTL != 30*time.Minute {
			t.Errorf("got cache %+v", cf.Cache)
		}
		if cf.Archive.Bucket != "seo-reports" || !cf.Archive.UsePathStyle {
			t.Errorf("got archive %+v", cf.Archive)
		}
		if cf.Watch.Schedule != "@daily" || len(cf.Watch.URLs) != 1 {
			t.Errorf("got watch %+v", cf.Watch)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, `invalid: yaml: content: [}`)
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("returns error for unknown keys", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "render:\n  rendrer: http\n")
		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for a misspelled key")
		}
	})

	t.Run("empty file gives an empty configuration", func(t *testing.T) {
		t.Parallel()
		path := writeConfig(t, "# nothing configured yet\n")
		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Sites == nil {
			t.Error("expected Sites map to be initialized")
		}
	})
}

// TestApplyFile tests precedence between flags and the configuration file.
func TestApplyFile(t *testing.T) {
	t.Parallel()

	disabled := false
	file := &File{
		Validator: ValidatorConfig{Enabled: &disabled, APIKey: "file-key", Model: "file-model"},
		Render: RenderConfig{
			Renderer:    RendererBrowserless,
			Timeout:     10 * time.Second,
			Concurrency: 2,
			Browserless: BrowserlessConfig{Endpoint: "https://chrome.example.com"},
		},
		Cache:    CacheConfig{Addr: "cache:6379", TTL: 5 * time.Minute},
		Database: DatabaseConfig{Dir: "/var/lib/contentscale"},
		Archive:  ArchiveConfig{Bucket: "reports"},
		Watch:    WatchConfig{Schedule: "@hourly"},
	}

	t.Run("file fills unset flags", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ApplyFile(file, nil)

		if cfg.Renderer != RendererBrowserless || cfg.Timeout != 10*time.Second || cfg.RenderConcurrency != 2 {
			t.Errorf("got render settings %s %v %d", cfg.Renderer, cfg.Timeout, cfg.RenderConcurrency)
		}
		if !cfg.NoValidate || cfg.APIKey != "file-key" || cfg.Model != "file-model" {
			t.Errorf("got validator settings %v %q %q", cfg.NoValidate, cfg.APIKey, cfg.Model)
		}
		if cfg.CacheAddr != "cache:6379" || cfg.CacheTTL != 5*time.Minute {
			t.Errorf("got cache settings %q %v", cfg.CacheAddr, cfg.CacheTTL)
		}
		if cfg.DBDir != "/var/lib/contentscale" || cfg.Archive.Bucket != "reports" || cfg.WatchSchedule != "@hourly" {
			t.Errorf("got %q %q %q", cfg.DBDir, cfg.Archive.Bucket, cfg.WatchSchedule)
		}
		if cfg.SiteConfigs != file {
			t.Error("expected the file to be kept for site lookups")
		}
	})

	t.Run("flags win over the file", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.Timeout = time.Minute
		cfg.Renderer = RendererHTTP
		changed := func(flag string) bool {
			return flag == "timeout" || flag == "renderer"
		}
		cfg.ApplyFile(file, changed)

		if cfg.Timeout != time.Minute || cfg.Renderer != RendererHTTP {
			t.Errorf("flags were overridden: %v %s", cfg.Timeout, cfg.Renderer)
		}
		if cfg.RenderConcurrency != 2 {
			t.Errorf("expected unset flags to come from the file, got %d", cfg.RenderConcurrency)
		}
	})

	t.Run("nil file is ignored", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyFile(nil, nil)
		if cfg.SiteConfigs == nil {
			t.Error("expected the default empty file")
		}
	})
}

// TestApplyEnv tests that the environment only fills missing secrets.
func TestApplyEnv(t *testing.T) {
	t.Parallel()

	env := map[string]string{
		EnvAPIKey:           " env-key ",
		EnvBrowserlessToken: "env-token",
		EnvDatabaseDSN:      "postgres://env",
	}
	lookup := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	t.Run("fills missing values", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.ApplyEnv(lookup)
		if cfg.APIKey != "env-key" || cfg.BrowserlessToken != "env-token" || cfg.DBDSN != "postgres://env" {
			t.Errorf("got %q %q %q", cfg.APIKey, cfg.BrowserlessToken, cfg.DBDSN)
		}
		if !cfg.ValidationEnabled() {
			t.Error("expected validation to be enabled with an API key")
		}
	})

	t.Run("keeps configured values", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		cfg.APIKey = "file-key"
		cfg.ApplyEnv(lookup)
		if cfg.APIKey != "file-key" {
			t.Errorf("got %q", cfg.APIKey)
		}
	})

	t.Run("validation needs a key and no opt-out", func(t *testing.T) {
		t.Parallel()
		cfg := NewConfig()
		if cfg.ValidationEnabled() {
			t.Error("expected validation disabled without a key")
		}
		cfg.APIKey = "key"
		cfg.NoValidate = true
		if cfg.ValidationEnabled() {
			t.Error("expected validation disabled by NoValidate")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()
		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}
		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()
		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	for name, dir := range map[string]string{"data": XDGDataDir(), "config": XDGConfigDir()} {
		if !strings.HasSuffix(dir, AppName) {
			t.Errorf("%s dir %q does not end with %q", name, dir, AppName)
		}
	}
}
