package config

import (
	"maps"
	"strings"
	"time"
)

// SiteConfig holds per-host settings applied when rendering and validating
// pages of one site.
type SiteConfig struct {
	// Cookie is sent with every request to the site.
	// Format: "name=value" or "name1=value1; name2=value2"
	Cookie string `yaml:"cookie,omitempty"`

	// Headers are extra HTTP headers sent to the site.
	Headers map[string]string `yaml:"headers,omitempty"`

	// UserAgent overrides the renderer's User-Agent for the site.
	UserAgent string `yaml:"userAgent,omitempty"`

	// SkipValidation scores the site on parser counts only.
	SkipValidation bool `yaml:"skipValidation,omitempty"`
}

// ValidatorConfig configures the LLM validator.
type ValidatorConfig struct {
	// Enabled turns validation off when explicitly false.
	Enabled *bool `yaml:"enabled,omitempty"`

	// APIKey is the Anthropic API key. ANTHROPIC_API_KEY is used when empty.
	APIKey string `yaml:"apiKey,omitempty"`

	Model       string        `yaml:"model,omitempty"`
	BaseURL     string        `yaml:"baseURL,omitempty"`
	MaxAttempts int           `yaml:"maxAttempts,omitempty"`
	Timeout     time.Duration `yaml:"timeout,omitempty"`
}

// BrowserlessConfig locates a headless Chrome rendering service.
type BrowserlessConfig struct {
	Endpoint string `yaml:"endpoint,omitempty"`
	Token    string `yaml:"token,omitempty"`
}

// RenderConfig configures page rendering.
type RenderConfig struct {
	// Renderer is "http" (default) or "browserless".
	Renderer    string            `yaml:"renderer,omitempty"`
	Timeout     time.Duration     `yaml:"timeout,omitempty"`
	Concurrency int               `yaml:"concurrency,omitempty"`
	MaxBodySize int64             `yaml:"maxBodySize,omitempty"`
	UserAgent   string            `yaml:"userAgent,omitempty"`
	Browserless BrowserlessConfig `yaml:"browserless,omitempty"`
}

// CacheConfig configures the redis cache of rendered pages.
// The cache is disabled when Addr is empty.
type CacheConfig struct {
	Addr     string        `yaml:"addr,omitempty"`
	Password string        `yaml:"password,omitempty"`
	DB       int           `yaml:"db,omitempty"`
	TTL      time.Duration `yaml:"ttl,omitempty"`
}

// DatabaseConfig selects the score store. DSN selects PostgreSQL and takes
// precedence over Dir.
type DatabaseConfig struct {
	Dir string `yaml:"dir,omitempty"`
	DSN string `yaml:"dsn,omitempty"`
}

// ArchiveConfig configures the S3 report archive.
// Archiving is disabled when Bucket is empty.
type ArchiveConfig struct {
	Bucket string `yaml:"bucket,omitempty"`
	Prefix string `yaml:"prefix,omitempty"`
	Region string `yaml:"region,omitempty"`

	// Endpoint targets an S3-compatible service such as MinIO.
	Endpoint     string `yaml:"endpoint,omitempty"`
	UsePathStyle bool   `yaml:"usePathStyle,omitempty"`

	// Static credentials. The default AWS credential chain is used when empty.
	AccessKeyID     string `yaml:"accessKeyID,omitempty"`
	SecretAccessKey string `yaml:"secretAccessKey,omitempty"`
}

// WatchConfig configures periodic rescans.
type WatchConfig struct {
	// Schedule is a five-field cron expression or a descriptor such as "@daily".
	Schedule string   `yaml:"schedule,omitempty"`
	URLs     []string `yaml:"urls,omitempty"`
}

// File represents the structure of the .contentscale.yaml configuration file.
type File struct {
	// Defaults apply to every site unless overridden in Sites.
	Defaults SiteConfig `yaml:"defaults,omitempty"`

	// Sites maps host names (e.g. "example.com") to their settings.
	Sites map[string]SiteConfig `yaml:"sites,omitempty"`

	Validator ValidatorConfig `yaml:"validator,omitempty"`
	Render    RenderConfig    `yaml:"render,omitempty"`
	Cache     CacheConfig     `yaml:"cache,omitempty"`
	Database  DatabaseConfig  `yaml:"database,omitempty"`
	Archive   ArchiveConfig   `yaml:"archive,omitempty"`
	Watch     WatchConfig     `yaml:"watch,omitempty"`
}

// lookupSite finds the site entry for host. "www." is ignored when the exact
// host has no entry.
func (cf *File) lookupSite(host string) (SiteConfig, bool) {
	host = strings.ToLower(strings.TrimSpace(host))
	if sc, ok := cf.Sites[host]; ok {
		return sc, true
	}
	if bare, found := strings.CutPrefix(host, "www."); found {
		sc, ok := cf.Sites[bare]
		return sc, ok
	}
	sc, ok := cf.Sites["www."+host]
	return sc, ok
}

// GetSiteConfig returns the settings for host, merging the site entry over
// the defaults. Headers are merged key by key.
func (cf *File) GetSiteConfig(host string) SiteConfig {
	result := cf.Defaults
	if len(cf.Defaults.Headers) > 0 {
		result.Headers = maps.Clone(cf.Defaults.Headers)
	}

	siteConfig, ok := cf.lookupSite(host)
	if !ok {
		return result
	}
	if siteConfig.Cookie != "" {
		result.Cookie = siteConfig.Cookie
	}
	if siteConfig.UserAgent != "" {
		result.UserAgent = siteConfig.UserAgent
	}
	if siteConfig.SkipValidation {
		result.SkipValidation = true
	}
	if len(siteConfig.Headers) > 0 {
		if result.Headers == nil {
			result.Headers = make(map[string]string, len(siteConfig.Headers))
		}
		maps.Copy(result.Headers, siteConfig.Headers)
	}
	return result
}

// HasSiteSettings reports whether host has any request settings
// (cookie, headers or user agent) after merging with the defaults.
func (cf *File) HasSiteSettings(host string) bool {
	sc := cf.GetSiteConfig(host)
	return sc.Cookie != "" || sc.UserAgent != "" || len(sc.Headers) > 0
}

// SkipValidation reports whether pages of host are scored without validation.
func (cf *File) SkipValidation(host string) bool {
	return cf.GetSiteConfig(host).SkipValidation
}
