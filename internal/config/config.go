package config

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "contentscale"

	// DefaultTimeout bounds one page render.
	DefaultTimeout = 30 * time.Second

	// DefaultScanTimeout bounds one whole scan: render, parse, validation and scoring.
	// Validation retries with backoff, so it is well above DefaultTimeout.
	DefaultScanTimeout = 3 * time.Minute

	// DefaultBatchSize is the number of URLs scanned concurrently.
	DefaultBatchSize = 10

	// DefaultRenderConcurrency is the number of render leases shared by all scans.
	DefaultRenderConcurrency = 5

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 10 * 1024 * 1024 // 10MB

	// DefaultCacheTTL is how long a rendered page stays in the cache.
	DefaultCacheTTL = time.Hour

	// RendererHTTP fetches pages with a plain HTTP client.
	RendererHTTP = "http"

	// RendererBrowserless renders pages in headless Chrome through Browserless.
	RendererBrowserless = "browserless"

	// DefaultRenderer is used when neither flags nor the config file pick one.
	DefaultRenderer = RendererHTTP

	// DefaultWatchSchedule rescans every six hours.
	DefaultWatchSchedule = "0 */6 * * *"
)

// Environment variables read by ApplyEnv.
const (
	EnvAPIKey           = "ANTHROPIC_API_KEY"
	EnvBrowserlessToken = "BROWSERLESS_TOKEN"
	EnvDatabaseDSN      = "CONTENTSCALE_DB_DSN"
)

// Config holds all configuration options for contentscale.
// It is populated from CLI flags, the configuration file and the environment,
// in that order of precedence, and passed to the commands explicitly.
type Config struct {
	// Targets is the list of URLs to scan.
	Targets []string

	// Timeout bounds one page render.
	Timeout time.Duration

	// ScanTimeout bounds one whole scan of a URL.
	ScanTimeout time.Duration

	// BatchSize is the number of URLs scanned concurrently.
	BatchSize int

	// RenderConcurrency bounds concurrent renders across the batch.
	RenderConcurrency int

	// Renderer is RendererHTTP or RendererBrowserless.
	Renderer string

	// BrowserlessEndpoint and BrowserlessToken locate the Browserless service.
	BrowserlessEndpoint string
	BrowserlessToken    string

	// UserAgent overrides the renderer's default User-Agent.
	UserAgent string

	// MaxBodySize is the maximum page size in bytes. 0 uses the default.
	MaxBodySize int64

	// Verbose enables debug logging. JSONLog switches log output to JSON.
	Verbose bool
	JSONLog bool

	// ConfigFilePath is the explicit configuration file path, if any.
	ConfigFilePath string

	// SiteConfigs is the loaded configuration file. Never nil after ApplyFile.
	SiteConfigs *File

	// JSONReport and MarkdownReport select the report format.
	// Mutually exclusive; neither means the plain text report.
	JSONReport     bool
	MarkdownReport bool

	// ReportFile is the output file path for the report. Empty means stdout.
	ReportFile string

	// NoValidate disables LLM validation. Scores are then labeled unverified.
	NoValidate bool

	// APIKey, Model, ValidatorBaseURL and ValidatorMaxAttempts configure the
	// Anthropic validator client. Empty or zero values use the client defaults.
	APIKey               string
	Model                string
	ValidatorBaseURL     string
	ValidatorMaxAttempts int
	ValidatorTimeout     time.Duration

	// DBDir is the directory of the SQLite score store.
	// Defaults to XDG data directory (~/.local/share/contentscale on Linux).
	DBDir string

	// DBDSN selects a PostgreSQL score store instead of SQLite.
	DBDSN string

	// SaveToDB indicates whether scan results are persisted.
	SaveToDB bool

	// Cache settings. The render cache is disabled when CacheAddr is empty.
	CacheAddr     string
	CachePassword string
	CacheDB       int
	CacheTTL      time.Duration

	// Archive uploads reports to S3 when Archive.Bucket is set.
	Archive ArchiveConfig

	// MetricsFile is a Prometheus textfile written after each scan run.
	MetricsFile string

	// WatchSchedule is the cron expression of the watch command.
	WatchSchedule string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:           DefaultTimeout,
		ScanTimeout:       DefaultScanTimeout,
		BatchSize:         DefaultBatchSize,
		RenderConcurrency: DefaultRenderConcurrency,
		Renderer:          DefaultRenderer,
		MaxBodySize:       DefaultMaxBodySize,
		SaveToDB:          true,
		CacheTTL:          DefaultCacheTTL,
		WatchSchedule:     DefaultWatchSchedule,
		SiteConfigs:       &File{Sites: make(map[string]SiteConfig)},
	}
}

// XDGDataDir returns the XDG data directory for contentscale.
// On Linux: ~/.local/share/contentscale
// On macOS: ~/Library/Application Support/contentscale
// On Windows: %LOCALAPPDATA%\contentscale
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for contentscale.
// On Linux: ~/.config/contentscale
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// ApplyFile copies settings from the configuration file into c. A setting is
// taken from the file only when the file sets it and the matching flag was
// not given on the command line; changed reports whether a flag was given.
// A nil changed treats every flag as unset.
func (c *Config) ApplyFile(f *File, changed func(flag string) bool) {
	if f == nil {
		return
	}
	c.SiteConfigs = f

	unset := func(flag string) bool {
		return changed == nil || !changed(flag)
	}

	r := f.Render
	if r.Renderer != "" && unset("renderer") {
		c.Renderer = r.Renderer
	}
	if r.Timeout > 0 && unset("timeout") {
		c.Timeout = r.Timeout
	}
	if r.Concurrency > 0 && unset("render-concurrency") {
		c.RenderConcurrency = r.Concurrency
	}
	if r.MaxBodySize > 0 {
		c.MaxBodySize = r.MaxBodySize
	}
	if r.UserAgent != "" && c.UserAgent == "" {
		c.UserAgent = r.UserAgent
	}
	if r.Browserless.Endpoint != "" && c.BrowserlessEndpoint == "" {
		c.BrowserlessEndpoint = r.Browserless.Endpoint
	}
	if r.Browserless.Token != "" {
		c.BrowserlessToken = r.Browserless.Token
	}

	v := f.Validator
	if v.Enabled != nil && !*v.Enabled && unset("no-validate") {
		c.NoValidate = true
	}
	if v.APIKey != "" {
		c.APIKey = v.APIKey
	}
	if v.Model != "" && unset("model") {
		c.Model = v.Model
	}
	if v.BaseURL != "" {
		c.ValidatorBaseURL = v.BaseURL
	}
	if v.MaxAttempts > 0 {
		c.ValidatorMaxAttempts = v.MaxAttempts
	}
	if v.Timeout > 0 {
		c.ValidatorTimeout = v.Timeout
	}

	if f.Cache.Addr != "" {
		c.CacheAddr = f.Cache.Addr
		c.CachePassword = f.Cache.Password
		c.CacheDB = f.Cache.DB
	}
	if f.Cache.TTL > 0 {
		c.CacheTTL = f.Cache.TTL
	}

	if f.Database.Dir != "" && unset("db-dir") {
		c.DBDir = f.Database.Dir
	}
	if f.Database.DSN != "" && unset("db-dsn") {
		c.DBDSN = f.Database.DSN
	}

	if f.Archive.Bucket != "" {
		c.Archive = f.Archive
	}

	if f.Watch.Schedule != "" && unset("schedule") {
		c.WatchSchedule = f.Watch.Schedule
	}
}

// ApplyEnv fills secrets that neither flags nor the configuration file set.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(key string) (string, bool)) {
	if lookup == nil {
		return
	}
	if c.APIKey == "" {
		if v, ok := lookup(EnvAPIKey); ok {
			c.APIKey = strings.TrimSpace(v)
		}
	}
	if c.BrowserlessToken == "" {
		if v, ok := lookup(EnvBrowserlessToken); ok {
			c.BrowserlessToken = strings.TrimSpace(v)
		}
	}
	if c.DBDSN == "" {
		if v, ok := lookup(EnvDatabaseDSN); ok {
			c.DBDSN = strings.TrimSpace(v)
		}
	}
}

// ValidationEnabled reports whether scans should call the LLM validator.
func (c *Config) ValidationEnabled() bool {
	return !c.NoValidate && c.APIKey != ""
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 || c.ScanTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.RenderConcurrency <= 0 {
		return ErrInvalidRenderConcurrency
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	switch c.Renderer {
	case RendererHTTP:
	case RendererBrowserless:
		if strings.TrimSpace(c.BrowserlessEndpoint) == "" {
			return ErrNoBrowserlessEndpoint
		}
	default:
		return ErrUnknownRenderer
	}

	if c.CacheAddr != "" && c.CacheTTL <= 0 {
		return ErrInvalidCacheTTL
	}
	return nil
}
